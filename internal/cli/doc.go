// Package cli translates command-line arguments into an app.Config and maps
// usage errors onto process exit codes.
package cli
