// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the bootstrap run lifecycle, decoupled from
// any specific entrypoint like a CLI or an embedding host.
package app
