// Package schema holds the HCL-facing struct definitions the loader decodes
// manifest files into before translating them to the agnostic config model.
package schema

import "github.com/hashicorp/hcl/v2"

// Bootstrap represents the `bootstrap` block of a manifest file.
type Bootstrap struct {
	BaseLocation string   `hcl:"base_location"`
	Bundle       string   `hcl:"bundle"`
	Module       string   `hcl:"module"`
	BaseModules  []string `hcl:"base_modules"`
	Countdown    *int     `hcl:"countdown,optional"`
	Mode         string   `hcl:"mode,optional"`
	Sentinel     string   `hcl:"sentinel,optional"`
	SentinelDir  string   `hcl:"sentinel_dir,optional"`
}

// Manifest represents the top-level structure of a manifest file.
type Manifest struct {
	Bootstrap *Bootstrap `hcl:"bootstrap,block"`
	Body      hcl.Body   `hcl:",remain"`
}
