// Package config defines the format-agnostic bootstrap manifest model and the
// loader interface format-specific front ends implement.
package config

import (
	"errors"
	"fmt"
)

// Deployment modes for the dynamic module.
const (
	ModeRemote = "remote"
	ModeInline = "inline"
)

// Sentinel gate settings.
const (
	SentinelAuto = "auto"
	SentinelOn   = "on"
	SentinelOff  = "off"
)

// Model is the unified representation of the entire bootstrap configuration.
type Model struct {
	Bootstrap *Bootstrap
}

// Bootstrap declares everything one bootstrap run needs: where resources
// live, which ones to fetch, and how the run winds down.
type Bootstrap struct {
	// BaseLocation is the address prefix every resource name is joined to.
	BaseLocation string
	// Bundle is the content-bundle resource name.
	Bundle string
	// Module is the dynamic code module resource name.
	Module string
	// BaseModules is the ordered base-module manifest. Patch order follows
	// this list, and every entry is appended to the fetch list.
	BaseModules []string
	// Countdown is the post-activation countdown start value.
	Countdown int
	// Mode selects remote or inline module deployment.
	Mode string
	// Sentinel gates the steady-state marker file: auto, on, or off.
	Sentinel string
	// SentinelDir overrides the marker directory. Empty means the working
	// directory.
	SentinelDir string
}

// ResourceList returns the declared ordered fetch list: the fixed prefix
// (bundle, module) followed by the base-module manifest. Every base-module
// name appears in the fetch list by construction.
func (b *Bootstrap) ResourceList() []string {
	list := make([]string, 0, 2+len(b.BaseModules))
	list = append(list, b.Bundle, b.Module)
	list = append(list, b.BaseModules...)
	return list
}

// Validate checks the manifest for the mistakes a loader cannot rule out.
func (b *Bootstrap) Validate() error {
	if b.BaseLocation == "" {
		return errors.New("base_location is required")
	}
	if b.Bundle == "" {
		return errors.New("bundle is required")
	}
	if b.Module == "" {
		return errors.New("module is required")
	}
	for i, name := range b.BaseModules {
		if name == "" {
			return fmt.Errorf("base_modules[%d] is empty", i)
		}
	}
	if b.Countdown < 0 {
		return fmt.Errorf("countdown must not be negative, got %d", b.Countdown)
	}
	switch b.Mode {
	case ModeRemote, ModeInline:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeRemote, ModeInline, b.Mode)
	}
	switch b.Sentinel {
	case SentinelAuto, SentinelOn, SentinelOff:
	default:
		return fmt.Errorf("sentinel must be %q, %q or %q, got %q", SentinelAuto, SentinelOn, SentinelOff, b.Sentinel)
	}
	return nil
}
