// Package hcl implements the config.Loader interface for HCL manifest files.
package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/hotbootgo/internal/config"
	"github.com/vk/hotbootgo/internal/ctxlog"
	"github.com/vk/hotbootgo/internal/schema"
)

// defaultCountdown matches the reference system's post-activation countdown.
const defaultCountdown = 10

// Loader loads HCL manifest files.
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the manifest at path and translates it into the agnostic model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading manifest.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse manifest %s: %w", path, diags)
	}

	return l.decode(ctx, file.Body, path)
}

// LoadBytes parses an in-memory manifest. Used by tests and embedded hosts.
func (l *Loader) LoadBytes(ctx context.Context, src []byte, filename string) (*config.Model, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse manifest %s: %w", filename, diags)
	}
	return l.decode(ctx, file.Body, filename)
}

func (l *Loader) decode(ctx context.Context, body hcl.Body, filename string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	var manifest schema.Manifest
	if diags := gohcl.DecodeBody(body, evalContext(), &manifest); diags.HasErrors() {
		return nil, fmt.Errorf("decode manifest %s: %w", filename, diags)
	}
	if manifest.Bootstrap == nil {
		return nil, fmt.Errorf("manifest %s: missing bootstrap block", filename)
	}

	model := &config.Model{Bootstrap: translate(manifest.Bootstrap)}
	if err := model.Bootstrap.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", filename, err)
	}

	logger.Debug("Manifest loaded.",
		"base_location", model.Bootstrap.BaseLocation,
		"resources", len(model.Bootstrap.ResourceList()))
	return model, nil
}

// translate converts the HCL-specific schema into the agnostic model,
// applying defaults for the optional attributes.
func translate(b *schema.Bootstrap) *config.Bootstrap {
	out := &config.Bootstrap{
		BaseLocation: b.BaseLocation,
		Bundle:       b.Bundle,
		Module:       b.Module,
		BaseModules:  b.BaseModules,
		Countdown:    defaultCountdown,
		Mode:         b.Mode,
		Sentinel:     b.Sentinel,
		SentinelDir:  b.SentinelDir,
	}
	if b.Countdown != nil {
		out.Countdown = *b.Countdown
	}
	if out.Mode == "" {
		out.Mode = config.ModeRemote
	}
	if out.Sentinel == "" {
		out.Sentinel = config.SentinelAuto
	}
	return out
}

// evalContext exposes the few variables manifest expressions may reference.
func evalContext() *hcl.EvalContext {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"cwd": cty.StringVal(wd),
		},
	}
}
