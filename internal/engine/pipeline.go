// Package engine sequences the bootstrap phases. The pipeline is an explicit
// state machine advanced one unit of work at a time by an external scheduler:
// one resource fetch, one metadata patch, the activation, the instantiation,
// or one countdown tick per step. Phase ordering is the hard contract here —
// every fetch completes before the first patch, every patch before the
// activation, and the activation before the instantiation.
package engine

import (
	"context"
	"time"

	"github.com/vk/hotbootgo/internal/activate"
	"github.com/vk/hotbootgo/internal/content"
	"github.com/vk/hotbootgo/internal/ctxlog"
	"github.com/vk/hotbootgo/internal/fetch"
	"github.com/vk/hotbootgo/internal/lifecycle"
	"github.com/vk/hotbootgo/internal/metadata"
)

// templateName is the fixed template the instantiation phase spawns.
const templateName = "Cube"

// tickUnit is the countdown's fixed time unit.
const tickUnit = time.Second

// Phase identifies where the pipeline currently is.
type Phase int

const (
	PhaseFetch Phase = iota
	PhasePatch
	PhaseActivate
	PhaseInstantiate
	PhaseCount
	PhaseDone
)

// String returns the log name of a phase.
func (p Phase) String() string {
	switch p {
	case PhaseFetch:
		return "fetch"
	case PhasePatch:
		return "patch"
	case PhaseActivate:
		return "activate"
	case PhaseInstantiate:
		return "instantiate"
	case PhaseCount:
		return "count"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// Pipeline drives one bootstrap run over its five components.
type Pipeline struct {
	downloader   *fetch.Downloader
	patcher      *metadata.Patcher
	activator    *activate.Activator
	instantiator *content.Instantiator
	timer        *lifecycle.Timer

	resources   []string
	baseModules []string
	module      string
	bundle      string
	mode        activate.Mode

	onFetched func()

	phase Phase
	index int
}

// NewPipeline wires the components for one run. resources is the full ordered
// fetch list; baseModules is the patch manifest (a subset of resources).
func NewPipeline(
	downloader *fetch.Downloader,
	patcher *metadata.Patcher,
	activator *activate.Activator,
	instantiator *content.Instantiator,
	timer *lifecycle.Timer,
	resources, baseModules []string,
	module, bundle string,
	mode activate.Mode,
) *Pipeline {
	return &Pipeline{
		downloader:   downloader,
		patcher:      patcher,
		activator:    activator,
		instantiator: instantiator,
		timer:        timer,
		resources:    resources,
		baseModules:  baseModules,
		module:       module,
		bundle:       bundle,
		mode:         mode,
	}
}

// OnFetched sets a callback fired exactly once, after the final fetch of the
// download phase completes or fails.
func (p *Pipeline) OnFetched(fn func()) {
	p.onFetched = fn
}

// Phase returns the pipeline's current phase.
func (p *Pipeline) Phase() Phase {
	return p.phase
}

// Step performs one unit of work and returns how long the scheduler should
// wait before the next step, whether the run is finished, and any fatal
// error. Fetch errors are never fatal; everything after the fetch phase is.
func (p *Pipeline) Step(ctx context.Context) (time.Duration, bool, error) {
	logger := ctxlog.FromContext(ctx)

	switch p.phase {
	case PhaseFetch:
		if p.index < len(p.resources) {
			// Per-resource failures were already logged; the pipeline
			// continues and lets the first consumer of a missing key fail.
			_ = p.downloader.FetchOne(ctx, p.resources[p.index])
			p.index++
		}
		if p.index == len(p.resources) {
			if p.onFetched != nil {
				p.onFetched()
			}
			logger.Info("Fetch phase complete.", "resources", len(p.resources))
			p.phase, p.index = PhasePatch, 0
		}
		return 0, false, nil

	case PhasePatch:
		if p.index < len(p.baseModules) {
			if err := p.patcher.PatchOne(ctx, p.baseModules[p.index]); err != nil {
				return 0, false, err
			}
			p.index++
		}
		if p.index == len(p.baseModules) {
			logger.Info("Patch phase complete.", "modules", len(p.baseModules))
			p.phase, p.index = PhaseActivate, 0
		}
		return 0, false, nil

	case PhaseActivate:
		if err := p.activator.Activate(ctx, p.module, p.mode); err != nil {
			return 0, false, err
		}
		p.phase = PhaseInstantiate
		return 0, false, nil

	case PhaseInstantiate:
		if _, err := p.instantiator.Instantiate(ctx, p.bundle, templateName); err != nil {
			return 0, false, err
		}
		if err := p.timer.Enter(ctx); err != nil {
			return 0, false, err
		}
		p.phase = PhaseCount
		return 0, false, nil

	case PhaseCount:
		if p.timer.Tick(ctx) {
			p.phase = PhaseDone
			return 0, true, nil
		}
		return tickUnit, false, nil
	}

	return 0, true, nil
}

// Sleeper pauses between scheduler steps. Tests substitute a recorder.
type Sleeper func(time.Duration)

// Run advances the pipeline to completion. This is the host's tick loop:
// strictly sequential, one suspension point at a time, no parallel workers.
func Run(ctx context.Context, p *Pipeline, sleep Sleeper) error {
	if sleep == nil {
		sleep = time.Sleep
	}
	for {
		delay, done, err := p.Step(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if delay > 0 {
			sleep(delay)
		}
	}
}
