// SPDX-License-Identifier: EPL-2.0

package perturb

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/ik5/audperturb/noise"
)

// Built-in perturbation kinds.
const (
	KindSpeed       = "speed"
	KindTimeStretch = "time_stretch"
	KindGain        = "gain"
	KindImpulse     = "impulse"
	KindShift       = "shift"
	KindNoise       = "noise"
	KindWhiteNoise  = "white_noise"
	KindRirAndNoise = "rir_noise"
)

// Factory builds a perturbation from its configuration entry.
type Factory func(cfg Config) (Perturbation, error)

// Registry maps kind names to factories.
type Registry struct {
	factories map[string]Factory

	mtx *sync.RWMutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		mtx:       &sync.RWMutex{},
	}
}

// NewDefaultRegistry returns a registry holding the built-in kinds.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for kind, f := range builtins {
		r.factories[kind] = f
	}
	return r
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}

func (r *Registry) Register(kind string, f Factory) error {
	kind = normalizeKind(kind)
	if kind == "" || f == nil {
		return fmt.Errorf("%w: kind %q needs a name and a factory", ErrInvalidConfig, kind)
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.factories[kind]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateKind, kind)
	}
	r.factories[kind] = f

	return nil
}

func (r *Registry) Lookup(kind string) (Factory, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	f, ok := r.factories[normalizeKind(kind)]
	return f, ok
}

// Kinds lists the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	slices.Sort(out)

	return out
}

// New builds a perturbation of the given kind.
func (r *Registry) New(kind string, cfg Config) (Perturbation, error) {
	f, ok := r.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	p, err := f(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", normalizeKind(kind), err)
	}
	return p, nil
}

var defaultRegistry = sync.OnceValue(NewDefaultRegistry)

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry()
}

// Register adds a kind to the process-wide registry.
func Register(kind string, f Factory) error {
	return Default().Register(kind, f)
}

var builtins = map[string]Factory{
	KindSpeed:       newSpeedFromConfig,
	KindTimeStretch: newTimeStretchFromConfig,
	KindGain:        newGainFromConfig,
	KindImpulse:     newImpulseFromConfig,
	KindShift:       newShiftFromConfig,
	KindNoise:       newNoiseFromConfig,
	KindWhiteNoise:  newWhiteNoiseFromConfig,
	KindRirAndNoise: newRirAndNoiseFromConfig,
}

func newSpeedFromConfig(cfg Config) (Perturbation, error) {
	opts := DefaultSpeedOptions()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	opts.Seed = cfg.seed(opts.Seed)
	return NewSpeed(opts, nil)
}

func newTimeStretchFromConfig(cfg Config) (Perturbation, error) {
	opts := DefaultTimeStretchOptions()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	opts.Seed = cfg.seed(opts.Seed)
	return NewTimeStretch(opts, nil)
}

func newGainFromConfig(cfg Config) (Perturbation, error) {
	opts := DefaultGainOptions()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	opts.Seed = cfg.seed(opts.Seed)
	return NewGain(opts, nil), nil
}

func newShiftFromConfig(cfg Config) (Perturbation, error) {
	opts := DefaultShiftOptions()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	opts.Seed = cfg.seed(opts.Seed)
	return NewShift(opts, nil), nil
}

func newWhiteNoiseFromConfig(cfg Config) (Perturbation, error) {
	opts := DefaultWhiteNoiseOptions()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	opts.Seed = cfg.seed(opts.Seed)
	return NewWhiteNoise(opts, nil), nil
}

func newImpulseFromConfig(cfg Config) (Perturbation, error) {
	opts := DefaultImpulseOptions()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}

	rng := newRand(nil, cfg.seed(opts.Seed))
	src, err := opts.open(rng, cfg)
	if err != nil {
		return nil, err
	}
	return NewImpulse(src, rng)
}

func newNoiseFromConfig(cfg Config) (Perturbation, error) {
	opts := DefaultNoiseOptions()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}

	rng := newRand(nil, cfg.seed(opts.Seed))
	src, err := opts.open(rng, cfg)
	if err != nil {
		return nil, err
	}
	return NewNoise(src, opts, rng)
}

func newRirAndNoiseFromConfig(cfg Config) (Perturbation, error) {
	opts := DefaultRirAndNoiseOptions()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}

	rng := newRand(nil, cfg.seed(opts.Seed))
	rir, err := opts.rirSource().open(rng, cfg)
	if err != nil {
		return nil, fmt.Errorf("rir: %w", err)
	}
	fg, err := opts.noiseSource().open(rng, cfg)
	if err != nil {
		return nil, fmt.Errorf("foreground noise: %w", err)
	}

	var bg noise.Source
	if opts.BgNoiseManifestPath != "" {
		if bg, err = opts.bgSource().open(rng, cfg); err != nil {
			return nil, fmt.Errorf("background noise: %w", err)
		}
	}

	return NewRirAndNoise(rir, fg, bg, opts, rng)
}
