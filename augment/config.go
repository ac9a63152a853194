// SPDX-License-Identifier: EPL-2.0

package augment

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ik5/audperturb/perturb"
)

// Entry is one configured stage. AugType is the older spelling of Kind
// and is only read when Kind is empty.
type Entry struct {
	Kind    string         `yaml:"kind" toml:"kind" json:"kind"`
	AugType string         `yaml:"aug_type,omitempty" toml:"aug_type,omitempty" json:"aug_type,omitempty"`
	Prob    float64        `yaml:"prob" toml:"prob" json:"prob"`
	Cfg     map[string]any `yaml:"cfg" toml:"cfg" json:"cfg"`
}

// Name returns the kind, falling back to AugType.
func (e Entry) Name() string {
	if k := strings.TrimSpace(e.Kind); k != "" {
		return k
	}
	return strings.TrimSpace(e.AugType)
}

type file struct {
	Augmentations []Entry `yaml:"augmentations" toml:"augmentations"`
}

// LoadConfig reads augmentation entries from a .yaml, .yml or .toml file.
func LoadConfig(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read augmentation config: %w", err)
	}

	var f file
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedConfig, ext)
	}

	return f.Augmentations, nil
}

// FromConfig builds an Augmentor from entries. Kinds missing from the
// registry are logged and skipped; any other failure aborts.
func FromConfig(entries []Entry, opts ...Option) (*Augmentor, error) {
	o := buildOptions(opts)

	stages := make([]Stage, 0, len(entries))
	for i, e := range entries {
		kind := e.Name()
		if kind == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrMissingKind)
		}
		if e.Prob < 0 || e.Prob > 1 {
			return nil, fmt.Errorf("entry %d (%s): %w: %v", i, kind, ErrInvalidProbability, e.Prob)
		}

		factory, ok := o.registry.Lookup(kind)
		if !ok {
			o.logger.Warn("skipping unknown augmentation kind",
				slog.Int("entry", i),
				slog.String("kind", kind),
				slog.Any("known", o.registry.Kinds()),
			)
			o.metrics.UnknownKind(kind)
			continue
		}

		cfg := perturb.Config{
			Params:  e.Cfg,
			Worker:  o.worker,
			Logger:  o.logger,
			Metrics: o.metrics,
		}
		if o.seeded {
			seed := o.rng.Uint64()
			cfg.Seed = &seed
		}

		p, err := factory(cfg)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, kind, err)
		}
		stages = append(stages, Stage{Prob: e.Prob, Kind: kind, Perturbation: p})
	}

	return New(stages, func(dst *options) { *dst = o })
}
