// SPDX-License-Identifier: EPL-2.0

package perturb

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audperturb/metrics"
	"github.com/ik5/audperturb/shard"
)

// Config is what a Factory receives: the keyword parameters of one
// configuration entry plus the shared logger and metrics.
type Config struct {
	Params map[string]any
	// Seed is used when Params has no seed key of its own.
	Seed *uint64
	// Worker overrides RANK and WORLD_SIZE for shard-backed sources.
	Worker  *shard.Worker
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Decode fills out from Params. out should be pre-populated with defaults;
// keys absent from Params keep them. Unknown keys are an error.
func (c Config) Decode(out any) error {
	raw, err := yaml.Marshal(c.Params)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

func (c Config) seed(own *uint64) *uint64 {
	if own != nil {
		return own
	}
	return c.Seed
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// StringList accepts either a single string or a list of strings.
type StringList []string

func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
		} else {
			*l = StringList{s}
		}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*l = list
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}
