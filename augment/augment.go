// SPDX-License-Identifier: EPL-2.0

package augment

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/metrics"
	"github.com/ik5/audperturb/perturb"
	"github.com/ik5/audperturb/shard"
)

// Stage is one pipeline step. Kind only labels logs and metrics.
type Stage struct {
	Prob         float64
	Kind         string
	Perturbation perturb.Perturbation
}

type options struct {
	rng      *rand.Rand
	seed     *uint64
	logger   *slog.Logger
	metrics  *metrics.Metrics
	registry *perturb.Registry
	worker   *shard.Worker
	// seeded is set when the caller fixed the generator, so perturbations
	// built by FromConfig are seeded from it too.
	seeded bool
}

type Option func(*options)

// WithRand makes the augmentor draw stage decisions, and the seeds of the
// perturbations FromConfig builds, from rng.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithSeed seeds the stage-decision generator and, in FromConfig, every
// perturbation whose entry has no seed of its own. WithRand takes precedence.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = &seed }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithWorker sets the shard worker identity of noise and impulse sources
// built by FromConfig. Without it they read RANK and WORLD_SIZE.
func WithWorker(w shard.Worker) Option {
	return func(o *options) { o.worker = &w }
}

// WithRegistry resolves kinds in FromConfig against r instead of
// perturb.Default().
func WithRegistry(r *perturb.Registry) Option {
	return func(o *options) { o.registry = r }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.registry == nil {
		o.registry = perturb.Default()
	}
	if o.rng != nil || o.seed != nil {
		o.seeded = true
	}
	if o.rng == nil {
		if o.seed != nil {
			o.rng = rand.New(rand.NewPCG(*o.seed, *o.seed))
		} else {
			o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}

	return o
}

// Augmentor applies its stages in order. It is not safe for concurrent
// use; give each worker its own.
type Augmentor struct {
	stages  []Stage
	rng     *rand.Rand
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(stages []Stage, opts ...Option) (*Augmentor, error) {
	for i, st := range stages {
		if st.Prob < 0 || st.Prob > 1 {
			return nil, fmt.Errorf("stage %d (%s): %w: %v", i, st.Kind, ErrInvalidProbability, st.Prob)
		}
		if st.Perturbation == nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, st.Kind, ErrNilPerturbation)
		}
	}

	o := buildOptions(opts)
	return &Augmentor{
		stages:  append([]Stage(nil), stages...),
		rng:     o.rng,
		logger:  o.logger,
		metrics: o.metrics,
	}, nil
}

// Stages returns a copy of the pipeline.
func (a *Augmentor) Stages() []Stage {
	return append([]Stage(nil), a.stages...)
}

// Perturb runs every stage whose draw falls under its probability.
// origRate is forwarded to the stages; zero means unknown.
func (a *Augmentor) Perturb(seg *audio.Segment, origRate int) error {
	for i, st := range a.stages {
		if a.rng.Float64() >= st.Prob {
			a.metrics.StageSkipped(st.Kind)
			continue
		}

		start := time.Now()
		if err := st.Perturbation.Perturb(seg, origRate); err != nil {
			a.metrics.StageFailed(st.Kind)
			return fmt.Errorf("stage %d (%s): %w", i, st.Kind, err)
		}
		elapsed := time.Since(start)
		a.metrics.StageApplied(st.Kind, elapsed)

		a.logger.Debug("applied perturbation",
			slog.Int("stage", i),
			slog.String("kind", st.Kind),
			slog.Duration("elapsed", elapsed),
			slog.Int("samples", seg.NumSamples()),
		)
	}

	return nil
}

// MaxAugmentationLength is the longest duration, in seconds, that length
// can grow to if every stage fires.
func (a *Augmentor) MaxAugmentationLength(length float64) float64 {
	for _, st := range a.stages {
		length = st.Perturbation.MaxAugmentationLength(length)
	}
	return length
}
