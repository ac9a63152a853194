// SPDX-License-Identifier: EPL-2.0

// Package noise supplies the auxiliary audio that additive-noise and
// reverberation perturbations mix into their targets. A Source either
// decodes a random manifest entry from disk on every request or, when
// shard archives are configured, drains one pass of a shard stream into a
// cache on first use and samples from that cache afterwards.
package noise

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/formats"
	"github.com/ik5/audperturb/manifest"
	"github.com/ik5/audperturb/metrics"
	"github.com/ik5/audperturb/shard"
)

var (
	ErrNoCandidates   = errors.New("no noise candidates available")
	ErrNoManifestPath = errors.New("noise source needs a manifest path")
)

// Source hands out noise or impulse response segments. Returned segments
// belong to the caller.
type Source interface {
	Sample(rng *rand.Rand, targetRate, origRate int) (*audio.Segment, error)
}

// Options describes where noise comes from.
type Options struct {
	// ManifestPath lists the candidates; comma separated paths are
	// concatenated.
	ManifestPath string
	// TarPaths are shard archives or brace patterns. When empty the
	// candidates are decoded from the paths in the manifest.
	TarPaths        []string
	ShuffleN        int
	ShardsPerWorker int
	// Worker overrides the identity read from RANK and WORLD_SIZE.
	Worker      *shard.Worker
	MinDuration float64
	MaxDuration float64

	// Rand drives the shuffle buffer; nil seeds one from entropy.
	Rand    *rand.Rand
	Opener  shard.Opener
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// New loads the manifest and builds a StreamSource when TarPaths is set,
// a ManifestSource otherwise.
func New(opts Options) (Source, error) {
	if opts.ManifestPath == "" {
		return nil, ErrNoManifestPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m, err := manifest.Load(opts.ManifestPath, manifest.Options{
		MinDuration: opts.MinDuration,
		MaxDuration: opts.MaxDuration,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("load noise manifest: %w", err)
	}

	if len(opts.TarPaths) == 0 {
		return NewManifestSource(m), nil
	}

	shards, err := shard.Resolve(opts.TarPaths)
	if err != nil {
		return nil, err
	}

	streamOpts := []shard.Option{
		shard.WithLogger(logger),
		shard.WithMetrics(opts.Metrics),
		shard.WithShuffle(opts.ShuffleN, opts.Rand),
	}
	if opts.ShardsPerWorker > 0 {
		streamOpts = append(streamOpts, shard.WithShardsPerWorker(opts.ShardsPerWorker))
	}
	if opts.Worker != nil {
		streamOpts = append(streamOpts, shard.WithWorker(*opts.Worker))
	}
	if opts.Opener != nil {
		streamOpts = append(streamOpts, shard.WithOpener(opts.Opener))
	}

	stream, err := shard.NewStream(m, shards, streamOpts...)
	if err != nil {
		return nil, fmt.Errorf("open noise shards: %w", err)
	}

	return NewStreamSource(stream, logger, opts.Metrics), nil
}

// ManifestSource decodes a uniformly chosen manifest entry per request.
type ManifestSource struct {
	manifest *manifest.Manifest
}

func NewManifestSource(m *manifest.Manifest) *ManifestSource {
	return &ManifestSource{manifest: m}
}

func (s *ManifestSource) Sample(rng *rand.Rand, targetRate, origRate int) (*audio.Segment, error) {
	e, err := s.manifest.Sample(rng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCandidates, err)
	}

	seg, err := formats.ReadFile(e.AudioFilepath, audio.ReadOptions{
		TargetRate: targetRate,
		OrigRate:   origRate,
		Offset:     e.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("read noise %s: %w", e.AudioFilepath, err)
	}

	return seg, nil
}
