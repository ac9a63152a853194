// SPDX-License-Identifier: EPL-2.0

package shard

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/ik5/audperturb/manifest"
	"github.com/ik5/audperturb/metrics"
)

// State is the position of a Stream in its pass cycle.
type State int

const (
	// Active means records of the current pass may still follow.
	Active State = iota
	// ExhaustedPendingRestart means the last pass ended; the next read
	// starts a new one from the first shard.
	ExhaustedPendingRestart
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case ExhaustedPendingRestart:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a Stream.
type Option func(*Stream)

// WithWorker partitions the shards for w instead of the identity found in
// the environment.
func WithWorker(w Worker) Option {
	return func(s *Stream) { s.worker = w; s.workerSet = true }
}

// WithShardsPerWorker sets how many shards each distributed worker reads.
// The default is 1.
func WithShardsPerWorker(n int) Option {
	return func(s *Stream) { s.perWorker = n }
}

// WithShuffle puts a shuffle buffer of n records in front of the manifest
// filter. n <= 1 disables shuffling. A nil rng is seeded from entropy.
func WithShuffle(n int, rng *rand.Rand) Option {
	return func(s *Stream) { s.shuffleN = n; s.rng = rng }
}

// WithOpener replaces os.Open for reading shards.
func WithOpener(open Opener) Option {
	return func(s *Stream) { s.open = open }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Stream) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Stream) { s.metrics = m }
}

// Stream is an endless, restartable sequence of audio records read from a
// set of tar shards and filtered against a manifest. Next cycles forever;
// NextInPass exposes pass boundaries. A Stream is not safe for concurrent
// use.
type Stream struct {
	manifest  *manifest.Manifest
	shards    []string
	worker    Worker
	workerSet bool
	perWorker int
	shuffleN  int
	rng       *rand.Rand
	open      Opener
	logger    *slog.Logger
	metrics   *metrics.Metrics

	state  State
	iter   recordReader
	passes int
	closed bool
}

// NewStream partitions shards for the current worker and prepares a
// stream over them. Records whose file id is not in m are skipped; a nil
// m accepts every record. No shard is opened until the first read.
func NewStream(m *manifest.Manifest, shards []string, opts ...Option) (*Stream, error) {
	s := &Stream{
		manifest:  m,
		perWorker: 1,
		open:      openFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if !s.workerSet {
		w, err := WorkerFromEnv()
		if err != nil {
			return nil, err
		}
		s.worker = w
	}
	if err := s.worker.Validate(); err != nil {
		return nil, err
	}

	if len(shards) == 0 {
		return nil, ErrNoShards
	}
	s.shards = Partition(shards, s.worker, s.perWorker, s.logger)

	if s.shuffleN > 1 && s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return s, nil
}

// Shards returns the shards this stream reads, after partitioning.
func (s *Stream) Shards() []string { return s.shards }

func (s *Stream) State() State { return s.state }

// Passes counts the passes that ran to completion.
func (s *Stream) Passes() int { return s.passes }

// Next returns the next record, wrapping around to a new pass when the
// current one ends, so callers never see end-of-stream. It fails with
// ErrNoRecords when a whole fresh pass yields nothing.
func (s *Stream) Next() (Record, error) {
	restarted := false
	for {
		r, err := s.NextInPass()
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, io.EOF) {
			return Record{}, err
		}
		if restarted {
			return Record{}, ErrNoRecords
		}
		restarted = true
	}
}

// NextInPass returns the next record of the current pass. When the pass
// ends it returns io.EOF exactly once and moves to
// ExhaustedPendingRestart; the following call starts a new pass.
func (s *Stream) NextInPass() (Record, error) {
	if s.closed {
		return Record{}, ErrStreamClosed
	}
	if s.iter == nil || s.state == ExhaustedPendingRestart {
		s.startPass()
	}

	for {
		r, err := s.iter.next()
		if errors.Is(err, io.EOF) {
			s.endPass()
			return Record{}, io.EOF
		}
		if err != nil {
			s.metrics.ShardFailed()
			return Record{}, err
		}

		s.metrics.RecordRead()
		if s.manifest != nil && !s.manifest.Contains(r.FileID) {
			s.metrics.RecordFiltered()
			continue
		}
		return r, nil
	}
}

func (s *Stream) startPass() {
	if s.iter != nil {
		_ = s.iter.Close()
		s.metrics.PassRestarted()
		s.logger.Debug("shard stream restarting", "passes", s.passes, "shards", len(s.shards))
	}

	var it recordReader = newTarReader(s.shards, s.open)
	if s.shuffleN > 1 {
		it = &shuffler{src: it, size: s.shuffleN, rng: s.rng}
	}
	s.iter = it
	s.state = Active
}

func (s *Stream) endPass() {
	s.passes++
	s.state = ExhaustedPendingRestart
}

// Close releases the open shard. Further reads fail with ErrStreamClosed.
func (s *Stream) Close() error {
	s.closed = true
	if s.iter == nil {
		return nil
	}
	if err := s.iter.Close(); err != nil {
		return fmt.Errorf("close shard stream: %w", err)
	}
	return nil
}
