// SPDX-License-Identifier: EPL-2.0

package noise

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/formats"
	"github.com/ik5/audperturb/metrics"
	"github.com/ik5/audperturb/shard"
)

// StreamSource caches one full pass of a shard stream. The cache is filled
// at most once; a StreamSource must not be shared between goroutines
// before that first fill completes. Give each worker its own instance.
type StreamSource struct {
	stream  *shard.Stream
	logger  *slog.Logger
	metrics *metrics.Metrics

	cache     []*audio.Segment
	populated bool
}

func NewStreamSource(stream *shard.Stream, logger *slog.Logger, m *metrics.Metrics) *StreamSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamSource{stream: stream, logger: logger, metrics: m}
}

// AllData drains the rest of the stream's current pass, decoding every
// record at targetRate (through origRate when set), and caches the result.
// Later calls return the same slice whatever rates they pass. Records that
// fail to decode are logged and left out.
func (s *StreamSource) AllData(targetRate, origRate int) ([]*audio.Segment, error) {
	if s.populated {
		return s.cache, nil
	}

	var cache []*audio.Segment
	silent := 0
	for {
		r, err := s.stream.NextInPass()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("drain noise stream: %w", err)
		}

		seg, err := formats.ReadBytes(r.Name, r.Data, audio.ReadOptions{
			TargetRate: targetRate,
			OrigRate:   origRate,
		})
		if err != nil {
			s.logger.Warn("skipping undecodable noise record",
				"file_id", r.FileID,
				"member", r.Name,
				"error", err,
			)
			continue
		}

		if math.IsInf(seg.RMSDB(), -1) {
			silent++
			s.logger.Info("silent noise candidate", "file_id", r.FileID)
		}
		cache = append(cache, seg)
	}

	s.cache = cache
	s.populated = true
	s.metrics.NoiseCached(len(cache), silent)
	s.logger.Debug("noise cache populated",
		"candidates", len(cache),
		"silent", silent,
		"sample_rate", targetRate,
	)

	return s.cache, nil
}

// Sample returns a copy of a uniformly chosen cached segment, resampled
// when the cache was built at another rate.
func (s *StreamSource) Sample(rng *rand.Rand, targetRate, origRate int) (*audio.Segment, error) {
	cache, err := s.AllData(targetRate, origRate)
	if err != nil {
		return nil, err
	}
	if len(cache) == 0 {
		return nil, ErrNoCandidates
	}

	seg := cache[rng.IntN(len(cache))].Clone()
	if targetRate > 0 && seg.SampleRate() != targetRate {
		samples, err := audio.ResampleSamples(seg.Samples(), seg.SampleRate(), targetRate)
		if err != nil {
			return nil, fmt.Errorf("resample cached noise: %w", err)
		}
		return audio.NewSegment(samples, targetRate)
	}

	return seg, nil
}

// Close releases the underlying stream.
func (s *StreamSource) Close() error {
	return s.stream.Close()
}
