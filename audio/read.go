// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
)

// ReadOptions controls how a Source is turned into a Segment.
type ReadOptions struct {
	// TargetRate is the sample rate of the resulting segment; zero keeps
	// the source rate.
	TargetRate int
	// OrigRate, when set and different from the source rate, makes the audio
	// pass through that rate first. Used to imitate band-limited recordings.
	OrigRate int
	// Offset skips this many seconds from the start.
	Offset float64
	// Duration limits the read to this many seconds; zero reads to the end.
	Duration float64
}

// ReadSegment drains src, mixes it down to mono and converts it according
// to opts. The source is not closed.
func ReadSegment(src Source, opts ReadOptions) (*Segment, error) {
	rate := src.SampleRate()
	if rate <= 0 {
		return nil, ErrInvalidSampleRate
	}

	samples, err := ReadAll(NewMonoMixer(src), 0)
	if err != nil {
		return nil, fmt.Errorf("decode segment: %w", err)
	}

	if opts.Offset > 0 || opts.Duration > 0 {
		start := int(math.Round(opts.Offset * float64(rate)))
		if start >= len(samples) {
			return nil, fmt.Errorf("%w: offset %.3fs, audio %.3fs",
				ErrOffsetOutOfRange, opts.Offset, float64(len(samples))/float64(rate))
		}
		end := len(samples)
		if opts.Duration > 0 {
			end = min(end, start+int(math.Round(opts.Duration*float64(rate))))
		}
		samples = samples[start:end]
	}

	if opts.OrigRate > 0 && opts.OrigRate != rate {
		if samples, err = ResampleSamples(samples, rate, opts.OrigRate); err != nil {
			return nil, err
		}
		rate = opts.OrigRate
	}

	if opts.TargetRate > 0 && opts.TargetRate != rate {
		if samples, err = ResampleSamples(samples, rate, opts.TargetRate); err != nil {
			return nil, err
		}
		rate = opts.TargetRate
	}

	return NewSegment(samples, rate)
}
