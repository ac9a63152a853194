// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/audperturb/utils"
)

// Resampler streams from src to a target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// A one-pole low-pass filter is applied to the input when downsampling.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source samples per output sample
	channels int

	// frames[1] and frames[2] bracket the current output position;
	// frames[0] and frames[3] are the outer spline taps.
	frames [4][]float32
	// real reports whether a slot holds a frame read from src rather
	// than a duplicated edge frame.
	real [4]bool

	pos    float64
	srcBuf []float32
	primed bool
	eof    bool

	lowPass     bool
	alpha       float32
	filterState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, channels),
		lowPass:     ratio > 1.0,
		alpha:       0.5,
		filterState: make([]float32, channels),
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("close resampler source: %w", err)
	}
	return nil
}

// readFrame reads one interleaved frame into dst. ok is false once src is drained.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	if r.eof {
		return false, nil
	}

	for {
		n, err := r.src.ReadSamples(r.srcBuf)
		if n > 0 {
			copy(dst, r.srcBuf[:n])
			if errors.Is(err, io.EOF) {
				r.eof = true
			} else if err != nil {
				return false, fmt.Errorf("read frame: %w", err)
			}
			r.filter(dst)
			return true, nil
		}

		if errors.Is(err, io.EOF) {
			r.eof = true
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("read frame: %w", err)
		}
	}
}

func (r *Resampler) filter(frame []float32) {
	if !r.lowPass {
		return
	}
	for c := range r.channels {
		frame[c] = r.alpha*frame[c] + (1-r.alpha)*r.filterState[c]
		r.filterState[c] = frame[c]
	}
}

func (r *Resampler) prime() error {
	r.primed = true

	// Seed the filter with the first frame to avoid a warm-up transient.
	lowPass := r.lowPass
	r.lowPass = false
	ok, err := r.readFrame(r.frames[1])
	r.lowPass = lowPass
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	copy(r.filterState, r.frames[1])
	r.real[1] = true

	copy(r.frames[0], r.frames[1])
	r.real[0] = false

	for slot := 2; slot < 4; slot++ {
		ok, err := r.readFrame(r.frames[slot])
		if err != nil {
			return err
		}
		if !ok {
			copy(r.frames[slot], r.frames[slot-1])
		}
		r.real[slot] = ok
	}

	return nil
}

func (r *Resampler) advance() error {
	first := r.frames[0]
	copy(r.frames[:3], r.frames[1:])
	copy(r.real[:3], r.real[1:])
	r.frames[3] = first

	ok, err := r.readFrame(r.frames[3])
	if err != nil {
		return err
	}
	if !ok {
		copy(r.frames[3], r.frames[2])
	}
	r.real[3] = ok

	return nil
}

// ReadSamples produces dst samples at the destination rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.real[1] {
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		base := written * r.channels
		for c := range r.channels {
			dst[base+c] = utils.CubicInterpolate(
				r.frames[0][c], r.frames[1][c], r.frames[2][c], r.frames[3][c], alpha)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}

// ResampleSamples converts mono samples from one rate to another with the
// streaming cubic Resampler. The result holds exactly round(len*to/from) samples.
func ResampleSamples(samples []float32, from, to int) ([]float32, error) {
	if from <= 0 || to <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if from == to || len(samples) == 0 {
		return append([]float32(nil), samples...), nil
	}

	want := int(math.Round(float64(len(samples)) * float64(to) / float64(from)))
	src, err := NewSliceSource(samples, from, 1)
	if err != nil {
		return nil, err
	}

	out, err := ReadAll(NewResampler(src, to), want)
	if err != nil {
		return nil, err
	}

	if len(out) > want {
		out = out[:want]
	}
	for len(out) < want {
		out = append(out, 0)
	}

	return out, nil
}
