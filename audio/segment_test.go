// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"math"
	"testing"
)

func TestNewSegment_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewSegment(nil, 16000); !errors.Is(err, ErrEmptySegment) {
		t.Errorf("NewSegment(nil) error = %v, want ErrEmptySegment", err)
	}
	if _, err := NewSegment([]float32{1}, 0); !errors.Is(err, ErrInvalidSampleRate) {
		t.Errorf("NewSegment(rate=0) error = %v, want ErrInvalidSampleRate", err)
	}
}

func TestSegment_Properties(t *testing.T) {
	t.Parallel()

	seg, err := NewSegment([]float32{0.5, -0.5, 0.5, -0.5}, 4)
	if err != nil {
		t.Fatalf("NewSegment() error = %v", err)
	}

	if seg.Duration() != 1 {
		t.Errorf("Duration() = %v, want 1", seg.Duration())
	}
	if want := 20 * math.Log10(0.5); math.Abs(seg.RMSDB()-want) > 1e-9 {
		t.Errorf("RMSDB() = %v, want %v", seg.RMSDB(), want)
	}

	silent, _ := NewSegment(make([]float32, 8), 8000)
	if !math.IsInf(silent.RMSDB(), -1) {
		t.Errorf("RMSDB(silence) = %v, want -Inf", silent.RMSDB())
	}
}

func TestSegment_GainDB(t *testing.T) {
	t.Parallel()

	seg, _ := NewSegment([]float32{1, 1, 1}, 8000)
	seg.GainDB(0)
	for i, v := range seg.Samples() {
		if v != 1 {
			t.Errorf("after GainDB(0) sample[%d] = %v, want 1", i, v)
		}
	}

	seg.GainDB(-6)
	for i, v := range seg.Samples() {
		if math.Abs(float64(v)-0.501187) > 1e-5 {
			t.Errorf("after GainDB(-6) sample[%d] = %v, want ≈0.5012", i, v)
		}
	}
}

func TestSegment_CloneIsDeep(t *testing.T) {
	t.Parallel()

	seg, _ := NewSegment([]float32{1, 2, 3}, 8000)
	c := seg.Clone()
	c.Samples()[0] = 9

	if seg.Samples()[0] != 1 {
		t.Error("Clone() shares the sample buffer")
	}
}

func TestSegment_Subsegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		start, end float64
		want       int
		first      float32
	}{
		{name: "middle", start: 0.2, end: 0.5, want: 3, first: 2},
		{name: "to end", start: 0.5, end: 0, want: 5, first: 5},
		{name: "negative start", start: -0.3, end: 0, want: 3, first: 7},
		{name: "inverted range is ignored", start: 0.6, end: 0.2, want: 10, first: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			samples := make([]float32, 10)
			for i := range samples {
				samples[i] = float32(i)
			}
			seg, _ := NewSegment(samples, 10)
			seg.Subsegment(tt.start, tt.end)

			if seg.NumSamples() != tt.want {
				t.Fatalf("NumSamples() = %d, want %d", seg.NumSamples(), tt.want)
			}
			if seg.Samples()[0] != tt.first {
				t.Errorf("first sample = %v, want %v", seg.Samples()[0], tt.first)
			}
		})
	}
}
