// SPDX-License-Identifier: EPL-2.0

package perturb

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/internal/audiotest"
)

func ptr[T any](v T) *T { return &v }

func testRand() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func newSeg(t testing.TB, samples []float32, rate int) *audio.Segment {
	t.Helper()

	seg, err := audio.NewSegment(samples, rate)
	if err != nil {
		t.Fatalf("NewSegment() error = %v", err)
	}
	return seg
}

func sine(n, rate int, freq float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func TestGain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		db   float64
		want float64
	}{
		{"identity", 0, 1},
		{"minus six", -6, 0.501187},
		{"plus six", 6, 1.995262},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			seg := newSeg(t, audiotest.Constant(16, 1), 16000)
			g := NewGain(GainOptions{MinGainDBFS: tt.db, MaxGainDBFS: tt.db}, testRand())
			if err := g.Perturb(seg, 0); err != nil {
				t.Fatalf("Perturb() error = %v", err)
			}
			for i, v := range seg.Samples() {
				if math.Abs(float64(v)-tt.want) > 1e-5 {
					t.Errorf("sample[%d] = %v, want %v", i, v, tt.want)
				}
			}
		})
	}
}

func TestGain_SeedIsDeterministic(t *testing.T) {
	t.Parallel()

	opts := DefaultGainOptions()
	opts.Seed = ptr[uint64](7)

	a, b := newSeg(t, audiotest.Constant(4, 1), 8000), newSeg(t, audiotest.Constant(4, 1), 8000)
	_ = NewGain(opts, nil).Perturb(a, 0)
	_ = NewGain(opts, nil).Perturb(b, 0)

	if a.Samples()[0] != b.Samples()[0] {
		t.Errorf("seeded gains differ: %v vs %v", a.Samples()[0], b.Samples()[0])
	}
}

func TestShift(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ms    float64
		input []float32
		want  []float32
	}{
		{
			name:  "positive moves towards start",
			ms:    5,
			input: audiotest.Constant(10, 1),
			want:  []float32{1, 1, 1, 1, 1, 0, 0, 0, 0, 0},
		},
		{
			name:  "negative moves towards end",
			ms:    -3,
			input: []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			want:  []float32{0, 0, 0, 1, 2, 3, 4, 5, 6, 7},
		},
		{
			name:  "longer than segment is skipped",
			ms:    11,
			input: []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			want:  []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
		{
			name:  "zero",
			ms:    0,
			input: []float32{1, 2, 3},
			want:  []float32{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			seg := newSeg(t, tt.input, 1000)
			s := NewShift(ShiftOptions{MinShiftMS: tt.ms, MaxShiftMS: tt.ms}, testRand())
			if err := s.Perturb(seg, 0); err != nil {
				t.Fatalf("Perturb() error = %v", err)
			}

			got := seg.Samples()
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Perturb() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestWhiteNoise_Level(t *testing.T) {
	t.Parallel()

	w := NewWhiteNoise(WhiteNoiseOptions{MinLevel: -90, MaxLevel: -46}, testRand())
	for range 1000 {
		if l := w.level(); l < -90 || l >= -46 {
			t.Fatalf("level() = %d, want in [-90, -46)", l)
		}
	}

	fixed := NewWhiteNoise(WhiteNoiseOptions{MinLevel: -40, MaxLevel: -40}, testRand())
	if l := fixed.level(); l != -40 {
		t.Errorf("level() with equal bounds = %d, want -40", l)
	}
}

func TestWhiteNoise_Amplitude(t *testing.T) {
	t.Parallel()

	seg := newSeg(t, make([]float32, 20000), 16000)
	w := NewWhiteNoise(WhiteNoiseOptions{MinLevel: -40, MaxLevel: -40}, testRand())
	if err := w.Perturb(seg, 0); err != nil {
		t.Fatalf("Perturb() error = %v", err)
	}

	if got := seg.RMSDB(); math.Abs(got-(-40)) > 0.5 {
		t.Errorf("RMSDB() = %v, want ≈-40", got)
	}
}

func TestSpeed_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*SpeedOptions)
		wantErr error
	}{
		{"bad resample type", func(o *SpeedOptions) { o.ResampleType = "sinc" }, ErrUnsupportedResampleType},
		{"min above max", func(o *SpeedOptions) { o.MinSpeedRate = 1.2 }, ErrInvalidRate},
		{"non-positive min", func(o *SpeedOptions) { o.MinSpeedRate = 0 }, ErrInvalidRate},
		{"negative sr", func(o *SpeedOptions) { o.SR = -1 }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := DefaultSpeedOptions()
			tt.mutate(&opts)
			if _, err := NewSpeed(opts, nil); !errors.Is(err, tt.wantErr) {
				t.Errorf("NewSpeed() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSpeed_Length(t *testing.T) {
	t.Parallel()

	for _, resample := range []string{ResampleKaiserBest, ResampleKaiserFast, ResampleFFT, ResampleScipy} {
		t.Run(resample, func(t *testing.T) {
			t.Parallel()

			s, err := NewSpeed(SpeedOptions{
				ResampleType: resample,
				MinSpeedRate: 1.5,
				MaxSpeedRate: 1.5,
			}, testRand())
			if err != nil {
				t.Fatalf("NewSpeed() error = %v", err)
			}

			seg := newSeg(t, sine(1000, 1000, 50), 1000)
			if err := s.Perturb(seg, 0); err != nil {
				t.Fatalf("Perturb() error = %v", err)
			}
			if seg.NumSamples() != 1500 {
				t.Errorf("NumSamples() = %d, want 1500", seg.NumSamples())
			}
			if seg.SampleRate() != 1000 {
				t.Errorf("SampleRate() = %d, want unchanged 1000", seg.SampleRate())
			}
		})
	}
}

func TestRateOneIsIdentity(t *testing.T) {
	t.Parallel()

	speed, err := NewSpeed(SpeedOptions{ResampleType: ResampleFFT, MinSpeedRate: 1, MaxSpeedRate: 1, NumRates: 5}, testRand())
	if err != nil {
		t.Fatalf("NewSpeed() error = %v", err)
	}
	stretch, err := NewTimeStretch(TimeStretchOptions{MinSpeedRate: 1, MaxSpeedRate: 1, NumRates: 3, NFFT: 512}, testRand())
	if err != nil {
		t.Fatalf("NewTimeStretch() error = %v", err)
	}

	for _, p := range []Perturbation{speed, stretch} {
		input := sine(800, 8000, 440)
		seg := newSeg(t, append([]float32(nil), input...), 8000)
		if err := p.Perturb(seg, 0); err != nil {
			t.Fatalf("%T.Perturb() error = %v", p, err)
		}
		got := seg.Samples()
		if len(got) != len(input) {
			t.Fatalf("%T: len = %d, want %d", p, len(got), len(input))
		}
		for i := range got {
			if got[i] != input[i] {
				t.Errorf("%T: sample[%d] = %v, want %v", p, i, got[i], input[i])
				break
			}
		}
	}
}

func TestTimeStretch_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate float64
		want int
	}{
		{2, 2000},
		{0.5, 8000},
		{1.25, 3200},
	}

	for _, tt := range tests {
		ts, err := NewTimeStretch(TimeStretchOptions{MinSpeedRate: tt.rate, MaxSpeedRate: tt.rate, NFFT: 512}, testRand())
		if err != nil {
			t.Fatalf("NewTimeStretch() error = %v", err)
		}

		seg := newSeg(t, sine(4000, 16000, 300), 16000)
		if err := ts.Perturb(seg, 0); err != nil {
			t.Fatalf("Perturb() error = %v", err)
		}
		if seg.NumSamples() != tt.want {
			t.Errorf("rate %v: NumSamples() = %d, want %d", tt.rate, seg.NumSamples(), tt.want)
		}
		for i, v := range seg.Samples() {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Fatalf("rate %v: sample[%d] = %v", tt.rate, i, v)
			}
		}
	}
}

func TestTimeStretch_InvalidFFTSize(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -2, 511} {
		opts := DefaultTimeStretchOptions()
		opts.NFFT = n
		if _, err := NewTimeStretch(opts, nil); !errors.Is(err, ErrInvalidFFTSize) {
			t.Errorf("NewTimeStretch(n_fft=%d) error = %v, want ErrInvalidFFTSize", n, err)
		}
	}
}

func TestMaxAugmentationLength(t *testing.T) {
	t.Parallel()

	speed, _ := NewSpeed(DefaultSpeedOptions(), nil)
	stretch, _ := NewTimeStretch(DefaultTimeStretchOptions(), nil)

	tests := []struct {
		name string
		p    Perturbation
		want float64
	}{
		{"speed", speed, 11},
		{"time stretch", stretch, 11},
		{"gain", NewGain(DefaultGainOptions(), nil), 10},
		{"shift", NewShift(DefaultShiftOptions(), nil), 10},
	}

	for _, tt := range tests {
		if got := tt.p.MaxAugmentationLength(10); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s MaxAugmentationLength(10) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func BenchmarkTimeStretch(b *testing.B) {
	ts, _ := NewTimeStretch(TimeStretchOptions{MinSpeedRate: 0.9, MaxSpeedRate: 1.1, NFFT: 512}, testRand())
	input := sine(16000, 16000, 440)

	b.ReportAllocs()
	for b.Loop() {
		seg, _ := audio.NewSegment(append([]float32(nil), input...), 16000)
		_ = ts.Perturb(seg, 0)
	}
}
