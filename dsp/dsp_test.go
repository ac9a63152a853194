// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

func sine(n int, freq, rate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}
	return out
}

func TestHann(t *testing.T) {
	t.Parallel()

	w := Hann(8)
	if w[0] != 0 {
		t.Errorf("Hann(8)[0] = %v, want 0", w[0])
	}
	if math.Abs(w[4]-1) > 1e-12 {
		t.Errorf("Hann(8)[4] = %v, want 1", w[4])
	}
	// Periodic: w[i] == w[n-i].
	for i := 1; i < 8; i++ {
		if math.Abs(w[i]-w[8-i]) > 1e-12 {
			t.Errorf("Hann(8)[%d] = %v, want %v", i, w[i], w[8-i])
		}
	}
}

func TestNextPow2(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want int }{{0, 1}, {1, 1}, {2, 2}, {3, 4}, {1000, 1024}, {1024, 1024}}
	for _, tt := range tests {
		if got := NextPow2(tt.in); got != tt.want {
			t.Errorf("NextPow2(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSTFT_FrameCount(t *testing.T) {
	t.Parallel()

	spec, err := STFT(make([]float64, 1000), 256, 128)
	if err != nil {
		t.Fatalf("STFT() error = %v", err)
	}
	if len(spec) != 1+1000/128 {
		t.Errorf("len(STFT()) = %d, want %d", len(spec), 1+1000/128)
	}
	if len(spec[0]) != 129 {
		t.Errorf("bins = %d, want 129", len(spec[0]))
	}
}

func TestSTFT_InvalidParams(t *testing.T) {
	t.Parallel()

	if _, err := STFT(nil, 255, 128); !errors.Is(err, ErrInvalidFFTSize) {
		t.Errorf("STFT(odd nFFT) error = %v, want ErrInvalidFFTSize", err)
	}
	if _, err := STFT(nil, 256, 0); !errors.Is(err, ErrInvalidHop) {
		t.Errorf("STFT(hop 0) error = %v, want ErrInvalidHop", err)
	}
}

func TestISTFT_Reconstructs(t *testing.T) {
	t.Parallel()

	for _, hop := range []int{128, 64} {
		x := sine(4000, 440, 16000)
		spec, err := STFT(x, 256, hop)
		if err != nil {
			t.Fatalf("STFT() error = %v", err)
		}
		y, err := ISTFT(spec, 256, hop, len(x))
		if err != nil {
			t.Fatalf("ISTFT() error = %v", err)
		}
		if len(y) != len(x) {
			t.Fatalf("len(ISTFT()) = %d, want %d", len(y), len(x))
		}
		for i := 256; i < len(x)-256; i++ {
			if math.Abs(y[i]-x[i]) > 1e-6 {
				t.Fatalf("hop %d: y[%d] = %v, want %v", hop, i, y[i], x[i])
			}
		}
	}
}

func TestISTFT_FixedLength(t *testing.T) {
	t.Parallel()

	spec, _ := STFT(sine(1000, 100, 8000), 128, 64)
	for _, length := range []int{10, 1000, 5000} {
		y, err := ISTFT(spec, 128, 64, length)
		if err != nil {
			t.Fatalf("ISTFT() error = %v", err)
		}
		if len(y) != length {
			t.Errorf("len(ISTFT(length=%d)) = %d", length, len(y))
		}
	}
}

func TestPhaseVocoder_RateOneIsIdentity(t *testing.T) {
	t.Parallel()

	spec, _ := STFT(sine(2048, 300, 8000), 256, 128)
	out := PhaseVocoder(spec, 1, PhaseAdvance(128, 256))
	if len(out) != len(spec) {
		t.Fatalf("len(PhaseVocoder()) = %d, want %d", len(out), len(spec))
	}
	for ti := range spec {
		for k := range spec[ti] {
			if cmplx.Abs(out[ti][k]-spec[ti][k]) > 1e-6*(1+cmplx.Abs(spec[ti][k])) {
				t.Fatalf("frame %d bin %d = %v, want %v", ti, k, out[ti][k], spec[ti][k])
			}
		}
	}
}

func TestPhaseVocoder_FrameCount(t *testing.T) {
	t.Parallel()

	spec, _ := STFT(sine(4096, 300, 8000), 256, 128)
	tests := []struct {
		rate float64
		want int
	}{
		{2, (len(spec) + 1) / 2},
		{0.5, 2 * len(spec)},
	}
	for _, tt := range tests {
		if got := len(PhaseVocoder(spec, tt.rate, PhaseAdvance(128, 256))); got != tt.want {
			t.Errorf("len(PhaseVocoder(rate=%v)) = %d, want %d", tt.rate, got, tt.want)
		}
	}
}

func TestFFTConvolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []float64
		want []float64
	}{
		{"delta", []float64{1, 2, 3}, []float64{1}, []float64{1, 2, 3}},
		{"delayed delta", []float64{1, 2, 3}, []float64{0, 1}, []float64{0, 1, 2, 3}},
		{"mixed", []float64{1, 2, 3}, []float64{0, 1, 0.5}, []float64{0, 1, 2.5, 4, 1.5}},
		{"empty", nil, []float64{1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FFTConvolve(tt.a, tt.b)
			if len(got) != len(tt.want) {
				t.Fatalf("len(FFTConvolve()) = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("FFTConvolve()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResampleFFT_Length(t *testing.T) {
	t.Parallel()

	x := sine(1000, 50, 8000)
	for _, num := range []int{500, 999, 1000, 1500, 2001} {
		if got := len(ResampleFFT(x, num)); got != num {
			t.Errorf("len(ResampleFFT(x, %d)) = %d", num, got)
		}
	}
	if got := ResampleFFT(nil, 10); got != nil {
		t.Errorf("ResampleFFT(nil) = %v, want nil", got)
	}
}

func TestResampleFFT_Constant(t *testing.T) {
	t.Parallel()

	x := make([]float64, 100)
	for i := range x {
		x[i] = 0.25
	}
	for _, num := range []int{50, 160} {
		for i, v := range ResampleFFT(x, num) {
			if math.Abs(v-0.25) > 1e-9 {
				t.Fatalf("ResampleFFT(const, %d)[%d] = %v, want 0.25", num, i, v)
			}
		}
	}
}

func TestResampleFFT_PeriodicSine(t *testing.T) {
	t.Parallel()

	// Four whole cycles so the signal is exactly periodic.
	x := sine(400, 4, 400)
	y := ResampleFFT(x, 800)
	want := sine(800, 4, 800)
	for i := range y {
		if math.Abs(y[i]-want[i]) > 1e-9 {
			t.Fatalf("ResampleFFT()[%d] = %v, want %v", i, y[i], want[i])
		}
	}
}

func BenchmarkSTFT(b *testing.B) {
	x := sine(16000, 440, 16000)
	b.ReportAllocs()
	for b.Loop() {
		_, _ = STFT(x, 512, 256)
	}
}

func BenchmarkFFTConvolve(b *testing.B) {
	x := sine(16000, 440, 16000)
	ir := sine(4000, 1000, 16000)
	b.ReportAllocs()
	for b.Loop() {
		_ = FFTConvolve(x, ir)
	}
}
