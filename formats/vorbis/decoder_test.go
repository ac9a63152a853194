// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

type mockOggReader struct {
	channels int
	values   []float32
}

func (m *mockOggReader) SampleRate() int { return 48000 }
func (m *mockOggReader) Channels() int   { return m.channels }

func (m *mockOggReader) Read(p []float32) (int, error) {
	if len(m.values) == 0 {
		return 0, io.EOF
	}
	n := copy(p, m.values)
	m.values = m.values[n:]
	return n, nil
}

func TestSource_ReadsWholeFrames(t *testing.T) {
	t.Parallel()

	src := newSource(&mockOggReader{channels: 2, values: []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}})

	buf := make([]float32, 5)
	n, err := src.ReadSamples(buf)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 4 {
		t.Errorf("ReadSamples() n = %d, want 4 (two whole stereo frames)", n)
	}

	n, _ = src.ReadSamples(buf)
	if n != 2 || buf[0] != 0.5 {
		t.Errorf("second read = %d values starting %v, want 2 starting 0.5", n, buf[0])
	}

	if _, err := src.ReadSamples(buf); !errors.Is(err, io.EOF) {
		t.Errorf("final ReadSamples() error = %v, want io.EOF", err)
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("OggS but not really"))); err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
}
