// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/mewkiz/flac/frame"
)

type mockStream struct {
	frames []*frame.Frame
	closed bool
}

func (m *mockStream) ParseNext() (*frame.Frame, error) {
	if len(m.frames) == 0 {
		return nil, io.EOF
	}
	f := m.frames[0]
	m.frames = m.frames[1:]
	return f, nil
}

func (m *mockStream) Close() error { m.closed = true; return nil }

func stereoFrame(left, right []int32) *frame.Frame {
	f := &frame.Frame{
		Subframes: []*frame.Subframe{{Samples: left}, {Samples: right}},
	}
	f.BlockSize = uint16(len(left))
	return f
}

func TestSource_InterleavesFrames(t *testing.T) {
	t.Parallel()

	stream := &mockStream{frames: []*frame.Frame{
		stereoFrame([]int32{16384, 0}, []int32{-16384, 8192}),
		stereoFrame([]int32{32767}, []int32{0}),
	}}
	src := &source{stream: stream, sampleRate: 16000, channels: 2, scale: 32768}

	buf := make([]float32, 16)
	n, err := src.ReadSamples(buf)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("ReadSamples() error = %v, want io.EOF", err)
	}
	if n != 6 {
		t.Fatalf("ReadSamples() n = %d, want 6", n)
	}

	want := []float32{0.5, -0.5, 0, 0.25}
	for i, w := range want {
		if buf[i] != w {
			t.Errorf("buf[%d] = %v, want %v", i, buf[i], w)
		}
	}

	if err := src.Close(); err != nil || !stream.closed {
		t.Errorf("Close() = %v, closed = %v", err, stream.closed)
	}
}

func TestSource_PartialReads(t *testing.T) {
	t.Parallel()

	stream := &mockStream{frames: []*frame.Frame{
		stereoFrame([]int32{1, 2, 3}, []int32{4, 5, 6}),
	}}
	src := &source{stream: stream, sampleRate: 8000, channels: 2, scale: 1}

	buf := make([]float32, 4)
	if n, err := src.ReadSamples(buf); n != 4 || err != nil {
		t.Fatalf("first ReadSamples() = (%d, %v), want (4, nil)", n, err)
	}
	if n, err := src.ReadSamples(buf); n != 2 || !errors.Is(err, io.EOF) {
		t.Fatalf("second ReadSamples() = (%d, %v), want (2, EOF)", n, err)
	}
	if buf[0] != 3 || buf[1] != 6 {
		t.Errorf("tail = %v, want [3 6]", buf[:2])
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("fLaC-ish garbage"))); err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
}
