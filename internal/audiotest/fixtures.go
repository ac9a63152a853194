// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"archive/tar"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WAV16 builds a canonical mono 16-bit PCM WAV file from float samples.
func WAV16(sampleRate int, samples []float32) []byte {
	buf := new(bytes.Buffer)
	dataSize := uint32(len(samples) * 2)

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate*2))
	_ = binary.Write(buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataSize)
	for _, s := range samples {
		s = max(-1, min(1, s))
		_ = binary.Write(buf, binary.LittleEndian, int16(s*32767))
	}

	return buf.Bytes()
}

// Constant returns n samples set to v.
func Constant(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// TarMember is one file inside a test archive.
type TarMember struct {
	Name string
	Data []byte
}

// Tar packs members into an uncompressed tar archive in the given order.
func Tar(t testing.TB, members ...TarMember) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	tw := tar.NewWriter(buf)
	for _, m := range members {
		hdr := &tar.Header{Name: m.Name, Mode: 0o644, Size: int64(len(m.Data)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write tar header: %v", err)
		}
		if _, err := tw.Write(m.Data); err != nil {
			t.Fatalf("write tar data: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}

	return buf.Bytes()
}

// WriteFile writes data under dir and returns the full path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}

// ManifestLine is the JSON shape of one manifest record.
type ManifestLine struct {
	AudioFilepath string  `json:"audio_filepath"`
	Duration      float64 `json:"duration"`
	Offset        float64 `json:"offset,omitempty"`
	Text          string  `json:"text,omitempty"`
}

// WriteManifest writes a JSON-lines manifest and returns its path.
func WriteManifest(t testing.TB, dir, name string, lines ...ManifestLine) string {
	t.Helper()

	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	for _, l := range lines {
		if err := enc.Encode(l); err != nil {
			t.Fatalf("encode manifest line: %v", err)
		}
	}

	return WriteFile(t, dir, name, buf.Bytes())
}
