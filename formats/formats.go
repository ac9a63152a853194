// SPDX-License-Identifier: EPL-2.0

// Package formats wires every codec subpackage into one decoder registry
// keyed by file extension.
package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/formats/aiff"
	"github.com/ik5/audperturb/formats/flac"
	"github.com/ik5/audperturb/formats/mp3"
	"github.com/ik5/audperturb/formats/vorbis"
	"github.com/ik5/audperturb/formats/wav"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

var defaultRegistry = sync.OnceValue(func() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("flac", flac.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	return reg
})

// Registry returns the process-wide decoder registry.
func Registry() *audio.Registry {
	return defaultRegistry()
}

// Supported reports whether name has an extension with a registered decoder.
func Supported(name string) bool {
	_, ok := Registry().Get(filepath.Ext(name))
	return ok
}

// Decode picks a decoder by the extension of name.
func Decode(name string, r io.Reader) (audio.Source, error) {
	ext := filepath.Ext(name)
	dec, ok := Registry().Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}

	src, err := dec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	return src, nil
}

// ReadBytes decodes an in-memory file into a Segment.
func ReadBytes(name string, data []byte, opts audio.ReadOptions) (*audio.Segment, error) {
	src, err := Decode(name, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer src.Close()

	seg, err := audio.ReadSegment(src, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return seg, nil
}

// ReadFile decodes the file at path into a Segment.
func ReadFile(path string, opts audio.ReadOptions) (*audio.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	src, err := Decode(path, f)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	seg, err := audio.ReadSegment(src, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return seg, nil
}
