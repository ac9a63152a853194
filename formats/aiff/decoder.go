// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/formats/internal/pcm"
)

type Decoder struct{}

// Decode validates the FORM/AIFF container and returns a Source over its
// sound data. go-audio requires an io.ReadSeeker, so other readers are
// buffered in memory.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil || format.NumChannels == 0 || format.SampleRate == 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	// AIFF stores 8-bit samples signed, unlike WAV.
	src, err := pcm.NewIntSource(dec, format.SampleRate, format.NumChannels, int(dec.BitDepth), false)
	if err != nil {
		return nil, fmt.Errorf("aiff: %w", err)
	}

	return src, nil
}
