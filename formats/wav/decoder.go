// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"
	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/formats/internal/pcm"
)

const formatPCM = 1

type Decoder struct{}

// Decode parses the RIFF chunks of r and returns a Source positioned at the
// start of the PCM data. go-audio needs to seek, so non-seekable readers are
// buffered in memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	if dec.WavAudioFormat != formatPCM {
		return nil, fmt.Errorf("%w: format tag %d", ErrOnlyPCMSupported, dec.WavAudioFormat)
	}
	if dec.Format() == nil {
		return nil, ErrUnsupportedWavLayout
	}

	src, err := pcm.NewIntSource(dec, int(dec.SampleRate), int(dec.NumChans), int(dec.BitDepth), true)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}

	return src, nil
}
