// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/utils"
)

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate. The encoder
// patches the RIFF sizes on Close, hence the io.WriteSeeker.
func WriteWAV16(w io.WriteSeeker, sampleRate int, samples []int16) error {
	enc := gowav.NewEncoder(w, sampleRate, 16, 1, formatPCM)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}

	return nil
}

// WriteSegment clamps seg to [-1, 1] and writes it as 16-bit PCM.
func WriteSegment(w io.WriteSeeker, seg *audio.Segment) error {
	return WriteWAV16(w, seg.SampleRate(), utils.SamplesToInt16(nil, seg.Samples()))
}
