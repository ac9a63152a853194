// SPDX-License-Identifier: EPL-2.0

package audperturb

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/augment"
	"github.com/ik5/audperturb/formats"
	"github.com/ik5/audperturb/formats/wav"
	"github.com/ik5/audperturb/utils"
)

// AugmentReader decodes r, picking the decoder from the extension of name,
// and runs aug over the result. opts.OrigRate is passed on to the
// perturbations.
func AugmentReader(name string, r io.Reader, aug *augment.Augmentor, opts audio.ReadOptions) (*audio.Segment, error) {
	src, err := formats.Decode(name, r)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	seg, err := audio.ReadSegment(src, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	if err := aug.Perturb(seg, opts.OrigRate); err != nil {
		return nil, fmt.Errorf("augment %s: %w", name, err)
	}

	return seg, nil
}

// AugmentFile augments the audio file in and writes it to out as mono
// 16-bit WAV.
func AugmentFile(in, out string, aug *augment.Augmentor, opts audio.ReadOptions) (err error) {
	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	seg, err := AugmentReader(in, f, aug, opts)
	if err != nil {
		return err
	}

	dst, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		err = errors.Join(err, dst.Close())
	}()

	if err := wav.WriteSegment(dst, seg); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	return nil
}

// ToMono16 converts a segment to 16-bit PCM, clamping out-of-range
// samples. dst is reused when large enough.
func ToMono16(dst []int16, seg *audio.Segment) []int16 {
	return utils.SamplesToInt16(dst, seg.Samples())
}
