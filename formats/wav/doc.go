// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes WAV files using github.com/go-audio/wav.
//
// The decoder accepts integer PCM at 8, 16, 24 or 32 bits, any channel count
// and any chunk layout go-audio can walk (LIST/fact chunks before "data" are
// fine). Floating point WAV is rejected with ErrOnlyPCMSupported.
//
//	src, err := wav.Decoder{}.Decode(file)
//	seg, err := audio.ReadSegment(src, audio.ReadOptions{TargetRate: 16000})
//
// WriteSegment stores an augmented segment as mono 16-bit PCM:
//
//	out, _ := os.Create("augmented.wav")
//	defer out.Close()
//	err := wav.WriteSegment(out, seg)
package wav
