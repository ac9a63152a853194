// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 audio with github.com/hajimehoshi/go-mp3.
//
// go-mp3 always emits interleaved 16-bit stereo; the Source reports two
// channels and audio.ReadSegment folds them down to mono:
//
//	src, err := mp3.Decoder{}.Decode(file)
//	seg, err := audio.ReadSegment(src, audio.ReadOptions{TargetRate: 16000})
//
// Encoding is not supported.
package mp3
