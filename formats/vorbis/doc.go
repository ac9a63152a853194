// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio with github.com/jfreymuth/oggvorbis.
//
//	src, err := vorbis.Decoder{}.Decode(file)
//	seg, err := audio.ReadSegment(src, audio.ReadOptions{TargetRate: 16000})
//
// Samples are already float32 in [-1, 1]; channel count follows the stream.
package vorbis
