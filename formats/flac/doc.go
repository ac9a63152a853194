// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC audio using github.com/mewkiz/flac.
//
// Frames are parsed lazily and converted to float32 by the stream's own bit
// depth, so 16- and 24-bit files both land in [-1, 1]. Noise and impulse
// response corpora are commonly distributed as FLAC.
//
//	src, err := flac.Decoder{}.Decode(file)
//	defer src.Close()
package flac
