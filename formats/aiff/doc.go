// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF audio using github.com/go-audio/aiff.
//
// Integer PCM at 8, 16, 24 and 32 bits is supported. Non-seekable readers
// are buffered in memory because go-audio walks the chunk list with Seek.
//
//	src, err := aiff.Decoder{}.Decode(file)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    // not an AIFF container
//	}
package aiff
