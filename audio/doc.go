// SPDX-License-Identifier: EPL-2.0

// Package audio provides the low-level audio building blocks used by the
// augmentation engine.
//
// This package contains:
//   - Source interface for streamed, interleaved float32 audio
//   - Registry mapping format keys to decoders
//   - Resampler for cubic-interpolated sample rate conversion
//   - MonoMixer for channel mixing
//   - Segment, the in-memory mono waveform every perturbation mutates
//   - ReadSegment, which drains a Source into a Segment
//
// # Segments
//
// A Segment owns its samples. Perturbations either edit Samples() in place
// or swap the buffer through SetSamples; the sample rate is fixed at
// construction:
//
//	seg, err := audio.NewSegment(samples, 16000)
//	seg.GainDB(-6)
//	fmt.Println(seg.Duration(), seg.RMSDB())
//
// RMSDB reports -Inf for an all-zero segment.
//
// # Reading Segments
//
// ReadSegment mixes a decoded Source down to mono, applies an optional
// offset and duration window, and converts the result to the requested rate:
//
//	seg, err := audio.ReadSegment(src, audio.ReadOptions{
//	    TargetRate: 16000,
//	    OrigRate:   8000, // pass through 8kHz first
//	    Offset:     1.5,
//	    Duration:   3,
//	})
//
// # Resampling
//
// The Resampler changes the sample rate of a Source using Catmull-Rom
// interpolation. A one-pole low-pass filter runs on the input when
// downsampling:
//
//	resampler := audio.NewResampler(source, 16000)
//	buf := make([]float32, 4096)
//	n, err := resampler.ReadSamples(buf)
//
// ResampleSamples does the same for an in-memory mono slice and returns
// exactly round(len*to/from) samples.
//
// # Sample Format
//
// Audio samples are float32 values nominally in [-1.0, 1.0]. Intermediate
// results (after gain or noise mixing) may exceed that range; clamping only
// happens when converting to integer PCM.
//
// # Error Handling
//
// Sources return io.EOF when no more data is available:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // Process n samples from buf
//	}
package audio
