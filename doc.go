// SPDX-License-Identifier: EPL-2.0

// Package audperturb applies randomized audio augmentation to waveforms
// right before they are fed to a training or evaluation loop.
//
// The work is split across subpackages:
//   - audio: Segment, decoders' Source interface, resampling and mono mixing
//   - formats: WAV, FLAC, MP3, Ogg Vorbis and AIFF decoding by file extension
//   - dsp: STFT, phase vocoder, FFT convolution and FFT resampling
//   - perturb: the perturbations and the kind registry
//   - augment: probability-gated pipelines built from YAML or TOML files
//   - manifest, shard, noise: noise and impulse response supply from
//     manifests and sharded tar archives
//
// # Quick Start
//
//	entries, _ := augment.LoadConfig("augment.yaml")
//	aug, _ := augment.FromConfig(entries)
//
//	err := audperturb.AugmentFile("clean.flac", "noisy.wav", aug, audio.ReadOptions{
//	    TargetRate: 16000,
//	})
//
// AugmentReader does the same for an in-memory stream and returns the
// perturbed Segment instead of writing it.
//
// # Output
//
// AugmentFile always writes mono 16-bit PCM WAV. Samples are clamped to
// [-1, 1] on the way out; perturbations themselves never clip.
package audperturb
