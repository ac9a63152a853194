// SPDX-License-Identifier: EPL-2.0

// Package augment runs an ordered list of perturbation stages over audio
// segments. Each stage fires independently with its own probability.
//
// A pipeline is usually built from a configuration file:
//
//	entries, err := augment.LoadConfig("augment.yaml")
//	if err != nil {
//	    return err
//	}
//	aug, err := augment.FromConfig(entries, augment.WithSeed(42))
//	if err != nil {
//	    return err
//	}
//	err = aug.Perturb(seg, 0)
//
// The file lists stages under a top-level "augmentations" key, in YAML
//
//	augmentations:
//	  - kind: speed
//	    prob: 0.5
//	    cfg: {resample_type: kaiser_fast, min_speed_rate: 0.9, max_speed_rate: 1.1}
//	  - kind: white_noise
//	    prob: 1.0
//	    cfg: {min_level: -90, max_level: -46}
//
// or TOML
//
//	[[augmentations]]
//	kind = "gain"
//	prob = 1.0
//	cfg = { min_gain_dbfs = -6, max_gain_dbfs = 6 }
//
// Unknown kinds are logged and skipped. Invalid parameters fail the build.
package augment
