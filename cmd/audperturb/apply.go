// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/audperturb"
	"github.com/ik5/audperturb/audio"
	"github.com/ik5/audperturb/augment"
	"github.com/ik5/audperturb/shard"
)

type pipelineFlags struct {
	path      string
	seed      uint64
	rank      int
	worldSize int
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.path, "pipeline", "p", "", "Augmentation config (YAML or TOML); defaults to the configured pipeline")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Pipeline seed; overrides the configured seed")
	cmd.Flags().IntVar(&f.rank, "rank", 0, "Worker rank for shard-backed noise sources")
	cmd.Flags().IntVar(&f.worldSize, "world-size", 0, "Number of workers; defaults to settings, then RANK/WORLD_SIZE")
}

// worker resolves the identity handed to noise sources from flags, then
// settings. ok is false when the sources should read the environment.
func (f *pipelineFlags) worker(ctx *commandContext) (shard.Worker, bool, error) {
	if f.worldSize > 0 {
		w := shard.Worker{Rank: f.rank, WorldSize: f.worldSize}
		return w, true, w.Validate()
	}
	w, ok := ctx.config.ShardWorker()
	return w, ok, nil
}

func (f *pipelineFlags) load(cmd *cobra.Command, ctx *commandContext) (*augment.Augmentor, error) {
	cfg := ctx.config

	path := strings.TrimSpace(f.path)
	if path == "" {
		path = cfg.Pipeline
	}
	if path == "" {
		return nil, errors.New("no augmentation pipeline: pass --pipeline or set pipeline in the settings file")
	}

	entries, err := augment.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	opts := []augment.Option{
		augment.WithLogger(ctx.logger),
		augment.WithMetrics(ctx.metrics),
	}
	w, ok, err := f.worker(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, augment.WithWorker(w))
	}

	switch {
	case cmd.Flags().Changed("seed"):
		opts = append(opts, augment.WithSeed(f.seed))
	case cfg.Seed != nil:
		opts = append(opts, augment.WithSeed(*cfg.Seed))
	}

	return augment.FromConfig(entries, opts...)
}

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var pipeline pipelineFlags
	var sampleRate, origRate int
	var offset, duration float64

	cmd := &cobra.Command{
		Use:   "apply <input> <output.wav>",
		Short: "Augment one audio file and write it as 16-bit mono WAV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			aug, err := pipeline.load(cmd, ctx)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("sample-rate") {
				sampleRate = ctx.config.SampleRate
			}

			start := time.Now()
			if err := audperturb.AugmentFile(args[0], args[1], aug, audio.ReadOptions{
				TargetRate: sampleRate,
				OrigRate:   origRate,
				Offset:     offset,
				Duration:   duration,
			}); err != nil {
				return err
			}

			ctx.logger.Info("augmented file",
				slog.String("input", args[0]),
				slog.String("output", args[1]),
				slog.Int("stages", len(aug.Stages())),
				slog.Duration("elapsed", time.Since(start)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[1])
			return nil
		},
	}

	pipeline.register(cmd)
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 0, "Output sample rate; defaults to the configured rate")
	cmd.Flags().IntVar(&origRate, "orig-rate", 0, "Pass the audio through this rate first")
	cmd.Flags().Float64Var(&offset, "offset", 0, "Seconds to skip from the start")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Seconds to read; zero reads to the end")

	return cmd
}
