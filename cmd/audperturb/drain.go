// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ik5/audperturb/noise"
)

func newDrainCommand(ctx *commandContext) *cobra.Command {
	var flags workerFlags
	var manifestPath string
	var shards []string
	var shuffleN, sampleRate, origRate int

	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Read one full pass of noise shards and summarise the candidates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(shards) == 0 {
				return errors.New("--shards is required")
			}
			w, err := flags.worker(ctx)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("sample-rate") {
				sampleRate = ctx.config.SampleRate
			}

			src, err := noise.New(noise.Options{
				ManifestPath:    manifestPath,
				TarPaths:        shards,
				ShuffleN:        shuffleN,
				ShardsPerWorker: flags.perWorker,
				Worker:          &w,
				Logger:          ctx.logger,
				Metrics:         ctx.metrics,
			})
			if err != nil {
				return err
			}
			stream, ok := src.(*noise.StreamSource)
			if !ok {
				return errors.New("drain needs shard archives")
			}
			defer stream.Close()

			segs, err := stream.AllData(sampleRate, origRate)
			if err != nil {
				return err
			}

			silent := 0
			seconds := 0.0
			for _, s := range segs {
				if math.IsInf(s.RMSDB(), -1) {
					silent++
				}
				seconds += s.Duration()
			}

			rows := [][]string{
				{"candidates", strconv.Itoa(len(segs))},
				{"silent", strconv.Itoa(silent)},
				{"seconds", strconv.FormatFloat(seconds, 'f', 2, 64)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Noise", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Noise manifest (comma separated for several)")
	cmd.Flags().StringArrayVarP(&shards, "shards", "s", nil, "Shard archives or brace patterns")
	cmd.Flags().IntVar(&shuffleN, "shuffle-n", 0, "Shuffle buffer size; zero keeps archive order")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 0, "Decode rate; defaults to the configured rate")
	cmd.Flags().IntVar(&origRate, "orig-rate", 0, "Pass candidates through this rate first")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}
