// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ik5/audperturb/shard"
)

type workerFlags struct {
	rank      int
	worldSize int
	perWorker int
}

func (f *workerFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.rank, "rank", 0, "Worker rank")
	cmd.Flags().IntVar(&f.worldSize, "world-size", 0, "Number of workers; defaults to settings, then RANK/WORLD_SIZE")
	cmd.Flags().IntVar(&f.perWorker, "per-worker", 1, "Shards assigned to each worker")
}

// worker resolves the identity from flags, then settings, then the
// environment.
func (f *workerFlags) worker(ctx *commandContext) (shard.Worker, error) {
	if f.worldSize > 0 {
		w := shard.Worker{Rank: f.rank, WorldSize: f.worldSize}
		return w, w.Validate()
	}
	if w, ok := ctx.config.ShardWorker(); ok {
		return w, nil
	}
	return shard.WorkerFromEnv()
}

func newShardsCommand(ctx *commandContext) *cobra.Command {
	var flags workerFlags

	cmd := &cobra.Command{
		Use:   "shards <pattern>...",
		Short: "Expand shard patterns and show the shards one worker reads",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := shard.Resolve(args)
			if err != nil {
				return err
			}
			w, err := flags.worker(ctx)
			if err != nil {
				return err
			}

			assigned := shard.Partition(all, w, flags.perWorker, ctx.logger)

			rows := make([][]string, 0, len(assigned))
			for i, s := range assigned {
				rows = append(rows, []string{strconv.Itoa(i), s})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "worker %d of %d: %d of %d shards\n", w.Rank, max(w.WorldSize, 1), len(assigned), len(all))
			fmt.Fprintln(out, renderTable([]string{"#", "Shard"}, rows, []columnAlignment{alignRight, alignLeft}))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
