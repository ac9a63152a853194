// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newMaxLengthCommand(ctx *commandContext) *cobra.Command {
	var pipeline pipelineFlags

	cmd := &cobra.Command{
		Use:   "max-length <seconds>",
		Short: "Print the longest duration the pipeline can produce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			length, err := strconv.ParseFloat(args[0], 64)
			if err != nil || length < 0 {
				return fmt.Errorf("invalid length %q", args[0])
			}

			aug, err := pipeline.load(cmd, ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%.3f\n", aug.MaxAugmentationLength(length))
			return nil
		},
	}

	pipeline.register(cmd)
	return cmd
}
