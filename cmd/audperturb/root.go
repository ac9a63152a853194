// SPDX-License-Identifier: EPL-2.0

package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevel string

	ctx := newCommandContext(&configFlag, &logLevel)

	rootCmd := &cobra.Command{
		Use:           "audperturb",
		Short:         "On-the-fly audio augmentation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx.stderr = cmd.ErrOrStderr()
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}
			ctx.startMetrics()
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.stopMetrics()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Settings file path (TOML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(newApplyCommand(ctx))
	rootCmd.AddCommand(newMaxLengthCommand(ctx))
	rootCmd.AddCommand(newShardsCommand(ctx))
	rootCmd.AddCommand(newDrainCommand(ctx))

	return rootCmd
}
