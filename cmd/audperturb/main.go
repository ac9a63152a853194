// SPDX-License-Identifier: EPL-2.0

// Command audperturb applies augmentation pipelines to audio files and
// inspects the shard and noise plumbing behind them.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
