// SPDX-License-Identifier: EPL-2.0

package shard

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Worker identifies one process of a distributed job.
type Worker struct {
	Rank      int
	WorldSize int
}

// Distributed reports whether more than one worker takes part.
func (w Worker) Distributed() bool { return w.WorldSize > 1 }

func (w Worker) Validate() error {
	if w.WorldSize < 0 {
		return fmt.Errorf("%w: world size %d", ErrInvalidWorker, w.WorldSize)
	}
	if w.Distributed() && (w.Rank < 0 || w.Rank >= w.WorldSize) {
		return fmt.Errorf("%w: rank %d not in [0, %d)", ErrInvalidWorker, w.Rank, w.WorldSize)
	}
	return nil
}

// WorkerFromEnv reads RANK and WORLD_SIZE as set by torchrun style
// launchers. Unset variables mean a single, non distributed worker.
func WorkerFromEnv() (Worker, error) {
	w := Worker{WorldSize: 1}

	if v := strings.TrimSpace(os.Getenv("WORLD_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Worker{}, fmt.Errorf("%w: WORLD_SIZE=%q", ErrInvalidWorker, v)
		}
		w.WorldSize = n
	}
	if v := strings.TrimSpace(os.Getenv("RANK")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Worker{}, fmt.Errorf("%w: RANK=%q", ErrInvalidWorker, v)
		}
		w.Rank = n
	}

	if err := w.Validate(); err != nil {
		return Worker{}, err
	}
	return w, nil
}

// Partition picks this worker's shards. Outside a distributed run every
// shard is returned. Otherwise worker r receives
// shards[(r*perWorker+i) mod len(shards)] for i in [0, perWorker); uneven
// splits are logged, not rejected.
func Partition(shards []string, w Worker, perWorker int, logger *slog.Logger) []string {
	if !w.Distributed() || len(shards) == 0 {
		return append([]string(nil), shards...)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if perWorker <= 0 {
		perWorker = 1
	}

	if len(shards)%w.WorldSize != 0 {
		logger.Warn("shard count not divisible by worker count",
			"shards", len(shards),
			"world_size", w.WorldSize,
		)
	}
	if perWorker*w.WorldSize < len(shards) {
		logger.Warn("shards per worker leave shards unused",
			"rank", w.Rank,
			"world_size", w.WorldSize,
			"shards", len(shards),
			"per_worker", perWorker,
		)
	}

	out := make([]string, perWorker)
	for i := range out {
		out[i] = shards[(w.Rank*perWorker+i)%len(shards)]
	}
	return out
}
