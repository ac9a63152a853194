// SPDX-License-Identifier: EPL-2.0

package shard

import "errors"

var (
	ErrUnbalancedBraces = errors.New("unbalanced braces in shard pattern")
	ErrNoShards         = errors.New("no shards to stream")
	ErrInvalidWorker    = errors.New("invalid worker identity")
	ErrStreamClosed     = errors.New("stream is closed")
)

// ErrNoRecords means a complete pass over every shard produced no record
// accepted by the manifest, so cycling would never yield anything.
var ErrNoRecords = errors.New("shard pass yielded no records")
