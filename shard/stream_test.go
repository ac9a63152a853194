// SPDX-License-Identifier: EPL-2.0

package shard

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/ik5/audperturb/internal/audiotest"
	"github.com/ik5/audperturb/manifest"
)

var single = WithWorker(Worker{WorldSize: 1})

func quiet() Option { return WithLogger(slog.New(slog.DiscardHandler)) }

func writeShards(t *testing.T) (dir string, shards []string) {
	t.Helper()

	dir = t.TempDir()
	a := audiotest.Tar(t,
		audiotest.TarMember{Name: "babble/n1.wav", Data: []byte("one")},
		audiotest.TarMember{Name: "babble/n1.json", Data: []byte("{}")},
		audiotest.TarMember{Name: "babble/n2.wav", Data: []byte("two")},
	)
	b := audiotest.Tar(t,
		audiotest.TarMember{Name: "street/n3.flac", Data: []byte("three")},
		audiotest.TarMember{Name: "street/dropped.wav", Data: []byte("x")},
	)
	shards = []string{
		audiotest.WriteFile(t, dir, "noise_0.tar", a),
		audiotest.WriteFile(t, dir, "noise_1.tar", b),
	}
	return dir, shards
}

func noiseManifest(ids ...string) *manifest.Manifest {
	entries := make([]manifest.Entry, len(ids))
	for i, id := range ids {
		entries[i] = manifest.Entry{AudioFilepath: id + ".wav", Duration: 1}
	}
	return manifest.New(entries, manifest.Options{})
}

func drainPass(t *testing.T, s *Stream) []string {
	t.Helper()

	var ids []string
	for {
		r, err := s.NextInPass()
		if errors.Is(err, io.EOF) {
			return ids
		}
		if err != nil {
			t.Fatalf("NextInPass() error = %v", err)
		}
		ids = append(ids, r.FileID)
	}
}

func TestStream_FiltersAgainstManifest(t *testing.T) {
	t.Parallel()

	_, shards := writeShards(t)
	s, err := NewStream(noiseManifest("n1", "n2", "n3"), shards, single, quiet())
	if err != nil {
		t.Fatalf("NewStream() error = %v", err)
	}
	defer s.Close()

	got := drainPass(t, s)
	if want := []string{"n1", "n2", "n3"}; !slices.Equal(got, want) {
		t.Errorf("first pass = %v, want %v", got, want)
	}
	if s.State() != ExhaustedPendingRestart {
		t.Errorf("State() = %v, want %v", s.State(), ExhaustedPendingRestart)
	}
	if s.Passes() != 1 {
		t.Errorf("Passes() = %d, want 1", s.Passes())
	}
}

func TestStream_RecordFields(t *testing.T) {
	t.Parallel()

	_, shards := writeShards(t)
	s, _ := NewStream(noiseManifest("n3"), shards, single, quiet())
	defer s.Close()

	r, err := s.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if r.Key != "street/n3" || r.Name != "street/n3.flac" || r.Ext() != "flac" {
		t.Errorf("record = {Key:%q Name:%q Ext:%q}", r.Key, r.Name, r.Ext())
	}
	data, _ := io.ReadAll(r.Reader())
	if string(data) != "three" {
		t.Errorf("Reader() = %q, want three", data)
	}
}

func TestStream_NextCyclesForever(t *testing.T) {
	t.Parallel()

	_, shards := writeShards(t)
	s, _ := NewStream(noiseManifest("n1", "n3"), shards, single, quiet())
	defer s.Close()

	var got []string
	for range 9 {
		r, err := s.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		got = append(got, r.FileID)
	}

	want := []string{"n1", "n3", "n1", "n3", "n1", "n3", "n1", "n3", "n1"}
	if !slices.Equal(got, want) {
		t.Errorf("Next() sequence = %v, want %v", got, want)
	}
	if s.Passes() != 4 {
		t.Errorf("Passes() = %d, want 4", s.Passes())
	}
}

func TestStream_NextInPassEOFOnce(t *testing.T) {
	t.Parallel()

	_, shards := writeShards(t)
	s, _ := NewStream(noiseManifest("n2"), shards, single, quiet())
	defer s.Close()

	if r, err := s.NextInPass(); err != nil || r.FileID != "n2" {
		t.Fatalf("NextInPass() = %q, %v", r.FileID, err)
	}
	if _, err := s.NextInPass(); !errors.Is(err, io.EOF) {
		t.Fatalf("NextInPass() error = %v, want io.EOF", err)
	}
	// The pass boundary is reported once; the next read restarts.
	if r, err := s.NextInPass(); err != nil || r.FileID != "n2" {
		t.Errorf("NextInPass() after EOF = %q, %v, want n2 from a new pass", r.FileID, err)
	}
	if s.State() != Active {
		t.Errorf("State() = %v, want %v", s.State(), Active)
	}
}

func TestStream_NoRecords(t *testing.T) {
	t.Parallel()

	_, shards := writeShards(t)
	s, _ := NewStream(noiseManifest("absent"), shards, single, quiet())
	defer s.Close()

	if _, err := s.Next(); !errors.Is(err, ErrNoRecords) {
		t.Errorf("Next() error = %v, want ErrNoRecords", err)
	}
}

func TestStream_NilManifestAcceptsAll(t *testing.T) {
	t.Parallel()

	_, shards := writeShards(t)
	s, _ := NewStream(nil, shards, single, quiet())
	defer s.Close()

	if got := drainPass(t, s); len(got) != 4 {
		t.Errorf("pass = %v, want 4 audio records", got)
	}
}

func TestStream_Gzip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	buf := new(bytes.Buffer)
	zw := gzip.NewWriter(buf)
	_, _ = zw.Write(audiotest.Tar(t, audiotest.TarMember{Name: "n1.wav", Data: []byte("z")}))
	_ = zw.Close()
	path := audiotest.WriteFile(t, dir, "noise.tar.gz", buf.Bytes())

	s, _ := NewStream(noiseManifest("n1"), []string{path}, single, quiet())
	defer s.Close()

	r, err := s.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if string(r.Data) != "z" {
		t.Errorf("Data = %q, want z", r.Data)
	}
}

func TestStream_ShufflePermutesPass(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var members []audiotest.TarMember
	var ids []string
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		members = append(members, audiotest.TarMember{Name: id + ".wav", Data: []byte(id)})
		ids = append(ids, id)
	}
	path := audiotest.WriteFile(t, dir, "s.tar", audiotest.Tar(t, members...))

	s, _ := NewStream(noiseManifest(ids...), []string{path}, single, quiet(),
		WithShuffle(4, rand.New(rand.NewPCG(1, 2))))
	defer s.Close()

	got := drainPass(t, s)
	sorted := slices.Clone(got)
	slices.Sort(sorted)
	if !slices.Equal(sorted, ids) {
		t.Errorf("shuffled pass = %v, want a permutation of %v", got, ids)
	}
}

func TestStream_OpenErrorSkipsShard(t *testing.T) {
	t.Parallel()

	_, shards := writeShards(t)
	missing := filepath.Join(t.TempDir(), "missing.tar")
	s, _ := NewStream(noiseManifest("n3"), []string{missing, shards[1]}, single, quiet())
	defer s.Close()

	if _, err := s.NextInPass(); err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("NextInPass() error = %v, want open failure", err)
	}
	if r, err := s.NextInPass(); err != nil || r.FileID != "n3" {
		t.Errorf("NextInPass() after failure = %q, %v, want n3", r.FileID, err)
	}
}

func TestStream_CustomOpener(t *testing.T) {
	t.Parallel()

	archive := audiotest.Tar(t, audiotest.TarMember{Name: "mem.wav", Data: []byte("m")})
	opener := func(name string) (io.ReadCloser, error) {
		if name != "mem://noise" {
			return nil, os.ErrNotExist
		}
		return io.NopCloser(bytes.NewReader(archive)), nil
	}

	s, _ := NewStream(noiseManifest("mem"), []string{"mem://noise"}, single, quiet(), WithOpener(opener))
	defer s.Close()

	if r, err := s.Next(); err != nil || r.FileID != "mem" {
		t.Errorf("Next() = %q, %v", r.FileID, err)
	}
}

func TestStream_Partitioned(t *testing.T) {
	t.Parallel()

	_, shards := writeShards(t)
	s, err := NewStream(noiseManifest("n1", "n2", "n3"), shards,
		WithWorker(Worker{Rank: 1, WorldSize: 2}), quiet())
	if err != nil {
		t.Fatalf("NewStream() error = %v", err)
	}
	defer s.Close()

	if !slices.Equal(s.Shards(), shards[1:]) {
		t.Errorf("Shards() = %v, want %v", s.Shards(), shards[1:])
	}
	if got := drainPass(t, s); !slices.Equal(got, []string{"n3"}) {
		t.Errorf("pass = %v, want [n3]", got)
	}
}

func TestNewStream_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewStream(nil, nil, single); !errors.Is(err, ErrNoShards) {
		t.Errorf("NewStream(no shards) error = %v, want ErrNoShards", err)
	}
	if _, err := NewStream(nil, []string{"x"}, WithWorker(Worker{Rank: 5, WorldSize: 2})); !errors.Is(err, ErrInvalidWorker) {
		t.Errorf("NewStream(bad rank) error = %v, want ErrInvalidWorker", err)
	}
}

func TestStream_Closed(t *testing.T) {
	t.Parallel()

	_, shards := writeShards(t)
	s, _ := NewStream(nil, shards, single, quiet())
	_, _ = s.Next()
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := s.Next(); !errors.Is(err, ErrStreamClosed) {
		t.Errorf("Next() after Close error = %v, want ErrStreamClosed", err)
	}
}
