// SPDX-License-Identifier: EPL-2.0

// Package manifest loads JSON-lines audio manifests: one object per line
// naming an audio file, its duration and optional offset and transcript.
// A Manifest keeps list order for uniform sampling and an index by file id
// for membership checks while streaming archives.
package manifest

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyManifest = errors.New("manifest has no entries")
	ErrMissingPath   = errors.New("manifest entry has no audio_filepath")
)

// Entry is one audio file reference.
type Entry struct {
	AudioFilepath string  `json:"audio_filepath"`
	Duration      float64 `json:"duration"`
	Offset        float64 `json:"offset,omitempty"`
	Text          string  `json:"text,omitempty"`
	// FileID is the base name of AudioFilepath without its extension.
	FileID string `json:"-"`
}

// Options filters entries while loading. Zero bounds are ignored.
type Options struct {
	MinDuration float64
	MaxDuration float64
	Logger      *slog.Logger
}

func (o Options) keep(e Entry) bool {
	if o.MinDuration > 0 && e.Duration < o.MinDuration {
		return false
	}
	if o.MaxDuration > 0 && e.Duration > o.MaxDuration {
		return false
	}
	return true
}

type Manifest struct {
	entries []Entry
	index   map[string]int
}

// FileID derives the identifier used to match archive members to entries.
func FileID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// New builds a Manifest from entries that pass the duration filter. When
// two entries share a file id the later one wins the index slot.
func New(entries []Entry, opts Options) *Manifest {
	m := &Manifest{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if !opts.keep(e) {
			continue
		}
		if e.FileID == "" {
			e.FileID = FileID(e.AudioFilepath)
		}
		m.index[e.FileID] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	return m
}

// Load reads one or more comma separated manifest files and concatenates
// them in order.
func Load(paths string, opts Options) (*Manifest, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var all []Entry
	for _, p := range strings.Split(paths, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		entries, err := readFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}

	m := New(all, opts)
	if skipped := len(all) - m.Len(); skipped > 0 {
		logger.Debug("manifest entries filtered by duration",
			"paths", paths,
			"kept", m.Len(),
			"skipped", skipped,
		)
	}

	return m, nil
}

func readFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var entries []Entry
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if e.AudioFilepath == "" {
			return nil, fmt.Errorf("%s:%d: %w", path, line, ErrMissingPath)
		}
		e.AudioFilepath = resolvePath(dir, e.AudioFilepath)
		e.FileID = FileID(e.AudioFilepath)
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	return entries, nil
}

// resolvePath keeps absolute paths and paths that exist as given; other
// relative paths are taken relative to the manifest's directory when a
// file is found there.
func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	candidate := filepath.Join(dir, path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}

func (m *Manifest) Len() int { return len(m.entries) }

// Entries returns the entries in list order. The slice must not be modified.
func (m *Manifest) Entries() []Entry { return m.entries }

func (m *Manifest) At(i int) Entry { return m.entries[i] }

// ByFileID looks an entry up by its file id.
func (m *Manifest) ByFileID(id string) (Entry, bool) {
	i, ok := m.index[id]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

func (m *Manifest) Contains(id string) bool {
	_, ok := m.index[id]
	return ok
}

// Sample picks one entry uniformly at random, with replacement.
func (m *Manifest) Sample(rng *rand.Rand) (Entry, error) {
	if len(m.entries) == 0 {
		return Entry{}, ErrEmptyManifest
	}
	return m.entries[rng.IntN(len(m.entries))], nil
}
