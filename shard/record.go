// SPDX-License-Identifier: EPL-2.0

package shard

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// audioExtensions are the archive member suffixes treated as audio records.
var audioExtensions = map[string]bool{
	"wav":  true,
	"flac": true,
	"mp3":  true,
	"ogg":  true,
	"aif":  true,
	"aiff": true,
}

// Record is one audio member of a shard archive.
type Record struct {
	// Key is the member path without its extension.
	Key string
	// FileID is the base name of Key, matched against the manifest.
	FileID string
	// Name is the full member path, extension included.
	Name string
	Data []byte
}

func (r Record) Reader() *bytes.Reader { return bytes.NewReader(r.Data) }

// Ext returns the member extension without the dot, lower-cased.
func (r Record) Ext() string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(r.Name), "."))
}

// Opener opens one shard for reading.
type Opener func(name string) (io.ReadCloser, error)

func openFile(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// recordReader yields records until io.EOF.
type recordReader interface {
	next() (Record, error)
	Close() error
}

// tarReader walks the shards in order and yields their audio members.
type tarReader struct {
	shards []string
	open   Opener
	idx    int

	file io.ReadCloser
	gz   *gzip.Reader
	tr   *tar.Reader
}

func newTarReader(shards []string, open Opener) *tarReader {
	return &tarReader{shards: shards, open: open}
}

func (t *tarReader) openNext() error {
	name := t.shards[t.idx]
	t.idx++

	f, err := t.open(name)
	if err != nil {
		return fmt.Errorf("open shard %s: %w", name, err)
	}
	t.file = f

	var r io.Reader = f
	if strings.HasSuffix(name, ".gz") || strings.HasSuffix(name, ".tgz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = t.Close()
			return fmt.Errorf("gunzip shard %s: %w", name, err)
		}
		t.gz = gz
		r = gz
	}
	t.tr = tar.NewReader(r)

	return nil
}

func (t *tarReader) next() (Record, error) {
	for {
		if t.tr == nil {
			if t.idx >= len(t.shards) {
				return Record{}, io.EOF
			}
			if err := t.openNext(); err != nil {
				return Record{}, err
			}
		}

		hdr, err := t.tr.Next()
		if errors.Is(err, io.EOF) {
			_ = t.Close()
			continue
		}
		if err != nil {
			name := t.shards[t.idx-1]
			_ = t.Close()
			return Record{}, fmt.Errorf("read shard %s: %w", name, err)
		}

		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(hdr.Name), "."))
		if !audioExtensions[ext] {
			continue
		}

		data, err := io.ReadAll(t.tr)
		if err != nil {
			name := t.shards[t.idx-1]
			_ = t.Close()
			return Record{}, fmt.Errorf("read member %s of %s: %w", hdr.Name, name, err)
		}

		key := strings.TrimSuffix(hdr.Name, path.Ext(hdr.Name))
		return Record{
			Key:    key,
			FileID: path.Base(key),
			Name:   hdr.Name,
			Data:   data,
		}, nil
	}
}

// Close releases the shard currently open, if any.
func (t *tarReader) Close() error {
	var err error
	if t.gz != nil {
		err = t.gz.Close()
		t.gz = nil
	}
	if t.file != nil {
		if cerr := t.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
		t.file = nil
	}
	t.tr = nil
	return err
}

// shuffler is a fixed-size shuffle buffer: it keeps up to size records and
// hands out a uniformly chosen one, refilling from src as it goes.
type shuffler struct {
	src     recordReader
	size    int
	rng     *rand.Rand
	buf     []Record
	drained bool
}

func (s *shuffler) next() (Record, error) {
	for !s.drained && len(s.buf) < s.size {
		r, err := s.src.next()
		if errors.Is(err, io.EOF) {
			s.drained = true
			break
		}
		if err != nil {
			return Record{}, err
		}
		s.buf = append(s.buf, r)
	}

	if len(s.buf) == 0 {
		return Record{}, io.EOF
	}

	k := s.rng.IntN(len(s.buf))
	r := s.buf[k]
	last := len(s.buf) - 1
	s.buf[k] = s.buf[last]
	s.buf[last] = Record{}
	s.buf = s.buf[:last]

	return r, nil
}

func (s *shuffler) Close() error {
	s.buf = nil
	return s.src.Close()
}
