// Package archive streams generated documents into zip archives.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
)

// Epoch is the modification time of entries without a timestamp. It is the
// earliest time the zip format can represent.
var Epoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	// ErrDuplicateEntry is returned when an entry name is added twice
	ErrDuplicateEntry = errors.New("archive: duplicate entry")
	// ErrInvalidEntryName is returned for empty, absolute or escaping names
	ErrInvalidEntryName = errors.New("archive: invalid entry name")
	// ErrClosed is returned when adding to a closed bundler
	ErrClosed = errors.New("archive: bundler closed")
)

// Bundler writes named entries into a zip stream as they are added. Nothing
// but the central directory is held back until Close.
// A Bundler is not safe for concurrent use.
type Bundler struct {
	zw      *zip.Writer
	names   map[string]struct{}
	entries []string
	closed  bool
}

// NewBundler creates a bundler writing to w with maximum deflate compression
func NewBundler(w io.Writer) *Bundler {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	return &Bundler{
		zw:    zw,
		names: make(map[string]struct{}),
	}
}

// Add writes a complete entry
func (b *Bundler) Add(name string, modified time.Time, data []byte) error {
	return b.AddStream(name, modified, bytes.NewReader(data))
}

// AddStream copies r into a new entry
func (b *Bundler) AddStream(name string, modified time.Time, r io.Reader) error {
	w, err := b.Create(name, modified)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("archive: write %s: %w", name, err)
	}
	return nil
}

// Create starts a new entry and returns a writer for its content. The
// writer is valid until the next call to Create, Add or Close.
func (b *Bundler) Create(name string, modified time.Time) (io.Writer, error) {
	if b.closed {
		return nil, ErrClosed
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if _, ok := b.names[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
	}

	if modified.IsZero() || modified.Before(Epoch) {
		modified = Epoch
	}
	w, err := b.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("archive: create %s: %w", name, err)
	}

	b.names[name] = struct{}{}
	b.entries = append(b.entries, name)
	return w, nil
}

// Entries returns the entry names in the order they were written
func (b *Bundler) Entries() []string {
	return append([]string(nil), b.entries...)
}

// Len returns the number of entries written so far
func (b *Bundler) Len() int {
	return len(b.entries)
}

// Flush pushes buffered data to the underlying writer
func (b *Bundler) Flush() error {
	return b.zw.Flush()
}

// Close writes the central directory. It does not close the underlying writer.
func (b *Bundler) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if err := b.zw.Close(); err != nil {
		return fmt.Errorf("archive: finalize: %w", err)
	}
	return nil
}

func validateName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidEntryName, name)
	}
	if path.Clean(name) != name || strings.HasPrefix(name, "../") || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidEntryName, name)
	}
	return nil
}
