// Package threemf extracts renderable triangle meshes from 3MF containers:
// ZIP archives holding one or more XML model documents. Containers with
// malformed ZIP64 size fields (as produced by some slicers) are repaired
// before reading.
package threemf

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/Faultbox/threemf/pkg/zip64"
)

// Archive is an opened 3MF container.
type Archive struct {
	reader *zip.Reader
}

// Entry describes one file in the container. Entries are only valid for the
// lifetime of the Archive they came from.
type Entry struct {
	Name             string
	Dir              bool
	CompressedSize   uint64
	UncompressedSize uint64
	Offset           uint64

	file *zip.File
}

// OpenArchive opens a 3MF container from its raw bytes. The buffer is run
// through the ZIP64 patcher first, so archives with sentinel size fields
// open like any other.
func OpenArchive(data []byte) (*Archive, error) {
	patched := zip64.Patch(data)
	zr, err := zip.NewReader(bytes.NewReader(patched), int64(len(patched)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCannotOpenArchive, err)
	}
	return &Archive{reader: zr}, nil
}

// Entries returns all entries in central-directory order. The order is
// whatever the producing tool wrote and carries no meaning.
func (a *Archive) Entries() []Entry {
	entries := make([]Entry, 0, len(a.reader.File))
	for _, f := range a.reader.File {
		offset, _ := f.DataOffset()
		entries = append(entries, Entry{
			Name:             f.Name,
			Dir:              strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir(),
			CompressedSize:   f.CompressedSize64,
			UncompressedSize: f.UncompressedSize64,
			Offset:           uint64(offset),
			file:             f,
		})
	}
	return entries
}

// ModelEntries returns the entries holding model documents: regular files
// whose path ends in ".model".
func (a *Archive) ModelEntries() []Entry {
	var models []Entry
	for _, e := range a.Entries() {
		if !e.Dir && strings.HasSuffix(e.Name, ".model") {
			models = append(models, e)
		}
	}
	return models
}

// Extract reads an entry's full content into memory.
func (a *Archive) Extract(e Entry) ([]byte, error) {
	if e.file == nil {
		return nil, fmt.Errorf("entry %q does not belong to this archive", e.Name)
	}
	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening entry %q: %w", e.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading entry %q: %w", e.Name, err)
	}
	return data, nil
}
