// Package mmap exposes a file's contents as a read-only byte slice.
//
// On unix platforms the file is memory mapped with MAP_SHARED, so pages are
// loaded on first touch and nothing is copied up front. Elsewhere the file is
// read into a heap buffer once. Either way a Mapping is a snapshot of the
// file length at Open time: after the file grows, callers Close the mapping
// and Open a new one before reading the new bytes.
package mmap

import (
	"errors"
	"fmt"
	"os"
)

// ErrClosed is returned when closing a Mapping twice.
var ErrClosed = errors.New("mmap: mapping closed")

// Mapping is a read-only view of a whole file.
//
// The slice returned by Bytes must not be written to and must not be used
// after Close.
type Mapping struct {
	data   []byte
	mapped bool
	closed bool
}

// Open maps the current contents of f. The file may be closed afterwards;
// the mapping stays valid until Close.
func Open(f *os.File) (*Mapping, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("mmap: stat %s: %w", f.Name(), err)
	}

	size := fi.Size()
	if size == 0 {
		return &Mapping{}, nil
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("mmap: %s is too large to map (%d bytes)", f.Name(), size)
	}

	data, mapped, err := mapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmap: map %s: %w", f.Name(), err)
	}

	return &Mapping{data: data, mapped: mapped}, nil
}

// Bytes returns the mapped contents.
func (m *Mapping) Bytes() []byte {
	return m.data
}

// Len returns the number of mapped bytes.
func (m *Mapping) Len() int {
	return len(m.data)
}

// Mapped reports whether the contents are backed by a memory map rather than
// a heap copy.
func (m *Mapping) Mapped() bool {
	return m.mapped
}

// Close releases the mapping. Closing twice returns ErrClosed.
func (m *Mapping) Close() error {
	if m.closed {
		return ErrClosed
	}
	m.closed = true

	data := m.data
	m.data = nil
	if !m.mapped || data == nil {
		return nil
	}

	return unmap(data)
}
