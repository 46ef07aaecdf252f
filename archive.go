// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lounzip reads and edits ZIP archives on disk.
//
// An [Archive] is opened by path and addressed by entry index, in central
// directory order. Entries can be inspected with [Archive.Stat], streamed
// with [Archive.Open] or [Archive.OpenEncrypted], and renamed or deleted.
// Edits are kept in memory until [Archive.Close], which rewrites the file
// atomically; [Archive.Discard] drops them.
//
// Supported compression methods are Store, Deflate, BZIP2, LZMA, Zstandard
// and XZ. Encrypted entries may use the legacy ZipCrypto scheme or WinZip
// AES with 128, 192 or 256-bit keys.
//
// Every failure is reported as an [*Error] whose [ErrorCode] can be matched
// with errors.Is:
//
//	if errors.Is(err, lounzip.ErrWrongPassword) {
//		// ask again
//	}
package lounzip

import (
	"errors"
	"io"
	"io/fs"
	"math"
	"os"
	"strings"
)

// Archive is an open ZIP file.
type Archive struct {
	path    string
	file    *os.File
	reader  *zipReader
	dir     directory
	names   map[string]int // live entry name -> index
	dirty   bool
	closed  bool
	closeFn func() error
}

// Open opens the archive at path and reads its central directory.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(ErrNoEnt, "open", path, err)
		}
		return nil, newError(ErrOpen, "open", path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, newError(ErrRead, "open", path, err)
	}
	if stat.IsDir() {
		f.Close()
		return nil, newError(ErrNoZip, "open", path, errors.New("is a directory"))
	}

	a, err := newArchive(path, f, stat.Size())
	if err != nil {
		f.Close()
		var ze *Error
		if errors.As(err, &ze) {
			ze.Name = path
		}
		return nil, err
	}
	a.file = f
	a.closeFn = f.Close
	return a, nil
}

// newArchive parses the archive available through src.
func newArchive(path string, src io.ReaderAt, size int64) (*Archive, error) {
	zr := newZipReader(src, size)
	dir, err := zr.readDirectory()
	if err != nil {
		return nil, err
	}

	a := &Archive{
		path:   path,
		reader: zr,
		dir:    dir,
		names:  make(map[string]int, len(dir.entries)),
	}
	for i, e := range dir.entries {
		if _, dup := a.names[e.name]; !dup {
			a.names[e.name] = i
		}
	}
	return a, nil
}

// Path returns the path the archive was opened with.
func (a *Archive) Path() string { return a.path }

// Comment returns the archive comment.
func (a *Archive) Comment() string { return a.dir.comment }

// NumEntries returns the number of entries in the central directory,
// including entries deleted since the archive was opened. Indices stay
// stable until Close.
func (a *Archive) NumEntries() int { return len(a.dir.entries) }

func (a *Archive) entry(op string, index int) (*entry, error) {
	if a.closed {
		return nil, newError(ErrZipClosed, op, a.path, nil)
	}
	if index < 0 || index >= len(a.dir.entries) {
		return nil, newError(ErrInval, op, a.path, errors.New("index out of range"))
	}
	e := a.dir.entries[index]
	if e.deleted {
		return nil, newError(ErrDeleted, op, e.name, nil)
	}
	return e, nil
}

// Stat returns the metadata of the entry at index.
func (a *Archive) Stat(index int) (EntryInfo, error) {
	e, err := a.entry("stat", index)
	if err != nil {
		return EntryInfo{}, err
	}
	return e.info(index), nil
}

// Locate returns the index of the live entry called name, or -1.
func (a *Archive) Locate(name string) int {
	if i, ok := a.names[name]; ok && !a.dir.entries[i].deleted {
		return i
	}
	return -1
}

// Open returns a stream of the content of the entry at index. Closing the
// stream after the whole content was read verifies its checksum.
func (a *Archive) Open(index int) (io.ReadCloser, error) {
	return a.OpenEncrypted(index, nil)
}

// OpenEncrypted is like Open but decrypts the entry with password.
// A nil password on an encrypted entry yields ErrNoPassword; an empty,
// non-nil one is tried as is.
func (a *Archive) OpenEncrypted(index int, password []byte) (io.ReadCloser, error) {
	e, err := a.entry("open", index)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(e.name, "/") {
		return io.NopCloser(strings.NewReader("")), nil
	}
	return a.reader.openEntry(e, password)
}

// Rename changes the name of the entry at index.
func (a *Archive) Rename(index int, name string) error {
	e, err := a.entry("rename", index)
	if err != nil {
		return err
	}
	if name == "" {
		return newError(ErrInval, "rename", e.name, errors.New("empty name"))
	}
	if len(name) > math.MaxUint16 {
		return newError(ErrInval, "rename", e.name, errors.New("name too long"))
	}
	if name == e.name {
		return nil
	}
	if other := a.Locate(name); other >= 0 {
		return newError(ErrExists, "rename", name, nil)
	}

	if a.names[e.name] == index {
		delete(a.names, e.name)
	}
	e.name = name
	e.renamed = true
	a.names[name] = index
	a.dirty = true
	return nil
}

// Delete marks the entry at index for removal.
func (a *Archive) Delete(index int) error {
	e, err := a.entry("delete", index)
	if err != nil {
		return err
	}
	if a.names[e.name] == index {
		delete(a.names, e.name)
	}
	e.deleted = true
	a.dirty = true
	return nil
}

// Close commits pending renames and deletions and releases the file.
// Calling Close more than once is a no-op.
func (a *Archive) Close() error {
	if a.closed {
		return nil
	}
	var commitErr error
	if a.dirty {
		commitErr = a.commit()
	}
	return a.release(commitErr)
}

// Discard releases the file without writing pending changes.
func (a *Archive) Discard() error {
	if a.closed {
		return nil
	}
	return a.release(nil)
}

func (a *Archive) release(err error) error {
	a.closed = true
	if a.closeFn != nil {
		if cerr := a.closeFn(); cerr != nil && err == nil {
			err = newError(ErrClose, "close", a.path, cerr)
		}
	}
	return err
}
