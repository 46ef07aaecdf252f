// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lounzip

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/lemon4ksan/lounzip/internal/headers"
)

// commit rewrites the archive without the deleted entries and with the new
// names. Entry data is copied raw, so nothing is recompressed or
// re-encrypted. The result is written next to the original and renamed
// over it while the original is held under an advisory lock.
func (a *Archive) commit() error {
	lock := flock.New(a.path)
	locked, err := lock.TryLock()
	if err != nil {
		return newError(ErrOpen, "commit", a.path, err)
	}
	if !locked {
		return newError(ErrInUse, "commit", a.path, errors.New("archive is locked by another process"))
	}
	defer lock.Unlock()

	live := make([]*entry, 0, len(a.dir.entries))
	for _, e := range a.dir.entries {
		if !e.deleted {
			live = append(live, e)
		}
	}

	// An archive without entries is removed rather than left as an empty shell.
	if len(live) == 0 {
		if err := os.Remove(a.path); err != nil {
			return newError(ErrRemove, "commit", a.path, err)
		}
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(a.path), "."+filepath.Base(a.path)+".*.tmp")
	if err != nil {
		return newError(ErrTmpOpen, "commit", a.path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if a.file != nil {
		if stat, err := a.file.Stat(); err == nil {
			// Best effort: the archive keeps its permissions when possible.
			_ = tmp.Chmod(stat.Mode().Perm())
		}
	}

	bw := bufio.NewWriter(tmp)
	cw := &byteCountWriter{dest: bw}
	if err := a.writeArchive(cw, live); err != nil {
		cleanup()
		return err
	}
	if err := bw.Flush(); err != nil {
		cleanup()
		return newError(ErrWrite, "commit", a.path, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return newError(ErrWrite, "commit", a.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return newError(ErrClose, "commit", a.path, err)
	}

	if err := os.Rename(tmpName, a.path); err != nil {
		os.Remove(tmpName)
		return newError(ErrRename, "commit", a.path, err)
	}
	return nil
}

// writeArchive streams every live entry followed by the central directory.
func (a *Archive) writeArchive(cw *byteCountWriter, live []*entry) error {
	records := make([][]byte, 0, len(live))

	for _, e := range live {
		offset := cw.bytesWritten
		if err := a.copyEntry(cw, e); err != nil {
			return err
		}
		records = append(records, centralRecord(e, offset).Encode())
	}

	centralDirOffset := cw.bytesWritten
	for _, rec := range records {
		if _, err := cw.Write(rec); err != nil {
			return newError(ErrWrite, "commit", a.path, err)
		}
	}
	centralDirSize := cw.bytesWritten - centralDirOffset

	if err := a.writeEndRecords(cw, len(live), centralDirSize, centralDirOffset); err != nil {
		return newError(ErrWrite, "commit", a.path, err)
	}
	return nil
}

// copyEntry writes the local header of e, with its new name if renamed,
// and copies the stored data and data descriptor unchanged.
func (a *Archive) copyEntry(w io.Writer, e *entry) error {
	zr := a.reader
	lh, err := zr.localHeader(e)
	if err != nil {
		return err
	}
	dataStart := e.localHeaderOffset + lh.Size()

	if e.renamed {
		lh.Filename = e.name
		lh.FilenameLength = uint16(len(e.name))
		if !isASCII(e.name) {
			lh.GeneralPurposeBitFlag |= flagUTF8
		}
	}

	if _, err := w.Write(lh.Encode()); err != nil {
		return newError(ErrWrite, "commit", e.name, err)
	}

	dataLen := e.compressedSize
	if e.cd.GeneralPurposeBitFlag&flagDataDescriptor != 0 {
		var peek [4]byte
		if _, err := zr.src.ReadAt(peek[:], dataStart+dataLen); err != nil {
			return newError(ErrRead, "commit", e.name, fmt.Errorf("read data descriptor: %w", err))
		}
		_, zip64 := headers.ParseExtraField(lh.ExtraField)[headers.Zip64ExtraFieldTag]
		dataLen += headers.DataDescriptorLen(peek[:], zip64)
	}
	if dataStart+dataLen > zr.fileSize {
		return newError(ErrInconsistent, "commit", e.name, errors.New("entry data exceeds archive"))
	}

	if _, err := io.Copy(w, io.NewSectionReader(zr.src, dataStart, dataLen)); err != nil {
		var ze *Error
		if errors.As(err, &ze) {
			return err
		}
		return newError(ErrWrite, "commit", e.name, err)
	}
	return nil
}

// centralRecord returns the central directory entry of e relocated to offset.
func centralRecord(e *entry, offset int64) headers.CentralDirectory {
	cd := e.cd
	if e.renamed {
		cd.Filename = e.name
		if !isASCII(e.name) {
			cd.GeneralPurposeBitFlag |= flagUTF8
		}
	}

	needO := offset >= math.MaxUint32
	if needO {
		cd.LocalHeaderOffset = math.MaxUint32
	} else {
		cd.LocalHeaderOffset = uint32(offset)
	}

	extra := maps.Clone(cd.ExtraField)
	if extra == nil {
		extra = make(map[uint16][]byte)
	}
	zip64 := headers.EncodeZip64ExtraField(
		uint64(e.uncompressedSize), uint64(e.compressedSize), uint64(offset),
		cd.UncompressedSize == math.MaxUint32, cd.CompressedSize == math.MaxUint32, needO,
	)
	if zip64 == nil {
		delete(extra, headers.Zip64ExtraFieldTag)
	} else {
		extra[headers.Zip64ExtraFieldTag] = zip64
	}
	cd.ExtraField = extra

	return cd
}

func (a *Archive) writeEndRecords(w *byteCountWriter, count int, size, offset int64) error {
	if count >= math.MaxUint16 || size >= math.MaxUint32 || offset >= math.MaxUint32 {
		zip64Offset := w.bytesWritten
		if _, err := w.Write(headers.EncodeZip64EndOfCentralDirRecord(uint64(count), uint64(size), uint64(offset))); err != nil {
			return err
		}
		if _, err := w.Write(headers.EncodeZip64EndOfCentralDirLocator(uint64(zip64Offset))); err != nil {
			return err
		}
	}
	_, err := w.Write(headers.EncodeEndOfCentralDirRecord(count, uint64(size), uint64(offset), a.dir.comment))
	return err
}
