// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lounzip

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"io/fs"
	"math"

	"github.com/lemon4ksan/lounzip/internal/headers"
)

// directory is the parsed central directory of an archive.
type directory struct {
	entries []*entry
	comment string
	zip64   bool
}

// zipReader handles low-level reading of ZIP archive structure.
type zipReader struct {
	src           io.ReaderAt
	fileSize      int64
	decompressors decompressorsMap
}

func newZipReader(src io.ReaderAt, size int64) *zipReader {
	return &zipReader{
		src:           src,
		fileSize:      size,
		decompressors: defaultDecompressors(),
	}
}

// readDirectory locates the end of central directory record, follows the
// Zip64 locator when the 32-bit fields overflowed, and decodes every entry.
func (zr *zipReader) readDirectory() (directory, error) {
	endDir, endOffset, err := zr.findAndReadEndOfCentralDir()
	if err != nil {
		return directory{}, err
	}
	if endDir.ThisDiskNum != 0 || endDir.DiskNumWithTheStartOfCentralDir != 0 {
		return directory{}, newError(ErrMultidisk, "open", "", nil)
	}

	dir := directory{comment: endDir.Comment}
	centralDirOffset, entriesNum := int64(endDir.CentralDirOffset), int64(endDir.TotalNumberOfEntries)

	if endDir.CentralDirOffset == math.MaxUint32 || endDir.TotalNumberOfEntries == math.MaxUint16 ||
		endDir.CentralDirSize == math.MaxUint32 {
		zip64EndDir, err := zr.findAndReadZip64EndOfCentralDir(endOffset)
		if err != nil {
			return directory{}, err
		}
		if zip64EndDir.ThisDiskNum != 0 || zip64EndDir.DiskNumWithTheStartOfCentralDir != 0 {
			return directory{}, newError(ErrMultidisk, "open", "", nil)
		}
		centralDirOffset, entriesNum = int64(zip64EndDir.CentralDirOffset), int64(zip64EndDir.TotalNumberOfEntries)
		dir.zip64 = true
	}

	if centralDirOffset < 0 || centralDirOffset > zr.fileSize {
		return directory{}, newError(ErrNoZip, "open", "", fmt.Errorf("central directory offset %d out of range", centralDirOffset))
	}

	dir.entries, err = zr.readCentralDir(centralDirOffset, entriesNum)
	if err != nil {
		return directory{}, err
	}
	return dir, nil
}

// findAndReadEndOfCentralDir scans backwards for the End of Central
// Directory record and returns it together with its offset.
func (zr *zipReader) findAndReadEndOfCentralDir() (headers.EndOfCentralDirectory, int64, error) {
	var end headers.EndOfCentralDirectory

	if zr.fileSize < headers.EndOfCentralDirLen {
		return end, 0, newError(ErrNoZip, "open", "", errors.New("file too small"))
	}

	const bufSize = 1024
	buf := make([]byte, bufSize)

	searchLimit := min(int64(math.MaxUint16)+headers.EndOfCentralDirLen, zr.fileSize)

	// The window slides from the end of the file towards its start, with a
	// 3-byte overlap so signatures crossing a boundary are found.
	for scanned := int64(0); scanned < searchLimit; {
		readSize := min(bufSize, searchLimit-scanned)
		readPos := zr.fileSize - scanned - readSize

		n, err := zr.src.ReadAt(buf[:readSize], readPos)
		if err != nil && err != io.EOF {
			return end, 0, newError(ErrRead, "open", "", err)
		}
		if n < 4 {
			break
		}

		chunk := buf[:n]
		for p := n - 4; p >= 0; p-- {
			if binary.LittleEndian.Uint32(chunk[p:p+4]) != headers.EndOfCentralDirSignature {
				continue
			}
			recordOffset := readPos + int64(p)
			if recordOffset+headers.EndOfCentralDirLen > zr.fileSize {
				continue
			}

			sr := io.NewSectionReader(zr.src, recordOffset+4, zr.fileSize-(recordOffset+4))
			end, err := headers.ReadEndOfCentralDir(sr)
			if err != nil {
				// A stray signature inside the comment; keep looking.
				continue
			}
			return end, recordOffset, nil
		}

		if readPos == 0 {
			break
		}
		scanned += int64(n) - 3
	}

	return end, 0, newError(ErrNoZip, "open", "", errors.New("no end of central directory signature found"))
}

// findAndReadZip64EndOfCentralDir reads the locator placed right before the
// EOCD record and the Zip64 record it points to.
func (zr *zipReader) findAndReadZip64EndOfCentralDir(endOffset int64) (headers.Zip64EndOfCentralDirectory, error) {
	var zip64End headers.Zip64EndOfCentralDirectory

	zip64LocatorOffset := endOffset - headers.Zip64LocatorLen
	if zip64LocatorOffset < 0 {
		return zip64End, newError(ErrNoZip, "open", "", errors.New("invalid zip64 locator offset"))
	}

	locReader := io.NewSectionReader(zr.src, zip64LocatorOffset, headers.Zip64LocatorLen)
	if !zr.verifySignature(locReader, headers.Zip64EndOfCentralDirLocatorSignature) {
		return zip64End, newError(ErrNoZip, "open", "", errors.New("expected zip64 end of central directory locator signature"))
	}

	zip64Locator, err := headers.ReadZip64EndOfCentralDirLocator(locReader)
	if err != nil {
		return zip64End, newError(ErrRead, "open", "", err)
	}
	if zip64Locator.TotalNumberOfDisks > 1 {
		return zip64End, newError(ErrMultidisk, "open", "", nil)
	}

	offset := int64(zip64Locator.Zip64EndOfCentralDirOffset)
	if offset < 0 || offset >= zip64LocatorOffset {
		return zip64End, newError(ErrNoZip, "open", "", errors.New("invalid zip64 end of central directory offset"))
	}

	zip64EocdReader := io.NewSectionReader(zr.src, offset, zip64LocatorOffset-offset)
	if !zr.verifySignature(zip64EocdReader, headers.Zip64EndOfCentralDirSignature) {
		return zip64End, newError(ErrNoZip, "open", "", errors.New("expected zip64 end of central directory signature"))
	}

	zip64End, err = headers.ReadZip64EndOfCentralDir(zip64EocdReader)
	if err != nil {
		return zip64End, newError(ErrRead, "open", "", err)
	}
	return zip64End, nil
}

// readCentralDir reads the central directory entries starting at the specified offset.
func (zr *zipReader) readCentralDir(offset int64, entries int64) ([]*entry, error) {
	safeCap := entries
	if safeCap > 1024*1024 {
		safeCap = 1024
	}
	list := make([]*entry, 0, safeCap)

	cdReader := io.NewSectionReader(zr.src, offset, zr.fileSize-offset)

	for i := int64(0); i < entries; i++ {
		if !zr.verifySignature(cdReader, headers.CentralDirectorySignature) {
			return nil, newError(ErrNoZip, "open", "", fmt.Errorf("expected central directory signature at entry %d", i))
		}

		cd, err := headers.ReadCentralDirEntry(cdReader)
		if err != nil {
			return nil, newError(ErrNoZip, "open", "", fmt.Errorf("decode central dir entry: %w", err))
		}

		e, err := newEntry(cd)
		if err != nil {
			return nil, newError(ErrInconsistent, "open", "", err)
		}
		list = append(list, e)
	}

	return list, nil
}

// localHeader reads the local file header of e.
func (zr *zipReader) localHeader(e *entry) (headers.LocalFileHeader, error) {
	if e.localHeaderOffset < 0 || e.localHeaderOffset >= zr.fileSize {
		return headers.LocalFileHeader{}, newError(ErrInconsistent, "open", e.name, errors.New("local header offset out of range"))
	}
	sr := io.NewSectionReader(zr.src, e.localHeaderOffset, zr.fileSize-e.localHeaderOffset)
	lh, err := headers.ReadLocalFileHeader(sr)
	if errors.Is(err, headers.ErrSignature) {
		return lh, newError(ErrInconsistent, "open", e.name, err)
	}
	if err != nil {
		return lh, newError(ErrRead, "open", e.name, err)
	}
	return lh, nil
}

// openEntry returns a stream of the plain content of e. It reads the local
// file header, handles decryption if needed, and sets up decompression
// with CRC32 verification.
func (zr *zipReader) openEntry(e *entry, password []byte) (io.ReadCloser, error) {
	lh, err := zr.localHeader(e)
	if err != nil {
		return nil, err
	}

	dataOffset := e.localHeaderOffset + lh.Size()
	if dataOffset+e.compressedSize > zr.fileSize {
		return nil, newError(ErrInconsistent, "open", e.name, errors.New("entry data exceeds archive"))
	}
	dataR := io.NewSectionReader(zr.src, dataOffset, e.compressedSize)

	var wrappedR io.Reader = dataR
	if e.encryption != NotEncrypted {
		if password == nil {
			return nil, newError(ErrNoPassword, "open", e.name, nil)
		}

		switch e.encryption {
		case ZipCrypto:
			wrappedR, err = newZipCryptoReader(io.LimitReader(dataR, e.compressedSize), password,
				lh.GeneralPurposeBitFlag, e.cd.CRC32, lh.LastModFileTime)
		case AES128, AES192, AES256:
			wrappedR, err = newAesReader(dataR, password, e.encryption, e.compressedSize)
		default:
			return nil, newError(ErrEncrNotSupp, "open", e.name, nil)
		}
		if errors.Is(err, errPasswordMismatch) {
			return nil, newError(ErrWrongPassword, "open", e.name, err)
		}
		if err != nil {
			return nil, newError(ErrRead, "open", e.name, err)
		}
	}

	decompressor, ok := zr.decompressors[e.method]
	if !ok {
		return nil, newError(ErrCompNotSupp, "open", e.name, fmt.Errorf("method %v", e.method))
	}

	rc, err := decompressor.Decompress(wrappedR, e.uncompressedSize, e.cd.GeneralPurposeBitFlag)
	if err != nil {
		return nil, newError(ErrZlib, "open", e.name, err)
	}

	// AE-2 entries store no CRC; the authentication code protects them instead.
	checkCRC := !(e.encryption >= AES128 && e.aesVendorVersion == 2)

	return &checksumReader{
		rc:       rc,
		name:     e.name,
		hash:     crc32.NewIEEE(),
		want:     e.cd.CRC32,
		checkCRC: checkCRC,
		size:     uint64(e.uncompressedSize),
	}, nil
}

// verifySignature checks whether the next 4 bytes match the given signature.
func (zr *zipReader) verifySignature(r io.Reader, s uint32) bool {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false
	}
	return binary.LittleEndian.Uint32(buf[:]) == s
}

// checksumReader wraps a decompressed stream to verify its CRC32 and size.
// The checksum is compared on Close once the declared size has been read.
type checksumReader struct {
	rc       io.ReadCloser
	name     string
	hash     hash.Hash32
	want     uint32
	checkCRC bool
	read     uint64
	size     uint64
	eof      bool
	closed   bool
}

func (cr *checksumReader) Read(p []byte) (int, error) {
	if cr.closed {
		return 0, newError(ErrZipClosed, "read", cr.name, nil)
	}
	n, err := cr.rc.Read(p)
	if n > 0 {
		cr.read += uint64(n)
		if cr.read > cr.size {
			return n, newError(ErrInconsistent, "read", cr.name, fmt.Errorf("read %d, want %d", cr.read, cr.size))
		}
		cr.hash.Write(p[:n])
	}
	switch {
	case err == io.EOF:
		cr.eof = true
		if cr.read < cr.size {
			return n, newError(ErrEOF, "read", cr.name, io.ErrUnexpectedEOF)
		}
		return n, io.EOF
	case err != nil:
		return n, classifyReadError(err, cr.name)
	}
	return n, nil
}

// Close verifies the content when the whole declared size was consumed.
// Streams abandoned before that are released without verification.
func (cr *checksumReader) Close() error {
	if cr.closed {
		return nil
	}
	cr.closed = true
	defer cr.rc.Close()

	if cr.read < cr.size {
		return nil
	}

	if !cr.eof {
		// Pull the end of stream so trailers such as the AES MAC are checked.
		var probe [1]byte
		for i := 0; i < 16; i++ {
			n, err := cr.rc.Read(probe[:])
			if n > 0 {
				return newError(ErrInconsistent, "close", cr.name, errors.New("data beyond declared size"))
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				return classifyReadError(err, cr.name)
			}
		}
	}

	if cr.checkCRC {
		if got := cr.hash.Sum32(); got != cr.want {
			return newError(ErrCRC, "close", cr.name, fmt.Errorf("got %08x, want %08x", got, cr.want))
		}
	}
	return nil
}

func classifyReadError(err error, name string) error {
	var pathErr *fs.PathError
	switch {
	case errors.Is(err, errAuthentication):
		return newError(ErrCRC, "read", name, err)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return newError(ErrEOF, "read", name, err)
	case errors.As(err, &pathErr):
		return newError(ErrRead, "read", name, err)
	}
	return newError(ErrCompressedData, "read", name, err)
}
