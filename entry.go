// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lounzip

import (
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"time"

	"github.com/lemon4ksan/lounzip/internal/headers"
	"github.com/lemon4ksan/lounzip/internal/sys"
)

// Compression method indicates WinZip AES encryption.
// The actual compression method is stored in extra field.
const winZipAESMarker = 99

// AESEncryptionTag identifies the extra field for WinZip AES encryption metadata,
// including encryption strength and actual compression method.
const AESEncryptionTag uint16 = 0x9901

// General purpose bit flags this package interprets.
const (
	flagEncrypted      uint16 = 0x0001
	flagLZMAEOS        uint16 = 0x0002
	flagDataDescriptor uint16 = 0x0008
	flagUTF8           uint16 = 0x0800
)

// EncryptionMethod represents the encryption algorithm used for file protection.
type EncryptionMethod uint16

const (
	NotEncrypted EncryptionMethod = 0 // No encryption - file stored in plaintext
	ZipCrypto    EncryptionMethod = 1 // Legacy PKWARE encryption
	AES128       EncryptionMethod = 2 // WinZip AES, strength 1
	AES192       EncryptionMethod = 3 // WinZip AES, strength 2
	AES256       EncryptionMethod = 4 // WinZip AES, strength 3
)

func (e EncryptionMethod) String() string {
	switch e {
	case NotEncrypted:
		return "none"
	case ZipCrypto:
		return "ZipCrypto"
	case AES128:
		return "AES-128"
	case AES192:
		return "AES-192"
	case AES256:
		return "AES-256"
	}
	return fmt.Sprintf("encryption(%d)", uint16(e))
}

// EntryInfo describes one archive entry as recorded in the central directory.
type EntryInfo struct {
	Index            int
	Name             string // full name, directories keep their trailing slash
	Size             int64  // uncompressed size
	CompressedSize   int64
	ModTime          time.Time
	Method           CompressionMethod
	EncryptionMethod EncryptionMethod
	CRC32            uint32
	HostSystem       sys.HostSystem
	Mode             fs.FileMode
	Comment          string
}

// IsDir reports whether the entry names a directory.
func (e EntryInfo) IsDir() bool { return strings.HasSuffix(e.Name, "/") }

// Encrypted reports whether the entry needs a password to be opened.
func (e EntryInfo) Encrypted() bool { return e.EncryptionMethod != NotEncrypted }

// entry is the in-memory state of one central directory record.
type entry struct {
	cd                headers.CentralDirectory
	name              string // decoded name
	uncompressedSize  int64
	compressedSize    int64
	localHeaderOffset int64
	method            CompressionMethod
	encryption        EncryptionMethod
	aesVendorVersion  uint16

	deleted bool
	renamed bool
}

func newEntry(cd headers.CentralDirectory) (*entry, error) {
	e := &entry{
		cd:                cd,
		name:              decodeText(cd.Filename, cd.GeneralPurposeBitFlag),
		uncompressedSize:  int64(cd.UncompressedSize),
		compressedSize:    int64(cd.CompressedSize),
		localHeaderOffset: int64(cd.LocalHeaderOffset),
		method:            CompressionMethod(cd.CompressionMethod),
	}

	if field, ok := cd.ExtraField[headers.Zip64ExtraFieldTag]; ok {
		zip64Data := headers.Payload(field)
		pos := 0
		next := func(v *int64) {
			if len(zip64Data) >= pos+8 {
				*v = int64(binary.LittleEndian.Uint64(zip64Data[pos : pos+8]))
				pos += 8
			}
		}
		if cd.UncompressedSize == math.MaxUint32 {
			next(&e.uncompressedSize)
		}
		if cd.CompressedSize == math.MaxUint32 {
			next(&e.compressedSize)
		}
		if cd.LocalHeaderOffset == math.MaxUint32 {
			next(&e.localHeaderOffset)
		}
	}

	switch {
	case cd.CompressionMethod == winZipAESMarker:
		data := headers.Payload(cd.ExtraField[AESEncryptionTag])
		if len(data) < 7 {
			return nil, fmt.Errorf("%s: truncated aes extra field", e.name)
		}
		e.aesVendorVersion = binary.LittleEndian.Uint16(data[0:2])
		switch data[4] {
		case 1:
			e.encryption = AES128
		case 2:
			e.encryption = AES192
		case 3:
			e.encryption = AES256
		default:
			return nil, fmt.Errorf("%s: unknown aes strength %d", e.name, data[4])
		}
		e.method = CompressionMethod(binary.LittleEndian.Uint16(data[5:7]))
	case cd.GeneralPurposeBitFlag&flagEncrypted != 0:
		e.encryption = ZipCrypto
	}

	return e, nil
}

func (e *entry) info(index int) EntryInfo {
	host := sys.HostFromVersion(e.cd.VersionMadeBy)
	mode := sys.FileMode(host, e.cd.ExternalFileAttributes)
	if strings.HasSuffix(e.name, "/") {
		mode |= fs.ModeDir
	}
	return EntryInfo{
		Index:            index,
		Name:             e.name,
		Size:             e.uncompressedSize,
		CompressedSize:   e.compressedSize,
		ModTime:          msDosToTime(e.cd.LastModFileDate, e.cd.LastModFileTime),
		Method:           e.method,
		EncryptionMethod: e.encryption,
		CRC32:            e.cd.CRC32,
		HostSystem:       host,
		Mode:             mode,
		Comment:          decodeText(e.cd.Comment, e.cd.GeneralPurposeBitFlag),
	}
}

// isZip64 reports whether any of the entry's values needs the Zip64 extra field.
func (e *entry) isZip64() bool {
	return e.uncompressedSize >= math.MaxUint32 ||
		e.compressedSize >= math.MaxUint32 ||
		e.localHeaderOffset >= math.MaxUint32
}
