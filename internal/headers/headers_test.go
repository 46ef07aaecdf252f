// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package headers

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// binary.Read cannot fill the string fields of the real structs.
type rawCentralDirectory struct {
	Signature              uint32
	VersionMadeBy          uint16
	VersionNeededToExtract uint16
	GeneralPurposeBitFlag  uint16
	CompressionMethod      uint16
	LastModFileTime        uint16
	LastModFileDate        uint16
	CRC32                  uint32
	CompressedSize         uint32
	UncompressedSize       uint32
	FilenameLength         uint16
	ExtraFieldLength       uint16
	FileCommentLength      uint16
	DiskNumberStart        uint16
	InternalFileAttributes uint16
	ExternalFileAttributes uint32
	LocalHeaderOffset      uint32
}

func TestLocalFileHeader_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		header LocalFileHeader
	}{
		{
			name: "Standard file",
			header: LocalFileHeader{
				VersionNeededToExtract: 20,
				CompressionMethod:      8,
				CRC32:                  0x12345678,
				CompressedSize:         100,
				UncompressedSize:       200,
				FilenameLength:         8,
				Filename:               "test.txt",
			},
		},
		{
			name: "With extra field",
			header: LocalFileHeader{
				VersionNeededToExtract: 45,
				GeneralPurposeBitFlag:  0x0808,
				FilenameLength:         14,
				ExtraFieldLength:       8,
				Filename:               "folder/doc.txt",
				ExtraField:             []byte{0x55, 0x54, 0x04, 0x00, 1, 2, 3, 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := tt.header.Encode()
			if int64(len(encoded)) != tt.header.Size() {
				t.Fatalf("encoded length %d, want %d", len(encoded), tt.header.Size())
			}

			got, err := ReadLocalFileHeader(bytes.NewReader(encoded))
			if err != nil {
				t.Fatalf("ReadLocalFileHeader() error = %v", err)
			}
			if got.Filename != tt.header.Filename {
				t.Errorf("Filename = %q, want %q", got.Filename, tt.header.Filename)
			}
			if got.CRC32 != tt.header.CRC32 || got.GeneralPurposeBitFlag != tt.header.GeneralPurposeBitFlag {
				t.Errorf("fixed fields mismatch: got %+v", got)
			}
			if !bytes.Equal(got.ExtraField, tt.header.ExtraField) && len(tt.header.ExtraField) > 0 {
				t.Errorf("ExtraField = %x, want %x", got.ExtraField, tt.header.ExtraField)
			}
		})
	}
}

func TestReadLocalFileHeader_BadSignature(t *testing.T) {
	buf := make([]byte, LocalFileHeaderLen)
	binary.LittleEndian.PutUint32(buf, CentralDirectorySignature)

	if _, err := ReadLocalFileHeader(bytes.NewReader(buf)); err != ErrSignature {
		t.Errorf("expected ErrSignature, got %v", err)
	}
}

func TestCentralDirectory_Encode(t *testing.T) {
	zip64 := EncodeZip64ExtraField(0, 0, 1<<33, false, false, true)
	cd := CentralDirectory{
		VersionMadeBy:          0x031e,
		VersionNeededToExtract: 45,
		CompressionMethod:      8,
		CRC32:                  0xdeadbeef,
		CompressedSize:         10,
		UncompressedSize:       20,
		ExternalFileAttributes: 0o100644 << 16,
		LocalHeaderOffset:      0xFFFFFFFF,
		Filename:               "a/b.txt",
		Comment:                "note",
		ExtraField:             map[uint16][]byte{Zip64ExtraFieldTag: zip64},
	}

	encoded := cd.Encode()

	var raw rawCentralDirectory
	if err := binary.Read(bytes.NewReader(encoded), binary.LittleEndian, &raw); err != nil {
		t.Fatalf("binary.Read failed: %v", err)
	}
	if raw.Signature != CentralDirectorySignature {
		t.Errorf("Signature = %x", raw.Signature)
	}
	if raw.FilenameLength != 7 || raw.FileCommentLength != 4 || int(raw.ExtraFieldLength) != len(zip64) {
		t.Errorf("length fields = %d/%d/%d", raw.FilenameLength, raw.ExtraFieldLength, raw.FileCommentLength)
	}

	// Skip the signature the way the directory scanner does.
	got, err := ReadCentralDirEntry(bytes.NewReader(encoded[4:]))
	if err != nil {
		t.Fatalf("ReadCentralDirEntry() error = %v", err)
	}
	if got.Filename != cd.Filename || got.Comment != cd.Comment {
		t.Errorf("got name=%q comment=%q", got.Filename, got.Comment)
	}
	field, ok := got.ExtraField[Zip64ExtraFieldTag]
	if !ok {
		t.Fatal("zip64 extra field lost")
	}
	if off := binary.LittleEndian.Uint64(Payload(field)); off != 1<<33 {
		t.Errorf("zip64 offset = %d", off)
	}
}

func TestEndOfCentralDir_RoundTrip(t *testing.T) {
	encoded := EncodeEndOfCentralDirRecord(3, 150, 1000, "archive comment")
	if binary.LittleEndian.Uint32(encoded) != EndOfCentralDirSignature {
		t.Fatal("missing signature")
	}

	end, err := ReadEndOfCentralDir(bytes.NewReader(encoded[4:]))
	if err != nil {
		t.Fatalf("ReadEndOfCentralDir() error = %v", err)
	}
	if end.TotalNumberOfEntries != 3 || end.CentralDirSize != 150 || end.CentralDirOffset != 1000 {
		t.Errorf("got %+v", end)
	}
	if end.Comment != "archive comment" {
		t.Errorf("Comment = %q", end.Comment)
	}
}

func TestZip64Records_RoundTrip(t *testing.T) {
	record := EncodeZip64EndOfCentralDirRecord(70000, 1<<20, 1<<34)
	end, err := ReadZip64EndOfCentralDir(bytes.NewReader(record[4:]))
	if err != nil {
		t.Fatalf("ReadZip64EndOfCentralDir() error = %v", err)
	}
	if end.TotalNumberOfEntries != 70000 || end.CentralDirOffset != 1<<34 || end.Size != 44 {
		t.Errorf("got %+v", end)
	}

	locator := EncodeZip64EndOfCentralDirLocator(1 << 35)
	loc, err := ReadZip64EndOfCentralDirLocator(bytes.NewReader(locator[4:]))
	if err != nil {
		t.Fatalf("ReadZip64EndOfCentralDirLocator() error = %v", err)
	}
	if loc.Zip64EndOfCentralDirOffset != 1<<35 || loc.TotalNumberOfDisks != 1 {
		t.Errorf("got %+v", loc)
	}
}

func TestDataDescriptorLen(t *testing.T) {
	sig := binary.LittleEndian.AppendUint32(nil, DataDescriptorSignature)
	crc := []byte{1, 2, 3, 4}

	tests := []struct {
		name  string
		first []byte
		zip64 bool
		want  int64
	}{
		{"signed", sig, false, 16},
		{"unsigned", crc, false, 12},
		{"signed zip64", sig, true, 24},
		{"unsigned zip64", crc, true, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DataDescriptorLen(tt.first, tt.zip64); got != tt.want {
				t.Errorf("DataDescriptorLen() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseExtraField_Truncated(t *testing.T) {
	raw := []byte{
		0x01, 0x00, 0x08, 0x00, 1, 2, 3, 4, 5, 6, 7, 8, // complete zip64
		0x99, 0x99, 0x10, 0x00, 1, 2, // size larger than remaining
	}
	m := ParseExtraField(raw)
	if len(m) != 1 {
		t.Fatalf("expected 1 field, got %d", len(m))
	}
	if len(Payload(m[Zip64ExtraFieldTag])) != 8 {
		t.Errorf("payload length = %d", len(Payload(m[Zip64ExtraFieldTag])))
	}
}
