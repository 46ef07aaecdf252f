// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lounzip

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// CompressionMethod represents the compression algorithm used for a file in the ZIP archive
type CompressionMethod uint16

// Supported compression methods as defined by APPNOTE.TXT
const (
	Stored    CompressionMethod = 0  // No compression - file stored as-is
	Deflated  CompressionMethod = 8  // DEFLATE compression (most common)
	Deflate64 CompressionMethod = 9  // DEFLATE64(tm) enhanced compression
	BZIP2     CompressionMethod = 12 // BZIP2 compression
	LZMA      CompressionMethod = 14 // LZMA compression
	ZStandard CompressionMethod = 93 // Zstandard compression
	XZ        CompressionMethod = 95 // XZ compression
)

func (m CompressionMethod) String() string {
	switch m {
	case Stored:
		return "stored"
	case Deflated:
		return "deflate"
	case Deflate64:
		return "deflate64"
	case BZIP2:
		return "bzip2"
	case LZMA:
		return "lzma"
	case ZStandard:
		return "zstd"
	case XZ:
		return "xz"
	}
	return fmt.Sprintf("method(%d)", uint16(m))
}

// Decompressor turns the (decrypted) compressed data of one entry into its
// plain content. size is the declared uncompressed size.
type Decompressor interface {
	Decompress(src io.Reader, size int64, flags uint16) (io.ReadCloser, error)
}

type decompressorsMap map[CompressionMethod]Decompressor

func defaultDecompressors() decompressorsMap {
	return decompressorsMap{
		Stored:    new(StoredDecompressor),
		Deflated:  new(DeflateDecompressor),
		BZIP2:     new(Bzip2Decompressor),
		LZMA:      new(LZMADecompressor),
		ZStandard: new(ZstdDecompressor),
		XZ:        new(XZDecompressor),
	}
}

// StoredDecompressor implements the "Store" method (no compression)
type StoredDecompressor struct{}

func (sd *StoredDecompressor) Decompress(src io.Reader, _ int64, _ uint16) (io.ReadCloser, error) {
	return io.NopCloser(src), nil
}

// DeflateDecompressor implements the "Deflate" method
type DeflateDecompressor struct{}

func (dd *DeflateDecompressor) Decompress(src io.Reader, _ int64, _ uint16) (io.ReadCloser, error) {
	return flate.NewReader(src), nil
}

type Bzip2Decompressor struct{}

func (bd *Bzip2Decompressor) Decompress(src io.Reader, _ int64, _ uint16) (io.ReadCloser, error) {
	r, err := bzip2.NewReader(src, nil)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// LZMADecompressor reads the ZIP flavour of LZMA: a 4-byte version/size
// prefix followed by the 5 property bytes, with no size field. The classic
// 13-byte header is rebuilt so the stream can be handed to the lzma reader.
type LZMADecompressor struct{}

func (ld *LZMADecompressor) Decompress(src io.Reader, size int64, flags uint16) (io.ReadCloser, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(src, prefix[:]); err != nil {
		return nil, fmt.Errorf("read lzma prefix: %w", err)
	}
	propsLen := int(binary.LittleEndian.Uint16(prefix[2:4]))
	if propsLen != 5 {
		return nil, fmt.Errorf("lzma: unexpected properties size %d", propsLen)
	}

	header := make([]byte, 13)
	if _, err := io.ReadFull(src, header[:5]); err != nil {
		return nil, fmt.Errorf("read lzma properties: %w", err)
	}
	if flags&flagLZMAEOS != 0 {
		for i := 5; i < 13; i++ {
			header[i] = 0xFF
		}
	} else {
		binary.LittleEndian.PutUint64(header[5:], uint64(size))
	}

	r, err := lzma.NewReader(io.MultiReader(bytes.NewReader(header), src))
	if err != nil {
		return nil, err
	}
	return io.NopCloser(r), nil
}

type ZstdDecompressor struct{}

func (zd *ZstdDecompressor) Decompress(src io.Reader, _ int64, _ uint16) (io.ReadCloser, error) {
	d, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}

type XZDecompressor struct{}

func (xd *XZDecompressor) Decompress(src io.Reader, _ int64, _ uint16) (io.ReadCloser, error) {
	r, err := xz.NewReader(src)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(r), nil
}
