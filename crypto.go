// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lounzip

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha1"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

var (
	errPasswordMismatch = errors.New("password verification failed")
	errAuthentication   = errors.New("aes authentication code mismatch")
)

const zipCryptoHeaderLen = 12

type zipCryptoReader struct {
	source io.Reader
	cipher *zipCipher
}

// newZipCryptoReader consumes and checks the 12-byte encryption header.
// The last header byte must equal the high byte of the CRC, or of the DOS
// time when the sizes were deferred to a data descriptor.
func newZipCryptoReader(src io.Reader, password []byte, flags uint16, crc32Val uint32, modTime uint16) (io.Reader, error) {
	cipher := newZipCipher(password)

	header := make([]byte, zipCryptoHeaderLen)
	if _, err := io.ReadFull(src, header); err != nil {
		return nil, fmt.Errorf("read crypto header: %w", err)
	}
	cipher.Decrypt(header)

	var expectedByte byte
	if flags&flagDataDescriptor != 0 {
		expectedByte = byte(modTime >> 8)
	} else {
		expectedByte = byte(crc32Val >> 24)
	}

	if header[11] != expectedByte {
		return nil, errPasswordMismatch
	}

	return &zipCryptoReader{
		source: src,
		cipher: cipher,
	}, nil
}

func (r *zipCryptoReader) Read(p []byte) (int, error) {
	n, err := r.source.Read(p)
	if n > 0 {
		r.cipher.Decrypt(p[:n])
	}
	return n, err
}

const cipherMagic = 134775813

// zipCipher implements the legacy ZipCrypto algorithm.
type zipCipher struct {
	k0, k1, k2 uint32
}

func newZipCipher(password []byte) *zipCipher {
	z := &zipCipher{
		k0: 0x12345678,
		k1: 0x23456789,
		k2: 0x34567890,
	}
	for _, b := range password {
		z.updateKeys(b)
	}
	return z
}

func (z *zipCipher) updateKeys(b byte) {
	z.k0 = crc32.IEEETable[(z.k0^uint32(b))&0xff] ^ (z.k0 >> 8)
	z.k1 = (z.k1+(z.k0&0xff))*cipherMagic + 1
	z.k2 = crc32.IEEETable[(z.k2^uint32(byte(z.k1>>24)))&0xff] ^ (z.k2 >> 8)
}

func (z *zipCipher) magicByte() byte {
	t := z.k2 | 2
	return byte((t * (t ^ 1)) >> 8)
}

func (z *zipCipher) Encrypt(buf []byte) {
	for i, b := range buf {
		c := b ^ z.magicByte()
		z.updateKeys(b)
		buf[i] = c
	}
}

func (z *zipCipher) Decrypt(buf []byte) {
	for i, c := range buf {
		b := c ^ z.magicByte()
		z.updateKeys(b)
		buf[i] = b
	}
}

// WinZip AES constants
const (
	aesMacSize    = 10 // HMAC-SHA1 truncated to 10 bytes
	aesPvvSize    = 2  // Password Verification Value
	aesIterations = 1000
)

// aesParams returns key and salt lengths for an AES strength.
func aesParams(m EncryptionMethod) (keySize, saltSize int, ok bool) {
	switch m {
	case AES128:
		return 16, 8, true
	case AES192:
		return 24, 12, true
	case AES256:
		return 32, 16, true
	}
	return 0, 0, false
}

// aesOverhead is the number of bytes the encryption adds to the entry data.
func aesOverhead(m EncryptionMethod) int64 {
	_, saltSize, _ := aesParams(m)
	return int64(saltSize + aesPvvSize + aesMacSize)
}

type aesReader struct {
	limitR io.Reader
	macSrc io.Reader
	stream *winZipCounter
	mac    hash.Hash
	done   bool
}

// newAesReader creates a reader that handles WinZip AES decryption.
// src must be positioned at the salt; compressedSize covers salt, PVV,
// payload and MAC.
func newAesReader(src io.Reader, password []byte, method EncryptionMethod, compressedSize int64) (io.Reader, error) {
	keySize, saltSize, ok := aesParams(method)
	if !ok {
		return nil, fmt.Errorf("aes strength %v", method)
	}
	if compressedSize < aesOverhead(method) {
		return nil, errors.New("invalid aes entry size (too small)")
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(src, salt); err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}
	pvv := make([]byte, aesPvvSize)
	if _, err := io.ReadFull(src, pvv); err != nil {
		return nil, fmt.Errorf("read pvv: %w", err)
	}

	dk := pbkdf2.Key(password, salt, aesIterations, 2*keySize+aesPvvSize, sha1.New)
	encKey, macKey, wantPvv := dk[:keySize], dk[keySize:2*keySize], dk[2*keySize:]
	if !hmac.Equal(pvv, wantPvv) {
		return nil, errPasswordMismatch
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, err
	}

	return &aesReader{
		limitR: io.LimitReader(src, compressedSize-aesOverhead(method)),
		macSrc: src,
		stream: newWinZipCounter(block),
		mac:    hmac.New(sha1.New, macKey),
	}, nil
}

func (r *aesReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	n, err := r.limitR.Read(p)
	if n > 0 {
		r.mac.Write(p[:n])
		r.stream.XORKeyStream(p[:n], p[:n])
	}

	if err == io.EOF {
		r.done = true
		expected := make([]byte, aesMacSize)
		if _, macErr := io.ReadFull(r.macSrc, expected); macErr != nil {
			return n, fmt.Errorf("read auth mac: %w", macErr)
		}
		if !hmac.Equal(r.mac.Sum(nil)[:aesMacSize], expected) {
			return n, errAuthentication
		}
	}

	return n, err
}

// winZipCounter implements cipher.Stream for WinZip AES-CTR mode.
// WinZip increments the 128-bit counter little endian, whereas
// cipher.NewCTR is big endian.
type winZipCounter struct {
	block   cipher.Block
	counter [aes.BlockSize]byte
	buffer  [aes.BlockSize]byte
	pos     int
}

func newWinZipCounter(block cipher.Block) *winZipCounter {
	c := &winZipCounter{block: block}
	c.counter[0] = 1
	return c
}

func (c *winZipCounter) XORKeyStream(dst, src []byte) {
	for i := range src {
		if c.pos == 0 {
			c.block.Encrypt(c.buffer[:], c.counter[:])
			for j := 0; j < aes.BlockSize; j++ {
				c.counter[j]++
				if c.counter[j] != 0 {
					break
				}
			}
		}
		dst[i] = src[i] ^ c.buffer[c.pos]
		c.pos = (c.pos + 1) % aes.BlockSize
	}
}
