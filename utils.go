// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lounzip

import (
	"io"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// byteCountWriter counts bytes written to a writer.
type byteCountWriter struct {
	dest         io.Writer
	bytesWritten int64
}

func (w *byteCountWriter) Write(p []byte) (int, error) {
	n, err := w.dest.Write(p)
	w.bytesWritten += int64(n)
	return n, err
}

// msDosToTime interprets a DOS date/time pair as a wall clock reading in
// the local time zone, which is how archivers record it.
func msDosToTime(dosDate uint16, dosTime uint16) time.Time {
	day := dosDate & 0x1F
	month := (dosDate >> 5) & 0x0F
	year := int((dosDate>>9)&0x7F) + 1980
	second := (dosTime & 0x1F) * 2
	minute := (dosTime >> 5) & 0x3F
	hour := (dosTime >> 11) & 0x1F

	if month < 1 || month > 12 {
		month = 1
	}
	if day < 1 || day > 31 {
		day = 1
	}

	return time.Date(year, time.Month(month), int(day), int(hour), int(minute), int(second), 0, time.Local)
}

// decodeText converts a raw name or comment to UTF-8. Without the language
// encoding flag the bytes are code page 437, unless they already happen to
// be valid UTF-8 (many archivers forget to set the flag).
func decodeText(raw string, flags uint16) string {
	if flags&flagUTF8 != 0 || isASCII(raw) {
		return raw
	}
	if utf8.ValidString(raw) {
		return raw
	}
	decoded, err := charmap.CodePage437.NewDecoder().String(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
