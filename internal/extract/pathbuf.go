// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package extract

// growthFactor over-allocates the path buffer so that later entries with
// names of similar length reuse it.
const growthFactor = 4

// pathBuilder joins a destination directory and entry names in a buffer
// that is reused for every entry of one archive. Its capacity only grows.
type pathBuilder struct {
	buf []byte
}

// Format returns dir + "/" + name.
func (p *pathBuilder) Format(dir, name string) string {
	need := len(dir) + 1 + len(name)
	if cap(p.buf) < need {
		p.buf = make([]byte, 0, need*growthFactor)
	}
	p.buf = append(p.buf[:0], dir...)
	p.buf = append(p.buf, '/')
	p.buf = append(p.buf, name...)
	return string(p.buf)
}

// Cap reports the current buffer capacity.
func (p *pathBuilder) Cap() int { return cap(p.buf) }
