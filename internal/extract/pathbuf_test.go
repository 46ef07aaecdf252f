// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathBuilder_Format(t *testing.T) {
	var p pathBuilder

	assert.Equal(t, "out/dir/a.txt", p.Format("out", "dir/a.txt"))
	assert.Equal(t, "./x", p.Format(".", "x"))
	assert.Equal(t, "out/", p.Format("out", ""))
}

func TestPathBuilder_Growth(t *testing.T) {
	var p pathBuilder

	p.Format("out", "a.txt")
	first := p.Cap()
	assert.Equal(t, len("out/a.txt")*growthFactor, first)

	// Similar names reuse the buffer.
	p.Format("out", "b.txt")
	p.Format("out", "dir/cc.go")
	assert.Equal(t, first, p.Cap())

	long := strings.Repeat("n", 100)
	got := p.Format("out", long)
	assert.Equal(t, "out/"+long, got)
	grown := p.Cap()
	assert.Equal(t, len("out/"+long)*growthFactor, grown)

	// Capacity never shrinks.
	p.Format("o", "x")
	assert.Equal(t, grown, p.Cap())
}

func TestPathBuilder_ResultsAreIndependent(t *testing.T) {
	var p pathBuilder

	a := p.Format("out", "first.txt")
	b := p.Format("out", "other.txt")
	assert.Equal(t, "out/first.txt", a)
	assert.Equal(t, "out/other.txt", b)
}
