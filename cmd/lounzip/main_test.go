// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testModTime = time.Date(2024, 3, 5, 14, 7, 0, 0, time.Local)

type zipFile struct {
	name string
	body string
}

func writeZip(t *testing.T, dir, name string, files ...zipFile) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, zf := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     zf.name,
			Method:   zip.Deflate,
			Modified: testModTime,
		})
		require.NoError(t, err)
		_, err = io.WriteString(w, zf.body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

type result struct {
	code   int
	stdout string
	stderr string
}

// runCLI isolates the config lookup so the developer's own settings
// cannot leak into a test.
func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRun_NoArgs(t *testing.T) {
	r := runCLI(t, "")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "no args")
}

func TestRun_UnknownCommand(t *testing.T) {
	r := runCLI(t, "", "z", "archive.zip")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "an unknown argument was provided.")

	r = runCLI(t, "", "l", "--bogus", "archive.zip")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "an unknown argument was provided.")
}

func TestRun_Help(t *testing.T) {
	for _, arg := range []string{"h", "help", "--help"} {
		t.Run(arg, func(t *testing.T) {
			r := runCLI(t, "", arg)
			assert.Equal(t, 0, r.code)
			assert.Contains(t, r.stdout, "lounzip - a unzipping program")
			assert.Contains(t, r.stdout, " (e|x) - extract an zip archive\n")
			assert.Contains(t, r.stdout, " (-o)  - output directory for the unarchived contents\n")
			assert.Empty(t, r.stderr)
		})
	}
}

func TestRun_MissingArchiveArgument(t *testing.T) {
	for _, cmd := range []string{"e", "x", "l", "r", "d"} {
		r := runCLI(t, "", cmd)
		assert.Equal(t, 1, r.code, cmd)
		assert.Contains(t, r.stderr, "no zip file archive was provided.", cmd)
	}
}

func TestExtract_Scenario(t *testing.T) {
	dir := t.TempDir()
	archive := writeZip(t, dir, "archive.zip",
		zipFile{"dir/", ""},
		zipFile{"dir/a.txt", "0123456789"},
	)
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0o755))

	r := runCLI(t, "", "e", "-o", out, archive)
	require.Equal(t, 0, r.code, r.stderr)

	data, err := os.ReadFile(filepath.Join(out, "dir", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
	assert.Equal(t, 1, strings.Count(r.stdout, " inflating: "))
	assert.Contains(t, r.stdout, " inflating: dir/a.txt .. [ok]\n")
}

func TestExtract_ConflictNoKeepsFile(t *testing.T) {
	dir := t.TempDir()
	archive := writeZip(t, dir, "archive.zip",
		zipFile{"dir/", ""},
		zipFile{"dir/a.txt", "0123456789"},
	)
	out := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(filepath.Join(out, "dir"), 0o755))
	existing := filepath.Join(out, "dir", "a.txt")
	require.NoError(t, os.WriteFile(existing, []byte("keep me"), 0o644))

	r := runCLI(t, "n\n", "x", archive, "-o", out)
	require.Equal(t, 0, r.code, r.stderr)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
	assert.Contains(t, r.stdout, "replace dir/a.txt? [y]es, [n]o, [a]ll, [r]ename, [e]xit: ")
	assert.NotContains(t, r.stdout, "inflating")
}

func TestExtract_ExitStopsRemainingArchives(t *testing.T) {
	dir := t.TempDir()
	first := writeZip(t, dir, "first.zip", zipFile{"a.txt", "A"})
	second := writeZip(t, dir, "second.zip", zipFile{"b.txt", "B"})
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "a.txt"), []byte("old"), 0o644))

	r := runCLI(t, "e\n", "e", "-o", out, first, second)
	assert.Equal(t, 0, r.code)
	_, err := os.Stat(filepath.Join(out, "b.txt"))
	assert.True(t, os.IsNotExist(err), "second archive must not be extracted")
}

func TestExtract_AnswerOverflow(t *testing.T) {
	dir := t.TempDir()
	archive := writeZip(t, dir, "archive.zip", zipFile{"a.txt", "A"})
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "a.txt"), []byte("old"), 0o644))

	r := runCLI(t, "yyyyyyyyyyyyyyyy\n", "e", "-o", out, archive)
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "invalid input, exiting...")
}

func TestExtract_AssumeYes(t *testing.T) {
	dir := t.TempDir()
	archive := writeZip(t, dir, "archive.zip", zipFile{"a.txt", "new"})
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "a.txt"), []byte("old"), 0o644))

	r := runCLI(t, "", "e", "-y", "-o", out, archive)
	require.Equal(t, 0, r.code, r.stderr)
	assert.NotContains(t, r.stdout, "replace ")

	data, err := os.ReadFile(filepath.Join(out, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestExtract_AssumeYesFromConfig(t *testing.T) {
	dir := t.TempDir()
	archive := writeZip(t, dir, "archive.zip", zipFile{"a.txt", "new"})
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "a.txt"), []byte("old"), 0o644))

	cfg := filepath.Join(dir, "lounzip.toml")
	body := "assume_yes = true\noutput = \"" + filepath.ToSlash(out) + "\"\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o644))

	r := runCLI(t, "", "e", "--config", cfg, archive)
	require.Equal(t, 0, r.code, r.stderr)

	data, err := os.ReadFile(filepath.Join(out, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestExtract_Errors(t *testing.T) {
	dir := t.TempDir()
	archive := writeZip(t, dir, "archive.zip", zipFile{"a.txt", "A"})

	r := runCLI(t, "", "e", archive, "-o")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "output path is not provided.")

	missingDest := filepath.Join(dir, "nowhere")
	r = runCLI(t, "", "e", "-o", missingDest, archive)
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "error: ")
	assert.Contains(t, r.stderr, "destination path '"+missingDest+"' does not exists.")

	missing := filepath.Join(dir, "missing.zip")
	r = runCLI(t, "", "e", "-o", dir, missing)
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "file '"+missing+"' does not exists.")

	notZip := filepath.Join(dir, "plain.zip")
	require.NoError(t, os.WriteFile(notZip, bytes.Repeat([]byte("x"), 64), 0o644))
	r = runCLI(t, "", "e", "-o", dir, notZip)
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "invalid zip archive.")
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	archive := writeZip(t, dir, "archive.zip",
		zipFile{"docs/", ""},
		zipFile{"docs/readme.txt", "read me"},
		zipFile{"big.bin", strings.Repeat("b", 2048)},
	)

	r := runCLI(t, "", "l", archive)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t,
		"2024-03-05 14:07 docs/ (directory)\n"+
			"2024-03-05 14:07 docs/readme.txt (7 bytes)\n"+
			"2024-03-05 14:07 big.bin (2048 bytes)\n",
		r.stdout)

	r = runCLI(t, "", "l", "--human", archive)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "big.bin (2.0 kB)\n")

	r = runCLI(t, "", "l", "-v", archive)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "deflate")
	assert.Contains(t, r.stdout, "docs/readme.txt (7 bytes)")
}

func TestRename(t *testing.T) {
	dir := t.TempDir()
	archive := writeZip(t, dir, "archive.zip",
		zipFile{"docs/", ""},
		zipFile{"docs/readme.txt", "read me"},
		zipFile{"main.go", "package main"},
	)

	r := runCLI(t, "", "r", archive, "main.go", "cmd.go")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, "changed from 'main.go' to 'cmd.go'.\n", r.stdout)
	assert.Equal(t, []string{"cmd.go", "docs/", "docs/readme.txt"}, zipNames(t, archive))

	r = runCLI(t, "", "r", archive, "docs", "manual")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, []string{"cmd.go", "manual/", "manual/readme.txt"}, zipNames(t, archive))
}

func TestRename_Errors(t *testing.T) {
	dir := t.TempDir()
	archive := writeZip(t, dir, "archive.zip", zipFile{"a.txt", "A"}, zipFile{"b.txt", "B"})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no old name", []string{"r", archive}, "old file name is required."},
		{"no new name", []string{"r", archive, "a.txt"}, "new file name is required."},
		{"empty old", []string{"r", archive, "", "x.txt"}, "old file path cannot be an empty string."},
		{"empty new", []string{"r", archive, "a.txt", ""}, "new file path cannot be an empty string."},
		{"missing", []string{"r", archive, "zzz.txt", "x.txt"}, "no archived file was found with name 'zzz.txt'."},
		{"taken", []string{"r", archive, "a.txt", "b.txt"}, "another file already exists with that name."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runCLI(t, "", tt.args...)
			assert.Equal(t, 1, r.code)
			assert.Contains(t, r.stderr, tt.want)
		})
	}
	assert.Equal(t, []string{"a.txt", "b.txt"}, zipNames(t, archive), "failed renames must not modify the archive")
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	archive := writeZip(t, dir, "archive.zip",
		zipFile{"docs/", ""},
		zipFile{"docs/readme.txt", "read me"},
		zipFile{"a.txt", "A"},
		zipFile{"b.txt", "B"},
	)

	r := runCLI(t, "", "d", archive, "a.txt", "docs")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t,
		"file 'a.txt' was deleted from the archive.\n"+
			"file 'docs' was deleted from the archive.\n",
		r.stdout)
	assert.Equal(t, []string{"b.txt"}, zipNames(t, archive))
}

func TestDelete_NotFoundCommitsEarlierNames(t *testing.T) {
	dir := t.TempDir()
	archive := writeZip(t, dir, "archive.zip", zipFile{"a.txt", "A"}, zipFile{"b.txt", "B"})

	r := runCLI(t, "", "d", archive, "a.txt", "nope.txt")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stdout, "file 'a.txt' was deleted from the archive.")
	assert.Contains(t, r.stderr, "no archived file was found with name 'nope.txt'.")
	assert.Equal(t, []string{"b.txt"}, zipNames(t, archive))
}

func TestDelete_Errors(t *testing.T) {
	dir := t.TempDir()
	archive := writeZip(t, dir, "archive.zip", zipFile{"a.txt", "A"})

	r := runCLI(t, "", "d", archive)
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "file name is required.")

	r = runCLI(t, "", "d", archive, "")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "file path cannot be an empty string.")
	assert.Equal(t, []string{"a.txt"}, zipNames(t, archive))
}
