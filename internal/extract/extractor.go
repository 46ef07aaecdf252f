// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package extract unpacks archive entries into a destination directory,
// negotiating with the operator when a destination file already exists.
//
// Entries are processed strictly in archive order. For every entry the
// destination path is resolved first, then any conflict is settled, then
// a password and a replacement name are acquired as needed, and only then
// are the bytes streamed to disk. Every failure other than a rejected
// rename target or an unreadable answer ends the whole extraction.
package extract

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/lemon4ksan/lounzip"
	"github.com/lemon4ksan/lounzip/internal/console"
)

const (
	dirPerm  fs.FileMode = 0o777
	filePerm fs.FileMode = 0o644
)

// Archive is the read side of an opened archive.
type Archive interface {
	Path() string
	NumEntries() int
	Stat(index int) (lounzip.EntryInfo, error)
	Open(index int) (io.ReadCloser, error)
	OpenEncrypted(index int, password []byte) (io.ReadCloser, error)
	Close() error
}

// Opener opens the archive stored at path.
type Opener func(path string) (Archive, error)

// Prompter answers interactive questions. *console.Console implements it.
type Prompter interface {
	ReadLine(size int) (string, error)
	ReadPassword() ([]byte, error)
	ReadRenameTarget() (string, error)
}

// Outcome summarises one extracted archive.
type Outcome struct {
	Extracted   int
	Skipped     int
	Directories int
	// Exited reports that the operator chose to stop. The caller should
	// end the command successfully without processing further archives.
	Exited bool
}

// Extractor extracts archives onto a filesystem.
type Extractor struct {
	fs        afero.Fs
	prompt    Prompter
	open      Opener
	out       io.Writer
	log       *log.Logger
	assumeYes bool
	okMark    string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithOpener replaces the archive opener.
func WithOpener(open Opener) Option {
	return func(x *Extractor) { x.open = open }
}

// WithOutput sets where prompts and progress are written.
func WithOutput(w io.Writer) Option {
	return func(x *Extractor) { x.out = w }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(x *Extractor) { x.log = l }
}

// WithAssumeYes replaces every existing file without asking.
func WithAssumeYes(yes bool) Option {
	return func(x *Extractor) { x.assumeYes = yes }
}

// WithOKMark sets the text printed after each extracted file.
func WithOKMark(mark string) Option {
	return func(x *Extractor) { x.okMark = mark }
}

// New returns an Extractor writing to fsys and asking prompt for answers.
func New(fsys afero.Fs, prompt Prompter, opts ...Option) *Extractor {
	x := &Extractor{
		fs:     fsys,
		prompt: prompt,
		open:   openArchive,
		out:    os.Stdout,
		log:    log.Default(),
		okMark: "[ok]",
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func openArchive(path string) (Archive, error) {
	a, err := lounzip.Open(path)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// session is the state of one archive extraction.
type session struct {
	*Extractor

	archive Archive
	base    string
	dest    string
	path    pathBuilder

	allOK         bool
	renamePending bool
	password      []byte

	outcome Outcome
}

// Extract unpacks the archive at archivePath into the existing directory
// dest. The archive is closed on every return path.
func (x *Extractor) Extract(archivePath, dest string) (Outcome, error) {
	if info, err := x.fs.Stat(dest); err != nil || !info.IsDir() {
		return Outcome{}, fatalf(ErrMissingDestination, err,
			"destination path '%s' does not exists.", dest)
	}

	a, err := x.open(archivePath)
	if err != nil {
		if lounzip.CodeOf(err) == lounzip.ErrNoEnt {
			return Outcome{}, fatalf(ErrMissingArchive, err, "file '%s' does not exists.", archivePath)
		}
		return Outcome{}, err
	}
	defer a.Close()

	s := &session{
		Extractor: x,
		archive:   a,
		base:      filepath.Base(archivePath),
		dest:      dest,
		allOK:     x.assumeYes,
	}
	x.log.Debug("extracting", "archive", archivePath, "dest", dest, "entries", a.NumEntries())

	for i := 0; i < a.NumEntries(); i++ {
		if err := s.extractEntry(i); err != nil {
			return s.outcome, err
		}
		if s.outcome.Exited {
			break
		}
	}
	return s.outcome, nil
}

func (s *session) extractEntry(index int) error {
	defer s.release()

	info, err := s.archive.Stat(index)
	if err != nil {
		return err
	}

	if !filepath.IsLocal(strings.TrimSuffix(info.Name, "/")) {
		s.log.Warn("skipping entry outside the destination", "name", info.Name)
		s.outcome.Skipped++
		return nil
	}

	target := s.path.Format(s.dest, info.Name)

	if info.IsDir() {
		if err := s.fs.MkdirAll(target, dirPerm); err != nil && !errors.Is(err, fs.ErrExist) {
			return fatalf(ErrFilesystem, err, "mkdir %s: %v", target, err)
		}
		s.outcome.Directories++
		return nil
	}

	if !s.allOK {
		if exists, _ := afero.Exists(s.fs, target); exists {
			d, err := s.resolveConflict(info.Name)
			if err != nil {
				return err
			}
			switch d {
			case DecisionNo:
				s.outcome.Skipped++
				return nil
			case DecisionExit:
				s.outcome.Exited = true
				return nil
			case DecisionAll:
				s.allOK = true
			case DecisionRename:
				s.renamePending = true
			}
		}
	}

	return s.inflate(index, info, target)
}

// inflate streams one file entry to target, or to the name chosen by the
// operator when a rename is pending.
func (s *session) inflate(index int, info lounzip.EntryInfo, target string) error {
	var (
		rc  io.ReadCloser
		err error
	)
	if info.Encrypted() {
		fmt.Fprintf(s.out, "[%s] %s password: ", s.base, info.Name)
		s.password, err = s.prompt.ReadPassword()
		if err != nil {
			return fatalf(ErrInputRead, err, "cannot take standard input.")
		}
		rc, err = s.archive.OpenEncrypted(index, s.password)
	} else {
		rc, err = s.archive.Open(index)
	}
	if err != nil {
		return err
	}
	defer rc.Close()

	shown := info.Name
	if s.renamePending {
		if target, err = s.renameTarget(); err != nil {
			return err
		}
		shown = target
	}

	if err := s.fs.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("remove failed", "path", target, "err", err)
		s.log.Warn("if unlink() failed to remove the older files, you may notice corrupted output files.")
	}
	if parent := filepath.Dir(target); parent != "." {
		if err := s.fs.MkdirAll(parent, dirPerm); err != nil {
			return fatalf(ErrFilesystem, err, "mkdir %s: %v", parent, err)
		}
	}

	fmt.Fprintf(s.out, " inflating: %s .. ", shown)

	f, err := s.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return fatalf(ErrFilesystem, err, "open %s: %v", target, err)
	}

	n, err := transfer(f, rc, info.Size)
	if err != nil {
		f.Close()
		var we *writeError
		if errors.As(err, &we) {
			return fatalf(ErrFilesystem, err, "write %s: %v", target, we.err)
		}
		return err
	}
	if err := f.Close(); err != nil {
		return fatalf(ErrFilesystem, err, "close %s: %v", target, err)
	}
	if err := rc.Close(); err != nil {
		return err
	}

	s.log.Debug("inflated", "name", info.Name, "bytes", n)
	fmt.Fprintln(s.out, s.okMark)
	s.outcome.Extracted++
	return nil
}

// renameTarget asks for a replacement path until the operator gives one
// that is non-empty, not taken and not only whitespace.
func (s *session) renameTarget() (string, error) {
	for {
		fmt.Fprint(s.out, "new name: ")

		name, err := s.prompt.ReadRenameTarget()
		switch {
		case errors.Is(err, console.ErrOverflow):
			s.log.Warn("invalid path name.")
			continue
		case err != nil:
			return "", fatalf(ErrInputRead, err, "cannot take standard input.")
		}

		if name == "" {
			s.log.Warn("path name cannot be empty.")
			continue
		}
		if exists, _ := afero.Exists(s.fs, name); exists {
			fmt.Fprintf(s.out, "similar file with name '%s' exists...\n", name)
			continue
		}
		if strings.TrimSpace(name) == "" {
			s.log.Warn("invalid path name.")
			continue
		}
		return name, nil
	}
}

// release drops per-entry state before the next entry.
func (s *session) release() {
	clear(s.password)
	s.password = nil
	s.renamePending = false
}
