// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package console

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/term"
)

// exit terminates the process after an interrupt restored the terminal.
var exit = os.Exit

// echoGuard holds the terminal attributes captured before echo was
// disabled. Restore must be called exactly once.
type echoGuard struct {
	fd    int
	state *term.State

	once sync.Once
	sigs chan os.Signal
	done chan struct{}
}

func disableEcho(fd int) (*echoGuard, error) {
	state, err := term.GetState(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTerminal, err)
	}

	g := &echoGuard{
		fd:    fd,
		state: state,
		sigs:  make(chan os.Signal, 1),
		done:  make(chan struct{}),
	}
	signal.Notify(g.sigs, os.Interrupt, syscall.SIGTERM)
	go g.watch()

	if err := setEcho(fd, false); err != nil {
		g.stop()
		return nil, fmt.Errorf("%w: %w", ErrTerminal, err)
	}
	return g, nil
}

func (g *echoGuard) watch() {
	select {
	case sig := <-g.sigs:
		_ = term.Restore(g.fd, g.state)
		exit(exitStatus(sig))
	case <-g.done:
	}
}

func (g *echoGuard) stop() {
	g.once.Do(func() {
		signal.Stop(g.sigs)
		close(g.done)
	})
}

// Restore puts back the captured terminal attributes.
func (g *echoGuard) Restore() error {
	g.stop()
	if err := term.Restore(g.fd, g.state); err != nil {
		return fmt.Errorf("%w: %w", ErrTerminal, err)
	}
	return nil
}

// exitStatus follows the shell convention of 128 plus the signal number.
func exitStatus(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}
