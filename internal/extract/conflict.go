// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package extract

import (
	"errors"
	"fmt"

	"github.com/lemon4ksan/lounzip/internal/console"
)

// conflictBufSize is the read buffer for one answer, newline included.
const conflictBufSize = 10

// Decision is the operator's answer to an overwrite prompt.
type Decision int

const (
	DecisionInvalid Decision = iota
	DecisionYes
	DecisionNo
	DecisionAll
	DecisionRename
	DecisionExit
)

var decisionNames = map[Decision]string{
	DecisionInvalid: "invalid",
	DecisionYes:     "yes",
	DecisionNo:      "no",
	DecisionAll:     "all",
	DecisionRename:  "rename",
	DecisionExit:    "exit",
}

func (d Decision) String() string {
	if name, ok := decisionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// classify looks at the first byte of an answer only.
func classify(answer string) Decision {
	if answer == "" {
		return DecisionInvalid
	}
	switch answer[0] {
	case 'y':
		return DecisionYes
	case 'n':
		return DecisionNo
	case 'a':
		return DecisionAll
	case 'r':
		return DecisionRename
	case 'e':
		return DecisionExit
	default:
		return DecisionInvalid
	}
}

// resolveConflict asks whether an existing file may be replaced and
// re-prompts until a valid answer arrives. Oversized answers and read
// failures are fatal.
func (s *session) resolveConflict(name string) (Decision, error) {
	for {
		fmt.Fprintf(s.out, "replace %s? [y]es, [n]o, [a]ll, [r]ename, [e]xit: ", name)

		answer, err := s.prompt.ReadLine(conflictBufSize)
		switch {
		case errors.Is(err, console.ErrOverflow):
			return DecisionInvalid, fatalf(ErrInputOverflow, err, "invalid input, exiting...")
		case err != nil:
			return DecisionInvalid, fatalf(ErrInputRead, err, "reading input stream failed.")
		}

		d := classify(answer)
		if d == DecisionInvalid {
			s.log.Warn("invalid input, ignoring...")
			continue
		}
		s.log.Debug("conflict resolved", "name", name, "decision", d)
		return d, nil
	}
}
