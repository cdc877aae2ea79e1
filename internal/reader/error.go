// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package reader

import (
	"fmt"

	"github.com/shorbaji/abanos/internal/lexer"
)

// UnexpectedTokenError is raised when the parser encounters a token that
// cannot start or continue the production in progress. Depth is the
// recovery depth (open-paren count) at the point of failure, used to
// resynchronize to the enclosing form's closing paren.
type UnexpectedTokenError struct {
	Token string
	Depth uint16
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected token %s at depth %d", e.Token, e.Depth)
}

// LexicalError wraps a lexer.Error with the recovery depth active when it
// was observed.
type LexicalError struct {
	Depth uint16
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("lexical error at depth %d", e.Depth)
}

// ReadLineError is raised when the underlying reader fails outside of a
// lexical token boundary (an I/O error). It does not trigger recovery.
type ReadLineError struct {
	Err error
}

func (e *ReadLineError) Error() string { return "read line error: " + e.Err.Error() }

func fromLexError(e error, depth uint16) error {
	if _, ok := e.(*lexer.Error); ok {
		return &LexicalError{Depth: depth}
	}
	return &ReadLineError{Err: e}
}
