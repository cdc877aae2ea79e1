// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package abanos provides the public API for the abanos interpreter.
package abanos

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shorbaji/abanos/internal/closure"
	"github.com/shorbaji/abanos/internal/environment"
	"github.com/shorbaji/abanos/internal/evaluator"
	"github.com/shorbaji/abanos/internal/lexer"
	"github.com/shorbaji/abanos/internal/reader"
	"github.com/shorbaji/abanos/internal/user"
	"github.com/shorbaji/abanos/internal/value"
)

// Runtime is the abanos interpreter runtime: one global lexical
// environment plus the user and dynamic environment every evaluation
// runs under (spec.md §3's Context, held across calls to Eval).
type Runtime struct {
	global  *environment.Local
	dynamic environment.Environment
	user    user.User
	timeout time.Duration
}

// New creates a new abanos runtime with the given options.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		global:  environment.NewLocal(nil),
		timeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.dynamic == nil {
		r.dynamic = r.global
	}
	return r
}

// Eval reads and evaluates every top-level form in input in order,
// returning the display string of the last form's value. A reader error
// on one form does not abort evaluation of the forms that follow it
// (spec.md §8, "after yielding an error the reader resynchronizes").
func (r *Runtime) Eval(input string) (string, error) {
	return r.EvalReader(strings.NewReader(input))
}

// EvalReader evaluates abanos source read from reader.
func (r *Runtime) EvalReader(rd io.Reader) (string, error) {
	rdr := reader.New(lexer.New(rd))

	var last value.Value
	var lastErr error
	for {
		expr, err := rdr.Next()
		if err != nil {
			lastErr = err
			if _, ok := err.(*reader.ReadLineError); ok {
				// A genuine I/O failure on the underlying reader: it
				// does not resynchronize and the same error would
				// recur forever, so stop rather than loop.
				break
			}
			continue
		}
		if expr == nil {
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		v, err := evaluator.Evaluate(ctx, expr, closure.Context{R: r.global, D: r.dynamic, U: r.user})
		cancel()
		if err != nil {
			lastErr = err
			continue
		}
		lastErr = nil
		last = v
	}

	if lastErr != nil {
		return "", lastErr
	}
	if last == nil {
		return "", nil
	}
	return last.String(), nil
}

// EvalFile evaluates an abanos file.
func (r *Runtime) EvalFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return r.EvalReader(f)
}
