// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package abanos

import (
	"time"

	"github.com/shorbaji/abanos/internal/environment"
	"github.com/shorbaji/abanos/internal/user"
	"github.com/shorbaji/abanos/internal/value"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithUser attaches the given identity to every Context this Runtime
// evaluates under; captured continuations carry it along (spec.md §3).
func WithUser(name, email string) Option {
	return func(r *Runtime) {
		r.user = user.User{Name: name, Email: email}
	}
}

// WithTimeout bounds how long a single top-level form's evaluation may
// run before its environment lookups are cancelled (spec.md §5 leaves
// deadlines to the host; the core itself defines none).
func WithTimeout(timeout time.Duration) Option {
	return func(r *Runtime) {
		r.timeout = timeout
	}
}

// WithRemoteEnvironment configures the Runtime's dynamic environment (D
// in spec.md §3's Context) as a handle onto a distributed symbol table
// reached by message-passing over tx, rooted at path.
func WithRemoteEnvironment(path []string, tx chan<- environment.Msg) Option {
	return func(r *Runtime) {
		r.dynamic = environment.NewRemote(path, tx)
	}
}

// WithGlobalBinding pre-populates the top-level lexical environment
// before any source is evaluated, e.g. to seed constants a host
// application wants available to every program.
func WithGlobalBinding(name string, v value.Value) Option {
	return func(r *Runtime) {
		r.global.Set(name, v)
	}
}
