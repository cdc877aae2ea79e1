// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package environment implements abanos's two environment kinds
// (spec.md §4.4): Local, a traditional lexical frame (a mutex-guarded
// map plus a parent pointer), and Remote, a handle onto a distributed
// symbol table reached by message-passing over a channel, falling back
// to a hardcoded standard-procedure table when the remote peer has no
// binding.
package environment

import (
	"context"
	"sort"
	"sync"

	"github.com/shorbaji/abanos/internal/value"
)

// Environment is the common handle type a Context's R (lexical) and D
// (dynamic) fields carry. It satisfies value.EnvironmentHandle so an
// environment can itself be passed around as a first-class Value.
type Environment interface {
	value.Value
	EnvDisplay() string
}

// Local is a traditional lexical frame: a hashmap of bindings and an
// optional parent to search when a symbol isn't found locally.
type Local struct {
	mu       sync.Mutex
	bindings map[string]value.Value
	parent   Environment
}

// NewLocal creates an empty frame, optionally chained to parent.
func NewLocal(parent Environment) *Local {
	return &Local{bindings: make(map[string]value.Value), parent: parent}
}

func (l *Local) String() string     { return "#<env>" }
func (l *Local) EnvDisplay() string { return "#<env>" }

// Parent returns the enclosing frame, or nil at the outermost frame.
func (l *Local) Parent() Environment {
	return l.parent
}

// Lookup searches this frame only (no parent walk); the frame-by-frame
// walk up the parent chain is the evaluator's job, done one Step at a
// time so an arbitrarily long chain never grows the host call stack
// (spec.md §5, "no unbounded native recursion").
func (l *Local) Lookup(symbol string) (value.Value, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.bindings[symbol]
	return v, ok
}

// Set inserts or overwrites symbol in THIS frame, never walking to a
// parent. This is the resolution of spec.md §9's open question: set! on
// an unbound name defines it in the current (innermost) frame rather
// than erroring or searching outward. This deviates from R7RS set!,
// which mutates the nearest enclosing binding.
// It returns the previous value, or value.Null{} if symbol was unbound.
func (l *Local) Set(symbol string, v value.Value) value.Value {
	l.mu.Lock()
	defer l.mu.Unlock()
	old, ok := l.bindings[symbol]
	l.bindings[symbol] = v
	if !ok {
		return value.Null{}
	}
	return old
}

// MsgKind distinguishes the two message shapes a Remote environment may
// send to its peer.
type MsgKind int

const (
	// MsgGet requests the value bound to Path; Reply receives (value, ok).
	MsgGet MsgKind = iota
	// MsgSet installs Value at Path; Reply receives the previous
	// (value, ok), or (nil, false) if Path was previously unbound.
	MsgSet
)

// Reply is the one-shot response to a Msg, sent exactly once down the
// Reply channel by the remote peer.
type Reply struct {
	Value value.Value
	Found bool
}

// Msg is sent over a Remote environment's channel to query or mutate the
// distributed symbol table (spec.md §4.4, "remote message-passing
// environment").
type Msg struct {
	Kind  MsgKind
	Path  string
	Value value.Value // set only for MsgSet
	Reply chan<- Reply
}

// Remote is a handle onto a distributed symbol table reached by
// message-passing: Path is the search prefix (e.g. a user's home
// namespace) and Tx is the channel to the peer that owns it.
type Remote struct {
	Path []string
	Tx   chan<- Msg
}

// NewRemote creates a handle rooted at path, sending requests over tx.
func NewRemote(path []string, tx chan<- Msg) *Remote {
	return &Remote{Path: path, Tx: tx}
}

func (r *Remote) String() string     { return "#<env>" }
func (r *Remote) EnvDisplay() string { return "#<env>" }

func (r *Remote) fullPath(symbol string) string {
	s := ""
	for _, p := range r.Path {
		s += p + "/"
	}
	return s + symbol
}

// Get requests symbol from the remote peer, falling back to the
// hardcoded standard table when the peer has no binding (spec.md §4.4).
// It blocks on the one-shot reply channel or ctx's cancellation,
// whichever comes first.
func (r *Remote) Get(ctx context.Context, symbol string) (value.Value, bool, error) {
	reply := make(chan Reply, 1)
	select {
	case r.Tx <- Msg{Kind: MsgGet, Path: r.fullPath(symbol), Reply: reply}:
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}

	select {
	case rep := <-reply:
		if rep.Found {
			return rep.Value, true, nil
		}
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}

	if v, ok := Standard(symbol); ok {
		return v, true, nil
	}
	return nil, false, nil
}

// Set installs value at symbol on the remote peer, returning the
// previous binding if any.
func (r *Remote) Set(ctx context.Context, symbol string, v value.Value) (value.Value, bool, error) {
	reply := make(chan Reply, 1)
	msg := Msg{Kind: MsgSet, Path: r.fullPath(symbol), Value: v, Reply: reply}
	select {
	case r.Tx <- msg:
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}

	select {
	case rep := <-reply:
		return rep.Value, rep.Found, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// standardTable lists the arity of every procedure the evaluator's
// builtin registry can dispatch to by name (spec.md §4.5 plus the
// supplemented standard procedures SPEC_FULL.md adds). Remote falls back
// to this table when the peer replies that it has no binding; a Get that
// ends through ctx returns ctx's error and does not fall back. A Local
// frame chain falls back
// to it once the outermost frame's Parent is nil, rather than having it
// pre-populated into any frame (see internal/evaluator's stepLookup).
var standardTable = map[string]value.Builtin{
	"+":      {Name: "+", MinArgs: 1, MaxArgs: -1},
	"-":      {Name: "-", MinArgs: 1, MaxArgs: -1},
	"*":      {Name: "*", MinArgs: 1, MaxArgs: -1},
	"call/cc": {Name: "call/cc", MinArgs: 1, MaxArgs: 1},
	"cons":   {Name: "cons", MinArgs: 2, MaxArgs: 2},
	"car":    {Name: "car", MinArgs: 1, MaxArgs: 1},
	"cdr":    {Name: "cdr", MinArgs: 1, MaxArgs: 1},
	"null?":  {Name: "null?", MinArgs: 1, MaxArgs: 1},
	"list":   {Name: "list", MinArgs: 0, MaxArgs: -1},
	"not":    {Name: "not", MinArgs: 1, MaxArgs: 1},
	"eq?":    {Name: "eq?", MinArgs: 2, MaxArgs: 2},
}

// Standard looks symbol up in the hardcoded standard-procedure table.
func Standard(symbol string) (value.Value, bool) {
	b, ok := standardTable[symbol]
	if !ok {
		return nil, false
	}
	return b, true
}

// StandardNames returns the names Standard recognizes, sorted for
// reproducible REPL help/tab-completion output.
func StandardNames() []string {
	names := make([]string, 0, len(standardTable))
	for name := range standardTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
