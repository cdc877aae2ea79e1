// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package environment

import (
	"context"
	"sync"

	"github.com/shorbaji/abanos/internal/value"
)

// Server is an in-process stand-in for the distributed symbol table a
// Remote environment's channel normally addresses: a mutex-guarded map
// of path to value.Value, served by Serve over a Msg channel. It is the
// natural target to point a Remote handle at for tests and single-process
// use; a real deployment replaces it with
// an actual networked peer speaking the same Msg/Reply protocol
// (spec.md §6).
type Server struct {
	mu   sync.RWMutex
	data map[string]value.Value
}

// NewServer creates an empty symbol table.
func NewServer() *Server {
	return &Server{data: make(map[string]value.Value)}
}

// Get retrieves the value bound to path, if any.
func (s *Server) Get(path string) (value.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[path]
	return v, ok
}

// Put stores value at path, returning the previous binding if any.
func (s *Server) Put(path string, v value.Value) (value.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.data[path]
	s.data[path] = v
	return old, ok
}

// Serve answers Msg requests arriving on rx until ctx is cancelled or rx
// is closed. Each message gets one reply attempt that never blocks the
// server loop: if the Reply channel has no room and no waiting receiver,
// the reply is dropped (spec.md §5,
// "Cancellation and timeouts" — a dropped reply channel must not wedge
// the server).
func (s *Server) Serve(ctx context.Context, rx <-chan Msg) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-rx:
			if !ok {
				return
			}
			s.handle(msg)
		}
	}
}

func (s *Server) handle(msg Msg) {
	var reply Reply
	switch msg.Kind {
	case MsgGet:
		v, found := s.Get(msg.Path)
		reply = Reply{Value: v, Found: found}
	case MsgSet:
		old, found := s.Put(msg.Path, msg.Value)
		reply = Reply{Value: old, Found: found}
	}
	select {
	case msg.Reply <- reply:
	default:
	}
}
