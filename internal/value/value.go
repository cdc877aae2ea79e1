// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package value defines the abanos runtime value model: the results
// expressions evaluate to, including first-class continuations and
// environment handles (spec.md §3).
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shorbaji/abanos/internal/ast"
	"github.com/shorbaji/abanos/internal/user"
)

// Value is the interface every runtime value implements.
type Value interface {
	// String returns the R7RS-like display rendering of the value.
	String() string
}

// Boolean is a runtime boolean. Only Boolean{false} is falsey; every other
// value, including Null and Boolean{true}, is truthy (spec.md §4.5).
type Boolean struct{ Value bool }

func (b Boolean) String() string {
	if b.Value {
		return "#t"
	}
	return "#f"
}

// Char is a runtime character.
type Char struct{ Value rune }

func (c Char) String() string { return "#\\" + string(c.Value) }

// Number is a runtime integer/rational/decimal, carried as text; see
// spec.md Non-goals (no numeric tower beyond integer addition).
type Number struct{ Text string }

func (n Number) String() string { return n.Text }

// String is a runtime string.
type String struct{ Value string }

func (s String) String() string { return s.Value }

// Bytevector is a runtime byte vector.
type Bytevector struct{ Bytes []byte }

func (b Bytevector) String() string {
	parts := make([]string, len(b.Bytes))
	for i, v := range b.Bytes {
		parts[i] = strconv.Itoa(int(v))
	}
	return "#u8(" + strings.Join(parts, " ") + ")"
}

// Symbol is an interned-by-value identifier.
type Symbol struct{ Name string }

func (s Symbol) String() string { return s.Name }

// List is a runtime proper list of values.
type List struct{ Items []Value }

func (l List) String() string {
	parts := make([]string, len(l.Items))
	for i, v := range l.Items {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Vector is a runtime vector of values.
type Vector struct{ Items []Value }

func (v Vector) String() string {
	parts := make([]string, len(v.Items))
	for i, item := range v.Items {
		parts[i] = item.String()
	}
	return "#(" + strings.Join(parts, " ") + ")"
}

// Null is the distinguished empty-list/unit value, also used as the
// result of Define (spec.md §4.5, "Unspecified").
type Null struct{}

func (Null) String() string { return "()" }

// EnvironmentHandle is an opaque handle type; the concrete type living
// behind this interface is defined in package environment, which imports
// this package. Kept as an interface here (rather than environment.Value)
// to avoid an import cycle between value and environment.
type EnvironmentHandle interface {
	Value
	// EnvDisplay returns the "#<env>" style rendering; implemented by
	// environment.Local/environment.Remote.
	EnvDisplay() string
}

// Lambda is a runtime procedure value: formals, body, and the lexical
// environment captured at the point of (lambda ...) evaluation.
type Lambda struct {
	Formals []ast.Expr
	Body    []ast.Expr
	Captured EnvironmentHandle
}

func (Lambda) String() string { return "#<procedure>" }

// Builtin is a native standard procedure descriptor (spec.md §3): a name
// plus its arity bounds. The implementing function is never carried on
// the value itself (it cannot survive a wire round-trip); package
// evaluator holds the name-to-implementation registry and looks a
// Builtin up by Name when it is called.
type Builtin struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 means unbounded
}

func (b Builtin) String() string { return "#<builtin:" + b.Name + ">" }

// User wraps user.User as a first-class value, mirroring Context.U
// (spec.md §3): users travel with a captured continuation, not just
// with the Context that created it.
type User struct{ user.User }

func (u User) String() string { return "#<user:" + u.Name + ">" }

// Continuation wraps a reified closure as a first-class value (produced by
// call/cc). The concrete Closure type lives in package closure; stored
// here as an opaque interface to avoid value<->closure import cycles.
type Continuation struct {
	Closure any
}

func (Continuation) String() string { return "#<continuation>" }

// FromExpr converts a self-evaluating Expr leaf into a Value, total on
// Boolean/Char/Number/String/Bytevector/Vector/List/Variable and failing
// on every other Expr variant ("invalid list element"), matching
// original_source/lib/src/value.rs's TryFrom<Expr>.
func FromExpr(e ast.Expr) (Value, error) {
	switch v := e.(type) {
	case ast.Boolean:
		return Boolean{Value: v.Value}, nil
	case ast.Char:
		return Char{Value: v.Value}, nil
	case ast.Number:
		return Number{Text: v.Text}, nil
	case ast.String:
		return String{Value: v.Value}, nil
	case ast.Bytevector:
		return Bytevector{Bytes: v.Bytes}, nil
	case ast.Variable:
		return Symbol{Name: v.Name}, nil
	case ast.List:
		items := make([]Value, len(v.Items))
		for i, item := range v.Items {
			val, err := FromExpr(item)
			if err != nil {
				return nil, err
			}
			items[i] = val
		}
		return List{Items: items}, nil
	case ast.Vector:
		items := make([]Value, len(v.Items))
		for i, item := range v.Items {
			val, err := FromExpr(item)
			if err != nil {
				return nil, err
			}
			items[i] = val
		}
		return Vector{Items: items}, nil
	default:
		return nil, fmt.Errorf("invalid list element")
	}
}

// IsTruthy reports whether v is anything other than Boolean{false}
// (spec.md §4.5, "any value other than #f is truthy").
func IsTruthy(v Value) bool {
	b, ok := v.(Boolean)
	return !ok || b.Value
}
