// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package wire

import (
	"testing"

	"github.com/shorbaji/abanos/internal/ast"
	"github.com/shorbaji/abanos/internal/value"
)

func TestExprRoundTrip(t *testing.T) {
	exprs := []ast.Expr{
		ast.Boolean{Value: true},
		ast.Char{Value: 'z'},
		ast.Number{Text: "3.14"},
		ast.String{Value: "hello"},
		ast.Bytevector{Bytes: []byte{1, 2, 255}},
		ast.Variable{Name: "x"},
		ast.List{Items: []ast.Expr{ast.Number{Text: "1"}, ast.Number{Text: "2"}}},
		ast.Vector{Items: []ast.Expr{ast.Boolean{Value: false}}},
		ast.If{Predicate: ast.Boolean{Value: true}, Consequent: ast.Number{Text: "1"}, Alternative: ast.Number{Text: "2"}},
		ast.Define{Target: ast.Variable{Name: "x"}, Body: ast.Number{Text: "10"}},
		ast.Set{Target: ast.Variable{Name: "x"}, Body: ast.Number{Text: "11"}},
		ast.Lambda{Formals: []ast.Expr{ast.Variable{Name: "n"}}, Body: []ast.Expr{ast.Variable{Name: "n"}}},
		ast.Apply{Operator: ast.Variable{Name: "f"}, Operands: []ast.Expr{ast.Number{Text: "1"}}},
	}

	for _, e := range exprs {
		data, err := MarshalExpr(e)
		if err != nil {
			t.Fatalf("MarshalExpr(%v): %v", e, err)
		}
		got, err := UnmarshalExpr(data)
		if err != nil {
			t.Fatalf("UnmarshalExpr(%s): %v", data, err)
		}
		if got.String() != e.String() {
			t.Errorf("round-trip %v: got %v, want %v", e, got, e)
		}
	}
}

func TestValueRoundTrip(t *testing.T) {
	values := []value.Value{
		value.Boolean{Value: true},
		value.Char{Value: 'q'},
		value.Number{Text: "42"},
		value.String{Value: "abanos"},
		value.Bytevector{Bytes: []byte{9, 8, 7}},
		value.Symbol{Name: "foo"},
		value.Null{},
		value.List{Items: []value.Value{value.Number{Text: "1"}, value.Number{Text: "2"}}},
		value.Vector{Items: []value.Value{value.Boolean{Value: true}}},
		value.Builtin{Name: "+", MinArgs: 1, MaxArgs: -1},
	}

	for _, v := range values {
		data, err := MarshalValue(v)
		if err != nil {
			t.Fatalf("MarshalValue(%v): %v", v, err)
		}
		got, err := UnmarshalValue(data)
		if err != nil {
			t.Fatalf("UnmarshalValue(%s): %v", data, err)
		}
		if got.String() != v.String() {
			t.Errorf("round-trip %v: got %v, want %v", v, got, v)
		}
	}
}

func TestLambdaLosesCapturedEnvironmentOnTheWire(t *testing.T) {
	l := value.Lambda{
		Formals: []ast.Expr{ast.Variable{Name: "n"}},
		Body:    []ast.Expr{ast.Variable{Name: "n"}},
	}
	data, err := MarshalValue(l)
	if err != nil {
		t.Fatalf("MarshalValue: %v", err)
	}
	got, err := UnmarshalValue(data)
	if err != nil {
		t.Fatalf("UnmarshalValue: %v", err)
	}
	back, ok := got.(value.Lambda)
	if !ok {
		t.Fatalf("UnmarshalValue(lambda) = %#v, want value.Lambda", got)
	}
	if back.Captured != nil {
		t.Errorf("unmarshaled Lambda.Captured should be nil, got %v", back.Captured)
	}
}

func TestContinuationOnlyExistenceSurvives(t *testing.T) {
	data, err := MarshalValue(value.Continuation{Closure: "anything"})
	if err != nil {
		t.Fatalf("MarshalValue: %v", err)
	}
	if string(data) != `{"type":"continuation"}` {
		t.Errorf("Continuation envelope = %s, want bare type tag", data)
	}
	got, err := UnmarshalValue(data)
	if err != nil {
		t.Fatalf("UnmarshalValue: %v", err)
	}
	if _, ok := got.(value.Continuation); !ok {
		t.Errorf("UnmarshalValue(continuation) = %#v, want value.Continuation", got)
	}
}
