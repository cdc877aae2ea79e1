// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package ast

import "testing"

func TestStringRendering(t *testing.T) {
	cases := []struct {
		name string
		expr Expr
		want string
	}{
		{"boolean true", Boolean{Value: true}, "#t"},
		{"boolean false", Boolean{Value: false}, "#f"},
		{"char", Char{Value: 'a'}, "#\\a"},
		{"number", Number{Text: "3.14"}, "3.14"},
		{"string", String{Value: "hi"}, "\"hi\""},
		{"bytevector", Bytevector{Bytes: []byte{1, 2, 3}}, "#u8(1 2 3)"},
		{"variable", Variable{Name: "x"}, "x"},
		{"empty list", List{}, "()"},
		{"list", List{Items: []Expr{Number{Text: "1"}, Number{Text: "2"}}}, "(1 2)"},
		{"vector", Vector{Items: []Expr{Boolean{Value: true}}}, "#(#t)"},
		{
			"if",
			If{Predicate: Boolean{Value: true}, Consequent: Number{Text: "1"}, Alternative: Number{Text: "2"}},
			"(if #t 1 2)",
		},
		{
			"define",
			Define{Target: Variable{Name: "x"}, Body: Number{Text: "10"}},
			"(define x 10)",
		},
		{
			"set!",
			Set{Target: Variable{Name: "x"}, Body: Number{Text: "11"}},
			"(set! x 11)",
		},
		{
			"lambda",
			Lambda{Formals: []Expr{Variable{Name: "n"}}, Body: []Expr{Variable{Name: "n"}}},
			"(lambda (n) n)",
		},
		{
			"apply no operands",
			Apply{Operator: Variable{Name: "f"}},
			"(f)",
		},
		{
			"apply with operands",
			Apply{Operator: Variable{Name: "f"}, Operands: []Expr{Number{Text: "1"}, Number{Text: "2"}}},
			"(f 1 2)",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.expr.String(); got != c.want {
				t.Errorf("String() = %q, want %q", got, c.want)
			}
		})
	}
}
