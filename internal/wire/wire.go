// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package wire implements the JSON wire format for ast.Expr and
// value.Value: a tag-per-variant discriminated union (spec.md §6).
// Function identities and environment handles inside Values are omitted
// from the encoding; a receiving peer reconstitutes built-ins by name
// (spec.md §6, "Environment channel protocol").
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/shorbaji/abanos/internal/ast"
	"github.com/shorbaji/abanos/internal/user"
	"github.com/shorbaji/abanos/internal/value"
)

// envelope is the common shape every encoded Expr/Value shares: a "type"
// discriminator plus variant-specific fields.
type envelope struct {
	Type string `json:"type"`

	Value    *bool            `json:"value,omitempty"`
	Char     *string          `json:"char,omitempty"`
	Text     *string          `json:"text,omitempty"`
	String   *string          `json:"string,omitempty"`
	Bytes    []byte           `json:"bytes,omitempty"`
	Name     *string          `json:"name,omitempty"`
	Items    []json.RawMessage `json:"items,omitempty"`
	Target   json.RawMessage  `json:"target,omitempty"`
	Body1    json.RawMessage  `json:"body,omitempty"`
	Predicate json.RawMessage `json:"predicate,omitempty"`
	Consequent json.RawMessage `json:"consequent,omitempty"`
	Alternative json.RawMessage `json:"alternative,omitempty"`
	Formals  []json.RawMessage `json:"formals,omitempty"`
	BodyList []json.RawMessage `json:"bodyList,omitempty"`
	Operator json.RawMessage `json:"operator,omitempty"`
	Operands []json.RawMessage `json:"operands,omitempty"`
	MinArgs  *int            `json:"minArgs,omitempty"`
	MaxArgs  *int            `json:"maxArgs,omitempty"`
	Email    *string         `json:"email,omitempty"`
}

// MarshalExpr encodes e per the Expression discriminated union
// (spec.md §6): round-tripping through MarshalExpr/UnmarshalExpr
// preserves exact numeric literal text.
func MarshalExpr(e ast.Expr) ([]byte, error) {
	env, err := exprEnvelope(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

func exprEnvelope(e ast.Expr) (*envelope, error) {
	switch v := e.(type) {
	case ast.Boolean:
		return &envelope{Type: "boolean", Value: &v.Value}, nil
	case ast.Char:
		s := string(v.Value)
		return &envelope{Type: "char", Char: &s}, nil
	case ast.Number:
		return &envelope{Type: "number", Text: &v.Text}, nil
	case ast.String:
		return &envelope{Type: "string", String: &v.Value}, nil
	case ast.Bytevector:
		return &envelope{Type: "bytevector", Bytes: v.Bytes}, nil
	case ast.Variable:
		return &envelope{Type: "variable", Name: &v.Name}, nil
	case ast.List:
		items, err := marshalExprList(v.Items)
		if err != nil {
			return nil, err
		}
		return &envelope{Type: "list", Items: items}, nil
	case ast.Vector:
		items, err := marshalExprList(v.Items)
		if err != nil {
			return nil, err
		}
		return &envelope{Type: "vector", Items: items}, nil
	case ast.If:
		pred, err := MarshalExpr(v.Predicate)
		if err != nil {
			return nil, err
		}
		cons, err := MarshalExpr(v.Consequent)
		if err != nil {
			return nil, err
		}
		alt, err := MarshalExpr(v.Alternative)
		if err != nil {
			return nil, err
		}
		return &envelope{Type: "if", Predicate: pred, Consequent: cons, Alternative: alt}, nil
	case ast.Define:
		target, err := MarshalExpr(v.Target)
		if err != nil {
			return nil, err
		}
		body, err := MarshalExpr(v.Body)
		if err != nil {
			return nil, err
		}
		return &envelope{Type: "define", Target: target, Body1: body}, nil
	case ast.Set:
		target, err := MarshalExpr(v.Target)
		if err != nil {
			return nil, err
		}
		body, err := MarshalExpr(v.Body)
		if err != nil {
			return nil, err
		}
		return &envelope{Type: "set", Target: target, Body1: body}, nil
	case ast.Lambda:
		formals, err := marshalExprList(v.Formals)
		if err != nil {
			return nil, err
		}
		body, err := marshalExprList(v.Body)
		if err != nil {
			return nil, err
		}
		return &envelope{Type: "lambda", Formals: formals, BodyList: body}, nil
	case ast.Apply:
		operator, err := MarshalExpr(v.Operator)
		if err != nil {
			return nil, err
		}
		operands, err := marshalExprList(v.Operands)
		if err != nil {
			return nil, err
		}
		return &envelope{Type: "apply", Operator: operator, Operands: operands}, nil
	}
	return nil, fmt.Errorf("wire: unsupported expression type %T", e)
}

func marshalExprList(exprs []ast.Expr) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(exprs))
	for i, e := range exprs {
		raw, err := MarshalExpr(e)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
}

// UnmarshalExpr decodes data into an ast.Expr per its "type" tag.
func UnmarshalExpr(data []byte) (ast.Expr, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return exprFromEnvelope(&env)
}

func exprFromEnvelope(env *envelope) (ast.Expr, error) {
	switch env.Type {
	case "boolean":
		if env.Value == nil {
			return nil, fmt.Errorf("wire: boolean missing value")
		}
		return ast.Boolean{Value: *env.Value}, nil
	case "char":
		if env.Char == nil || len(*env.Char) == 0 {
			return nil, fmt.Errorf("wire: char missing value")
		}
		return ast.Char{Value: []rune(*env.Char)[0]}, nil
	case "number":
		if env.Text == nil {
			return nil, fmt.Errorf("wire: number missing text")
		}
		return ast.Number{Text: *env.Text}, nil
	case "string":
		if env.String == nil {
			return nil, fmt.Errorf("wire: string missing value")
		}
		return ast.String{Value: *env.String}, nil
	case "bytevector":
		return ast.Bytevector{Bytes: env.Bytes}, nil
	case "variable":
		if env.Name == nil {
			return nil, fmt.Errorf("wire: variable missing name")
		}
		return ast.Variable{Name: *env.Name}, nil
	case "list":
		items, err := unmarshalExprList(env.Items)
		if err != nil {
			return nil, err
		}
		return ast.List{Items: items}, nil
	case "vector":
		items, err := unmarshalExprList(env.Items)
		if err != nil {
			return nil, err
		}
		return ast.Vector{Items: items}, nil
	case "if":
		pred, err := UnmarshalExpr(env.Predicate)
		if err != nil {
			return nil, err
		}
		cons, err := UnmarshalExpr(env.Consequent)
		if err != nil {
			return nil, err
		}
		alt, err := UnmarshalExpr(env.Alternative)
		if err != nil {
			return nil, err
		}
		return ast.If{Predicate: pred, Consequent: cons, Alternative: alt}, nil
	case "define":
		target, err := UnmarshalExpr(env.Target)
		if err != nil {
			return nil, err
		}
		body, err := UnmarshalExpr(env.Body1)
		if err != nil {
			return nil, err
		}
		return ast.Define{Target: target, Body: body}, nil
	case "set":
		target, err := UnmarshalExpr(env.Target)
		if err != nil {
			return nil, err
		}
		body, err := UnmarshalExpr(env.Body1)
		if err != nil {
			return nil, err
		}
		return ast.Set{Target: target, Body: body}, nil
	case "lambda":
		formals, err := unmarshalExprList(env.Formals)
		if err != nil {
			return nil, err
		}
		body, err := unmarshalExprList(env.BodyList)
		if err != nil {
			return nil, err
		}
		return ast.Lambda{Formals: formals, Body: body}, nil
	case "apply":
		operator, err := UnmarshalExpr(env.Operator)
		if err != nil {
			return nil, err
		}
		operands, err := unmarshalExprList(env.Operands)
		if err != nil {
			return nil, err
		}
		return ast.Apply{Operator: operator, Operands: operands}, nil
	}
	return nil, fmt.Errorf("wire: unknown expression type %q", env.Type)
}

func unmarshalExprList(raw []json.RawMessage) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(raw))
	for i, r := range raw {
		e, err := UnmarshalExpr(r)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// MarshalValue encodes v per the Value discriminated union (spec.md §6).
// Lambda's captured environment is never serialized. A Builtin carries
// only its Name and arity bounds, which are encoded as is; the evaluator
// finds the native implementation by Name when it is called.
func MarshalValue(v value.Value) ([]byte, error) {
	env, err := valueEnvelope(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

func valueEnvelope(v value.Value) (*envelope, error) {
	switch val := v.(type) {
	case value.Boolean:
		return &envelope{Type: "boolean", Value: &val.Value}, nil
	case value.Char:
		s := string(val.Value)
		return &envelope{Type: "char", Char: &s}, nil
	case value.Number:
		return &envelope{Type: "number", Text: &val.Text}, nil
	case value.String:
		return &envelope{Type: "string", String: &val.Value}, nil
	case value.Bytevector:
		return &envelope{Type: "bytevector", Bytes: val.Bytes}, nil
	case value.Symbol:
		return &envelope{Type: "symbol", Name: &val.Name}, nil
	case value.Null:
		return &envelope{Type: "null"}, nil
	case value.List:
		items, err := marshalValueList(val.Items)
		if err != nil {
			return nil, err
		}
		return &envelope{Type: "list", Items: items}, nil
	case value.Vector:
		items, err := marshalValueList(val.Items)
		if err != nil {
			return nil, err
		}
		return &envelope{Type: "vector", Items: items}, nil
	case value.Builtin:
		min, max := val.MinArgs, val.MaxArgs
		return &envelope{Type: "builtin", Name: &val.Name, MinArgs: &min, MaxArgs: &max}, nil
	case value.Lambda:
		// Captured environment is a local handle, never serialized
		// (spec.md §6): a Lambda crossing the wire loses its closure.
		formals, err := marshalExprList(val.Formals)
		if err != nil {
			return nil, err
		}
		body, err := marshalExprList(val.Body)
		if err != nil {
			return nil, err
		}
		return &envelope{Type: "lambda", Formals: formals, BodyList: body}, nil
	case value.User:
		return &envelope{Type: "user", Name: &val.Name, Email: &val.Email}, nil
	case value.Continuation:
		// Closures are local-process continuations; only their
		// existence, not their content, survives the wire.
		return &envelope{Type: "continuation"}, nil
	}
	return nil, fmt.Errorf("wire: unsupported value type %T", v)
}

func marshalValueList(values []value.Value) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(values))
	for i, v := range values {
		raw, err := MarshalValue(v)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
}

// UnmarshalValue decodes data into a value.Value per its "type" tag.
func UnmarshalValue(data []byte) (value.Value, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return valueFromEnvelope(&env)
}

func valueFromEnvelope(env *envelope) (value.Value, error) {
	switch env.Type {
	case "boolean":
		if env.Value == nil {
			return nil, fmt.Errorf("wire: boolean missing value")
		}
		return value.Boolean{Value: *env.Value}, nil
	case "char":
		if env.Char == nil || len(*env.Char) == 0 {
			return nil, fmt.Errorf("wire: char missing value")
		}
		return value.Char{Value: []rune(*env.Char)[0]}, nil
	case "number":
		if env.Text == nil {
			return nil, fmt.Errorf("wire: number missing text")
		}
		return value.Number{Text: *env.Text}, nil
	case "string":
		if env.String == nil {
			return nil, fmt.Errorf("wire: string missing value")
		}
		return value.String{Value: *env.String}, nil
	case "bytevector":
		return value.Bytevector{Bytes: env.Bytes}, nil
	case "symbol":
		if env.Name == nil {
			return nil, fmt.Errorf("wire: symbol missing name")
		}
		return value.Symbol{Name: *env.Name}, nil
	case "null":
		return value.Null{}, nil
	case "list":
		items, err := unmarshalValueList(env.Items)
		if err != nil {
			return nil, err
		}
		return value.List{Items: items}, nil
	case "vector":
		items, err := unmarshalValueList(env.Items)
		if err != nil {
			return nil, err
		}
		return value.Vector{Items: items}, nil
	case "builtin":
		if env.Name == nil {
			return nil, fmt.Errorf("wire: builtin missing name")
		}
		min, max := 0, -1
		if env.MinArgs != nil {
			min = *env.MinArgs
		}
		if env.MaxArgs != nil {
			max = *env.MaxArgs
		}
		return value.Builtin{Name: *env.Name, MinArgs: min, MaxArgs: max}, nil
	case "lambda":
		formals, err := unmarshalExprList(env.Formals)
		if err != nil {
			return nil, err
		}
		body, err := unmarshalExprList(env.BodyList)
		if err != nil {
			return nil, err
		}
		return value.Lambda{Formals: formals, Body: body}, nil
	case "user":
		name, email := "", ""
		if env.Name != nil {
			name = *env.Name
		}
		if env.Email != nil {
			email = *env.Email
		}
		return value.User{User: user.User{Name: name, Email: email}}, nil
	case "continuation":
		return value.Continuation{}, nil
	}
	return nil, fmt.Errorf("wire: unknown value type %q", env.Type)
}

func unmarshalValueList(raw []json.RawMessage) ([]value.Value, error) {
	out := make([]value.Value, len(raw))
	for i, r := range raw {
		v, err := UnmarshalValue(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
