// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package reader implements the abanos recursive-descent reader: it turns
// a token stream into an abstract syntax tree, recovering from malformed
// input without losing the next well-formed top-level form.
package reader

import (
	"strconv"

	"github.com/shorbaji/abanos/internal/ast"
	"github.com/shorbaji/abanos/internal/lexer"
	"github.com/shorbaji/abanos/internal/token"
)

// Reader reads successive top-level abanos expressions from a Lexer.
type Reader struct {
	lex *lexer.Lexer
}

// New creates a Reader over the given Lexer.
func New(lex *lexer.Lexer) *Reader {
	return &Reader{lex: lex}
}

// Next reads and returns the next top-level expression, or an error. On a
// syntactic or lexical error it resynchronizes (see recover) so the next
// call to Next starts cleanly at the following top-level form. It returns
// (nil, nil) at end of input.
func (r *Reader) Next() (ast.Expr, error) {
	item, err := r.peekRaw()
	if err != nil {
		r.recover(err)
		return nil, err
	}
	if item.Token == token.EOF {
		return nil, nil
	}

	e, err := r.expr(0)
	if err != nil {
		r.recover(err)
		return nil, err
	}
	return e, nil
}

// recover resynchronizes the token stream to the first token following the
// closing paren of the innermost unfinished form, using the paren depth
// carried by the error. An input that ends mid-form surfaces as an
// UnexpectedTokenError for the EOF token; recover's ParenRight/EOF
// handling then stops at end of input rather than looping. ReadLineError
// (a genuine I/O failure) consumes no further tokens (spec.md §4.2
// invariant).
func (r *Reader) recover(err error) {
	var depth uint16
	switch e := err.(type) {
	case *UnexpectedTokenError:
		depth = e.Depth
	case *LexicalError:
		// The lexer has already consumed the offending input; at depth 0
		// the next token belongs to the following top-level form.
		if e.Depth == 0 {
			return
		}
		depth = e.Depth
	default:
		return
	}

	for {
		item, lexErr := r.lex.Next()
		if depth == 0 {
			return
		}
		if lexErr != nil {
			return
		}
		switch item.Token {
		case token.ParenLeft:
			depth++
		case token.ParenRight:
			depth--
			if depth == 0 {
				return
			}
		case token.EOF:
			return
		}
	}
}

// peek returns the next token without consuming it, converting a lexer
// error into the corresponding reader error at depth. End of input is
// returned as an ordinary EOF item, not as an error.
func (r *Reader) peek(depth uint16) (*lexer.Item, error) {
	item, err := r.lex.Peek()
	if err != nil {
		return nil, fromLexError(err, depth)
	}
	return item, nil
}

// peekRaw is peek at depth 0 (used only by Next to detect end of input
// before starting a form).
func (r *Reader) peekRaw() (*lexer.Item, error) {
	item, err := r.lex.Peek()
	if err != nil {
		return nil, fromLexError(err, 0)
	}
	return item, nil
}

func (r *Reader) expr(depth uint16) (ast.Expr, error) {
	item, err := r.peek(depth)
	if err != nil {
		return nil, err
	}
	switch item.Token {
	case token.Boolean:
		return r.boolean()
	case token.Char:
		return r.char()
	case token.Number:
		return r.number()
	case token.String:
		return r.string()
	case token.Quote:
		return r.quotation(depth)
	case token.HashU8Open:
		return r.bytevector(depth)
	case token.HashOpen:
		return r.vector(depth)
	case token.ParenLeft:
		return r.compound(depth)
	default:
		return r.variable(depth)
	}
}

func (r *Reader) boolean() (ast.Expr, error) {
	item, _ := r.lex.Next()
	return ast.Boolean{Value: item.Value == "#t"}, nil
}

func (r *Reader) char() (ast.Expr, error) {
	item, _ := r.lex.Next()
	return ast.Char{Value: []rune(item.Value)[0]}, nil
}

func (r *Reader) string() (ast.Expr, error) {
	item, _ := r.lex.Next()
	return ast.String{Value: item.Value}, nil
}

func (r *Reader) number() (ast.Expr, error) {
	item, _ := r.lex.Next()
	return ast.Number{Text: item.Value}, nil
}

func (r *Reader) quotation(depth uint16) (ast.Expr, error) {
	r.lex.Next() // consume '
	return r.datum(depth)
}

func (r *Reader) datum(depth uint16) (ast.Expr, error) {
	item, err := r.peek(depth)
	if err != nil {
		return nil, err
	}
	switch item.Token {
	case token.Boolean:
		return r.boolean()
	case token.Char:
		return r.char()
	case token.Number:
		return r.number()
	case token.String:
		return r.string()
	case token.Quote:
		return r.quotation(depth)
	case token.HashU8Open:
		return r.bytevector(depth)
	case token.HashOpen:
		return r.vector(depth)
	case token.ParenLeft:
		return r.compoundDatum(depth)
	case token.Identifier:
		return r.variable(depth)
	default:
		return nil, &UnexpectedTokenError{Token: item.Token.String(), Depth: depth}
	}
}

func (r *Reader) compoundDatum(depth uint16) (ast.Expr, error) {
	r.lex.Next() // consume (
	items, err := r.zeroOrMoreDatum(depth + 1)
	if err != nil {
		return nil, err
	}
	if err := r.parenRight(depth + 1); err != nil {
		return nil, err
	}
	return ast.List{Items: items}, nil
}

func (r *Reader) bytevector(depth uint16) (ast.Expr, error) {
	r.lex.Next() // consume #u8(
	var bytes []byte
	for {
		item, err := r.peek(depth + 1)
		if err != nil {
			return nil, err
		}
		if item.Token != token.Number {
			break
		}
		n, convErr := strconv.Atoi(item.Value)
		if convErr != nil || n < 0 || n > 255 {
			return nil, &UnexpectedTokenError{Token: item.Value, Depth: depth + 1}
		}
		r.lex.Next()
		bytes = append(bytes, byte(n))
	}
	if err := r.parenRight(depth + 1); err != nil {
		return nil, err
	}
	return ast.Bytevector{Bytes: bytes}, nil
}

func (r *Reader) vector(depth uint16) (ast.Expr, error) {
	r.lex.Next() // consume #(
	items, err := r.zeroOrMoreDatum(depth + 1)
	if err != nil {
		return nil, err
	}
	if err := r.parenRight(depth + 1); err != nil {
		return nil, err
	}
	return ast.Vector{Items: items}, nil
}

func (r *Reader) variable(depth uint16) (ast.Expr, error) {
	item, err := r.peek(depth)
	if err != nil {
		return nil, err
	}
	if item.Token != token.Identifier {
		return nil, &UnexpectedTokenError{Token: item.Token.String(), Depth: depth}
	}
	r.lex.Next()
	return ast.Variable{Name: item.Value}, nil
}

// compound dispatches on the first identifier after '(': one of the five
// special-form keywords, or an ordinary application.
func (r *Reader) compound(depth uint16) (ast.Expr, error) {
	if err := r.parenLeft(depth); err != nil {
		return nil, err
	}

	item, err := r.peek(depth + 1)
	if err != nil {
		return nil, err
	}
	if item.Token == token.Identifier {
		switch item.Value {
		case "define":
			return r.definition(depth + 1)
		case "if":
			return r.conditional(depth + 1)
		case "lambda":
			return r.lambda(depth + 1)
		case "quote":
			return r.longQuotation(depth + 1)
		case "set!":
			return r.assignment(depth + 1)
		}
	}
	return r.application(depth + 1)
}

func (r *Reader) definition(depth uint16) (ast.Expr, error) {
	r.lex.Next() // consume define

	item, err := r.peek(depth)
	if err != nil {
		return nil, err
	}
	if item.Token == token.ParenLeft {
		return r.defineLambda(depth)
	}
	return r.defineVariable(depth)
}

func (r *Reader) defineLambda(depth uint16) (ast.Expr, error) {
	if err := r.parenLeft(depth); err != nil {
		return nil, err
	}
	symbol, err := r.variable(depth + 1)
	if err != nil {
		return nil, err
	}
	body, err := r.formalsAndBody(depth + 1)
	if err != nil {
		return nil, err
	}
	return ast.Define{Target: symbol, Body: body}, nil
}

func (r *Reader) defineVariable(depth uint16) (ast.Expr, error) {
	item, err := r.peek(depth)
	if err != nil {
		return nil, err
	}
	if item.Token != token.Identifier {
		return nil, &UnexpectedTokenError{Token: item.Token.String(), Depth: depth}
	}
	r.lex.Next()
	symbol := ast.Variable{Name: item.Value}

	e, err := r.expr(depth)
	if err != nil {
		return nil, err
	}
	if err := r.parenRight(depth); err != nil {
		return nil, err
	}
	return ast.Define{Target: symbol, Body: e}, nil
}

func (r *Reader) conditional(depth uint16) (ast.Expr, error) {
	r.lex.Next() // consume if

	predicate, err := r.expr(depth)
	if err != nil {
		return nil, err
	}
	consequent, err := r.expr(depth)
	if err != nil {
		return nil, err
	}
	alternative, err := r.expr(depth)
	if err != nil {
		return nil, err
	}
	if err := r.parenRight(depth); err != nil {
		return nil, err
	}
	return ast.If{Predicate: predicate, Consequent: consequent, Alternative: alternative}, nil
}

func (r *Reader) lambda(depth uint16) (ast.Expr, error) {
	r.lex.Next() // consume lambda
	if err := r.parenLeft(depth); err != nil {
		return nil, err
	}
	return r.formalsAndBody(depth + 1)
}

// formalsAndBody parses (formal*) body+ given that the opening paren of
// the formals list has already been consumed; depth is the depth inside
// that formals list.
func (r *Reader) formalsAndBody(depth uint16) (ast.Expr, error) {
	formals, err := r.zeroOrMoreExpr(depth)
	if err != nil {
		return nil, err
	}
	if err := r.parenRight(depth); err != nil {
		return nil, err
	}
	body, err := r.zeroOrMoreExpr(depth - 1)
	if err != nil {
		return nil, err
	}
	if err := r.parenRight(depth - 1); err != nil {
		return nil, err
	}
	return ast.Lambda{Formals: formals, Body: body}, nil
}

func (r *Reader) longQuotation(depth uint16) (ast.Expr, error) {
	r.lex.Next() // consume quote
	d, err := r.datum(depth)
	if err != nil {
		return nil, err
	}
	if err := r.parenRight(depth); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Reader) assignment(depth uint16) (ast.Expr, error) {
	r.lex.Next() // consume set!
	target, err := r.expr(depth)
	if err != nil {
		return nil, err
	}
	body, err := r.expr(depth)
	if err != nil {
		return nil, err
	}
	if err := r.parenRight(depth); err != nil {
		return nil, err
	}
	return ast.Set{Target: target, Body: body}, nil
}

// application parses (operator operand*) once the leading paren and any
// special-form keyword check have already been ruled out.
func (r *Reader) application(depth uint16) (ast.Expr, error) {
	operator, err := r.expr(depth)
	if err != nil {
		return nil, err
	}
	operands, err := r.zeroOrMoreExpr(depth)
	if err != nil {
		return nil, err
	}
	if err := r.parenRight(depth); err != nil {
		return nil, err
	}
	return ast.Apply{Operator: operator, Operands: operands}, nil
}

func (r *Reader) parenLeft(depth uint16) error {
	item, err := r.peek(depth)
	if err != nil {
		return err
	}
	if item.Token != token.ParenLeft {
		return &UnexpectedTokenError{Token: item.Token.String(), Depth: depth}
	}
	r.lex.Next()
	return nil
}

func (r *Reader) parenRight(depth uint16) error {
	item, err := r.peek(depth)
	if err != nil {
		return err
	}
	if item.Token != token.ParenRight {
		return &UnexpectedTokenError{Token: item.Token.String(), Depth: depth}
	}
	r.lex.Next()
	return nil
}

// zeroOrMoreExpr reads expr repeatedly until the next token is ")" or
// EOF, which it leaves unconsumed; an error from expr is returned as is.
func (r *Reader) zeroOrMoreExpr(depth uint16) ([]ast.Expr, error) {
	var out []ast.Expr
	for {
		item, err := r.peek(depth)
		if err != nil {
			return nil, err
		}
		if item.Token == token.ParenRight || item.Token == token.EOF {
			return out, nil
		}
		e, err := r.expr(depth)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}

func (r *Reader) zeroOrMoreDatum(depth uint16) ([]ast.Expr, error) {
	var out []ast.Expr
	for {
		item, err := r.peek(depth)
		if err != nil {
			return nil, err
		}
		if item.Token == token.ParenRight || item.Token == token.EOF {
			return out, nil
		}
		e, err := r.datum(depth)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}
