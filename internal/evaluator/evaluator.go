// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package evaluator implements the abanos CPS evaluator: a trampoline
// (Step) that advances one reified closure.Closure at a time, and the
// native standard-procedure implementations (+, call/cc, and the
// procedures SPEC_FULL.md supplements) that a Call closure dispatches to
// (spec.md §4.5).
package evaluator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shorbaji/abanos/internal/ast"
	"github.com/shorbaji/abanos/internal/closure"
	"github.com/shorbaji/abanos/internal/environment"
	"github.com/shorbaji/abanos/internal/value"
)

// Evaluate reads expr to completion under ectx, returning the value it
// evaluates to. It never recurses the Go call stack for abanos-level
// control flow: every step is driven through Step (spec.md §5).
func Evaluate(ctx context.Context, expr ast.Expr, ectx closure.Context) (value.Value, error) {
	cont := closure.Continuation{
		Closure: closure.Eval{Context: ectx, K: closure.Return{Context: ectx}},
		Arg:     closure.ArgExpr{Expr: expr},
	}

	for {
		if _, done := cont.Closure.(closure.Return); done {
			v, ok := cont.Arg.(closure.ArgValue)
			if !ok {
				return nil, fmt.Errorf("evaluation did not terminate in a value")
			}
			return v.Value, nil
		}

		next, err := Step(ctx, cont)
		if err != nil {
			return nil, err
		}
		cont = next
	}
}

// Step advances c by exactly one closure (spec.md §4.5's per-variant
// semantics). Each case reads c.Arg (the value or expression the
// previous step produced) and returns the next Continuation to drive.
func Step(ctx context.Context, c closure.Continuation) (closure.Continuation, error) {
	switch k := c.Closure.(type) {

	case closure.Eval:
		e, ok := c.Arg.(closure.ArgExpr)
		if !ok {
			return closure.Continuation{}, fmt.Errorf("eval: expected expression argument")
		}
		return stepEval(k.Context, k.K, e.Expr)

	case closure.EvalBody:
		body, ok := c.Arg.(closure.ArgExprList)
		if !ok {
			return closure.Continuation{}, fmt.Errorf("eval-body: expected expression list argument")
		}
		return stepEvalBody(k.Context, k.K, body.Exprs)

	case closure.EvalBodyAfter:
		return closure.Continuation{
			Closure: closure.EvalBody{Context: k.Context, K: k.K},
			Arg:     closure.ArgExprList{Exprs: k.Body},
		}, nil

	case closure.Evlis:
		exprs, ok := c.Arg.(closure.ArgExprList)
		if !ok {
			return closure.Continuation{}, fmt.Errorf("evlis: expected expression list argument")
		}
		return stepEvlis(k.Context, k.K, exprs.Exprs, nil)

	case closure.EvlisAfter:
		v, ok := c.Arg.(closure.ArgValue)
		if !ok {
			return closure.Continuation{}, fmt.Errorf("evlis-after: expected value argument")
		}
		return stepEvlis(k.Context, k.K, k.Exprs, append(k.Acc, v.Value))

	case closure.Apply:
		return closure.Continuation{
			Closure: closure.Eval{Context: k.Context, K: closure.EvalOperatorAfter{
				Operands: k.Operands, Context: k.Context, K: k.K,
			}},
			Arg: closure.ArgExpr{Expr: k.Operator},
		}, nil

	case closure.EvalOperatorAfter:
		operator, ok := c.Arg.(closure.ArgValue)
		if !ok {
			return closure.Continuation{}, fmt.Errorf("apply: expected operator value")
		}
		return closure.Continuation{
			Closure: closure.Evlis{Context: k.Context, K: closure.Call{
				Operator: operator.Value, Context: k.Context, K: k.K,
			}},
			Arg: closure.ArgExprList{Exprs: k.Operands},
		}, nil

	case closure.Call:
		args, ok := c.Arg.(closure.ArgValueList)
		if !ok {
			return closure.Continuation{}, fmt.Errorf("call: expected argument list")
		}
		return stepCall(ctx, k.Operator, k.Context, k.K, args.Values)

	case closure.If:
		return closure.Continuation{
			Closure: closure.Eval{Context: k.Context, K: closure.IfAfter{
				Consequent: k.Consequent, Alternative: k.Alternative, Context: k.Context, K: k.K,
			}},
			Arg: closure.ArgExpr{Expr: k.Predicate},
		}, nil

	case closure.IfAfter:
		v, ok := c.Arg.(closure.ArgValue)
		if !ok {
			return closure.Continuation{}, fmt.Errorf("if: expected predicate value")
		}
		branch := k.Alternative
		if value.IsTruthy(v.Value) {
			branch = k.Consequent
		}
		return closure.Continuation{
			Closure: closure.Eval{Context: k.Context, K: k.K},
			Arg:     closure.ArgExpr{Expr: branch},
		}, nil

	case closure.Define:
		return closure.Continuation{
			Closure: closure.Eval{Context: k.Context, K: closure.DefineAfter{
				Symbol: k.Symbol, Context: k.Context, K: k.K,
			}},
			Arg: closure.ArgExpr{Expr: k.Body},
		}, nil

	case closure.DefineAfter:
		v, ok := c.Arg.(closure.ArgValue)
		if !ok {
			return closure.Continuation{}, fmt.Errorf("define: expected bound value")
		}
		if err := bind(k.Context, k.Symbol, v.Value); err != nil {
			return closure.Continuation{}, err
		}
		return closure.Continuation{Closure: k.K, Arg: closure.ArgValue{Value: value.Null{}}}, nil

	case closure.Set:
		return closure.Continuation{
			Closure: closure.Eval{Context: k.Context, K: closure.DefineAfter{
				Symbol: k.Symbol, Context: k.Context, K: k.K,
			}},
			Arg: closure.ArgExpr{Expr: k.Body},
		}, nil

	case closure.Lambda:
		v := value.Lambda{Formals: k.Formals, Body: k.Body, Captured: k.Context.R}
		return closure.Continuation{Closure: k.K, Arg: closure.ArgValue{Value: v}}, nil

	case closure.Lookup:
		return stepLookup(ctx, k.R, k.Context, k.K, c.Arg)

	case closure.Return:
		return c, nil
	}

	return closure.Continuation{}, fmt.Errorf("step: unknown closure type %T", c.Closure)
}

func stepEval(ctx closure.Context, k closure.Closure, e ast.Expr) (closure.Continuation, error) {
	switch node := e.(type) {
	case ast.Boolean, ast.Char, ast.Number, ast.String, ast.Bytevector, ast.List, ast.Vector:
		v, err := value.FromExpr(e)
		if err != nil {
			return closure.Continuation{}, err
		}
		return closure.Continuation{Closure: k, Arg: closure.ArgValue{Value: v}}, nil

	case ast.Variable:
		return closure.Continuation{
			Closure: closure.Lookup{R: ctx.R, Context: ctx, K: k},
			Arg:     closure.ArgValue{Value: value.Symbol{Name: node.Name}},
		}, nil

	case ast.If:
		return closure.Continuation{
			Closure: closure.If{Predicate: node.Predicate, Consequent: node.Consequent, Alternative: node.Alternative, Context: ctx, K: k},
			Arg:     closure.ArgNone{},
		}, nil

	case ast.Define:
		return closure.Continuation{
			Closure: closure.Define{Symbol: node.Target, Body: node.Body, Context: ctx, K: k},
			Arg:     closure.ArgNone{},
		}, nil

	case ast.Set:
		return closure.Continuation{
			Closure: closure.Set{Symbol: node.Target, Body: node.Body, Context: ctx, K: k},
			Arg:     closure.ArgNone{},
		}, nil

	case ast.Lambda:
		return closure.Continuation{
			Closure: closure.Lambda{Formals: node.Formals, Body: node.Body, Context: ctx, K: k},
			Arg:     closure.ArgNone{},
		}, nil

	case ast.Apply:
		return closure.Continuation{
			Closure: closure.Apply{Operator: node.Operator, Operands: node.Operands, Context: ctx, K: k},
			Arg:     closure.ArgNone{},
		}, nil
	}

	return closure.Continuation{}, fmt.Errorf("eval: unsupported expression %T", e)
}

func stepEvalBody(ctx closure.Context, k closure.Closure, body []ast.Expr) (closure.Continuation, error) {
	if len(body) == 0 {
		return closure.Continuation{}, fmt.Errorf("eval-body: empty body")
	}
	if len(body) == 1 {
		return closure.Continuation{Closure: closure.Eval{Context: ctx, K: k}, Arg: closure.ArgExpr{Expr: body[0]}}, nil
	}
	return closure.Continuation{
		Closure: closure.Eval{Context: ctx, K: closure.EvalBodyAfter{Body: body[1:], Context: ctx, K: k}},
		Arg:     closure.ArgExpr{Expr: body[0]},
	}, nil
}

func stepEvlis(ctx closure.Context, k closure.Closure, exprs []ast.Expr, acc []value.Value) (closure.Continuation, error) {
	if len(exprs) == 0 {
		return closure.Continuation{Closure: k, Arg: closure.ArgValueList{Values: acc}}, nil
	}
	return closure.Continuation{
		Closure: closure.Eval{Context: ctx, K: closure.EvlisAfter{Exprs: exprs[1:], Acc: acc, Context: ctx, K: k}},
		Arg:     closure.ArgExpr{Expr: exprs[0]},
	}, nil
}

func stepCall(goCtx context.Context, operator value.Value, ctx closure.Context, k closure.Closure, args []value.Value) (closure.Continuation, error) {
	switch op := operator.(type) {

	case value.Lambda:
		if len(op.Formals) != len(args) {
			return closure.Continuation{}, fmt.Errorf("procedure call: expected %d arguments, got %d", len(op.Formals), len(args))
		}
		frame := environment.NewLocal(op.Captured)
		for i, formal := range op.Formals {
			v, ok := formal.(ast.Variable)
			if !ok {
				return closure.Continuation{}, fmt.Errorf("procedure call: formal parameter must be an identifier")
			}
			frame.Set(v.Name, args[i])
		}
		newCtx := closure.Context{R: frame, D: ctx.D, U: ctx.U}
		return closure.Continuation{Closure: closure.EvalBody{Context: newCtx, K: k}, Arg: closure.ArgExprList{Exprs: op.Body}}, nil

	case value.Builtin:
		return callBuiltin(goCtx, op, args, ctx, k)

	case value.Continuation:
		if len(args) != 1 {
			return closure.Continuation{}, fmt.Errorf("continuation invoked with %d arguments, expected 1", len(args))
		}
		kk, ok := op.Closure.(closure.Closure)
		if !ok {
			return closure.Continuation{}, fmt.Errorf("invalid captured continuation")
		}
		return closure.Continuation{Closure: kk, Arg: closure.ArgValue{Value: args[0]}}, nil

	default:
		return closure.Continuation{}, fmt.Errorf("not applicable: %s", operator.String())
	}
}

func stepLookup(goCtx context.Context, env environment.Environment, ctx closure.Context, k closure.Closure, arg closure.Arg) (closure.Continuation, error) {
	av, ok := arg.(closure.ArgValue)
	if !ok {
		return closure.Continuation{}, fmt.Errorf("lookup: expected symbol argument")
	}
	sym, ok := av.Value.(value.Symbol)
	if !ok {
		return closure.Continuation{}, fmt.Errorf("lookup: expected symbol argument")
	}

	switch e := env.(type) {
	case *environment.Local:
		if v, ok := e.Lookup(sym.Name); ok {
			return closure.Continuation{Closure: k, Arg: closure.ArgValue{Value: v}}, nil
		}
		if parent := e.Parent(); parent != nil {
			return closure.Continuation{
				Closure: closure.Lookup{R: parent, Context: ctx, K: k},
				Arg:     closure.ArgValue{Value: sym},
			}, nil
		}
		if v, ok := environment.Standard(sym.Name); ok {
			return closure.Continuation{Closure: k, Arg: closure.ArgValue{Value: v}}, nil
		}
		return closure.Continuation{}, fmt.Errorf("unbound variable: %s", sym.Name)

	case *environment.Remote:
		v, found, err := e.Get(goCtx, sym.Name)
		if err != nil {
			return closure.Continuation{}, err
		}
		if !found {
			return closure.Continuation{}, fmt.Errorf("unbound variable: %s", sym.Name)
		}
		return closure.Continuation{Closure: k, Arg: closure.ArgValue{Value: v}}, nil
	}

	return closure.Continuation{}, fmt.Errorf("lookup: unknown environment type %T", env)
}

// bind installs name's value in ctx.R, implementing both Define and Set!
// (spec.md §9's resolved open question: both insert into the current
// frame, never searching or erroring on an absent binding).
func bind(ctx closure.Context, target ast.Expr, v value.Value) error {
	variable, ok := target.(ast.Variable)
	if !ok {
		return fmt.Errorf("define/set!: target must be an identifier")
	}
	switch env := ctx.R.(type) {
	case *environment.Local:
		env.Set(variable.Name, v)
		return nil
	case *environment.Remote:
		_, _, err := env.Set(context.Background(), variable.Name, v)
		return err
	}
	return fmt.Errorf("define/set!: unknown environment type %T", ctx.R)
}

func numberArg(v value.Value) (int64, error) {
	n, ok := v.(value.Number)
	if !ok {
		return 0, fmt.Errorf("expected a number, got %s", v.String())
	}
	i, err := strconv.ParseInt(n.Text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer literal: %s", n.Text)
	}
	return i, nil
}
