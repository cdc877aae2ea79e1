// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package evaluator

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/shorbaji/abanos/internal/closure"
	"github.com/shorbaji/abanos/internal/value"
)

// builtinFunc implements one native standard procedure. It receives the
// already-evaluated arguments (arity already checked against the
// value.Builtin descriptor) and returns the Continuation that resumes
// the caller's k with the result.
type builtinFunc func(goCtx context.Context, args []value.Value, ctx closure.Context, k closure.Closure) (closure.Continuation, error)

// builtins is the registry callBuiltin dispatches to by value.Builtin.Name.
// It mirrors environment.Standard's name set: every symbol the standard
// table can hand out as a Value must have an entry here (spec.md §4.5,
// "stdlib/number" and "stdlib/control" plus SPEC_FULL.md's supplemented
// procedures).
var builtins = map[string]builtinFunc{
	"+":       builtinAdd,
	"-":       builtinSub,
	"*":       builtinMul,
	"call/cc": builtinCallCC,
	"cons":    builtinCons,
	"car":     builtinCar,
	"cdr":     builtinCdr,
	"null?":   builtinNullP,
	"list":    builtinList,
	"not":     builtinNot,
	"eq?":     builtinEqP,
}

func callBuiltin(goCtx context.Context, b value.Builtin, args []value.Value, ctx closure.Context, k closure.Closure) (closure.Continuation, error) {
	if len(args) < b.MinArgs || (b.MaxArgs >= 0 && len(args) > b.MaxArgs) {
		return closure.Continuation{}, fmt.Errorf("%s: wrong number of arguments (%d)", b.Name, len(args))
	}
	fn, ok := builtins[b.Name]
	if !ok {
		return closure.Continuation{}, fmt.Errorf("%s: no implementation registered", b.Name)
	}
	return fn(goCtx, args, ctx, k)
}

func ret(k closure.Closure, v value.Value) (closure.Continuation, error) {
	return closure.Continuation{Closure: k, Arg: closure.ArgValue{Value: v}}, nil
}

func builtinAdd(_ context.Context, args []value.Value, _ closure.Context, k closure.Closure) (closure.Continuation, error) {
	var sum int64
	for _, a := range args {
		n, err := numberArg(a)
		if err != nil {
			return closure.Continuation{}, fmt.Errorf("+: %w", err)
		}
		sum += n
	}
	return ret(k, value.Number{Text: strconv.FormatInt(sum, 10)})
}

func builtinSub(_ context.Context, args []value.Value, _ closure.Context, k closure.Closure) (closure.Continuation, error) {
	first, err := numberArg(args[0])
	if err != nil {
		return closure.Continuation{}, fmt.Errorf("-: %w", err)
	}
	if len(args) == 1 {
		return ret(k, value.Number{Text: strconv.FormatInt(-first, 10)})
	}
	result := first
	for _, a := range args[1:] {
		n, err := numberArg(a)
		if err != nil {
			return closure.Continuation{}, fmt.Errorf("-: %w", err)
		}
		result -= n
	}
	return ret(k, value.Number{Text: strconv.FormatInt(result, 10)})
}

func builtinMul(_ context.Context, args []value.Value, _ closure.Context, k closure.Closure) (closure.Continuation, error) {
	product := int64(1)
	for _, a := range args {
		n, err := numberArg(a)
		if err != nil {
			return closure.Continuation{}, fmt.Errorf("*: %w", err)
		}
		product *= n
	}
	return ret(k, value.Number{Text: strconv.FormatInt(product, 10)})
}

func builtinCons(_ context.Context, args []value.Value, _ closure.Context, k closure.Closure) (closure.Continuation, error) {
	head, tail := args[0], args[1]
	switch t := tail.(type) {
	case value.Null:
		return ret(k, value.List{Items: []value.Value{head}})
	case value.List:
		items := make([]value.Value, 0, len(t.Items)+1)
		items = append(items, head)
		items = append(items, t.Items...)
		return ret(k, value.List{Items: items})
	default:
		return closure.Continuation{}, fmt.Errorf("cons: abanos has no improper lists; second argument must be a list")
	}
}

func builtinCar(_ context.Context, args []value.Value, _ closure.Context, k closure.Closure) (closure.Continuation, error) {
	l, ok := args[0].(value.List)
	if !ok || len(l.Items) == 0 {
		return closure.Continuation{}, fmt.Errorf("car: expected a non-empty list")
	}
	return ret(k, l.Items[0])
}

func builtinCdr(_ context.Context, args []value.Value, _ closure.Context, k closure.Closure) (closure.Continuation, error) {
	l, ok := args[0].(value.List)
	if !ok || len(l.Items) == 0 {
		return closure.Continuation{}, fmt.Errorf("cdr: expected a non-empty list")
	}
	if len(l.Items) == 1 {
		return ret(k, value.Null{})
	}
	return ret(k, value.List{Items: l.Items[1:]})
}

func builtinNullP(_ context.Context, args []value.Value, _ closure.Context, k closure.Closure) (closure.Continuation, error) {
	switch l := args[0].(type) {
	case value.Null:
		return ret(k, value.Boolean{Value: true})
	case value.List:
		return ret(k, value.Boolean{Value: len(l.Items) == 0})
	default:
		return ret(k, value.Boolean{Value: false})
	}
}

func builtinList(_ context.Context, args []value.Value, _ closure.Context, k closure.Closure) (closure.Continuation, error) {
	return ret(k, value.List{Items: args})
}

func builtinNot(_ context.Context, args []value.Value, _ closure.Context, k closure.Closure) (closure.Continuation, error) {
	return ret(k, value.Boolean{Value: !value.IsTruthy(args[0])})
}

func builtinEqP(_ context.Context, args []value.Value, _ closure.Context, k closure.Closure) (closure.Continuation, error) {
	return ret(k, value.Boolean{Value: reflect.DeepEqual(args[0], args[1])})
}

// builtinCallCC implements call/cc by reifying k as a first-class
// value.Continuation and applying the user-supplied procedure to it,
// exactly as original_source/lib/src/stdlib/control/mod.rs does: the
// "continuation" the procedure receives is simply this Call site's k.
func builtinCallCC(_ context.Context, args []value.Value, ctx closure.Context, k closure.Closure) (closure.Continuation, error) {
	operand := value.Continuation{Closure: k}
	return closure.Continuation{
		Closure: closure.Call{Operator: args[0], Context: ctx, K: k},
		Arg:     closure.ArgValueList{Values: []value.Value{operand}},
	}, nil
}
