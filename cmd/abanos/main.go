// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Command abanos is the abanos interpreter CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/shorbaji/abanos/pkg/abanos"
)

func main() {
	var (
		evalStr = flag.String("e", "", "evaluate an abanos string")
		file    = flag.String("f", "", "evaluate an abanos file")
		name    = flag.String("user", "", "user name attached to the evaluation Context")
		email   = flag.String("email", "", "user email attached to the evaluation Context")
	)
	flag.Parse()

	opts := []abanos.Option{}
	if *name != "" || *email != "" {
		opts = append(opts, abanos.WithUser(*name, *email))
	}
	runtime := abanos.New(opts...)

	var result string
	var err error

	switch {
	case *file != "":
		result, err = runtime.EvalFile(*file)
	case *evalStr != "":
		result, err = runtime.Eval(*evalStr)
	case !term.IsTerminal(int(os.Stdin.Fd())):
		var input []byte
		input, err = io.ReadAll(os.Stdin)
		if err == nil {
			result, err = runtime.Eval(string(input))
		}
	default:
		runREPL(runtime)
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if result != "" {
		fmt.Println(result)
	}
}
