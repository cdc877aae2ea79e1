// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/shorbaji/abanos/pkg/abanos"
)

func printBanner() {
	fmt.Println("abanos REPL (Ctrl+D to exit)")
	fmt.Println()
}

// runREPL reads one line (or a backslash-continued multi-line input) and
// evaluates every form in it, echoing the last form's result, matching
// losp's cmd/losp runBasicREPL convention.
func runREPL(runtime *abanos.Runtime) {
	printBanner()

	reader := bufio.NewReader(os.Stdin)
	var multiline strings.Builder
	inMultiline := false

	for {
		if inMultiline {
			fmt.Print("... ")
		} else {
			fmt.Print(">> ")
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimRight(line, "\r\n")

		if strings.HasSuffix(line, "\\") {
			multiline.WriteString(strings.TrimSuffix(line, "\\"))
			multiline.WriteString("\n")
			inMultiline = true
			continue
		}

		var input string
		if inMultiline {
			multiline.WriteString(line)
			input = multiline.String()
			multiline.Reset()
			inMultiline = false
		} else {
			input = line
		}

		if strings.TrimSpace(input) == "" {
			continue
		}

		result, err := runtime.Eval(input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		if result != "" {
			fmt.Println(result)
		}
	}
}
