// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package lexer

import (
	"testing"

	"github.com/shorbaji/abanos/internal/token"
)

func items(t *testing.T, src string) []*Item {
	t.Helper()
	l := NewFromString(src)
	var out []*Item
	for {
		item, err := l.Next()
		if err != nil {
			t.Fatalf("lex %q: %v", src, err)
		}
		out = append(out, item)
		if item.Token == token.EOF {
			return out
		}
	}
}

func TestLexSimpleTokens(t *testing.T) {
	got := items(t, "(+ 1 2)")
	want := []token.Kind{token.ParenLeft, token.Identifier, token.Number, token.Number, token.ParenRight, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(got), len(want), got)
	}
	for i, k := range want {
		if got[i].Token != k {
			t.Errorf("token %d = %s, want %s", i, got[i].Token, k)
		}
	}
}

func TestLexBooleans(t *testing.T) {
	for _, src := range []string{"#t", "#true", "#f", "#false"} {
		got := items(t, src)
		if len(got) != 2 || got[0].Token != token.Boolean {
			t.Errorf("lex(%q) = %+v, want a single Boolean token", src, got)
		}
	}
}

func TestLexCharLiterals(t *testing.T) {
	cases := map[string]rune{
		`#\a`:       'a',
		`#\newline`: '\n',
		`#\space`:   ' ',
		`#\tab`:     '\t',
	}
	for src, want := range cases {
		got := items(t, src)
		if len(got) != 2 || got[0].Token != token.Char {
			t.Fatalf("lex(%q) = %+v, want a single Char token", src, got)
		}
		if r := []rune(got[0].Value)[0]; r != want {
			t.Errorf("lex(%q) char = %q, want %q", src, r, want)
		}
	}
}

func TestLexStringEscapes(t *testing.T) {
	got := items(t, `"a\nb\"c"`)
	if len(got) != 2 || got[0].Token != token.String {
		t.Fatalf("lex = %+v, want a single String token", got)
	}
	if want := "a\nb\"c"; got[0].Value != want {
		t.Errorf("string value = %q, want %q", got[0].Value, want)
	}
}

func TestLexNumberVsIdentifier(t *testing.T) {
	cases := map[string]token.Kind{
		"42":    token.Number,
		"-5":    token.Number,
		"+1":    token.Number,
		"3.14":  token.Number,
		"1/2":   token.Number,
		"+":     token.Identifier,
		"-":     token.Identifier,
		"...":   token.Identifier,
		"list?": token.Identifier,
		"set!":  token.Identifier,
	}
	for src, want := range cases {
		got := items(t, src)
		if len(got) != 2 || got[0].Token != want {
			t.Errorf("lex(%q) = %+v, want a single %s token", src, got, want)
		}
	}
}

func TestLexBytevectorAndVectorOpen(t *testing.T) {
	got := items(t, "#u8(1 2) #(1 2)")
	want := []token.Kind{
		token.HashU8Open, token.Number, token.Number, token.ParenRight,
		token.HashOpen, token.Number, token.Number, token.ParenRight,
		token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(got), len(want), got)
	}
	for i, k := range want {
		if got[i].Token != k {
			t.Errorf("token %d = %s, want %s", i, got[i].Token, k)
		}
	}
}

func TestLexSkipsCommentsAndWhitespace(t *testing.T) {
	got := items(t, "; a comment\n  42 ; trailing\n")
	if len(got) != 2 || got[0].Token != token.Number || got[0].Value != "42" {
		t.Fatalf("lex with comments = %+v, want a single Number(42)", got)
	}
}

func TestLexTracksLineNumbers(t *testing.T) {
	got := items(t, "1\n2\n3")
	if got[0].Line != 1 || got[1].Line != 2 || got[2].Line != 3 {
		t.Errorf("line numbers = %d, %d, %d, want 1, 2, 3", got[0].Line, got[1].Line, got[2].Line)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := NewFromString("42")
	a, err := l.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	b, err := l.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if a != b {
		t.Error("repeated Peek should return the same item without advancing")
	}
	c, err := l.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if c != a {
		t.Error("Next after Peek should return the peeked item")
	}
}
