package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"writec/internal/compiler"
	"writec/internal/lexer"
	"writec/internal/parser"
)

const (
	historyFile = ".writec_history"
	promptMain  = "write> "
	promptCont  = "   ... "
)

// replCmd runs an interactive session. Entered statements accumulate into
// one program which is recompiled after every complete entry; entries that
// fail analysis are discarded so the session stays compilable.
func replCmd(_ []string) int {
	fmt.Println("writec repl. :help for commands, :quit to exit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	session := ""
	for {
		entry, ok := readEntry(ln, session)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(entry, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			switch trimmed {
			case ":quit":
				return 0
			case ":reset":
				session = ""
				fmt.Println("session cleared")
			case ":show":
				if session == "" {
					fmt.Println("session is empty")
					continue
				}
				out, err := compiler.Compile(session)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					continue
				}
				fmt.Println(out)
			case ":help":
				fmt.Println(":show   print the C++ for the session so far")
				fmt.Println(":reset  discard the session")
				fmt.Println(":quit   exit")
			default:
				fmt.Println("unknown command. Type :help.")
			}
			continue
		}

		candidate := entry
		if session != "" {
			candidate = session + "\n" + entry
		}
		if _, err := compiler.Compile(candidate); err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		session = candidate
		fmt.Println("ok")
	}
}

// readEntry reads lines until the session plus the pending entry parses as a
// complete program, so block statements can span multiple lines. A parse
// error anywhere before the end of input is final and returned as-is for the
// compile step to report.
func readEntry(ln *liner.State, session string) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		candidate := b.String()
		if session != "" {
			candidate = session + "\n" + candidate
		}
		if !isIncomplete(candidate) {
			return b.String(), true
		}
	}
}

// isIncomplete reports whether the source fails to parse only because input
// ended too early: the parse error sits exactly on the end-of-input token.
func isIncomplete(src string) bool {
	tokens, err := lexer.New(src).Scan()
	if err != nil {
		return false
	}
	_, err = parser.New(tokens).Parse()
	if err == nil {
		return false
	}
	pe, ok := err.(*parser.Error)
	if !ok {
		return false
	}
	eof := tokens[len(tokens)-1]
	return pe.Line == eof.Line && pe.Col == eof.Col
}
