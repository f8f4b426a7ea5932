// Package compiler wires the pipeline stages together: scan, parse, analyze,
// generate. Compilation is fail-fast; the first stage error aborts the rest
// and is returned verbatim.
package compiler

import (
	"writec/internal/codegen"
	"writec/internal/lexer"
	"writec/internal/parser"
	"writec/internal/sem"
)

// Compile translates Write source into C++ source. Every call builds fresh
// stage instances; none of the stage state survives between compiles.
func Compile(src string) (string, error) {
	tokens, err := lexer.New(src).Scan()
	if err != nil {
		return "", err
	}
	prog, err := parser.New(tokens).Parse()
	if err != nil {
		return "", err
	}
	if err := sem.New(src).Analyze(prog); err != nil {
		return "", err
	}
	return codegen.New().Generate(prog), nil
}
