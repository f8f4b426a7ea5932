// Package langdoc pulls runnable Write samples out of Markdown
// documentation. A fenced code block tagged "write" is a sample expected to
// compile; a block tagged "write-error" is expected to fail. Samples take
// their name from the nearest preceding heading, so documentation doubles as
// a compile-checked example corpus.
package langdoc

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	fenceSample = "write"
	fenceError  = "write-error"
)

// Sample is one fenced code block from a document.
type Sample struct {
	Name      string // nearest preceding heading text
	Source    string
	Line      int  // line of the fence in the document
	WantError bool // true for write-error fences
}

// ExtractSamples parses the Markdown document and collects every Write
// fence in order of appearance. Fences in other languages are ignored.
func ExtractSamples(doc []byte) ([]Sample, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(doc))

	var samples []Sample
	heading := ""
	err := ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			heading = nodeText(n, doc)
		case *ast.FencedCodeBlock:
			lang := string(n.Language(doc))
			if lang != fenceSample && lang != fenceError {
				return ast.WalkContinue, nil
			}
			name := heading
			if name == "" {
				name = fmt.Sprintf("sample %d", len(samples)+1)
			}
			samples = append(samples, Sample{
				Name:      name,
				Source:    blockContent(n, doc),
				Line:      lineNumber(n, doc),
				WantError: lang == fenceError,
			})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}
	return samples, nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func lineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	line := 1
	for i := 0; i < start && i < len(source); i++ {
		if source[i] == '\n' {
			line++
		}
	}
	return line
}
