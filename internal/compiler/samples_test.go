package compiler

import (
	"os"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"writec/internal/langdoc"
)

// Every fenced sample in the language tour must compile (or fail, for the
// write-error fences). This keeps the documentation in sync with the
// implementation.
func TestLanguageTourSamples(t *testing.T) {
	doc, err := os.ReadFile("../../LANGUAGE.md")
	be.Err(t, err, nil)
	samples, err := langdoc.ExtractSamples(doc)
	be.Err(t, err, nil)
	be.True(t, len(samples) > 10)

	for _, sample := range samples {
		t.Run(sample.Name, func(t *testing.T) {
			out, err := Compile(sample.Source)
			if sample.WantError {
				be.Err(t, err)
				return
			}
			be.Err(t, err, nil)
			be.True(t, strings.TrimSpace(out) != "")
		})
	}
}
