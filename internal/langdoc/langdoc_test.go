package langdoc

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const doc = `# Tour

Some prose.

## Hello

` + "```write\nprint \"hi\"\n```" + `

Inline explanation here.

## Broken

` + "```write-error\nprint nope\n```" + `

## Other

` + "```sh\necho ignored\n```" + `
`

func TestExtractSamples(t *testing.T) {
	samples, err := ExtractSamples([]byte(doc))
	be.Err(t, err, nil)
	be.Equal(t, len(samples), 2)

	be.Equal(t, samples[0].Name, "Hello")
	be.Equal(t, strings.TrimSpace(samples[0].Source), `print "hi"`)
	be.True(t, !samples[0].WantError)

	be.Equal(t, samples[1].Name, "Broken")
	be.True(t, samples[1].WantError)
}

func TestSampleLineNumbers(t *testing.T) {
	samples, err := ExtractSamples([]byte(doc))
	be.Err(t, err, nil)
	be.True(t, samples[0].Line < samples[1].Line)
	be.True(t, samples[0].Line > 1)
}

func TestUnnamedSample(t *testing.T) {
	samples, err := ExtractSamples([]byte("```write\nprint 1\n```\n"))
	be.Err(t, err, nil)
	be.Equal(t, len(samples), 1)
	be.Equal(t, samples[0].Name, "sample 1")
}

func TestNoSamples(t *testing.T) {
	samples, err := ExtractSamples([]byte("just prose\n"))
	be.Err(t, err, nil)
	be.Equal(t, len(samples), 0)
}
