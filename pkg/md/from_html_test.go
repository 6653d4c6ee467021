package md

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "basic paragraph",
			input:    "<p>Hello world</p>",
			expected: "Hello world",
		},
		{
			name:     "h2 header",
			input:    "<h2>Subtitle</h2>",
			expected: "## Subtitle",
		},
		{
			name:     "bold text",
			input:    "<p>This is <strong>bold</strong> text</p>",
			expected: "This is **bold** text",
		},
		{
			name:     "link",
			input:    `<p><a href="https://example.com">Example</a></p>`,
			expected: "[Example](https://example.com)",
		},
		{
			name:     "table of contents stripped",
			input:    `<div class="toc"><ul><li><a href="#a">A</a></li></ul></div><h2 id="a">A</h2>`,
			expected: "## A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ToMarkdown(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestToMarkdown_StripsBibliographyAnchors(t *testing.T) {
	result, err := ToMarkdown(`<p><a name=1></a>1. Foo<br/><a name=2></a>2. Bar</p>`)
	require.NoError(t, err)
	assert.NotContains(t, result, "name=")
	assert.NotContains(t, result, "[]")
	assert.Contains(t, result, "Foo")
	assert.Contains(t, result, "Bar")
}

func TestToMarkdownWithOptions_KeepTOC(t *testing.T) {
	input := `<div class="toc"><ul><li><a href="#a">A</a></li></ul></div>`

	result, err := ToMarkdownWithOptions(input, PreviewOptions{KeepTOC: true})
	require.NoError(t, err)
	assert.Contains(t, result, "[A](#a)")
}

func TestToMarkdown_Figure(t *testing.T) {
	input := `<figure class="thumbnail"><a href="https://x/a.png"><img src="https://x/a.png" alt="A" /></a>` +
		`<figcaption class="caption">A caption</figcaption></figure>`

	result, err := ToMarkdown(input)
	require.NoError(t, err)
	assert.Contains(t, result, "![A](https://x/a.png)")
	assert.Contains(t, result, "A caption")
	assert.NotContains(t, result, "figure")
}

func TestToMarkdown_RenderedDocument(t *testing.T) {
	rendered, err := NewPipeline().Render(context.Background(), Document{
		Content: "## Notes\n\nSee [REF id::a reference_text::Foo].\n\n[REFLIST]",
	})
	require.NoError(t, err)

	result, err := ToMarkdown(rendered.HTML)
	require.NoError(t, err)
	assert.Contains(t, result, "## Notes")
	assert.Contains(t, result, "Foo")
	assert.NotContains(t, result, stashPlaceholderPrefix)
}
