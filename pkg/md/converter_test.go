package md

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_Render(t *testing.T) {
	content := strings.Join([]string{
		"# Title",
		"",
		"[TOC]",
		"",
		"## Section One",
		"",
		"Text with [REF id::a reference_text::Foo] citation.",
		"",
		"## Section Two",
		"",
		"[REFLIST]",
	}, "\n")

	rendered, err := NewPipeline().Render(context.Background(), Document{ID: "1", Content: content})
	require.NoError(t, err)

	html := rendered.HTML
	assert.Contains(t, html, `<h2 id="section-one">Section One</h2>`)
	assert.Contains(t, html, `<div class="toc"><ul><li><a href="#title">Title</a><ul>`+
		`<li><a href="#section-one">Section One</a></li>`+
		`<li><a href="#section-two">Section Two</a></li></ul></li></ul></div>`)
	assert.NotContains(t, html, "<p>[TOC]</p>")
	assert.Contains(t, html, `<p>Text with <sup><a href="#1">[1]</a></sup> citation.</p>`)
	assert.Contains(t, html, `<a name=1></a>1. Foo`)
	assert.NotContains(t, html, stashPlaceholderPrefix)

	require.Len(t, rendered.Headings, 3)
	assert.Equal(t, Heading{Level: 2, ID: "section-two", Text: "Section Two"}, rendered.Headings[2])
	assert.Equal(t, 1, rendered.References.Len())
}

func TestPipeline_RefMacroFeedsReferencePass(t *testing.T) {
	src := &fakeCitationSource{citations: map[int]Citation{5: {Title: "Enriched"}}}
	p := NewPipeline(WithCitationSource(src))

	out, refs, err := p.Expand(context.Background(), Document{Content: "[ref id:a pmid:5] and [REF id::a]\n[REFLIST]"}, NewStash())
	require.NoError(t, err)

	assert.Equal(t, "<sup>[[1]](#1)</sup> and <sup>[[1]](#1)</sup>\n"+
		"<a name=1></a>1. Enriched. PMID: [5.](https://pubmed.ncbi.nlm.nih.gov/5/)", out)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 1, refs.Len())
}

func TestPipeline_ImagesAndFigureCleanup(t *testing.T) {
	provider := &fakeAssetProvider{assets: map[int]*Asset{7: {URL: "/media/images/cat.png", Title: "Cat"}}}
	p := NewPipeline(WithImages(provider, ImageOptions{Domain: "https://cdn.example.org"}))

	rendered, err := p.Render(context.Background(), Document{Content: "[image:7 align:left]\n    A *cat*."})
	require.NoError(t, err)

	html := rendered.HTML
	assert.True(t, strings.HasPrefix(html, `<figure class="thumbnail float-left">`), html)
	assert.Contains(t, html, `<em>cat</em>`)
	assert.NotContains(t, html, "<p><figure")
	assert.NotContains(t, html, "</figure></p>")
}

func TestPipeline_ImagesWithoutProviderLeftInPlace(t *testing.T) {
	rendered, err := NewPipeline().Render(context.Background(), Document{Content: "[image:7]"})
	require.NoError(t, err)
	assert.Contains(t, rendered.HTML, "[image:7]")
}

func TestPipeline_WikiLinks(t *testing.T) {
	rendered, err := NewPipeline().Render(context.Background(), Document{Content: "See [[Main Page]] and [wikilink]."})
	require.NoError(t, err)
	assert.Contains(t, rendered.HTML, `<a href="/main-page/">Main Page</a>`)
	assert.NotContains(t, rendered.HTML, "[wikilink]")
}

func TestPipeline_UnknownMacroPassesThrough(t *testing.T) {
	rendered, err := NewPipeline().Render(context.Background(), Document{Content: "[unknown x:1]"})
	require.NoError(t, err)
	assert.Equal(t, "<p>[unknown x:1]</p>\n", rendered.HTML)
}

func TestPipeline_ArticleList(t *testing.T) {
	tree := &fakeArticleTree{children: []Article{{ID: "2", Title: "Child", URL: "/child/"}}}
	rendered, err := NewPipeline(WithArticleTree(tree)).Render(context.Background(),
		Document{ID: "1", Content: "[article_list depth:1]"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rendered.HTML, `<nav class="wiki-article-list">`), rendered.HTML)
	assert.Equal(t, "1", tree.gotID)
}

func TestPipeline_TOCOnlyReplacesOwnParagraph(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"inline text", "# H\n\nSee the [TOC] below.", "<p>See the [TOC] below.</p>"},
		{"code span", "# H\n\nWrite `[TOC]` on its own line.", "<p>Write <code>[TOC]</code> on its own line.</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered, err := NewPipeline().Render(context.Background(), Document{Content: tt.content})
			require.NoError(t, err)
			assert.Contains(t, rendered.HTML, tt.want)
			assert.NotContains(t, rendered.HTML, `<div class="toc">`)
		})
	}
}

func TestPipeline_DirectivesInCodeStayLiteral(t *testing.T) {
	provider := &fakeAssetProvider{assets: map[int]*Asset{7: {URL: "/media/images/cat.png"}}}
	tree := &fakeArticleTree{children: []Article{{ID: "2", Title: "Child", URL: "/child/"}}}
	p := NewPipeline(
		WithImages(provider, ImageOptions{Domain: "https://cdn.example.org"}),
		WithArticleTree(tree),
	)

	content := strings.Join([]string{
		"```",
		"[image:7]",
		"[wikilink]",
		"[toc]",
		"[article_list depth:2]",
		"```",
		"",
		"Inline `[image:7]` and `[wikilink]`.",
	}, "\n")

	rendered, err := p.Render(context.Background(), Document{ID: "1", Content: content})
	require.NoError(t, err)

	html := rendered.HTML
	assert.Contains(t, html, "<pre><code>[image:7]\n[wikilink]\n[toc]\n[article_list depth:2]\n</code></pre>")
	assert.Contains(t, html, "<code>[image:7]</code> and <code>[wikilink]</code>")
	assert.NotContains(t, html, "<figure")
	assert.NotContains(t, html, `<div class="toc">`)
	assert.NotContains(t, html, stashPlaceholderPrefix)
	assert.Empty(t, provider.calls)
	assert.Empty(t, tree.gotID)
}

func TestProtectCitations_SkipsCode(t *testing.T) {
	stash := NewStash()
	marker := CitationMarker(1)
	out := protectCitations("x "+marker+" `"+marker+"`", stash)

	assert.Equal(t, "x "+FormatPlaceholder(0)+" `"+marker+"`", out)
	assert.Equal(t, 1, stash.Len())
}

func TestPipeline_ErrorsAbortRender(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		content string
		wantErr error
	}{
		{"undefined reference", nil, "[REF id::missing]", ErrReferenceNotFound},
		{"bad macro argument", nil, "[toc depth:1]", ErrUnexpectedArgument},
		{
			name:    "asset provider failure",
			opts:    []Option{WithImages(&fakeAssetProvider{err: errors.New("down")}, ImageOptions{})},
			content: "[image:1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered, err := NewPipeline(tt.opts...).Render(context.Background(), Document{Content: tt.content})
			require.Error(t, err)
			assert.Nil(t, rendered)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPipeline_CustomMacro(t *testing.T) {
	r := NewMacroRegistry()
	require.NoError(t, r.Register(MacroType{
		Name: "badge",
		Meta: MacroMeta{Args: map[string]string{"label": "text"}},
		Handler: func(mc *MacroContext, args KeywordArgs) (string, error) {
			return mc.Stash.Store(`<span class="badge">` + args.String("label", "") + `</span>`), nil
		},
	}))

	rendered, err := NewPipeline(WithMacroRegistry(r)).Render(context.Background(), Document{Content: "New [badge label:beta]"})
	require.NoError(t, err)
	assert.Equal(t, `<p>New <span class="badge">beta</span></p>`+"\n", rendered.HTML)
}

func TestRenderTOC(t *testing.T) {
	tests := []struct {
		name     string
		headings []Heading
		want     string
	}{
		{"empty", nil, `<div class="toc"></div>`},
		{
			name:     "flat",
			headings: []Heading{{Level: 2, ID: "a", Text: "A"}, {Level: 2, ID: "b", Text: "B"}},
			want:     `<div class="toc"><ul><li><a href="#a">A</a></li><li><a href="#b">B</a></li></ul></div>`,
		},
		{
			name:     "back out of nesting",
			headings: []Heading{{Level: 1, ID: "a", Text: "A"}, {Level: 3, ID: "b", Text: "B"}, {Level: 1, ID: "c", Text: "C&D"}},
			want: `<div class="toc"><ul><li><a href="#a">A</a><ul><li><a href="#b">B</a></li></ul></li>` +
				`<li><a href="#c">C&amp;D</a></li></ul></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderTOC(tt.headings))
		})
	}
}

func TestStash_Restore(t *testing.T) {
	s := NewStash()
	a := s.Store("<div>a</div>")
	b := s.Store("<b>b</b>")

	out := s.Restore("<p>" + a + "</p>\n<p>x " + b + " y</p>")
	assert.Equal(t, "<div>a</div>\n<p>x <b>b</b> y</p>", out)
	assert.Equal(t, 2, s.Len())

	_, ok := s.Fragment(5)
	assert.False(t, ok)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Main Page":        "main-page",
		"  Hello,  World ": "hello-world",
		"C++ tips":         "c-tips",
		"already-slugged":  "already-slugged",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
