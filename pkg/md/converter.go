// Package md renders wiki markdown with image, macro and reference directives to HTML.
package md

import (
	"bytes"
	"context"
	"fmt"
	stdhtml "html"
	"regexp"
	"strings"

	wikilink "go.abhg.dev/goldmark/wikilink"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// TOCMarker is the literal the toc macro leaves for the markdown pass.
const TOCMarker = "[TOC]"

// citationMarkerPattern matches the markers the reference pass emits. They are
// rendered ahead of goldmark so [[N]] is not read as a wiki link.
var citationMarkerPattern = regexp.MustCompile(`<sup>\[\[(\d+)\]\]\(#(\d+)\)</sup>`)

// Document is the article being rendered.
type Document struct {
	ID      string
	Title   string
	Content string
}

// Heading is one entry of the table of contents.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Rendered is the output of one pipeline run.
type Rendered struct {
	HTML       string
	References *ReferenceList
	Headings   []Heading
}

type pipelineOptions struct {
	registry  *MacroRegistry
	assets    AssetProvider
	images    ImageOptions
	citations CitationSource
	articles  ArticleTree
	resolver  wikilink.Resolver
	logger    Logger
}

// Option configures a Pipeline.
type Option func(*pipelineOptions)

// WithMacroRegistry sets the registry the macro pass dispatches through.
func WithMacroRegistry(r *MacroRegistry) Option {
	return func(o *pipelineOptions) { o.registry = r }
}

// WithImages enables the image pass.
func WithImages(provider AssetProvider, opts ImageOptions) Option {
	return func(o *pipelineOptions) {
		o.assets = provider
		o.images = opts
	}
}

// WithCitationSource enables PubMed enrichment of references.
func WithCitationSource(src CitationSource) Option {
	return func(o *pipelineOptions) { o.citations = src }
}

// WithArticleTree sets the source article_list reads from.
func WithArticleTree(tree ArticleTree) Option {
	return func(o *pipelineOptions) { o.articles = tree }
}

// WithWikiLinkResolver overrides how [[Target]] links are resolved.
func WithWikiLinkResolver(r wikilink.Resolver) Option {
	return func(o *pipelineOptions) { o.resolver = r }
}

// WithLogger sets the logger every pass writes to.
func WithLogger(l Logger) Option {
	return func(o *pipelineOptions) { o.logger = l }
}

// Pipeline runs the directive passes and the markdown renderer over a document.
// A Pipeline holds no per-render state and may be reused.
type Pipeline struct {
	macros   *MacroExpander
	refs     *ReferenceResolver
	images   *ImageExpander
	articles ArticleTree
	engine   goldmark.Markdown
	logger   Logger
}

// NewPipeline builds a pipeline from opts.
func NewPipeline(opts ...Option) *Pipeline {
	o := pipelineOptions{resolver: slugResolver{}}
	for _, opt := range opts {
		opt(&o)
	}
	logger := loggerOrNop(o.logger)

	p := &Pipeline{
		macros:   NewMacroExpander(o.registry, logger),
		refs:     NewReferenceResolver(o.citations, logger),
		articles: o.articles,
		logger:   logger,
		engine: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				&wikilink.Extender{Resolver: o.resolver},
			),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
	if o.assets != nil {
		if o.images.Logger == nil {
			o.images.Logger = logger
		}
		p.images = NewImageExpander(o.assets, o.images)
	}
	return p
}

// Macros returns the pipeline's macro expander.
func (p *Pipeline) Macros() *MacroExpander {
	return p.macros
}

// Render expands directives in doc and renders the result to HTML. Any pass
// failing aborts the render.
func (p *Pipeline) Render(ctx context.Context, doc Document) (*Rendered, error) {
	stash := NewStash()

	source, refs, err := p.Expand(ctx, doc, stash)
	if err != nil {
		return nil, err
	}
	source = protectCitations(source, stash)

	src := []byte(source)
	root := p.engine.Parser().Parse(text.NewReader(src))
	headings := collectHeadings(root, src)

	var buf bytes.Buffer
	if err := p.engine.Renderer().Render(&buf, src, root); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}

	out := insertTOC(buf.String(), headings)
	out = stash.Restore(out)
	out = cleanupFigures(out)

	p.logger.Debug("document rendered", "document", doc.ID, "references", refs.Len(), "stashed", stash.Len())
	return &Rendered{HTML: out, References: refs, Headings: headings}, nil
}

// Expand runs the macro, reference and image passes and returns the markdown
// handed to the renderer. Rendered fragments go to stash.
func (p *Pipeline) Expand(ctx context.Context, doc Document, stash *Stash) (string, *ReferenceList, error) {
	mc := &MacroContext{Context: ctx, Document: doc, Stash: stash, Articles: p.articles}

	content, err := p.macros.Expand(mc, doc.Content)
	if err != nil {
		return "", nil, err
	}

	content, refs, err := p.refs.ResolveText(ctx, content)
	if err != nil {
		return "", nil, err
	}

	if p.images != nil {
		content, err = p.images.Expand(ctx, stash, content)
		if err != nil {
			return "", nil, err
		}
	} else if strings.Contains(strings.ToLower(content), "[image:") {
		p.logger.Warn("document contains image directives but no asset provider is configured", "document", doc.ID)
	}

	return content, refs, nil
}

// protectCitations stashes citation markers outside code. Markers inside code
// stay literal.
func protectCitations(source string, stash *Stash) string {
	spans := findCodeSpans(source)
	var sb strings.Builder
	last := 0
	next := 0
	for _, m := range citationMarkerPattern.FindAllStringSubmatchIndex(source, -1) {
		for next < len(spans) && spans[next].end <= m[0] {
			next++
		}
		if next < len(spans) && spans[next].start < m[1] {
			continue
		}
		sb.WriteString(source[last:m[0]])
		sb.WriteString(stash.Store(fmt.Sprintf(`<sup><a href="#%s">[%s]</a></sup>`,
			source[m[4]:m[5]], source[m[2]:m[3]])))
		last = m[1]
	}
	sb.WriteString(source[last:])
	return sb.String()
}

// cleanupFigures removes the paragraph goldmark wraps around inline figures.
func cleanupFigures(out string) string {
	out = strings.ReplaceAll(out, "<p><figure", "<figure")
	out = strings.ReplaceAll(out, "</figure>\n</p>", "</figure>")
	return strings.ReplaceAll(out, "</figure></p>", "</figure>")
}

func collectHeadings(root ast.Node, src []byte) []Heading {
	var headings []Heading
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		heading := Heading{Level: h.Level, Text: nodeText(h, src)}
		if id, ok := h.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				heading.ID = string(b)
			}
		}
		headings = append(headings, heading)
		return ast.WalkSkipChildren, nil
	})
	return headings
}

func nodeText(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// insertTOC replaces every paragraph holding only the [TOC] marker with a
// nested list of headings. The marker anywhere else stays literal.
func insertTOC(out string, headings []Heading) string {
	marker := "<p>" + TOCMarker + "</p>"
	if !strings.Contains(out, marker) {
		return out
	}
	return strings.ReplaceAll(out, marker, renderTOC(headings))
}

func renderTOC(headings []Heading) string {
	var sb strings.Builder
	sb.WriteString(`<div class="toc">`)

	var levels []int
	for _, h := range headings {
		switch {
		case len(levels) == 0 || h.Level > levels[len(levels)-1]:
			sb.WriteString("<ul>")
			levels = append(levels, h.Level)
		default:
			for len(levels) > 1 && h.Level < levels[len(levels)-1] {
				sb.WriteString("</li></ul>")
				levels = levels[:len(levels)-1]
			}
			sb.WriteString("</li>")
		}
		fmt.Fprintf(&sb, `<li><a href="#%s">%s</a>`, stdhtml.EscapeString(h.ID), stdhtml.EscapeString(h.Text))
	}
	for range levels {
		sb.WriteString("</li></ul>")
	}

	sb.WriteString("</div>")
	return sb.String()
}

// slugResolver links [[Target#frag]] to /target/#frag, the wiki's article URL form.
type slugResolver struct{}

func (slugResolver) ResolveWikilink(n *wikilink.Node) ([]byte, error) {
	var dest []byte
	if len(n.Target) > 0 {
		dest = append(dest, '/')
		dest = append(dest, Slugify(string(n.Target))...)
		dest = append(dest, '/')
	}
	if len(n.Fragment) > 0 {
		dest = append(dest, '#')
		dest = append(dest, n.Fragment...)
	}
	return dest, nil
}

// Slugify lower-cases s and joins its words with hyphens.
func Slugify(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
