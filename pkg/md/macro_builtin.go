package md

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
)

// Article is one node of the wiki article hierarchy.
type Article struct {
	ID       string
	Title    string
	URL      string
	Deleted  bool // current revision is marked deleted
	Children []Article
}

// ArticleTree lists the descendants of an article.
type ArticleTree interface {
	Children(ctx context.Context, articleID string, depth int) ([]Article, error)
}

var articleListTemplate = template.Must(template.New("article_list").Parse(
	`{{define "level"}}<ul class="article-list">{{range .}}<li><a href="{{.URL}}">{{.Title}}</a>` +
		`{{if .Children}}{{template "level" .Children}}{{end}}</li>{{end}}</ul>{{end}}` +
		`<nav class="wiki-article-list">{{template "level" .}}</nav>`))

// BuiltInMacros returns the macros every registry starts with.
func BuiltInMacros() []MacroType {
	return []MacroType{
		{
			Name:    "article_list",
			Handler: articleListMacro,
			Meta: MacroMeta{
				ShortDescription: "Article list",
				HelpText:         "Insert a list of articles in this level.",
				ExampleCode:      "[article_list depth:2]",
				Args:             map[string]string{"depth": "Maximum depth to show levels for."},
			},
		},
		{
			Name:    "toc",
			Handler: tocMacro,
			Meta: MacroMeta{
				ShortDescription: "Table of contents",
				HelpText:         "Insert a table of contents matching the headings.",
				ExampleCode:      "[TOC]",
				Args:             map[string]string{},
			},
		},
		{
			Name:     "ref",
			Handler:  refMacro,
			Required: []string{"id"},
			Meta: MacroMeta{
				ShortDescription: "Reference",
				HelpText:         `Insert a superscript reference. To add a bibliography, see "Bibliography".`,
				ExampleCode: "[REF id::your custom id pmid::1234567] or " +
					"[REF id::another custom id reference_text::Someone. 2020. Article title. Etc.]. " +
					"You can refer to previous references using the id you provide by using [REF id::your custom id]",
				Args: map[string]string{
					"id":             "Any custom id; may be string or integer",
					"pmid":           "PubMed ID, as int. If provided, a PubMed reference will be built for you.",
					"reference_text": "Your own reference text. If a PubMed ID is provided, this text will supersede the PubMed reference.",
				},
			},
		},
		{
			Name:    "wikilink",
			Handler: wikilinkMacro,
			Meta: MacroMeta{
				ShortDescription: "WikiLinks",
				HelpText:         "Insert a link to another wiki page with a short notation.",
				ExampleCode:      "[[WikiLink]]",
				Args:             map[string]string{},
			},
		},
	}
}

func articleListMacro(mc *MacroContext, args KeywordArgs) (string, error) {
	depth, err := args.getOrDefault("depth", "2").Int()
	if err != nil {
		return "", fmt.Errorf("%w: depth must be an integer", ErrUnexpectedArgument)
	}
	if mc.Articles == nil {
		return "", ErrNoArticleSource
	}
	levels := depth + 1

	children, err := mc.Articles.Children(mc.Context, mc.Document.ID, levels)
	if err != nil {
		return "", fmt.Errorf("article_list: %w", err)
	}
	children = pruneArticles(children, levels)

	var buf bytes.Buffer
	if err := articleListTemplate.Execute(&buf, children); err != nil {
		return "", fmt.Errorf("article_list: %w", err)
	}
	return mc.Stash.Store(buf.String()), nil
}

// pruneArticles drops deleted articles and anything deeper than levels.
func pruneArticles(articles []Article, levels int) []Article {
	if levels <= 0 {
		return nil
	}
	var kept []Article
	for _, a := range articles {
		if a.Deleted {
			continue
		}
		a.Children = pruneArticles(a.Children, levels-1)
		kept = append(kept, a)
	}
	return kept
}

func tocMacro(_ *MacroContext, _ KeywordArgs) (string, error) {
	return "[TOC]", nil
}

// refMacro rebuilds the canonical [REF ...] token; numbering happens in the
// reference pass.
func refMacro(_ *MacroContext, args KeywordArgs) (string, error) {
	var sb strings.Builder
	sb.WriteString("[REF id::")
	sb.WriteString(args.String("id", ""))
	if pmid := args.String("pmid", ""); pmid != "" {
		sb.WriteString(" pmid::")
		sb.WriteString(pmid)
	}
	if text := args.String("reference_text", ""); text != "" {
		sb.WriteString(" reference_text::")
		sb.WriteString(text)
	}
	sb.WriteString("]")
	return sb.String(), nil
}

func wikilinkMacro(_ *MacroContext, _ KeywordArgs) (string, error) {
	return "", nil
}

func (a KeywordArgs) getOrDefault(key, def string) ArgValue {
	if v, ok := a[key]; ok {
		return v
	}
	return ArgValue{Value: def}
}
