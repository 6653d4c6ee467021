package md

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// PreviewOptions configures the HTML to markdown conversion.
type PreviewOptions struct {
	// KeepTOC keeps the rendered table of contents instead of stripping it.
	KeepTOC bool
}

var (
	namedAnchorPattern = regexp.MustCompile(`<a name=["']?[^"'>\s]*["']?>\s*</a>`)
	tocBlockPattern    = regexp.MustCompile(`(?s)<div class="toc">.*?</div>`)
	figcaptionPattern  = regexp.MustCompile(`(?s)<figcaption[^>]*>(.*?)</figcaption>`)
	figurePattern      = regexp.MustCompile(`</?figure[^>]*>`)
	articleListPattern = regexp.MustCompile(`</?nav[^>]*>`)
)

// ToMarkdown converts rendered wiki HTML back to markdown for terminal preview.
func ToMarkdown(html string) (string, error) {
	return ToMarkdownWithOptions(html, PreviewOptions{})
}

// ToMarkdownWithOptions converts rendered wiki HTML back to markdown with
// configurable options.
func ToMarkdownWithOptions(html string, opts PreviewOptions) (string, error) {
	if html == "" {
		return "", nil
	}

	html = simplifyWikiHTML(html, opts.KeepTOC)

	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(markdown), nil
}

// simplifyWikiHTML flattens the wiki-specific markup the converter has no
// equivalent for.
func simplifyWikiHTML(html string, keepTOC bool) string {
	// Bibliography anchors are empty and would render as [](#).
	html = namedAnchorPattern.ReplaceAllString(html, "")

	if !keepTOC {
		html = tocBlockPattern.ReplaceAllString(html, "")
	}

	// Figures become the image followed by its caption paragraph.
	html = figcaptionPattern.ReplaceAllString(html, "<p>$1</p>")
	html = figurePattern.ReplaceAllString(html, "")

	html = articleListPattern.ReplaceAllString(html, "")

	// Bibliography lines are joined by <br/>; keep one per line.
	html = strings.ReplaceAll(html, "<br/>", "<br/>\n")

	return html
}
