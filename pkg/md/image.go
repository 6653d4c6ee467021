// image.go expands [image:ID align:.. size:..] tokens into stashed figures.
package md

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"
	"strings"
)

// CaptionPlaceholder is the sentinel the figure template must emit exactly once;
// the rendered fragment is split around it so the caption stays markdown.
const CaptionPlaceholder = "{{{IMAGECAPTION}}}"

// DefaultThumbnailSizes maps size names to WxH dimensions. An empty dimension
// means the original size.
var DefaultThumbnailSizes = map[string]string{
	"default": "250x250",
	"small":   "150x150",
	"medium":  "300x300",
	"large":   "500x500",
	"orig":    "",
}

// DefaultFigureTemplate renders one image with an optional alignment class and a caption slot.
var DefaultFigureTemplate = template.Must(template.New("figure").Parse(
	`<figure class="thumbnail{{if .Align}} float-{{.Align}}{{end}}">` +
		`<a href="{{.Image.FullURL}}"><img src="{{.Image.FullURL}}" alt="{{.Image.Title}}"` +
		`{{if .Width}} width="{{.Width}}"{{end}} /></a>` +
		`<figcaption class="caption">{{.Caption}}</figcaption></figure>`))

// Asset is the descriptor an AssetProvider returns for one image.
type Asset struct {
	ID         int
	URL        string // path relative to the asset domain
	Title      string
	FullURL    string // domain + URL, filled in by the expander
	StorageURL string // URL without its first two path segments
}

// AssetProvider fetches asset descriptors. A nil asset with a nil error means
// the provider has no data for id.
type AssetProvider interface {
	Asset(ctx context.Context, id int) (*Asset, error)
}

// ImageOptions configures an ImageExpander.
type ImageOptions struct {
	Sizes    map[string]string // size name -> WxH; defaults to DefaultThumbnailSizes
	Domain   string            // prefix for absolute URLs
	Template *template.Template
	Logger   Logger
}

// ImageExpander rewrites image tokens.
type ImageExpander struct {
	provider AssetProvider
	sizes    map[string]string
	domain   string
	tmpl     *template.Template
	logger   Logger
}

// figureData is the template context for one image.
type figureData struct {
	Image   *Asset
	Caption string
	Align   string
	Size    string
	Width   string
}

// NewImageExpander creates an expander backed by provider.
func NewImageExpander(provider AssetProvider, opts ImageOptions) *ImageExpander {
	sizes := opts.Sizes
	if len(sizes) == 0 {
		sizes = DefaultThumbnailSizes
	}
	tmpl := opts.Template
	if tmpl == nil {
		tmpl = DefaultFigureTemplate
	}
	return &ImageExpander{
		provider: provider,
		sizes:    sizes,
		domain:   strings.TrimSuffix(opts.Domain, "/"),
		tmpl:     tmpl,
		logger:   loggerOrNop(opts.Logger),
	}
}

// ResolveSize maps a size name to its dimension. Names missing from the table
// fall back to "default".
func (e *ImageExpander) ResolveSize(name string) string {
	if name != "" {
		if size, ok := e.sizes[name]; ok {
			return size
		}
	}
	return e.sizes["default"]
}

// Expand replaces image tokens outside code in input. An image the provider
// has no data for is dropped together with its trailing text and caption
// lines. Provider and template errors abort.
func (e *ImageExpander) Expand(ctx context.Context, stash *Stash, input string) (string, error) {
	tokens := TokenizeImages(input)
	return rewriteTokens(tokens, func(token Token) (string, error) {
		return e.expandToken(ctx, stash, token)
	})
}

func (e *ImageExpander) expandToken(ctx context.Context, stash *Stash, token Token) (string, error) {
	id, err := strconv.Atoi(token.ImageID)
	if err != nil {
		return "", fmt.Errorf("image %q: %w", token.ImageID, err)
	}

	asset, err := e.provider.Asset(ctx, id)
	if err != nil {
		return "", fmt.Errorf("image %d: %w", id, err)
	}
	if asset == nil {
		e.logger.Debug("image asset not found", "image_id", id)
		return "", nil
	}

	asset.FullURL = e.domain + asset.URL
	asset.StorageURL = StorageRelativeURL(asset.URL)
	e.logger.Debug("image asset fetched", "image_id", id, "url", asset.URL, "full_url", asset.FullURL, "storage_url", asset.StorageURL)

	size := e.ResolveSize(token.Size)
	data := figureData{
		Image:   asset,
		Caption: CaptionPlaceholder,
		Align:   token.Align,
		Size:    size,
		Width:   strings.Split(size, "x")[0],
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("image %d: render figure: %w", id, err)
	}
	parts := strings.Split(buf.String(), CaptionPlaceholder)
	if len(parts) != 2 {
		return "", fmt.Errorf("image %d: %w", id, ErrCaptionPlaceholder)
	}

	before := stash.Store(parts[0])
	after := stash.Store(parts[1])
	return before + token.Caption + after + token.Trailer, nil
}

// StorageRelativeURL drops the first two segments of a slash-separated path:
// "/media/images/a.png" becomes "images/a.png". Thumbnail storage already
// prefixes the media root.
func StorageRelativeURL(url string) string {
	parts := strings.Split(url, "/")
	if len(parts) <= 2 {
		return ""
	}
	return strings.Join(parts[2:], "/")
}
