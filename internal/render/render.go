// Package render builds a markdown pipeline wired to the wiki and PubMed APIs.
package render

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	wikilink "go.abhg.dev/goldmark/wikilink"

	"github.com/open-cli-collective/wikimark/api"
	"github.com/open-cli-collective/wikimark/internal/config"
	"github.com/open-cli-collective/wikimark/internal/logging"
	"github.com/open-cli-collective/wikimark/internal/version"
	"github.com/open-cli-collective/wikimark/pkg/md"
)

// Options controls how NewPipeline wires remote sources.
type Options struct {
	// Offline disables every remote source. Image tokens are left in place and
	// references are numbered without PubMed data.
	Offline    bool
	Logger     logging.Logger
	HTTPClient *http.Client
}

// NewWikiClient creates the wiki API client described by cfg.
func NewWikiClient(cfg *config.Config, hc *http.Client) *api.Client {
	opts := []api.ClientOption{
		api.WithUserAgent("wmk/" + version.Version),
		api.WithAssetsPath(cfg.AssetPath),
	}
	if cfg.APIToken != "" {
		opts = append(opts, api.WithAPIToken(cfg.APIToken))
	}
	if hc != nil {
		opts = append(opts, api.WithHTTPClient(hc))
	}
	return api.NewClient(cfg.URL, opts...)
}

// NewPubMedClient creates the rate limited E-utilities client described by cfg.
func NewPubMedClient(cfg *config.Config, hc *http.Client) *api.PubMedClient {
	opts := []api.ClientOption{
		api.WithUserAgent("wmk/" + version.Version),
		api.WithRateLimit(cfg.PubMed.Rate),
	}
	if hc != nil {
		opts = append(opts, api.WithHTTPClient(hc))
	}
	return api.NewPubMedClient(cfg.PubMed.URL, opts...)
}

// NewESummaryOptions returns the request identity configured for PubMed.
func NewESummaryOptions(cfg *config.Config) *api.ESummaryOptions {
	return &api.ESummaryOptions{
		APIKey: cfg.PubMed.APIKey,
		Email:  cfg.PubMed.Email,
		Tool:   "wmk",
	}
}

// NewPubMedCitationSource creates a CitationSource from the PubMed settings in cfg.
func NewPubMedCitationSource(cfg *config.Config, hc *http.Client) *CitationSource {
	return NewCitationSource(NewPubMedClient(cfg, hc), NewESummaryOptions(cfg))
}

// NewPipeline creates a pipeline from cfg.
func NewPipeline(cfg *config.Config, opts Options) *md.Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	pipelineOpts := []md.Option{
		md.WithLogger(logging.Module(logger, "render")),
		md.WithWikiLinkResolver(NewLinkResolver(cfg.URL)),
	}

	if opts.Offline {
		logger.Debug("offline render, remote sources disabled")
		return md.NewPipeline(pipelineOpts...)
	}

	wiki := NewWikiClient(cfg, opts.HTTPClient)
	pipelineOpts = append(pipelineOpts,
		md.WithImages(NewAssetSource(wiki), md.ImageOptions{
			Sizes:  cfg.Sizes(),
			Domain: cfg.AssetDomain,
			Logger: logging.Module(logger, "images"),
		}),
		md.WithArticleTree(NewArticleSource(wiki)),
		md.WithCitationSource(NewPubMedCitationSource(cfg, opts.HTTPClient)),
	)
	return md.NewPipeline(pipelineOpts...)
}

// AssetSource serves image descriptors from the wiki's asset endpoint.
type AssetSource struct {
	client *api.Client
}

var _ md.AssetProvider = (*AssetSource)(nil)

// NewAssetSource creates an AssetSource backed by client.
func NewAssetSource(client *api.Client) *AssetSource {
	return &AssetSource{client: client}
}

// Asset implements md.AssetProvider.
func (s *AssetSource) Asset(ctx context.Context, id int) (*md.Asset, error) {
	asset, err := s.client.GetAsset(ctx, id)
	if err != nil || asset == nil {
		return nil, err
	}
	return &md.Asset{
		ID:    asset.ID,
		URL:   asset.URL,
		Title: asset.Title,
	}, nil
}

// ArticleSource lists article children through the wiki API.
type ArticleSource struct {
	client *api.Client
}

var _ md.ArticleTree = (*ArticleSource)(nil)

// NewArticleSource creates an ArticleSource backed by client.
func NewArticleSource(client *api.Client) *ArticleSource {
	return &ArticleSource{client: client}
}

// Children implements md.ArticleTree. A document without an article ID has no
// children.
func (s *ArticleSource) Children(ctx context.Context, articleID string, depth int) ([]md.Article, error) {
	if articleID == "" {
		return nil, nil
	}
	nodes, err := s.client.GetArticleChildren(ctx, articleID, depth)
	if err != nil {
		return nil, err
	}
	return convertArticles(nodes), nil
}

func convertArticles(nodes []api.ArticleNode) []md.Article {
	if len(nodes) == 0 {
		return nil
	}
	articles := make([]md.Article, len(nodes))
	for i, n := range nodes {
		articles[i] = md.Article{
			ID:       n.ID,
			Title:    n.Title,
			URL:      n.URL,
			Deleted:  n.Deleted,
			Children: convertArticles(n.Children),
		}
	}
	return articles
}

// CitationSource resolves PubMed IDs with a single ESummary request per call.
type CitationSource struct {
	client *api.PubMedClient
	opts   *api.ESummaryOptions
}

var _ md.CitationSource = (*CitationSource)(nil)

// NewCitationSource creates a CitationSource. opts may be nil.
func NewCitationSource(client *api.PubMedClient, opts *api.ESummaryOptions) *CitationSource {
	return &CitationSource{client: client, opts: opts}
}

// Citations implements md.CitationSource.
func (s *CitationSource) Citations(ctx context.Context, pmids []int) (map[int]md.Citation, error) {
	result, err := s.client.ESummary(ctx, pmids, s.opts)
	if err != nil {
		return nil, err
	}

	citations := make(map[int]md.Citation, len(result.Summaries))
	if result.Empty {
		return citations, nil
	}
	for uid, doc := range result.Summaries {
		pmid, err := strconv.Atoi(uid)
		if err != nil || doc == nil {
			continue
		}
		citations[pmid] = CitationFromSummary(doc)
	}
	return citations, nil
}

// CitationFromSummary maps an ESummary record to a citation.
func CitationFromSummary(doc *api.DocSummary) md.Citation {
	return md.Citation{
		Authors: doc.AuthorNames(),
		Title:   doc.Title,
		Date:    doc.SortPubDate,
		Journal: doc.Source,
		Volume:  doc.Volume,
		Issue:   doc.Issue,
		Pages:   doc.Pages,
		DOI:     doc.ArticleID("doi"),
		PMC:     doc.ArticleID("pmc"),
	}
}

// LinkResolver resolves [[Target]] wiki links against the wiki host.
type LinkResolver struct {
	base string
}

var _ wikilink.Resolver = (*LinkResolver)(nil)

// NewLinkResolver creates a resolver producing links under base. An empty
// base gives host-relative links.
func NewLinkResolver(base string) *LinkResolver {
	return &LinkResolver{base: strings.TrimSuffix(base, "/")}
}

// ResolveWikilink implements wikilink.Resolver.
func (r *LinkResolver) ResolveWikilink(n *wikilink.Node) ([]byte, error) {
	var dest []byte
	if len(n.Target) > 0 {
		dest = append(dest, r.base...)
		dest = append(dest, '/')
		dest = append(dest, md.Slugify(string(n.Target))...)
		dest = append(dest, '/')
	}
	if len(n.Fragment) > 0 {
		dest = append(dest, '#')
		dest = append(dest, n.Fragment...)
	}
	return dest, nil
}
