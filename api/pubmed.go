package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPubMedURL is the NCBI E-utilities base URL.
	DefaultPubMedURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// PubMedRateLimit is the NCBI limit without an API key, in requests per second.
	PubMedRateLimit = 3.0

	// PubMedRateLimitWithKey is the NCBI limit with an API key.
	PubMedRateLimitWithKey = 10.0

	// emptyIDListResult is the esummaryresult NCBI returns when none of the
	// requested IDs were queryable.
	emptyIDListResult = "Empty id list - nothing todo"
)

// PubMedClient queries the E-utilities ESummary endpoint.
type PubMedClient struct {
	client *Client
}

// NewPubMedClient creates a PubMed client. Requests are limited to
// PubMedRateLimit per second unless opts override it.
func NewPubMedClient(baseURL string, opts ...ClientOption) *PubMedClient {
	if baseURL == "" {
		baseURL = DefaultPubMedURL
	}
	opts = append([]ClientOption{WithRateLimit(PubMedRateLimit)}, opts...)
	return &PubMedClient{client: NewClient(baseURL, opts...)}
}

// ESummaryOptions carries the identification parameters NCBI asks clients to send.
type ESummaryOptions struct {
	APIKey string
	Email  string
	Tool   string
}

// Author is one entry of a document summary's author list.
type Author struct {
	Name     string `json:"name"`
	AuthType string `json:"authtype,omitempty"`
}

// ArticleID is a typed alternate identifier (doi, pmc, pubmed, ...).
type ArticleID struct {
	IDType string `json:"idtype"`
	Value  string `json:"value"`
}

// DocSummary is the ESummary record for one PubMed ID.
type DocSummary struct {
	UID         string      `json:"uid"`
	Title       string      `json:"title"`
	Authors     []Author    `json:"authors"`
	Source      string      `json:"source"`
	FullJournal string      `json:"fulljournalname,omitempty"`
	PubDate     string      `json:"pubdate,omitempty"`
	SortPubDate string      `json:"sortpubdate"`
	Volume      string      `json:"volume"`
	Issue       string      `json:"issue"`
	Pages       string      `json:"pages"`
	ArticleIDs  []ArticleID `json:"articleids"`
	Error       string      `json:"error,omitempty"`
}

// AuthorNames joins the author names with ", ".
func (d *DocSummary) AuthorNames() string {
	names := make([]string, 0, len(d.Authors))
	for _, a := range d.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}

// ArticleID returns the first identifier of the given type, or "".
func (d *DocSummary) ArticleID(idType string) string {
	for _, id := range d.ArticleIDs {
		if id.IDType == idType {
			return id.Value
		}
	}
	return ""
}

// ESummaryResult is the decoded ESummary response.
type ESummaryResult struct {
	UIDs      []string
	Summaries map[string]*DocSummary
	// Empty is set when NCBI reported that no IDs were queryable.
	Empty bool
}

type esummaryResponse struct {
	ESummaryResult []string                   `json:"esummaryresult,omitempty"`
	Error          string                     `json:"error,omitempty"`
	Result         map[string]json.RawMessage `json:"result,omitempty"`
}

// ESummary fetches document summaries for pmids in a single request.
func (p *PubMedClient) ESummary(ctx context.Context, pmids []int, opts *ESummaryOptions) (*ESummaryResult, error) {
	if len(pmids) == 0 {
		return &ESummaryResult{Empty: true, Summaries: map[string]*DocSummary{}}, nil
	}

	ids := make([]string, len(pmids))
	for i, id := range pmids {
		ids[i] = strconv.Itoa(id)
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "json")
	if opts != nil {
		if opts.APIKey != "" {
			params.Set("api_key", opts.APIKey)
		}
		if opts.Email != "" {
			params.Set("email", opts.Email)
		}
		if opts.Tool != "" {
			params.Set("tool", opts.Tool)
		}
	}

	body, err := p.client.Get(ctx, "/esummary.fcgi?"+params.Encode())
	if err != nil {
		if IsRateLimited(err) {
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return nil, err
	}

	return decodeESummary(body)
}

// decodeESummary tolerates malformed records: a record that does not decode
// is left out rather than failing the batch.
func decodeESummary(body []byte) (*ESummaryResult, error) {
	var resp esummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: esummary: %v", ErrInvalidResponse, err)
	}

	result := &ESummaryResult{Summaries: make(map[string]*DocSummary)}
	for _, msg := range resp.ESummaryResult {
		if msg == emptyIDListResult {
			result.Empty = true
			return result, nil
		}
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: esummary: %s", ErrInvalidResponse, resp.Error)
	}
	if resp.Result == nil {
		result.Empty = true
		return result, nil
	}

	if raw, ok := resp.Result["uids"]; ok {
		if err := json.Unmarshal(raw, &result.UIDs); err != nil {
			return nil, fmt.Errorf("%w: esummary uids: %v", ErrInvalidResponse, err)
		}
	}

	for _, uid := range result.UIDs {
		raw, ok := resp.Result[uid]
		if !ok {
			continue
		}
		var summary DocSummary
		if err := json.Unmarshal(raw, &summary); err != nil {
			continue
		}
		if summary.Error != "" {
			continue
		}
		if summary.UID == "" {
			summary.UID = uid
		}
		result.Summaries[uid] = &summary
	}

	return result, nil
}
