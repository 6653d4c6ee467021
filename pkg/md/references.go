// references.go numbers [REF ...] citations and expands [REFLIST] into a bibliography.
package md

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// refArgPattern finds each key:: in a reference argument string. A key starts the
// string or follows whitespace and contains neither whitespace nor colons.
var refArgPattern = regexp.MustCompile(`(?:^|\s)([^\s:]+)::`)

// Citation is the bibliographic metadata fetched for one PubMed ID. Any field
// may be empty.
type Citation struct {
	Authors string // comma-separated author names
	Title   string
	Date    string // sort date, "YYYY/MM/DD HH:MM"
	Journal string
	Volume  string
	Issue   string
	Pages   string
	DOI     string
	PMC     string
}

// CitationSource fetches citations for a batch of PubMed IDs in one call. An
// empty map means the service had nothing for the batch.
type CitationSource interface {
	Citations(ctx context.Context, pmids []int) (map[int]Citation, error)
}

// Reference is one numbered bibliography entry.
type Reference struct {
	ID            string
	Number        int
	PMID          int // 0 when absent
	ReferenceText string
	Citation      *Citation // set by enrichment
}

// ReferenceList holds the entries of one render in numbering order.
type ReferenceList struct {
	entries []*Reference
	byID    map[string]*Reference
}

func newReferenceList() *ReferenceList {
	return &ReferenceList{byID: make(map[string]*Reference)}
}

// Entries returns the references in numbering order.
func (l *ReferenceList) Entries() []*Reference {
	return l.entries
}

// Len returns the number of distinct references.
func (l *ReferenceList) Len() int {
	return len(l.entries)
}

// Lookup returns the reference registered under id.
func (l *ReferenceList) Lookup(id string) (*Reference, bool) {
	ref, ok := l.byID[id]
	return ref, ok
}

// PMIDs returns the distinct PubMed IDs in numbering order.
func (l *ReferenceList) PMIDs() []int {
	seen := make(map[int]bool)
	var pmids []int
	for _, ref := range l.entries {
		if ref.PMID == 0 || seen[ref.PMID] {
			continue
		}
		seen[ref.PMID] = true
		pmids = append(pmids, ref.PMID)
	}
	return pmids
}

func (l *ReferenceList) add(ref *Reference) {
	ref.Number = len(l.entries) + 1
	l.entries = append(l.entries, ref)
	l.byID[ref.ID] = ref
}

// ParseReferenceArgs parses "id::a pmid::123 reference_text::Some text" into a
// map. Values may contain spaces; a value ends where whitespace and the next
// key:: begin. A repeated key keeps its last value.
func ParseReferenceArgs(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	args := make(map[string]string)

	matches := refArgPattern.FindAllStringSubmatchIndex(raw, -1)
	for i, m := range matches {
		end := len(raw)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		args[raw[m[2]:m[3]]] = strings.TrimSpace(raw[m[1]:end])
	}
	return args
}

// CitationMarker returns the superscript link a [REF] token is replaced with.
func CitationMarker(number int) string {
	return fmt.Sprintf("<sup>[[%d]](#%d)</sup>", number, number)
}

// ReferenceResolver runs the collect, enrich and render passes over a document.
type ReferenceResolver struct {
	source CitationSource
	logger Logger
}

// NewReferenceResolver creates a resolver. A nil source disables enrichment.
func NewReferenceResolver(source CitationSource, logger Logger) *ReferenceResolver {
	return &ReferenceResolver{source: source, logger: loggerOrNop(logger)}
}

// Resolve rewrites every [REF] in lines to its citation marker, fetches
// citation metadata for all PubMed IDs in one call, and replaces [REFLIST]
// with the bibliography. The input slice is not modified.
func (r *ReferenceResolver) Resolve(ctx context.Context, lines []string) ([]string, *ReferenceList, error) {
	out := make([]string, len(lines))
	copy(out, lines)

	refs, err := r.Collect(out)
	if err != nil {
		return nil, nil, err
	}
	if err := r.Enrich(ctx, refs); err != nil {
		return nil, nil, err
	}
	if err := r.RenderRefLists(out, refs); err != nil {
		return nil, nil, err
	}
	return out, refs, nil
}

// ResolveText is Resolve over newline-separated text.
func (r *ReferenceResolver) ResolveText(ctx context.Context, text string) (string, *ReferenceList, error) {
	lines, refs, err := r.Resolve(ctx, strings.Split(text, "\n"))
	if err != nil {
		return "", nil, err
	}
	return strings.Join(lines, "\n"), refs, nil
}

// Collect numbers references in first-appearance order and replaces each [REF]
// token in lines, in place. The first occurrence of an id fixes its pmid and
// reference_text; later ones only cite it.
func (r *ReferenceResolver) Collect(lines []string) (*ReferenceList, error) {
	refs := newReferenceList()

	for i, line := range lines {
		tokens := TokenizeReferences(line)
		rewritten, err := rewriteTokens(tokens, func(token Token) (string, error) {
			ref, err := r.collectToken(refs, token)
			if err != nil {
				return "", err
			}
			return CitationMarker(ref.Number), nil
		})
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		lines[i] = rewritten
	}

	r.logger.Debug("references collected", "count", refs.Len())
	return refs, nil
}

func (r *ReferenceResolver) collectToken(refs *ReferenceList, token Token) (*Reference, error) {
	args := ParseReferenceArgs(token.RawArgs)
	id := args["id"]

	if existing, ok := refs.Lookup(id); ok {
		return existing, nil
	}

	if id == "" || (args["pmid"] == "" && args["reference_text"] == "") {
		return nil, referenceNotFound(id)
	}

	ref := &Reference{ID: id, ReferenceText: args["reference_text"]}
	if raw := args["pmid"]; raw != "" {
		pmid, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || pmid <= 0 {
			return nil, invalidPMID(id, raw)
		}
		ref.PMID = pmid
	}
	refs.add(ref)
	return ref, nil
}

// Enrich attaches citation metadata to every entry with a PubMed ID, using a
// single batched request. It does nothing when no entry has a PubMed ID or no
// source is configured.
func (r *ReferenceResolver) Enrich(ctx context.Context, refs *ReferenceList) error {
	pmids := refs.PMIDs()
	if len(pmids) == 0 {
		return nil
	}
	if r.source == nil {
		r.logger.Warn("no citation source configured, skipping enrichment", "pmids", len(pmids))
		return nil
	}

	citations, err := r.source.Citations(ctx, pmids)
	if err != nil {
		return fmt.Errorf("fetching citations: %w", err)
	}
	if len(citations) == 0 {
		r.logger.Debug("citation source returned no records", "pmids", len(pmids))
		return nil
	}

	for _, ref := range refs.entries {
		if c, ok := citations[ref.PMID]; ok && ref.PMID != 0 {
			c := c
			ref.Citation = &c
		}
	}
	r.logger.Debug("references enriched", "requested", len(pmids), "returned", len(citations))
	return nil
}

// RenderRefLists replaces every [REFLIST] in lines, in place, with the
// rendered bibliography.
func (r *ReferenceResolver) RenderRefLists(lines []string, refs *ReferenceList) error {
	var bibliography *string
	for i, line := range lines {
		tokens := TokenizeRefLists(line)
		if len(tokens) == 1 && !tokens[0].IsDirective() {
			continue
		}
		rewritten, err := rewriteTokens(tokens, func(Token) (string, error) {
			if bibliography == nil {
				b := RenderBibliography(refs)
				bibliography = &b
			}
			return *bibliography, nil
		})
		if err != nil {
			return err
		}
		lines[i] = rewritten
	}
	return nil
}
