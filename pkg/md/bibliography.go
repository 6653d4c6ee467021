package md

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BibliographySeparator joins bibliography lines.
const BibliographySeparator = "<br/>"

const citationDateLayout = "2006/01/02 15:04"

// Year returns the publication year from the sort date.
func (c Citation) Year() (int, bool) {
	if t, err := time.Parse(citationDateLayout, strings.TrimSpace(c.Date)); err == nil {
		return t.Year(), true
	}
	// Some records carry a bare date.
	if len(c.Date) >= 4 {
		if y, err := strconv.Atoi(c.Date[:4]); err == nil {
			return y, true
		}
	}
	return 0, false
}

// FormatReference renders one bibliography line without its anchor, e.g.
// "1. Foo" for a reference with reference_text "Foo".
func FormatReference(ref *Reference) string {
	switch {
	case ref.ReferenceText != "":
		return fmt.Sprintf("%d. %s", ref.Number, ref.ReferenceText)
	case ref.PMID != 0:
		return fmt.Sprintf("%d.%s", ref.Number, formatPubMedCitation(ref))
	default:
		return fmt.Sprintf("%d. Insufficient information for reference.", ref.Number)
	}
}

// RenderBibliography renders every entry in numbering order. Entries with
// enough information get a named anchor the citation markers link to.
func RenderBibliography(refs *ReferenceList) string {
	if refs == nil {
		return ""
	}
	lines := make([]string, 0, refs.Len())
	for _, ref := range refs.Entries() {
		line := FormatReference(ref)
		if ref.ReferenceText != "" || ref.PMID != 0 {
			line = fmt.Sprintf("<a name=%d></a>", ref.Number) + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, BibliographySeparator)
}

// formatPubMedCitation assembles the citation body in fixed order:
// authors, title, journal, year, volume, issue, pages, doi, pmc, pmid.
func formatPubMedCitation(ref *Reference) string {
	var sb strings.Builder
	c := ref.Citation
	if c == nil {
		c = &Citation{}
	}

	if c.Authors != "" {
		fmt.Fprintf(&sb, " %s.", c.Authors)
	}
	if c.Title != "" {
		sb.WriteString(" " + c.Title)
		if !strings.HasSuffix(c.Title, ".") {
			sb.WriteString(".")
		}
	}
	if c.Journal != "" {
		fmt.Fprintf(&sb, " %s.", c.Journal)
	}
	if year, ok := c.Year(); ok {
		fmt.Fprintf(&sb, " %d;", year)
	}
	sb.WriteString(c.Volume)
	if c.Issue != "" {
		fmt.Fprintf(&sb, "(%s)", c.Issue)
	}
	if c.Pages != "" {
		fmt.Fprintf(&sb, ":%s.", c.Pages)
	}
	if c.DOI != "" {
		fmt.Fprintf(&sb, " [doi:%s.](https://doi.org/%s)", c.DOI, c.DOI)
	}
	if c.PMC != "" {
		fmt.Fprintf(&sb, " PMC: [%s.](https://ncbi.nlm.nih.gov/pmc/articles/%s/)", c.PMC, c.PMC)
	}
	fmt.Fprintf(&sb, " PMID: [%d.](https://pubmed.ncbi.nlm.nih.gov/%d/)", ref.PMID, ref.PMID)
	return sb.String()
}
