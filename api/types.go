// Package api provides the wiki host and PubMed E-utilities clients.
package api

import "time"

// Asset is an image descriptor served by the wiki's asset endpoint.
type Asset struct {
	ID    int    `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Width int    `json:"width,omitempty"`
	// Height is reported by newer hosts only.
	Height int `json:"height,omitempty"`
}

// Article is a wiki article with its current revision.
type Article struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	URL      string    `json:"url"`
	Content  string    `json:"content"`
	Deleted  bool      `json:"deleted"`
	Modified Time      `json:"modified,omitempty"`
	Revision *Revision `json:"current_revision,omitempty"`
}

// Revision describes an article revision.
type Revision struct {
	Number  int    `json:"revision_number"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Deleted bool   `json:"deleted"`
	Created Time   `json:"created,omitempty"`
}

// ArticleNode is one entry of an article's descendant tree.
type ArticleNode struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	URL      string        `json:"url"`
	Deleted  bool          `json:"deleted"`
	Children []ArticleNode `json:"children,omitempty"`
}

// Time is a wrapper around time.Time for custom JSON parsing.
type Time struct {
	time.Time
}

// UnmarshalJSON parses ISO 8601 timestamps with or without fractional seconds.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)

	// Handle null or empty
	if s == "null" || s == `""` || s == "" {
		return nil
	}

	// Remove quotes if present
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	if s == "" {
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// Django emits naive timestamps when USE_TZ is off.
		parsed, err = time.Parse("2006-01-02T15:04:05.999999", s)
		if err != nil {
			return err
		}
	}

	t.Time = parsed
	return nil
}

// MarshalJSON formats time in ISO 8601 format.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors,omitempty"`
}

func (e *ErrorResponse) Error() string {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return e.Message
}
