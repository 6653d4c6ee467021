// stash.go holds rendered HTML fragments out of the markdown pass.
package md

import (
	"fmt"
	"strings"
)

// Placeholders are plain alphanumerics so markdown leaves them alone.
const (
	stashPlaceholderPrefix = "WMKSTASH"
	stashPlaceholderSuffix = "END"
)

// Stash stores HTML fragments for one render and hands back opaque placeholders.
type Stash struct {
	fragments []string
}

// NewStash returns an empty stash.
func NewStash() *Stash {
	return &Stash{}
}

// Store saves html and returns the placeholder that stands in for it.
func (s *Stash) Store(html string) string {
	id := len(s.fragments)
	s.fragments = append(s.fragments, html)
	return FormatPlaceholder(id)
}

// Len returns the number of stored fragments.
func (s *Stash) Len() int {
	return len(s.fragments)
}

// Fragment returns the html stored under id.
func (s *Stash) Fragment(id int) (string, bool) {
	if id < 0 || id >= len(s.fragments) {
		return "", false
	}
	return s.fragments[id], true
}

// Restore replaces every placeholder in html with its fragment. A placeholder
// the markdown renderer wrapped in its own paragraph is unwrapped.
func (s *Stash) Restore(html string) string {
	for id, fragment := range s.fragments {
		placeholder := FormatPlaceholder(id)
		wrapped := "<p>" + placeholder + "</p>"
		if strings.Contains(html, wrapped) {
			html = strings.ReplaceAll(html, wrapped, fragment)
		}
		html = strings.ReplaceAll(html, placeholder, fragment)
	}
	return html
}

// FormatPlaceholder creates a stash placeholder string.
func FormatPlaceholder(id int) string {
	return fmt.Sprintf("%s%d%s", stashPlaceholderPrefix, id, stashPlaceholderSuffix)
}
