// tokens.go defines the typed matches produced by the directive lexer.
package md

// TokenType identifies what a lexer token represents.
type TokenType int

const (
	TokenText      TokenType = iota // plain text between directives
	TokenImage                      // [image:ID align:.. size:..] plus trailer and caption
	TokenMacro                      // [name key:value ...]
	TokenReference                  // [REF key::value ...]
	TokenRefList                    // [REFLIST]
)

// String returns a short label for debugging and log fields.
func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "text"
	case TokenImage:
		return "image"
	case TokenMacro:
		return "macro"
	case TokenReference:
		return "reference"
	case TokenRefList:
		return "reflist"
	default:
		return "unknown"
	}
}

// Token is one located occurrence of a directive, or a run of text between them.
type Token struct {
	Type         TokenType
	Name         string // lower-cased directive name
	OriginalName string // directive name as written
	RawArgs      string // argument substring following the name, unparsed
	Text         string // set for TokenText
	Position     int    // byte offset in the scanned input
	OriginalText string // the full matched text, echoed back for unknown directives

	// Image-only fields.
	ImageID string
	Align   string
	Size    string
	Trailer string // rest of the line after the closing bracket
	Caption string // indented caption lines, each with its leading newline
}

// IsDirective reports whether the token is anything other than plain text.
func (t Token) IsDirective() bool {
	return t.Type != TokenText
}
