// tokenizer_bracket.go implements the directive lexer shared by the rewrite passes.
package md

import (
	"regexp"
	"strings"
)

// tagMatcher attempts to match a directive starting at pos, which always points at '['.
// It returns the token, the position after the match, and whether it matched.
type tagMatcher func(input string, pos int) (Token, int, bool)

var (
	// imagePattern matches [image:N align:.. size:..], the rest of the line, and any
	// following caption lines indented by four spaces.
	imagePattern = regexp.MustCompile(`(?i)\A\[image:([0-9]+)` +
		`(?:\s+align:(right|left))?` +
		`(?:\s+size:(default|small|medium|large|orig))?` +
		`[ \t]*\]([^\n]*)` +
		`((?:\n    [^\n]*)*)`)

	// referencePattern matches [REF ...] up to the first closing bracket.
	referencePattern = regexp.MustCompile(`(?i)\A\[(ref)(\s[^\]]*)\]`)

	// refListPattern matches the bibliography sentinel.
	refListPattern = regexp.MustCompile(`(?i)\A\[reflist\]`)
)

// scanDirectives walks input and splits it into text tokens and whatever the
// matcher recognizes. A '[' the matcher rejects is kept as text, and so is
// anything inside a skipped span.
func scanDirectives(input string, match tagMatcher, skip ...codeSpan) []Token {
	var tokens []Token
	pos := 0
	textStart := 0
	next := 0

	for pos < len(input) {
		for next < len(skip) && skip[next].end <= pos {
			next++
		}
		if next < len(skip) && skip[next].start <= pos {
			pos = skip[next].end
			continue
		}
		if input[pos] != '[' {
			pos++
			continue
		}

		token, endPos, ok := match(input, pos)
		if !ok {
			pos++
			continue
		}

		if pos > textStart {
			tokens = append(tokens, Token{
				Type:     TokenText,
				Text:     input[textStart:pos],
				Position: textStart,
			})
		}

		tokens = append(tokens, token)
		pos = endPos
		textStart = pos
	}

	if textStart < len(input) {
		tokens = append(tokens, Token{
			Type:     TokenText,
			Text:     input[textStart:],
			Position: textStart,
		})
	}

	return tokens
}

// TokenizeImages scans input for image directives. Fenced code blocks and
// backtick code spans are left as text.
func TokenizeImages(input string) []Token {
	return scanDirectives(input, matchImageTag, findCodeSpans(input)...)
}

// TokenizeMacros scans input for [name key:value ...] macro directives outside
// code. Directive names are not checked against any registry here.
func TokenizeMacros(input string) []Token {
	return scanDirectives(input, matchMacroTag, findCodeSpans(input)...)
}

// TokenizeReferences scans a single line for [REF ...] directives.
func TokenizeReferences(line string) []Token {
	return scanDirectives(line, matchReferenceTag)
}

// TokenizeRefLists scans a single line for the [REFLIST] sentinel.
func TokenizeRefLists(line string) []Token {
	return scanDirectives(line, matchRefListTag)
}

func matchImageTag(input string, pos int) (Token, int, bool) {
	m := imagePattern.FindStringSubmatchIndex(input[pos:])
	if m == nil {
		return Token{}, pos, false
	}
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return input[pos+m[2*i] : pos+m[2*i+1]]
	}

	end := pos + m[1]
	return Token{
		Type:         TokenImage,
		Name:         "image",
		OriginalName: input[pos+1 : pos+6],
		ImageID:      group(1),
		Align:        strings.ToLower(group(2)),
		Size:         strings.ToLower(group(3)),
		Trailer:      group(4),
		Caption:      group(5),
		Position:     pos,
		OriginalText: input[pos:end],
	}, end, true
}

func matchReferenceTag(input string, pos int) (Token, int, bool) {
	m := referencePattern.FindStringSubmatchIndex(input[pos:])
	if m == nil {
		return Token{}, pos, false
	}
	end := pos + m[1]
	return Token{
		Type:         TokenReference,
		Name:         "ref",
		OriginalName: input[pos+m[2] : pos+m[3]],
		RawArgs:      input[pos+m[4] : pos+m[5]],
		Position:     pos,
		OriginalText: input[pos:end],
	}, end, true
}

func matchRefListTag(input string, pos int) (Token, int, bool) {
	m := refListPattern.FindStringIndex(input[pos:])
	if m == nil {
		return Token{}, pos, false
	}
	end := pos + m[1]
	return Token{
		Type:         TokenRefList,
		Name:         "reflist",
		OriginalName: input[pos+1 : end-1],
		Position:     pos,
		OriginalText: input[pos:end],
	}, end, true
}

// matchMacroTag recognizes [name] and [name key:value ...]. The first argument
// must be written key:value; later ones may be bare keys. A ']' inside a
// single-quoted value does not close the tag. Arguments written key::value
// belong to the reference grammar, so such tags are declined.
func matchMacroTag(input string, pos int) (Token, int, bool) {
	start := pos
	pos++ // skip '['

	nameStart := pos
	for pos < len(input) && isWordChar(input[pos]) {
		pos++
	}
	if pos == nameStart {
		return Token{}, start, false
	}
	name := input[nameStart:pos]

	if pos < len(input) && input[pos] == ']' {
		pos++
		return Token{
			Type:         TokenMacro,
			Name:         strings.ToLower(name),
			OriginalName: name,
			Position:     start,
			OriginalText: input[start:pos],
		}, pos, true
	}

	// Arguments must open with whitespace followed by key:
	if pos >= len(input) || !isSpaceByte(input[pos]) {
		return Token{}, start, false
	}
	argStart := pos
	for pos < len(input) && isSpaceByte(input[pos]) {
		pos++
	}
	keyStart := pos
	for pos < len(input) && isWordChar(input[pos]) {
		pos++
	}
	if pos == keyStart || pos >= len(input) || input[pos] != ':' {
		return Token{}, start, false
	}

	closeAt := findMacroClose(input, pos)
	if closeAt < 0 {
		return Token{}, start, false
	}
	rawArgs := input[argStart:closeAt]
	if hasDoubleColonKey(rawArgs) {
		return Token{}, start, false
	}

	end := closeAt + 1
	return Token{
		Type:         TokenMacro,
		Name:         strings.ToLower(name),
		OriginalName: name,
		RawArgs:      rawArgs,
		Position:     start,
		OriginalText: input[start:end],
	}, end, true
}

// findMacroClose returns the index of the ']' closing a macro tag, skipping
// over single-quoted values. Tags do not span lines.
func findMacroClose(input string, pos int) int {
	for pos < len(input) {
		switch input[pos] {
		case '\n':
			return -1
		case ']':
			return pos
		case '\'':
			if pos > 0 && input[pos-1] == ':' {
				if end := quotedEnd(input, pos); end > 0 {
					pos = end
					continue
				}
			}
		}
		pos++
	}
	return -1
}

// quotedEnd returns the index just past the single-quoted string starting at
// pos, honouring backslash escapes, or -1 when the quote is unterminated.
func quotedEnd(input string, pos int) int {
	for i := pos + 1; i < len(input); i++ {
		switch input[i] {
		case '\\':
			i++
		case '\'':
			return i + 1
		case '\n':
			return -1
		}
	}
	return -1
}

// hasDoubleColonKey reports whether any whitespace-preceded word is followed by "::".
func hasDoubleColonKey(raw string) bool {
	for i := 0; i+1 < len(raw); i++ {
		if raw[i] != ':' || raw[i+1] != ':' {
			continue
		}
		j := i
		for j > 0 && isWordChar(raw[j-1]) {
			j--
		}
		if j < i && (j == 0 || isSpaceByte(raw[j-1])) {
			return true
		}
	}
	return false
}

func isWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

// rewriteTokens concatenates tokens, replacing each directive with the output of fn.
func rewriteTokens(tokens []Token, fn func(Token) (string, error)) (string, error) {
	var sb strings.Builder
	for _, token := range tokens {
		if !token.IsDirective() {
			sb.WriteString(token.Text)
			continue
		}
		out, err := fn(token)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

// codeSpan is a half-open byte range of markdown code.
type codeSpan struct {
	start, end int
}

// findCodeSpans returns the fenced code blocks and backtick code spans of
// input in order. An unterminated fence runs to the end of input; an
// unmatched backtick run is plain text.
func findCodeSpans(input string) []codeSpan {
	var spans []codeSpan
	proseStart := 0
	lineStart := 0

	for lineStart < len(input) {
		lineEnd := lineEndAt(input, lineStart)
		fence, ok := openingFence(input[lineStart:lineEnd])
		if !ok {
			lineStart = lineEnd
			continue
		}

		spans = append(spans, findBacktickSpans(input, proseStart, lineStart)...)

		end := len(input)
		for l := lineEnd; l < len(input); {
			e := lineEndAt(input, l)
			if isClosingFence(input[l:e], fence) {
				end = e
				break
			}
			l = e
		}
		spans = append(spans, codeSpan{start: lineStart, end: end})
		proseStart = end
		lineStart = end
	}

	return append(spans, findBacktickSpans(input, proseStart, len(input))...)
}

// lineEndAt returns the index just past the line starting at pos, newline included.
func lineEndAt(input string, pos int) int {
	if i := strings.IndexByte(input[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(input)
}

// openingFence reports whether line opens a fenced code block and returns the
// fence run.
func openingFence(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return "", false
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return "", false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return "", false
	}
	if c == '`' && strings.IndexByte(trimmed[n:], '`') >= 0 {
		return "", false
	}
	return trimmed[:n], true
}

func isClosingFence(line, fence string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == fence[0] {
		n++
	}
	return n >= len(fence) && strings.TrimSpace(trimmed[n:]) == ""
}

// findBacktickSpans finds code spans in input[from:to]. A span closes on the
// next backtick run of the same length.
func findBacktickSpans(input string, from, to int) []codeSpan {
	var spans []codeSpan
	pos := from
	for pos < to {
		if input[pos] != '`' {
			pos++
			continue
		}
		runEnd := backtickRunEnd(input, pos, to)
		size := runEnd - pos

		closed := false
		for p := runEnd; p < to; {
			if input[p] != '`' {
				p++
				continue
			}
			e := backtickRunEnd(input, p, to)
			if e-p == size {
				spans = append(spans, codeSpan{start: pos, end: e})
				pos = e
				closed = true
				break
			}
			p = e
		}
		if !closed {
			pos = runEnd
		}
	}
	return spans
}

func backtickRunEnd(input string, pos, to int) int {
	for pos < to && input[pos] == '`' {
		pos++
	}
	return pos
}
