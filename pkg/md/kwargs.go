// kwargs.go parses macro keyword arguments (key:value, key:'quoted', bare key).
package md

import (
	"strconv"
	"strings"
)

// keepBackslash temporarily stands in for an escaped backslash while the other
// escapes are removed.
const keepBackslash = "\x00KEEPME\x00"

// ArgValue is a single keyword-argument value: either a string or the boolean
// flag produced by a bare key.
type ArgValue struct {
	Value string
	Flag  bool
}

// String returns the value as text; a bare flag reads as "true".
func (v ArgValue) String() string {
	if v.Flag {
		return "true"
	}
	return v.Value
}

// Int interprets the value as a base-10 integer.
func (v ArgValue) Int() (int, error) {
	return strconv.Atoi(strings.TrimSpace(v.String()))
}

// KeywordArgs maps argument names to their values.
type KeywordArgs map[string]ArgValue

// Has reports whether key was supplied.
func (a KeywordArgs) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// String returns the value for key, or def when it is absent.
func (a KeywordArgs) String(key, def string) string {
	if v, ok := a[key]; ok {
		return v.String()
	}
	return def
}

// Keys returns the argument names in no particular order.
func (a KeywordArgs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	return keys
}

// ParseKeywordArgs parses the raw argument substring that follows a macro name,
// e.g. " depth:2 caption:'a \'quoted\' word' open".
func ParseKeywordArgs(raw string) KeywordArgs {
	args := KeywordArgs{}
	pos := 0

	for pos < len(raw) {
		for pos < len(raw) && isSpaceByte(raw[pos]) {
			pos++
		}
		if pos >= len(raw) {
			break
		}

		keyStart := pos
		for pos < len(raw) && isWordChar(raw[pos]) {
			pos++
		}
		if pos == keyStart {
			// Not a key; skip the stray character.
			pos++
			continue
		}
		key := raw[keyStart:pos]

		if pos >= len(raw) || raw[pos] != ':' {
			args[key] = ArgValue{Flag: true}
			continue
		}
		pos++ // skip ':'

		if pos < len(raw) && raw[pos] == '\'' {
			if end := quotedEnd(raw, pos); end > 0 {
				args[key] = ArgValue{Value: unquoteValue(raw[pos:end])}
				pos = end
				continue
			}
		}

		end := unquotedEnd(raw, pos)
		args[key] = ArgValue{Value: strings.TrimRight(raw[pos:end], " \t\r\n")}
		pos = end
	}

	return args
}

// unquotedEnd returns where an unquoted value starting at pos stops: at the
// whitespace preceding the next key: or at the end of raw.
func unquotedEnd(raw string, pos int) int {
	for i := pos; i < len(raw); i++ {
		if !isSpaceByte(raw[i]) {
			continue
		}
		j := i
		for j < len(raw) && isSpaceByte(raw[j]) {
			j++
		}
		k := j
		for k < len(raw) && isWordChar(raw[k]) {
			k++
		}
		if k > j && k < len(raw) && raw[k] == ':' {
			return i
		}
	}
	return len(raw)
}

// unquoteValue strips the surrounding quotes and resolves escapes: \\ becomes a
// backslash, any other \x becomes x. Values of two characters or fewer ('') are
// returned unchanged.
func unquoteValue(quoted string) string {
	if len(quoted) <= 2 {
		return quoted
	}
	value := quoted[1 : len(quoted)-1]
	value = strings.ReplaceAll(value, `\\`, keepBackslash)
	value = strings.ReplaceAll(value, `\`, "")
	return strings.ReplaceAll(value, keepBackslash, `\`)
}
