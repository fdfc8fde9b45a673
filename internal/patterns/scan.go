package patterns

import (
	"regexp"
	"strings"
)

// Helper bodies can contain their own nested blocks, so object spans cannot be
// taken with fixed-depth repetition. BalancedBlock counts braces instead,
// staying aware of string literals so a brace inside "..." never terminates a
// block early.

// BalancedBlock returns the index one past the brace that closes the block
// opened at src[open] (which must be '{'). Reports false on unterminated or
// misaligned input.
func BalancedBlock(src string, open int) (int, bool) {
	if open < 0 || open >= len(src) || src[open] != '{' {
		return 0, false
	}
	var strChar byte
	depth := 0
	for pos := open; pos < len(src); pos++ {
		b := src[pos]
		switch b {
		case '{':
			if strChar == 0 {
				depth++
			}
		case '}':
			if strChar == 0 {
				depth--
				if depth == 0 {
					return pos + 1, true
				}
			}
		case '`', '"', '\'':
			if pos >= 2 && src[pos-1] == '\\' && src[pos-2] != '\\' {
				continue
			}
			if strChar == 0 {
				strChar = b
			} else if strChar == b {
				strChar = 0
			}
		}
	}
	return 0, false
}

var actionEntryRe = regexp.MustCompile(`^(?:"[$A-Za-z0-9_]+"|[$A-Za-z0-9_]+)\s*:\s*function\s*\([^)]*\)\s*`)

// splitFunctionEntries walks the top level of an object literal body (the text
// between its outer braces) and collects entries of the form
// key:function(...){...}. Reports false if any
// entry has another form; entries gathered before the malformed one are still
// returned.
func splitFunctionEntries(body string) ([]string, bool) {
	rest := strings.TrimSpace(body)
	var entries []string
	for rest != "" {
		head := actionEntryRe.FindString(rest)
		if head == "" {
			return entries, false
		}
		end, ok := BalancedBlock(rest[len(head):], 0)
		if !ok {
			return entries, false
		}
		end += len(head)
		entries = append(entries, rest[:end])
		rest = strings.TrimSpace(rest[end:])
		if rest == "" {
			break
		}
		if rest[0] != ',' {
			return entries, false
		}
		rest = strings.TrimSpace(rest[1:])
	}
	return entries, true
}

// countFunctionEntries counts entries of the form key:function(...){...} at the
// top level of an object literal body. Reports false if any entry has another
// form.
func countFunctionEntries(body string) (int, bool) {
	entries, ok := splitFunctionEntries(body)
	return len(entries), ok
}

// MatchActionObject locates a companion object literal exposing exactly three
// function-valued entries. The object span is taken by brace counting rather
// than a fixed-depth shape, since the entry bodies may nest arbitrarily.
func MatchActionObject(bundle string) (string, bool) {
	for _, loc := range actionHeadRe.FindAllStringIndex(bundle, -1) {
		open := loc[1] - 1
		end, ok := BalancedBlock(bundle, open)
		if !ok {
			continue
		}
		n, allFuncs := countFunctionEntries(bundle[open+1 : end-1])
		if !allFuncs || n != 3 {
			continue
		}
		span := bundle[loc[0]:end]
		if end < len(bundle) && bundle[end] == ';' {
			span = bundle[loc[0] : end+1]
		} else {
			span += ";"
		}
		return span, true
	}
	return "", false
}
