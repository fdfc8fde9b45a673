package patterns

import (
	"regexp"
	"sync"
)

// ============================================================================
// WILDCARD FRAGMENTS
// ============================================================================

// Obfuscated player builds randomize every identifier on release, so no shape
// ever names a specific variable: identifiers are matched as wildcards over
// the JS identifier grammar, and member access covers dot, bracket-string and
// escaped-dot forms alike.
const (
	Ident        = `[a-zA-Z_$][a-zA-Z_0-9$]*`
	identDef     = `"?` + Ident + `"?`
	beforeAccess = `(?:\["|\.)`
	afterAccess  = `(?:"\]|)`
	IdentAccess  = beforeAccess + Ident + afterAccess

	dqString = `"[^"\\]*(?:\\.[^"\\]*)*"`
	sqString = `'[^'\\]*(?:\\.[^'\\]*)*'`
	anyStr   = `(?:` + dqString + `|` + sqString + `)`
)

// ============================================================================
// ARRAY HELPER OPERATION BODIES
// ============================================================================

// The four method-body shapes a signature helper object is built from. The
// leading colon ties each body to an object-literal key; the key itself is
// matched separately as an identDef wildcard.
const (
	ReverseOp = `:function\(\w\)\{(?:return )?\w\.reverse\(\)\}`
	SliceOp   = `:function\(\w,\w\)\{return \w\.slice\(\w\)\}`
	SpliceOp  = `:function\(\w,\w\)\{\w\.splice\(0,\w\)\}`
	SwapOp    = `:function\(\w,\w\)\{` +
		`var \w=\w\[0\];\w\[0\]=\w\[\w%\w\.length\];\w\[\w(?:%\w\.length|)\]=\w(?:;return \w)?\}`
)

// ============================================================================
// STATEMENT-LEVEL SHAPES (package-level compiled)
// ============================================================================

var (
	// Helper-object literal: every entry must be one of the four operation
	// bodies, in any order, under arbitrary keys.
	helperObjectRe = regexp.MustCompile(
		`var (` + Ident + `)=\{((?:(?:` +
			identDef + ReverseOp + `|` +
			identDef + SliceOp + `|` +
			identDef + SpliceOp + `|` +
			identDef + SwapOp +
			`),?\n?)+)\};`)

	// Plain decipher driver, head only: the single-letter parameter is
	// captured here and the body shape is rebuilt around it (Go's RE2 engine
	// has no backreferences, so parameter identity is enforced by compiling
	// the tail against the captured name).
	plainDriverHeadRe = regexp.MustCompile(`function(?: ` + Ident + `)?\(([a-zA-Z])\)\{`)

	// Table-wrapped (TCE) decipher driver: split/join literals and method
	// names are replaced by indexed lookups, but the call chain keeps its
	// statement shape, so no parameter identity is needed.
	tceDriverRe = regexp.MustCompile(
		`function(?:\s+` + Ident + `)?\(\w\)\{` +
			`\w=\w\.split\((?:""|[a-zA-Z0-9_$]*\[\d+\])\);` +
			`\s*((?:(?:\w=)?` + Ident + IdentAccess + `\(\w,\d+\);)+)` +
			`return \w\.join\((?:""|[a-zA-Z0-9_$]*\[\d+\])\)\}`)

	// Global lookup-table declaration: a string literal split by another
	// string literal, or an array literal of short string tokens, optionally
	// preceded by a strict-mode pragma.
	tableDeclRe = regexp.MustCompile(
		`(?:'use\s*strict';)?` +
			`(?P<code>var\s*` +
			`(?P<varname>[a-zA-Z0-9_$]+)\s*=\s*` +
			`(?P<value>` +
			anyStr + `\.split\(` + anyStr + `\)` +
			`|\[(?:` + anyStr + `\s*,?\s*)*\]` +
			`))`)

	// Loose global var declarations referenced by table-wrapped drivers:
	// split-string or string-array literals declared at statement level.
	globalVarsRe = regexp.MustCompile(
		`(?m)(?:^|[;,])\s*(var\s+([\w$]+)\s*=\s*` +
			`(?:` + anyStr + `\s*\.\s*split\(` + anyStr + `\)` +
			`|\[\s*(?:` + anyStr + `\s*,?\s*)+\]))\s*[,;]`)

	// Heads for the shapes whose originals rely on backreferences; the tails
	// are compiled per candidate, see matchAt.
	tceSignHeadRe  = regexp.MustCompile(`function\(\s*([a-zA-Z0-9$])\s*\)\s*\{\s*`)
	tceNHeadRe     = regexp.MustCompile(`function\s*\((\w+)\)\s*\{var\s*\w+\s*=\s*`)
	legacyNHeadRe  = regexp.MustCompile(`function\(\s*(\w+)\s*\)\s*\{var\s*(\w+)=`)
	legacyTNHeadRe = regexp.MustCompile(`function\(\s*(\w+)\s*\)\s*\{\s*var\s*(\w+)=`)

	// Single formal parameter, first occurrence within a fragment.
	paramRe = regexp.MustCompile(`function\s*\(\s*(\w+)\s*\)`)

	actionHeadRe = regexp.MustCompile(`var\s+([$A-Za-z0-9_]+)\s*=\s*\{`)
)

// compileCached compiles dynamically built shapes at most once; minified
// bundles reuse the same short parameter names, so the hit rate is high.
var reCache sync.Map

func compileCached(pattern string) (*regexp.Regexp, error) {
	if v, ok := reCache.Load(pattern); ok {
		return v.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	reCache.Store(pattern, re)
	return re, nil
}

// matchAt walks every occurrence of a head shape and tries a tail shape built
// from the head's captures, anchored at the head's offset. First match wins.
func matchAt(bundle string, head *regexp.Regexp, build func(binds []string) string) (string, []string, bool) {
	for _, loc := range head.FindAllStringSubmatchIndex(bundle, -1) {
		binds := make([]string, 0, len(loc)/2-1)
		for i := 2; i < len(loc); i += 2 {
			if loc[i] < 0 {
				binds = append(binds, "")
				continue
			}
			binds = append(binds, bundle[loc[i]:loc[i+1]])
		}
		re, err := compileCached(`\A` + build(binds))
		if err != nil {
			continue
		}
		m := re.FindStringSubmatchIndex(bundle[loc[0]:])
		if m == nil {
			continue
		}
		full := bundle[loc[0] : loc[0]+m[1]]
		out := make([]string, 0, len(m)/2-1)
		for i := 2; i < len(m); i += 2 {
			if m[i] < 0 {
				out = append(out, "")
				continue
			}
			out = append(out, bundle[loc[0]+m[i]:loc[0]+m[i+1]])
		}
		return full, out, true
	}
	return "", nil, false
}

// MatchHelperObject locates the classic signature helper object. Returns the
// full declaration span, the table variable name and the literal body.
func MatchHelperObject(bundle string) (span, name, body string, ok bool) {
	m := helperObjectRe.FindStringSubmatch(bundle)
	if m == nil {
		return "", "", "", false
	}
	return m[0], m[1], m[2], true
}

// MatchPlainDriver locates the non-table decipher driver: split, a chain of
// helper calls on the same parameter, join.
func MatchPlainDriver(bundle string) (span string, ok bool) {
	span, _, ok = matchAt(bundle, plainDriverHeadRe, func(binds []string) string {
		p := regexp.QuoteMeta(binds[0])
		return `function(?: ` + Ident + `)?\(` + p + `\)\{` +
			p + `=` + p + `\.split\(""\);\s*` +
			`(?:(?:` + p + `=)?` + Ident + IdentAccess + `\(` + p + `,\d+\);)+` +
			`return ` + p + `\.join\(""\)\}`
	})
	return span, ok
}

// MatchTCEDriver locates the lookup-table decipher driver.
func MatchTCEDriver(bundle string) (span string, ok bool) {
	m := tceDriverRe.FindString(bundle)
	if m == "" {
		return "", false
	}
	return m, true
}

// MatchTableDecl locates the global lookup-table declaration and returns the
// captured variable name plus the declaration source verbatim.
func MatchTableDecl(bundle string) (name, decl string, ok bool) {
	m := tableDeclRe.FindStringSubmatch(bundle)
	if m == nil {
		return "", "", false
	}
	for i, group := range tableDeclRe.SubexpNames() {
		switch group {
		case "code":
			decl = m[i]
		case "varname":
			name = m[i]
		}
	}
	if decl == "" || name == "" {
		return "", "", false
	}
	return name, decl, true
}

// MatchGlobalVars locates the first loose split-string/array global referenced
// by table-wrapped drivers and returns its var statement.
func MatchGlobalVars(bundle string) (code string, ok bool) {
	m := globalVarsRe.FindStringSubmatch(bundle)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// MatchTCESignDriver locates the indexed-lookup decipher driver: a transform
// of the parameter through the table, two helper calls on a shared action
// object, and an indexed final call returning the joined result.
func MatchTCESignDriver(bundle string) (span string, ok bool) {
	span, _, ok = matchAt(bundle, tceSignHeadRe, func(binds []string) string {
		p := regexp.QuoteMeta(binds[0])
		return `function\(\s*` + p + `\s*\)\s*\{` +
			`\s*` + p + `\s*=\s*` + p + `\[(\w+)\[\d+\]\]\(\w+\[\d+\]\);` +
			`([a-zA-Z0-9$]+)\[\w+\[\d+\]\]\(\s*` + p + `\s*,\s*\d+\s*\);` +
			`\s*[a-zA-Z0-9$]+\[\w+\[\d+\]\]\(\s*` + p + `\s*,\s*\d+\s*\);` +
			`(?s:.*?)return\s*` + p + `\[\w+\[\d+\]\]\(\w+\[\d+\]\)\};`
	})
	return span, ok
}

// MatchNTransformTCE locates the modern table-indexed n-transform: indexed
// split, an array of mixed entries, a try/catch fallback returning an indexed
// literal concatenated with the input, and an indexed join.
func MatchNTransformTCE(bundle string) (span string, ok bool) {
	span, _, ok = matchAt(bundle, tceNHeadRe, func(binds []string) string {
		p := regexp.QuoteMeta(binds[0])
		return `function\s*\(` + p + `\)\s*\{` +
			`var\s*\w+\s*=\s*` + p + `\[\w+\[\d+\]\]\(\w+\[\d+\]\)\s*,\s*\w+\s*=\s*\[(?s:.*?)\];` +
			`(?s:.*?)catch\s*\(\s*\w+\s*\)\s*\{return\s*\w+\[\d+\]\s*\+\s*` + p + `\}` +
			`\s*return\s*\w+\[\w+\[\d+\]\]\(\w+\[\d+\]\)\}\s*;`
	})
	return span, ok
}

// MatchNTransformLegacy locates the plain-literal n-transform with its
// try/catch fallback branch.
func MatchNTransformLegacy(bundle string) (span string, ok bool) {
	span, _, ok = matchAt(bundle, legacyNHeadRe, func(binds []string) string {
		p := regexp.QuoteMeta(binds[0])
		b := regexp.QuoteMeta(binds[1])
		return `function\(\s*` + p + `\s*\)\s*\{` +
			`var\s*` + b + `=(?:` + p + `\.split\((?s:.*?)\)|String\.prototype\.split\.call\(` + p + `,(?s:.*?)\)),` +
			`\s*(\w+)=(\[(?s:.*?)\]);\s*\w+\[\d+\]` +
			`((?s:.*?)try)(\{(?s:.*?)\})catch\(\s*(\w+)\s*\)\s*\{` +
			`\s*return"[\w-]+[A-Za-z0-9-]*"\s*\+\s*` + p + `\s*}` +
			`\s*return\s*(?:` + b + `\.join\(""\)|Array\.prototype\.join\.call\(` + b + `,(?s:.*?)\))};`
	})
	return span, ok
}

// MatchNTransformLegacyTCE locates the older table-wrapped n-transform where
// split/join go through indexed literals but the try/catch fallback shape is
// unchanged.
func MatchNTransformLegacyTCE(bundle string) (span string, ok bool) {
	span, _, ok = matchAt(bundle, legacyTNHeadRe, func(binds []string) string {
		p := regexp.QuoteMeta(binds[0])
		b := regexp.QuoteMeta(binds[1])
		return `function\(\s*` + p + `\s*\)\s*\{` +
			`\s*var\s*` + b + `=` + p + `\.split\(` + p + `\.slice\(0,0\)\),\s*\w+\s*=\s*\[(?s:.*?)\];` +
			`(?s:.*?)catch\(\s*\w+\s*\)\s*\{` +
			`\s*return(?:"[^"]+"|\s*[a-zA-Z_0-9$]*\[\d+\])\s*\+\s*` + p + `\s*}` +
			`\s*return\s*` + b + `\.join\((?:""|[a-zA-Z_0-9$]*\[\d+\])\)\};`
	})
	return span, ok
}

// ParamName extracts the first formal-parameter shape within a fragment.
func ParamName(fragment string) (string, bool) {
	m := paramRe.FindStringSubmatch(fragment)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ShortCircuitGuardRe builds the modern guard shape: a typeof test against
// "undefined" (literal or table-indexed) followed by an immediate return.
func ShortCircuitGuardRe(tableName string) *regexp.Regexp {
	alt := `"undefined"|'undefined'`
	if tableName != "" {
		alt += `|` + regexp.QuoteMeta(tableName) + `\[\d+\]`
	}
	return regexp.MustCompile(
		`;\s*if\s*\(\s*typeof\s+[a-zA-Z0-9_$]+\s*===?\s*(?:` + alt + `)\s*\)\s*return\s+\w+;`)
}

// LegacyGuardRe builds the legacy guard shape, matched by parameter identity.
func LegacyGuardRe(param string) (*regexp.Regexp, error) {
	return compileCached(`if\s*\(typeof\s*[^\s()]+\s*===?.*?\)return ` + regexp.QuoteMeta(param) + `\s*;?`)
}
