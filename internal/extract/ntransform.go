package extract

import (
	"strings"

	"github.com/sigcarve/sigcarve/internal/patterns"
)

type transformAttempt func(bundle string, table *LookupTable) (Fragment, bool, error)

var transformAttempts = []transformAttempt{
	transformIndexed,
	transformLegacy,
}

// ExtractNTransform carves the throttling-parameter transform out of the
// bundle. The lookup table captured by the earlier stage disambiguates the
// guard shape; the same table commonly backs both functions.
func ExtractNTransform(bundle string, table *LookupTable) (Fragment, error) {
	for _, attempt := range transformAttempts {
		frag, ok, err := attempt(bundle, table)
		if err != nil {
			return Fragment{}, err
		}
		if ok {
			return frag, nil
		}
	}
	return Fragment{}, shapeErr(ErrCodeNTransformNotFound, "n-transform")
}

// transformIndexed handles the modern table-indexed n-transform. The embedded
// short-circuit guard (typeof test against an indexed "undefined") references
// bundle-local names that are meaningless once isolated, so it is replaced by
// a bare ";" to keep the statement syntactically whole.
func transformIndexed(bundle string, table *LookupTable) (Fragment, bool, error) {
	span, ok := patterns.MatchNTransformTCE(bundle)
	if !ok {
		return Fragment{}, false, nil
	}

	name := ""
	if table != nil {
		name = table.Name
	}
	if g := patterns.ShortCircuitGuardRe(name).FindString(span); g != "" {
		span = strings.Replace(span, g, ";", 1)
	}

	src := "var " + TransformName + "=" + terminate(span)
	return Fragment{Source: src, UsesTable: table != nil}, true, nil
}

// transformLegacy handles the two older layouts: a direct-literal transform
// or its table-wrapped sibling. The guard here differs in source form from
// the modern one and must be stripped by parameter identity.
func transformLegacy(bundle string, table *LookupTable) (Fragment, bool, error) {
	span, ok := patterns.MatchNTransformLegacy(bundle)
	wrapped := false
	if !ok {
		span, ok = patterns.MatchNTransformLegacyTCE(bundle)
		wrapped = true
	}
	if !ok {
		return Fragment{}, false, nil
	}

	cleaned, err := stripLegacyGuard(span)
	if err != nil {
		return Fragment{}, false, err
	}

	globals := ""
	if wrapped {
		g, ok := patterns.MatchGlobalVars(bundle)
		if !ok {
			return Fragment{}, false, shapeErr(ErrCodeGlobalDeclarationsNotFound, "global-variable-declarations")
		}
		globals = terminate(g)
	}

	src := globals + "var " + TransformName + "=" + terminate(cleaned)
	return Fragment{Source: src, UsesTable: wrapped && table != nil}, true, nil
}

// stripLegacyGuard removes any `if (typeof <param> ...) return <param>;`
// prefix from an otherwise-matched legacy fragment. The guard is matched
// against the fragment's own formal parameter, never a fixed literal.
// Stripping an already-clean fragment is a no-op.
func stripLegacyGuard(fragment string) (string, error) {
	param, ok := patterns.ParamName(fragment)
	if !ok {
		return "", shapeErr(ErrCodeNTransformParameterNotFound, "n-transform-parameter")
	}
	re, err := patterns.LegacyGuardRe(param)
	if err != nil {
		return "", err
	}
	return re.ReplaceAllString(fragment, ""), nil
}
