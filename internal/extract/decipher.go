package extract

import (
	"github.com/sigcarve/sigcarve/internal/patterns"
)

// Fragment is one extracted, reassembled piece of source: the decipher or the
// n-transform together with any companion declarations it needs to evaluate
// standalone. UsesTable records whether the fragment indexes into the global
// lookup table, so the assembler knows to emit the table declaration.
type Fragment struct {
	Source    string
	UsesTable bool
}

// A decipherAttempt tries one known bundle variant. It reports false when the
// variant is simply not present (the cascade moves on) and returns an error
// only when a shape this variant requires is missing (the cascade stops).
type decipherAttempt func(bundle string, table *LookupTable) (Fragment, bool, error)

// Variant order encodes which obfuscation style is currently dominant
// upstream; revisit it when the player format drifts. New variants are
// appended here without touching the existing attempts.
var decipherAttempts = []decipherAttempt{
	decipherIndexed,
	decipherClassic,
}

// ExtractDecipher carves the signature-permutation function out of the
// bundle, trying each known variant in priority order.
func ExtractDecipher(bundle string, table *LookupTable) (Fragment, error) {
	for _, attempt := range decipherAttempts {
		frag, ok, err := attempt(bundle, table)
		if err != nil {
			return Fragment{}, err
		}
		if ok {
			return frag, nil
		}
	}
	return Fragment{}, shapeErr(ErrCodeDecipherDriverNotFound, "decipher-driver")
}

// decipherIndexed handles the newest layout: a driver whose every method name
// and split/join literal is an indexed lookup into the global table, paired
// with a three-method action object. When both shapes are present the helper
// object validation below is unnecessary.
func decipherIndexed(bundle string, table *LookupTable) (Fragment, bool, error) {
	driver, ok := patterns.MatchTCESignDriver(bundle)
	if !ok {
		return Fragment{}, false, nil
	}
	actions, ok := patterns.MatchActionObject(bundle)
	if !ok {
		return Fragment{}, false, nil
	}
	src := "var " + DecipherName + "=" + terminate(driver) + actions
	return Fragment{Source: src, UsesTable: table != nil}, true, nil
}

// decipherClassic handles the helper-object layouts: a table of the four
// array operations plus a driver that split/chains/joins its argument. The
// driver may still be table-wrapped; in that case the loose global
// declarations its body references must ride along.
func decipherClassic(bundle string, table *LookupTable) (Fragment, bool, error) {
	helper, _, body, ok := patterns.MatchHelperObject(bundle)
	if !ok {
		return Fragment{}, false, shapeErr(ErrCodeHelperObjectNotFound, "helper-object-literal")
	}
	// An object literal that merely looks like "some object" is rejected
	// unless at least one entry is a recognizable array operation. This is a
	// correctness gate, not an optimization.
	if !patterns.HasAnyOperation([]byte(body)) {
		return Fragment{}, false, shapeErr(ErrCodeHelperObjectNoOperations, "array-helper-operation")
	}

	driver, ok := patterns.MatchPlainDriver(bundle)
	wrapped := false
	if !ok {
		driver, ok = patterns.MatchTCEDriver(bundle)
		wrapped = true
	}
	if !ok {
		// Same shape as the fast path, but paired with the classic helper
		// object instead of the action object.
		driver, ok = patterns.MatchTCESignDriver(bundle)
	}
	if !ok {
		return Fragment{}, false, shapeErr(ErrCodeDecipherDriverNotFound, "decipher-driver")
	}

	globals := ""
	if wrapped {
		g, ok := patterns.MatchGlobalVars(bundle)
		if !ok {
			return Fragment{}, false, shapeErr(ErrCodeGlobalDeclarationsNotFound, "global-variable-declarations")
		}
		globals = terminate(g)
	}

	src := globals + terminate(helper) + "\nvar " + DecipherName + "=" + terminate(driver)
	return Fragment{Source: src, UsesTable: wrapped && table != nil}, true, nil
}
