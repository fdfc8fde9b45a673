package extract

import (
	"unicode/utf8"

	"github.com/sigcarve/sigcarve/internal/core"
	"github.com/sigcarve/sigcarve/internal/patterns"
)

// MaxBundleSize caps the input size. Player bundles sit around 2 MB; anything
// far past that is either not a player bundle or a decompression bomb, and the
// scanning passes below are superlinear in the worst case.
const MaxBundleSize = 12 << 20

// catalogueErr keeps the single-entry-point contract intact when the embedded
// operation catalogue itself fails to load: even that failure surfaces as a
// ShapeError with a code and a shape name.
func catalogueErr(cause error) error {
	return &ShapeError{Code: ErrCodeShapeCatalogueUnavailable, Shape: "operation-catalogue", Err: cause}
}

// Extract runs the full cascade over a player bundle and assembles the
// resulting script. Stages run in dependency order: the lookup table first
// (optional, consumed by both later stages), then the decipher, then the
// n-transform. Any stage error aborts; no partial script is ever returned.
func Extract(bundle string) (*core.Script, error) {
	if len(bundle) == 0 || len(bundle) > MaxBundleSize || !utf8.ValidString(bundle) {
		return nil, shapeErr(ErrCodeMalformedOrOversizedBundle, "player-bundle")
	}
	if err := patterns.EnsureEngine(); err != nil {
		return nil, catalogueErr(err)
	}

	table, _ := ExtractLookupTable(bundle)

	decipher, err := ExtractDecipher(bundle, table)
	if err != nil {
		return nil, err
	}
	transform, err := ExtractNTransform(bundle, table)
	if err != nil {
		return nil, err
	}

	return Assemble(table, decipher, transform), nil
}
