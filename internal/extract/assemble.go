package extract

import (
	"strings"

	"github.com/sigcarve/sigcarve/internal/core"
)

// Canonical binding names. Randomized bundle-local names never leak past the
// extraction stages: executors call these two names and nothing else, which
// is the entire contract between this package and any JS runtime.
const (
	DecipherName  = "DecipherFunc"
	TransformName = "NTransformFunc"
)

// terminate closes a statement so concatenated fragments stay valid as a
// standalone top-level script.
func terminate(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if stmt == "" || strings.HasSuffix(stmt, ";") {
		return stmt
	}
	return stmt + ";"
}

// Assemble composes the final script: the lookup-table declaration when
// either fragment indexes into it, then the decipher, then the n-transform.
// Correctness was already enforced by the stages; this is pure composition.
func Assemble(table *LookupTable, decipher, transform Fragment) *core.Script {
	var b strings.Builder
	if table != nil && (decipher.UsesTable || transform.UsesTable) {
		b.WriteString(terminate(table.Decl))
		b.WriteString("\n")
	}
	b.WriteString(terminate(decipher.Source))
	b.WriteString("\n")
	b.WriteString(terminate(transform.Source))

	return &core.Script{
		Source:        b.String(),
		DecipherName:  DecipherName,
		TransformName: TransformName,
	}
}
