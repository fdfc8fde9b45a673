package extract

import (
	"github.com/sigcarve/sigcarve/internal/patterns"
)

// LookupTable is the global string-lookup array (or split string) newer
// player builds route their helper calls through. Both the decipher and the
// n-transform commonly index into the same table, so its declaration must
// travel with any fragment that references it.
type LookupTable struct {
	Name string
	Decl string
}

// ExtractLookupTable finds the table declaration if the bundle carries one.
// Absence is not a failure: it simply means the bundle uses the legacy
// (direct-literal) layout.
func ExtractLookupTable(bundle string) (*LookupTable, bool) {
	name, decl, ok := patterns.MatchTableDecl(bundle)
	if !ok {
		return nil, false
	}
	return &LookupTable{Name: name, Decl: decl}, true
}
