package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalancedBlock(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		open    int
		wantEnd int
		wantOK  bool
	}{
		{"flat", `{a=1}`, 0, 5, true},
		{"nested", `{if(x){y()}}tail`, 0, 12, true},
		{"brace in string", `{a="}";b()}`, 0, 11, true},
		{"brace in single quotes", `{a='}'}`, 0, 7, true},
		{"escaped quote", `{a="\"}";b}`, 0, 11, true},
		{"unterminated", `{a={b}`, 0, 0, false},
		{"not a brace", `a{}`, 0, 0, false},
		{"offset", `xx{y{}}z`, 2, 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end, ok := BalancedBlock(tt.src, tt.open)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantEnd, end)
			}
		})
	}
}

func TestSplitFunctionEntries(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantEntries []string
		wantOK      bool
	}{
		{
			"two entries",
			`aa:function(a){a.reverse()},bb:function(a,b){a.splice(0,b)}`,
			[]string{`aa:function(a){a.reverse()}`, `bb:function(a,b){a.splice(0,b)}`},
			true,
		},
		{
			"quoted key",
			`"aa":function(a){a.reverse()}`,
			[]string{`"aa":function(a){a.reverse()}`},
			true,
		},
		{
			"non-function tail stops the walk",
			`aa:function(a){a.reverse()},bb:42`,
			[]string{`aa:function(a){a.reverse()}`},
			false,
		},
		{
			"not an object body",
			`if(a){b()}`,
			nil,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, ok := splitFunctionEntries(tt.body)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantEntries, entries)
		})
	}
}

func TestMatchActionObject(t *testing.T) {
	actions := `var Wo={tQ:function(d){d.reverse()},` +
		`sL:function(d,e){d.splice(0,e)},` +
		`BH:function(d,e){var f=d[0];d[0]=d[e%d.length];d[e%d.length]=f}};`
	bundle := `var a=1;` + actions + `more();`

	span, ok := MatchActionObject(bundle)
	require.True(t, ok)
	assert.Equal(t, actions, span)
}

func TestMatchActionObjectRequiresThreeMethods(t *testing.T) {
	tests := []struct {
		name   string
		bundle string
	}{
		{"two entries", `var Wo={a:function(d){d.reverse()},b:function(d,e){d.splice(0,e)}};`},
		{"four entries", `var Wo={a:function(){},b:function(){},c:function(){},d:function(){}};`},
		{"non-function entry", `var Wo={a:function(){},b:function(){},c:42};`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := MatchActionObject(tt.bundle)
			assert.False(t, ok)
		})
	}
}

func TestMatchActionObjectAppendsTerminator(t *testing.T) {
	// No semicolon after the literal in the source: the returned span must
	// still end as a complete statement.
	bundle := `var Wo={a:function(){},b:function(){},c:function(){}}` + "\n" + `next()`

	span, ok := MatchActionObject(bundle)
	require.True(t, ok)
	assert.Equal(t, byte(';'), span[len(span)-1])
}

func TestMatchActionObjectHandlesNestedBraces(t *testing.T) {
	bundle := `var Wo={a:function(d){if(d){d.reverse()}},b:function(d,e){d.splice(0,e)},c:function(d){return d}};`

	span, ok := MatchActionObject(bundle)
	require.True(t, ok)
	assert.Equal(t, bundle, span)
}
