package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureEngine(t *testing.T) {
	require.NoError(t, EnsureEngine())
	// Idempotent.
	require.NoError(t, EnsureEngine())
}

func TestClassifyOperation(t *testing.T) {
	require.NoError(t, EnsureEngine())

	tests := []struct {
		name     string
		entry    string
		wantKind OpKind
		wantOK   bool
	}{
		{"reverse", `dU:function(a){a.reverse()}`, OpReverse, true},
		{"reverse with return", `dU:function(a){return a.reverse()}`, OpReverse, true},
		{"slice", `Fo:function(a,b){return a.slice(b)}`, OpSliceFrom, true},
		{"splice", `tY:function(a,b){a.splice(0,b)}`, OpSpliceDropPrefix, true},
		{"swap", `mK:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c;return a}`, OpSwapFirstAndNth, true},
		{"swap without return", `mK:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b]=c}`, OpSwapFirstAndNth, true},
		{"quoted key", `"mK":function(a,b){a.splice(0,b)}`, OpSpliceDropPrefix, true},
		{"quoted key reverse", `"dU":function(a){a.reverse()}`, OpReverse, true},

		// Similar but not identical bodies must not classify.
		{"sort is not reverse", `dU:function(a){a.sort()}`, "", false},
		{"splice from nonzero", `tY:function(a,b){a.splice(1,b)}`, "", false},
		{"extra statement", `dU:function(a){a.reverse();a.pop()}`, "", false},
		{"plain function", `fn:function(a){return a+1}`, "", false},
		{"op followed by more code", `zz:function(a,b){a.splice(0,b);a.reverse()}`, "", false},
		{"head without body", `fn:function(a)`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := ClassifyOperation([]byte(tt.entry))
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantKind, kind)
			}
		})
	}
}

func TestHasAnyOperation(t *testing.T) {
	require.NoError(t, EnsureEngine())

	body := `aa:function(a){return a+1},dU:function(a){a.reverse()}`
	assert.True(t, HasAnyOperation([]byte(body)))
	assert.True(t, HasAnyOperation([]byte(`"tY":function(a,b){a.splice(0,b)}`)))
	assert.False(t, HasAnyOperation([]byte(`aa:function(a){return a+1}`)))
	// An operation-shaped call inside a larger body is not an operation entry.
	assert.False(t, HasAnyOperation([]byte(`aa:function(a,b){a.splice(0,b);return a}`)))
}

func TestLoadShapes(t *testing.T) {
	shapes, err := LoadShapes()
	require.NoError(t, err)
	require.Len(t, shapes, 4)

	kinds := make(map[OpKind]bool)
	for _, s := range shapes {
		kinds[s.Kind] = true
		assert.NotNil(t, s.Regex)
		assert.NotNil(t, s.Mutex)
	}
	assert.Len(t, kinds, 4)
}

func TestExtractKeyword(t *testing.T) {
	tests := []struct {
		name  string
		regex string
		want  string
	}{
		{"pure literal", `foo\.bar\(\)`, "foo.bar()"},
		{"literal after class", `\w+\.reversed\(\)`, ".reversed()"},
		{"optional part skipped", `(?:return )?\.unshifted`, ".unshifted"},
		{"no literal", `\w+\d*`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractKeyword(tt.regex))
		})
	}
}

func TestIsValidKeyword(t *testing.T) {
	assert.True(t, IsValidKeyword(".reverse()"))
	assert.False(t, IsValidKeyword("ab"))
	assert.False(t, IsValidKeyword("aaaaaa"))
	assert.False(t, IsValidKeyword(""))
}
