package jsrun_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigcarve/sigcarve/internal/core"
	"github.com/sigcarve/sigcarve/internal/extract"
	"github.com/sigcarve/sigcarve/internal/jsrun"
)

func newScript(source string) *core.Script {
	return &core.Script{
		Source:        source,
		DecipherName:  extract.DecipherName,
		TransformName: extract.TransformName,
	}
}

func TestRunnerCalls(t *testing.T) {
	script := newScript(
		`var ` + extract.DecipherName + `=function(a){a=a.split("");a.reverse();return a.join("")};` +
			`var ` + extract.TransformName + `=function(n){return n+"_t"};`)

	r, err := jsrun.New(script)
	require.NoError(t, err)

	out, err := r.Decipher("abc")
	require.NoError(t, err)
	assert.Equal(t, "cba", out)

	out, err = r.Transform("xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz_t", out)
}

func TestRunnerRejectsBrokenScript(t *testing.T) {
	_, err := jsrun.New(newScript(`var { = broken`))
	require.Error(t, err)
}

func TestRunnerRejectsMissingBinding(t *testing.T) {
	_, err := jsrun.New(newScript(`var ` + extract.DecipherName + `=function(a){return a};`))
	require.Error(t, err)
}

func TestRunnerInterruptsRunawayCall(t *testing.T) {
	script := newScript(
		`var ` + extract.DecipherName + `=function(a){while(true){}};` +
			`var ` + extract.TransformName + `=function(n){return n};`)

	r, err := jsrun.NewWithTimeout(script, 100*time.Millisecond)
	require.NoError(t, err)

	_, err = r.Decipher("abc")
	require.Error(t, err)

	// The VM must stay usable after an interrupt.
	out, err := r.Transform("n1")
	require.NoError(t, err)
	assert.Equal(t, "n1", out)
}

// The carved output of a real-shaped bundle must execute as-is.
func TestExtractedScriptExecutes(t *testing.T) {
	bundle := `var Xr={dU:function(a){a.reverse()},` +
		`Fo:function(a,b){return a.slice(b)},` +
		`tY:function(a,b){a.splice(0,b)},` +
		`mK:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c;return a}};` +
		`function Zx(a){a=a.split("");Xr.dU(a,1);a=Xr.Fo(a,2);Xr.mK(a,3);return a.join("")};` +
		`Qda=function(a){var b=a.split(""),c=[function(d,e){d.push(e)},b,652131];` +
		`c[0](c[1],"Z");if(typeof dja==="undefined")return a;` +
		`try{c[0](b,"Q")}catch(f){return"enhanced_except_Abc-_w8_"+a}return b.join("")};`

	script, err := extract.Extract(bundle)
	require.NoError(t, err)

	r, err := jsrun.New(script)
	require.NoError(t, err)

	// reverse, drop two, swap first with index 3.
	out, err := r.Decipher("abcdefg")
	require.NoError(t, err)
	assert.Equal(t, "bdcea", out)

	// Guard stripped: the transform body runs instead of returning the input.
	out, err = r.Transform("abc")
	require.NoError(t, err)
	assert.Equal(t, "abcZQ", out)
}
