// Package jsrun evaluates assembled scripts in a sandboxed goja runtime and
// exposes the two extracted functions as plain Go functions.
package jsrun

import (
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/sigcarve/sigcarve/internal/core"
)

// DefaultTimeout bounds a single function call. The extracted functions are
// tiny string shufflers; anything that runs longer is looping on malformed
// input and must be interrupted rather than hang the pipeline.
const DefaultTimeout = 5 * time.Second

// Runner owns one goja VM with a loaded script. A goja runtime is not safe
// for concurrent use, so every call is serialized behind the mutex.
type Runner struct {
	mu        sync.Mutex
	vm        *goja.Runtime
	decipher  func(string) (string, error)
	transform func(string) (string, error)
	timeout   time.Duration
}

// New loads the script into a fresh VM and exports both functions.
func New(script *core.Script) (*Runner, error) {
	return NewWithTimeout(script, DefaultTimeout)
}

func NewWithTimeout(script *core.Script, timeout time.Duration) (*Runner, error) {
	vm := goja.New()
	if _, err := vm.RunString(script.Source); err != nil {
		return nil, fmt.Errorf("loading script: %w", err)
	}

	r := &Runner{vm: vm, timeout: timeout}
	if err := exportFunc(vm, script.DecipherName, &r.decipher); err != nil {
		return nil, err
	}
	if err := exportFunc(vm, script.TransformName, &r.transform); err != nil {
		return nil, err
	}
	return r, nil
}

func exportFunc(vm *goja.Runtime, name string, target *func(string) (string, error)) error {
	v := vm.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return fmt.Errorf("script does not define %s", name)
	}
	if err := vm.ExportTo(v, target); err != nil {
		return fmt.Errorf("exporting %s: %w", name, err)
	}
	return nil
}

// Decipher applies the signature-permutation function to a scrambled
// signature.
func (r *Runner) Decipher(sig string) (string, error) {
	return r.call(func() (string, error) { return r.decipher(sig) })
}

// Transform applies the n-parameter transform.
func (r *Runner) Transform(n string) (string, error) {
	return r.call(func() (string, error) { return r.transform(n) })
}

// call runs fn under the VM lock with a watchdog that interrupts the VM if
// the call overruns the timeout.
func (r *Runner) call(fn func() (string, error)) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		select {
		case <-done:
		case <-time.After(r.timeout):
			r.vm.Interrupt("execution timeout")
		}
	}()
	defer func() {
		close(done)
		r.vm.ClearInterrupt()
	}()

	out, err := fn()
	if err != nil {
		if intErr, ok := err.(*goja.InterruptedError); ok {
			return "", fmt.Errorf("execution timed out: %v", intErr.Value())
		}
		return "", fmt.Errorf("execution error: %w", err)
	}
	return out, nil
}
