//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

// one runtime per goroutine currently rendering or batching
var runtimes sync.Map

func GetRuntime() *Runtime {
	gid := goid.Get()

	if r, ok := runtimes.Load(gid); ok {
		return r.(*Runtime)
	}

	r := NewRuntime()
	runtimes.Store(gid, r)
	return r
}

// LookupRuntime returns the runtime of the calling goroutine without creating one.
func LookupRuntime() (*Runtime, bool) {
	r, ok := runtimes.Load(goid.Get())
	if !ok {
		return nil, false
	}
	return r.(*Runtime), true
}

func forgetRuntime() {
	runtimes.Delete(goid.Get())
}

func goroutineID() int64 {
	return goid.Get()
}
