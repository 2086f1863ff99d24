//go:build wasm

package internal

import "sync"

var once sync.Once
var globalRuntime *Runtime

func GetRuntime() *Runtime {
	once.Do(func() {
		globalRuntime = NewRuntime()
	})

	return globalRuntime
}

func LookupRuntime() (*Runtime, bool) {
	return GetRuntime(), true
}

// the single runtime lives as long as the program
func forgetRuntime() {}

// every goroutine shares the runtime, so they all count as the same one
func goroutineID() int64 { return 0 }
