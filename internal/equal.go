package internal

import (
	"math"
	"reflect"
)

// Equal reports whether two hook values are the same.
// Comparable values compare by ==, except NaN which equals NaN.
// Slices, maps, pointers and channels compare by identity.
// Functions have no identity in Go so they never compare equal.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	if va.Comparable() && vb.Comparable() {
		return a == b || isNaN(va) && isNaN(vb)
	}

	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	default:
		// funcs, and structs or arrays holding one
		return false
	}
}

func isNaN(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return math.IsNaN(v.Float())
	default:
		return false
	}
}

// EqualValues compares two value lists elementwise, length included.
func EqualValues(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}

	return true
}
