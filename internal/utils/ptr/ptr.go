// Package ptr holds small helpers for optional values, which the GraphQL
// layer models as pointers so that absent and empty stay distinguishable.
package ptr

// String creates a pointer to the given string value.
func String(s string) *string {
	return &s
}

// Deref returns the value p points to, or the zero value when p is nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
