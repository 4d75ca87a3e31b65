package id

import (
	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time, and ulid.Make uses monotonic entropy so two ids minted in
// the same millisecond still sort in generation order. Stores rely on this to
// break createdAt ties deterministically.
func New() string {
	return ulid.Make().String()
}

// Valid reports whether s is a well-formed ULID.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
