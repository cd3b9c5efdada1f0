// Package sessionid stamps every compiler instance with a v4 UUID, attached
// to log lines and dev-server responses so concurrent compiles across
// goroutines or requests can be told apart (SPEC_FULL.md Domain Stack item 2).
package sessionid

import "github.com/google/uuid"

// ID is a compile session identifier.
type ID string

// New generates a fresh random session identifier.
func New() ID {
	return ID(uuid.NewString())
}

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }
