// Package arena provides the bump-allocated pools and append-only log buffers
// used throughout the compiler. Unlike the C original, Go's garbage collector
// owns individual object lifetimes; what this package preserves from the
// original design is the *grouping* discipline (symbols/scopes, the IL
// program, and reader-side scratch state are each tied to one arena's
// lifetime) and the checkpoint/release pattern used to unwind cleanly when a
// compilation aborts partway through.
package arena

import "fmt"

// OutOfMemory is the sentinel panic value raised by Alloc when an arena
// exceeds its budget. CompileShader recovers exactly this type at its top
// level, mirroring the non-local exit the original compiler used for
// allocator exhaustion.
type OutOfMemory struct {
	Arena string
}

func (e *OutOfMemory) Error() string {
	return fmt.Sprintf("arena %q: out of memory", e.Arena)
}

// Arena tracks a named allocation budget. A budget of zero means unbounded.
type Arena struct {
	name   string
	budget int
	used   int
}

// New creates an arena with the given name and byte budget. A non-positive
// budget disables the bound entirely (useful for the read-side temp arena,
// which is sized by the IL text being parsed rather than fixed in advance).
func New(name string, budget int) *Arena {
	return &Arena{name: name, budget: budget}
}

// Name returns the arena's label, used in diagnostics.
func (a *Arena) Name() string { return a.name }

// Used returns the number of bytes currently charged against the budget.
func (a *Arena) Used() int { return a.used }

// Alloc charges n bytes against the arena's budget. It panics with
// *OutOfMemory when doing so would exceed a positive budget.
func (a *Arena) Alloc(n int) {
	if n < 0 {
		n = 0
	}
	a.used += n
	if a.budget > 0 && a.used > a.budget {
		panic(&OutOfMemory{Arena: a.name})
	}
}

// Checkpoint returns a mark that Release can later roll back to.
func (a *Arena) Checkpoint() int { return a.used }

// Release rolls the arena's usage back to a prior checkpoint. It does not
// reclaim the Go objects allocated since the checkpoint (the GC does that);
// it only restores the budget so the arena can be reused for a new phase.
func (a *Arena) Release(mark int) { a.used = mark }

// Reset releases the entire arena, as if destroy() had been called on it in
// the original design.
func (a *Arena) Reset() { a.used = 0 }

// Log is an append-only text buffer of lines. (The compile diagnostic log is
// diag.Log, and the IL text is built by iltext.Write; neither uses this
// type.) Appends are always in encounter order, matching the ordering
// guarantee in §5.
type Log struct {
	lines []string
}

// Append adds one line to the log.
func (l *Log) Append(line string) {
	l.lines = append(l.lines, line)
}

// Appendf formats and appends one line.
func (l *Log) Appendf(format string, args ...any) {
	l.Append(fmt.Sprintf(format, args...))
}

// Len reports the number of lines appended so far.
func (l *Log) Len() int { return len(l.lines) }

// Lines returns the accumulated lines in append order.
func (l *Log) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// String renders the log as a single newline-joined, newline-terminated
// string — the "null-terminated copy" contract of §4.1, adapted to Go's
// string type.
func (l *Log) String() string {
	var size int
	for _, line := range l.lines {
		size += len(line) + 1
	}
	buf := make([]byte, 0, size)
	for _, line := range l.lines {
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}
	return string(buf)
}
