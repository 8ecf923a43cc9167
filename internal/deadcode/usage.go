package deadcode

import "deadwood/internal/modules"

// ExportRef names one own export of one module by its external name.
type ExportRef struct {
	Module modules.ModuleID
	Name   string
}

// Usage is the used-flag state of a run. It is kept apart from the graph,
// which stays immutable; flags only ever go from unmarked to used.
type Usage struct {
	used map[ExportRef]struct{}
}

// NewUsage creates an empty usage set.
func NewUsage() *Usage {
	return &Usage{used: make(map[ExportRef]struct{})}
}

// Mark records ref as used and reports whether it was newly marked.
func (u *Usage) Mark(ref ExportRef) bool {
	if _, ok := u.used[ref]; ok {
		return false
	}
	u.used[ref] = struct{}{}
	return true
}

// IsUsed reports whether ref has been marked.
func (u *Usage) IsUsed(ref ExportRef) bool {
	_, ok := u.used[ref]
	return ok
}

// Len returns the number of marked exports.
func (u *Usage) Len() int {
	return len(u.used)
}
