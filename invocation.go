package cssbuild

import (
	"slices"
)

// Invocation describes how a task function was reached in the current run.
type Invocation struct {
	Requested []string // Names explicitly requested by the user ("app:nest")
	Stack     []string // Names of the invocations that led here, outermost first
}

// NewInvocation creates a top-level invocation context.
func NewInvocation(requested ...string) Invocation {
	return Invocation{Requested: requested}
}

// Call returns the context seen by a dependency invoked from name.
func (inv Invocation) Call(name string) Invocation {
	stack := make([]string, 0, len(inv.Stack)+1)
	stack = append(stack, inv.Stack...)
	return Invocation{Requested: inv.Requested, Stack: append(stack, name)}
}

// IsRequested reports whether name was explicitly requested.
func (inv Invocation) IsRequested(name string) bool {
	return slices.Contains(inv.Requested, name)
}

// IsParentRequested reports whether any invocation on the stack was
// explicitly requested.
func (inv Invocation) IsParentRequested() bool {
	for _, name := range inv.Stack {
		if inv.IsRequested(name) {
			return true
		}
	}
	return false
}

// Targets reports whether label is the current task or is run on behalf of a
// requested parent. Failures of targeted invocations are fatal.
func (inv Invocation) Targets(label string) bool {
	return inv.IsRequested(label) || inv.IsParentRequested()
}

// Label joins a task name and function: "app" + "lint" = "app:lint".
func Label(task, fn string) string {
	return task + ":" + fn
}
