package description

import "fmt"

// Kind distinguishes the level of a description in the run hierarchy.
type Kind int

const (
	// System is the run-wide envelope.
	System Kind = iota + 1
	// Group owns a set of units and has its own start/end lifecycle.
	Group
	// Unit is the leaf piece of work.
	Unit
)

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= System && k <= Unit
}

func (k Kind) String() string {
	switch k {
	case System:
		return "system"
	case Group:
		return "group"
	case Unit:
		return "unit"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}
