package description

import (
	"cmp"
	"fmt"
	"strings"
)

// Description identifies a unit of work. It is a value type; copies are
// independent except for the Parameters backing array, which callers must
// treat as read-only.
type Description struct {
	Name       string
	Kind       Kind
	Run        int
	TotalRuns  int
	Parameters []any
}

// Key is the comparable identity of a Description. Two descriptions with the
// same key describe the same instance.
type Key struct {
	Name string
	Kind Kind
	Run  int
}

// New creates a description for a single run.
func New(name string, kind Kind) Description {
	return Description{Name: name, Kind: kind, Run: 1, TotalRuns: 1}
}

// NewRun creates a description for run `run` out of `total`, carrying the
// given parameters.
func NewRun(name string, kind Kind, run, total int, params ...any) Description {
	return Description{Name: name, Kind: kind, Run: run, TotalRuns: total, Parameters: params}
}

// Root returns the System description for a run called name.
func Root(name string) Description {
	return New(name, System)
}

// IsZero reports whether d carries no identity.
func (d Description) IsZero() bool {
	return d.Name == "" && d.Kind == 0
}

// Valid reports whether d can identify an event.
func (d Description) Valid() bool {
	return d.Name != "" && d.Kind.Valid()
}

// Key returns the identity tuple of d.
func (d Description) Key() Key {
	return Key{Name: d.Name, Kind: d.Kind, Run: d.Run}
}

// Equal compares identities, ignoring TotalRuns and Parameters.
func (d Description) Equal(other Description) bool {
	return d.Key() == other.Key()
}

// Compare orders descriptions by kind, then name, then run number.
func Compare(a, b Description) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.Run, b.Run)
}

// RelatedTo reports whether d and other belong to the same branch of the
// run hierarchy. The System description is related to everything; a group is
// related to any description whose name lies under the group's name; two
// units are related only when their names are equal (all runs of one unit).
func (d Description) RelatedTo(other Description) bool {
	if d.Kind == System || other.Kind == System {
		return true
	}
	if d.Kind == Unit && other.Kind == Unit {
		return d.Name == other.Name
	}
	if d.Kind == Group {
		return HasPrefix(other.Name, d.Name)
	}
	return HasPrefix(d.Name, other.Name)
}

// String renders the description the way reports show it:
// `name`, `name:2-3` for repeated runs and `name(a,b)` for parameters.
func (d Description) String() string {
	var sb strings.Builder
	sb.WriteString(d.Name)
	if d.TotalRuns > 1 {
		fmt.Fprintf(&sb, ":%d-%d", d.Run, d.TotalRuns)
	}
	if len(d.Parameters) > 0 {
		sb.WriteByte('(')
		for i, p := range d.Parameters {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprint(&sb, p)
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
