package registry

import (
	"fmt"
	"time"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Arguments are the decoded values of a unit's `arguments` block, already
// converted to the types the handler declared.
type Arguments map[string]cty.Value

// Decode copies the named argument into target using gocty. It leaves target
// untouched when the argument is absent or null.
func (a Arguments) Decode(name string, target any) error {
	v, ok := a[name]
	if !ok || v.IsNull() {
		return nil
	}
	if err := gocty.FromCtyValue(v, target); err != nil {
		return fmt.Errorf("argument %q: %w", name, err)
	}
	return nil
}

// String returns the named string argument, or def.
func (a Arguments) String(name, def string) (string, error) {
	out := def
	err := a.Decode(name, &out)
	return out, err
}

// Int returns the named number argument as an int, or def.
func (a Arguments) Int(name string, def int) (int, error) {
	out := def
	err := a.Decode(name, &out)
	return out, err
}

// Duration parses the named string argument with time.ParseDuration.
func (a Arguments) Duration(name string, def time.Duration) (time.Duration, error) {
	s, err := a.String(name, "")
	if err != nil || s == "" {
		return def, err
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("argument %q: %w", name, err)
	}
	return d, nil
}
