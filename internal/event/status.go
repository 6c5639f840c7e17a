package event

import "fmt"

// Status is the lifecycle state carried by an event.
type Status int

const (
	// Started is emitted when a node begins. It is the only non-terminal status.
	Started Status = iota + 1
	// Passed marks a unit that completed successfully.
	Passed
	// Failed marks a unit whose payload failed.
	Failed
	// Ignored marks a unit that was skipped on purpose.
	Ignored
	// Terminated marks the end of a sentinel, or a unit that was cancelled.
	Terminated
)

var statusNames = map[Status]string{
	Started:    "started",
	Passed:     "passed",
	Failed:     "failed",
	Ignored:    "ignored",
	Terminated: "terminated",
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Terminal reports whether s ends a lifecycle.
func (s Status) Terminal() bool {
	return s.Valid() && s != Started
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler. The zero Status, meaning no
// outcome yet, marshals to an empty string.
func (s Status) MarshalText() ([]byte, error) {
	if s == 0 {
		return []byte{}, nil
	}
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = 0
		return nil
	}
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(text))
}
