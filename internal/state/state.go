// Package state defines task states and the forward-only progression between them.
package state

import "github.com/tcsenpai/TG-Manager/internal/clierr"

// Default state names.
const (
	Todo           = "todo"
	CurrentlyDoing = "currently_doing"
	Done           = "done"
)

// TaskState is one entry of a user's ordered state sequence.
type TaskState struct {
	Name     string `json:"name" yaml:"name"`
	HexColor string `json:"hexColor" yaml:"hexColor"`
	Icon     string `json:"icon" yaml:"icon"`
}

// Defaults returns a fresh copy of the default state sequence.
func Defaults() []TaskState {
	return []TaskState{
		{Name: Todo, HexColor: "#ff6961", Icon: "📝"},
		{Name: CurrentlyDoing, HexColor: "#fdfd96", Icon: "⏳"},
		{Name: Done, HexColor: "#77dd77", Icon: "✅"},
	}
}

// Names returns the ordered list of state names.
func Names(states []TaskState) []string {
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = s.Name
	}
	return names
}

// Lookup returns the state with the given name.
func Lookup(states []TaskState, name string) (TaskState, bool) {
	for _, s := range states {
		if s.Name == name {
			return s, true
		}
	}
	return TaskState{}, false
}

// Index returns the position of name in the sequence, or -1.
func Index(states []TaskState, name string) int {
	for i, s := range states {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Next returns the state after current. ok is false when current is already
// the final state. An UnknownState error is returned when current is not part
// of the sequence at all.
func Next(current string, states []TaskState) (next string, ok bool, err error) {
	idx := Index(states, current)
	if idx < 0 {
		return "", false, unknown(current, states)
	}
	if idx == len(states)-1 {
		return "", false, nil
	}
	return states[idx+1].Name, true, nil
}

// Final returns the last state name, or "" for an empty sequence.
func Final(states []TaskState) string {
	if len(states) == 0 {
		return ""
	}
	return states[len(states)-1].Name
}

// IsFinal reports whether name is the last state of the sequence.
func IsFinal(name string, states []TaskState) bool {
	return len(states) > 0 && states[len(states)-1].Name == name
}

// Default returns the first state name, or "" for an empty sequence.
func Default(states []TaskState) string {
	if len(states) == 0 {
		return ""
	}
	return states[0].Name
}

// Validate checks that name is a member of states.
func Validate(name string, states []TaskState) error {
	if Index(states, name) < 0 {
		return unknown(name, states)
	}
	return nil
}

func unknown(name string, states []TaskState) *clierr.Error {
	return clierr.Newf(clierr.UnknownState, "unknown state %q", name).
		WithDetails(map[string]any{
			"state":   name,
			"allowed": Names(states),
		})
}
