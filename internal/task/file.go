package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/idalloc"
)

const indent = "  "

var (
	taskKeys = []string{"id", "name", "description", "subtasks", "timestamp", "state", "priority"}
	metaKeys = []string{"states"}
	fileKeys = []string{"meta", "datas"}
)

// Decode parses a storage document. It checks the top-level shape only:
// meta.states and datas must both be arrays. Individual tasks are not
// deep-validated. Tasks stored without an id are given the lowest free one.
func Decode(data []byte) (*File, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, corrupt(fmt.Sprintf("not a JSON object: %v", err))
	}

	var meta map[string]json.RawMessage
	if err := json.Unmarshal(top["meta"], &meta); err != nil || meta == nil {
		return nil, corrupt("missing meta object")
	}
	if !isArray(meta["states"]) {
		return nil, corrupt("meta.states is not an array")
	}
	if !isArray(top["datas"]) {
		return nil, corrupt("datas is not an array")
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, corrupt(fmt.Sprintf("malformed content: %v", err))
	}
	if f.Datas == nil {
		f.Datas = []*Task{}
	}
	assignMissingIDs(f.Datas)
	return &f, nil
}

// Encode serializes a storage document deterministically: two-space
// indentation, no HTML escaping, no trailing newline.
func Encode(f *File) ([]byte, error) {
	out := *f
	if out.Datas == nil {
		out.Datas = []*Task{}
	}
	if out.Meta.States == nil {
		out.Meta.States = NewFile().Meta.States
	}
	return MarshalJSON(out)
}

// MarshalJSON encodes v the same way Encode does.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding JSON: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func assignMissingIDs(forest []*Task) {
	var used []int
	var missing []*Task
	Walk(forest, func(t *Task, _ []int) bool {
		if t.layout != nil && !t.layout.hasValue("id") {
			missing = append(missing, t)
		} else {
			used = append(used, t.ID)
		}
		return true
	})
	for _, t := range missing {
		t.ID = idalloc.Next(used)
		used = append(used, t.ID)
	}
}

// UnmarshalJSON decodes a task and remembers its on-disk layout when writing
// it back canonically would change it.
func (t *Task) UnmarshalJSON(data []byte) error {
	if isNullJSON(data) {
		return nil
	}
	l, err := readLayout(data)
	if err != nil {
		return fmt.Errorf("task: %w", err)
	}

	var out Task
	fields := map[string]any{
		"id":          &out.ID,
		"name":        &out.Name,
		"description": &out.Description,
		"subtasks":    &out.Subtasks,
		"timestamp":   &out.Timestamp,
		"state":       &out.State,
		"priority":    &out.Priority,
	}
	for key, dst := range fields {
		if !l.has(key) {
			continue
		}
		if err := json.Unmarshal(l.raw[key], dst); err != nil {
			return fmt.Errorf("task field %q: %w", key, err)
		}
	}
	if l.has("subtasks") && out.Subtasks == nil {
		out.Subtasks = []*Task{}
	}

	if !l.canonical(taskKeys, out.setKeys()) {
		out.layout = l
	}
	*t = out
	return nil
}

// MarshalJSON writes the set fields in document order. A decoded task also
// writes back every key it was read with: unknown keys verbatim, nulls as
// null, and known fields that are now empty as their empty value. A cleared
// priority is dropped.
func (t Task) MarshalJSON() ([]byte, error) {
	set := t.setKeys()
	if t.layout == nil {
		return t.writeKeys(set, set)
	}
	return t.writeKeys(t.layout.order(taskKeys, set), set)
}

func (t Task) writeKeys(keys, set []string) ([]byte, error) {
	var w objectWriter
	for _, k := range keys {
		v, known := t.field(k)
		var err error
		switch {
		case !known:
			err = w.raw(k, t.layout.raw[k])
		case slices.Contains(set, k):
			err = w.value(k, v)
		case t.layout.isNull(k):
			err = w.raw(k, jsonNull)
		case k == "priority":
		default:
			err = w.value(k, v)
		}
		if err != nil {
			return nil, fmt.Errorf("task %d field %q: %w", t.ID, k, err)
		}
	}
	return w.bytes(), nil
}

// setKeys lists the fields a canonical encoding writes: the id always, the
// rest when non-empty.
func (t Task) setKeys() []string {
	keys := []string{"id"}
	if t.Name != "" {
		keys = append(keys, "name")
	}
	if t.Description != "" {
		keys = append(keys, "description")
	}
	if len(t.Subtasks) > 0 {
		keys = append(keys, "subtasks")
	}
	if t.Timestamp != "" {
		keys = append(keys, "timestamp")
	}
	if t.State != "" {
		keys = append(keys, "state")
	}
	if t.Priority != nil {
		keys = append(keys, "priority")
	}
	return keys
}

func (t Task) field(key string) (any, bool) {
	switch key {
	case "id":
		return t.ID, true
	case "name":
		return t.Name, true
	case "description":
		return t.Description, true
	case "subtasks":
		if t.Subtasks == nil {
			return []*Task{}, true
		}
		return t.Subtasks, true
	case "timestamp":
		return t.Timestamp, true
	case "state":
		return t.State, true
	case "priority":
		return t.Priority, true
	}
	return nil, false
}

// UnmarshalJSON keeps meta keys other than states for the next write.
func (m *Meta) UnmarshalJSON(data []byte) error {
	if isNullJSON(data) {
		return nil
	}
	l, err := readLayout(data)
	if err != nil {
		return fmt.Errorf("meta: %w", err)
	}
	var out Meta
	if l.has("states") {
		if err := json.Unmarshal(l.raw["states"], &out.States); err != nil {
			return fmt.Errorf("meta states: %w", err)
		}
	}
	if !l.canonical(metaKeys, metaKeys) {
		out.layout = l
	}
	*m = out
	return nil
}

func (m Meta) MarshalJSON() ([]byte, error) {
	keys := metaKeys
	if m.layout != nil {
		keys = m.layout.order(metaKeys, metaKeys)
	}
	var w objectWriter
	for _, k := range keys {
		var err error
		if k == "states" {
			states := m.States
			if states == nil {
				states = NewFile().Meta.States
			}
			err = w.value(k, states)
		} else {
			err = w.raw(k, m.layout.raw[k])
		}
		if err != nil {
			return nil, fmt.Errorf("meta field %q: %w", k, err)
		}
	}
	return w.bytes(), nil
}

// UnmarshalJSON keeps top-level keys other than meta and datas for the next
// write.
func (f *File) UnmarshalJSON(data []byte) error {
	if isNullJSON(data) {
		return nil
	}
	l, err := readLayout(data)
	if err != nil {
		return err
	}
	var out File
	if l.has("meta") {
		if err := json.Unmarshal(l.raw["meta"], &out.Meta); err != nil {
			return err
		}
	}
	if l.has("datas") {
		if err := json.Unmarshal(l.raw["datas"], &out.Datas); err != nil {
			return err
		}
	}
	if !l.canonical(fileKeys, fileKeys) {
		out.layout = l
	}
	*f = out
	return nil
}

func (f File) MarshalJSON() ([]byte, error) {
	keys := fileKeys
	if f.layout != nil {
		keys = f.layout.order(fileKeys, fileKeys)
	}
	var w objectWriter
	for _, k := range keys {
		var err error
		switch k {
		case "meta":
			err = w.value(k, f.Meta)
		case "datas":
			datas := f.Datas
			if datas == nil {
				datas = []*Task{}
			}
			err = w.value(k, datas)
		default:
			err = w.raw(k, f.layout.raw[k])
		}
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
	}
	return w.bytes(), nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func corrupt(reason string) *clierr.Error {
	return clierr.Newf(clierr.CorruptStorage, "corrupt task storage: %s", reason).
		WithDetails(map[string]any{"reason": reason})
}
