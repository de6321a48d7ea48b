package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var (
	errNotObject = errors.New("not a JSON object")
	jsonNull     = json.RawMessage("null")
)

// layout records how a JSON object looked on disk: the order of its keys and
// the raw value of each one. Objects decoded in canonical shape carry no
// layout.
type layout struct {
	keys []string
	raw  map[string]json.RawMessage
}

func isNullJSON(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), jsonNull)
}

func readLayout(data []byte) (*layout, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}

	l := &layout{raw: map[string]json.RawMessage{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		if _, seen := l.raw[key]; !seen {
			l.keys = append(l.keys, key)
		}
		l.raw[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *layout) has(key string) bool {
	if l == nil {
		return false
	}
	_, ok := l.raw[key]
	return ok
}

// hasValue reports whether key is present with a non-null value.
func (l *layout) hasValue(key string) bool {
	if l == nil {
		return false
	}
	v, ok := l.raw[key]
	return ok && !isNullJSON(v)
}

func (l *layout) isNull(key string) bool {
	return l.has(key) && !l.hasValue(key)
}

// canonical reports whether writing only the set keys, in field order,
// reproduces this layout.
func (l *layout) canonical(known, set []string) bool {
	for _, k := range l.keys {
		if !slices.Contains(known, k) || l.isNull(k) {
			return false
		}
	}
	return slices.Equal(l.keys, set)
}

// order merges the on-disk key order with the known keys that are set now
// but were absent on disk. Each new key goes in front of the first stored
// known key that follows it in field order.
func (l *layout) order(known, set []string) []string {
	keys := slices.Clone(l.keys)
	for _, k := range set {
		if l.has(k) {
			continue
		}
		rank := slices.Index(known, k)
		at := len(keys)
		for i, existing := range keys {
			if r := slices.Index(known, existing); r > rank {
				at = i
				break
			}
		}
		keys = slices.Insert(keys, at, k)
	}
	return keys
}

// objectWriter builds a compact JSON object. The encoder that calls
// MarshalJSON indents the result.
type objectWriter struct {
	buf bytes.Buffer
	n   int
}

func (w *objectWriter) raw(key string, v json.RawMessage) error {
	if w.n == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	w.n++
	k, err := encodeValue(key)
	if err != nil {
		return err
	}
	w.buf.Write(k)
	w.buf.WriteByte(':')
	var compact bytes.Buffer
	if err := json.Compact(&compact, v); err != nil {
		return err
	}
	w.buf.Write(compact.Bytes())
	return nil
}

func (w *objectWriter) value(key string, v any) error {
	b, err := encodeValue(v)
	if err != nil {
		return err
	}
	return w.raw(key, b)
}

func (w *objectWriter) bytes() []byte {
	if w.n == 0 {
		return []byte("{}")
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes()
}

func encodeValue(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
