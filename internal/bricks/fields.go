package bricks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Field is a single key of a JSON object with its undecoded value.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Fields is a JSON object that remembers the order of its keys.
type Fields []Field

var errNotObject = errors.New("expected JSON object")

// UnmarshalJSON decodes an object while keeping key order.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errNotObject
	}
	out := Fields{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		out = out.Set(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}

// MarshalJSON encodes the object in stored key order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(field.Value) == 0 {
			buf.WriteString("null")
			continue
		}
		buf.Write(field.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Index returns the position of key or -1.
func (f Fields) Index(key string) int {
	for i, field := range f {
		if field.Key == key {
			return i
		}
	}
	return -1
}

// Has reports whether key is present.
func (f Fields) Has(key string) bool {
	return f.Index(key) >= 0
}

// Get returns the raw value for key.
func (f Fields) Get(key string) (json.RawMessage, bool) {
	if i := f.Index(key); i >= 0 {
		return f[i].Value, true
	}
	return nil, false
}

// Set replaces the value of key in place, or appends it when absent.
func (f Fields) Set(key string, value json.RawMessage) Fields {
	if i := f.Index(key); i >= 0 {
		f[i].Value = value
		return f
	}
	return append(f, Field{Key: key, Value: value})
}

// SetValue marshals v and stores it under key.
func (f Fields) SetValue(key string, v interface{}) (Fields, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return f, fmt.Errorf("field %q: %w", key, err)
	}
	return f.Set(key, raw), nil
}

// Delete removes key if present.
func (f Fields) Delete(key string) Fields {
	i := f.Index(key)
	if i < 0 {
		return f
	}
	return append(f[:i:i], f[i+1:]...)
}

// Decode unmarshals the value of key into v. It reports false when the key is absent.
func (f Fields) Decode(key string, v interface{}) (bool, error) {
	raw, ok := f.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("field %q: %w", key, err)
	}
	return true, nil
}

// Clone deep-copies the fields including their raw values.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for i, field := range f {
		out[i] = Field{Key: field.Key, Value: cloneRaw(field.Value)}
	}
	return out
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}
