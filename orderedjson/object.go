// Package orderedjson decodes JSON documents while keeping the order in which
// object members appear on the wire.
package orderedjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrTrailingData = errors.New("orderedjson: trailing data after value")

// Object is a JSON object that remembers member insertion order.
type Object struct {
	keys   []string
	values map[string]interface{}
}

func New() *Object {
	return &Object{values: map[string]interface{}{}}
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

func (o *Object) Get(key string) (interface{}, bool) {
	if o == nil {
		return nil, false
	}
	value, ok := o.values[key]
	return value, ok
}

// String returns the member as a string when it is one.
func (o *Object) String(key string) (string, bool) {
	value, ok := o.Get(key)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// Set replaces the value of an existing member in place or appends a new one.
func (o *Object) Set(key string, value interface{}) {
	if o.values == nil {
		o.values = map[string]interface{}{}
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Copy returns a deep copy of the object.
func (o *Object) Copy() *Object {
	if o == nil {
		return nil
	}
	dup := New()
	for _, key := range o.keys {
		dup.Set(key, copyValue(o.values[key]))
	}
	return dup
}

func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}

	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')

		encodedValue, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(encodedValue)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *Object) UnmarshalJSON(data []byte) error {
	value, err := Decode(data)
	if err != nil {
		return err
	}

	obj, ok := value.(*Object)
	if !ok {
		return fmt.Errorf("orderedjson: cannot unmarshal %T into object", value)
	}

	*o = *obj
	return nil
}

// Decode parses a single JSON value. Objects become *Object, arrays become
// []interface{} and numbers become json.Number.
func Decode(data []byte) (interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	value, err := decodeValue(decoder)
	if err != nil {
		return nil, err
	}

	if _, err := decoder.Token(); err != io.EOF {
		return nil, ErrTrailingData
	}

	return value, nil
}

// Normalize converts an arbitrary Go value into its ordered JSON form.
func Normalize(value interface{}) (interface{}, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return Decode(encoded)
}

// Plain converts an ordered value into plain maps and slices, as produced by
// encoding/json with UseNumber.
func Plain(value interface{}) interface{} {
	switch v := value.(type) {
	case *Object:
		if v == nil {
			return nil
		}
		plain := make(map[string]interface{}, len(v.keys))
		for _, key := range v.keys {
			plain[key] = Plain(v.values[key])
		}
		return plain
	case []interface{}:
		plain := make([]interface{}, len(v))
		for i, item := range v {
			plain[i] = Plain(item)
		}
		return plain
	default:
		return v
	}
}

func decodeValue(decoder *json.Decoder) (interface{}, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := token.(json.Delim)
	if !ok {
		return token, nil
	}

	switch delim {
	case '{':
		return decodeObject(decoder)
	case '[':
		return decodeArray(decoder)
	default:
		return nil, fmt.Errorf("orderedjson: unexpected delimiter %q", delim)
	}
}

func decodeObject(decoder *json.Decoder) (*Object, error) {
	obj := New()
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}

		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("orderedjson: expected object key, got %v", token)
		}

		value, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
	}

	// closing brace
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(decoder *json.Decoder) ([]interface{}, error) {
	array := []interface{}{}
	for decoder.More() {
		value, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}
		array = append(array, value)
	}

	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return array, nil
}

func copyValue(value interface{}) interface{} {
	switch v := value.(type) {
	case *Object:
		return v.Copy()
	case []interface{}:
		dup := make([]interface{}, len(v))
		for i, item := range v {
			dup[i] = copyValue(item)
		}
		return dup
	default:
		return v
	}
}
