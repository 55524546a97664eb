package xmlrpc

import (
	"fmt"
	"reflect"
	"sort"
)

const (
	tagMember = "member"
	tagName   = "name"
	tagValue  = "value"
	tagData   = "data"
)

// StructEncoder encodes maps with string keys as <struct>.
type StructEncoder struct{}

func (StructEncoder) CanEncode(v any) bool {
	if _, ok := v.(map[string]any); ok {
		return true
	}
	t := reflect.TypeOf(v)
	return t != nil && t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

func (StructEncoder) Encode(d Dispatcher, v any) (*Element, error) {
	if m, ok := v.(map[string]any); ok {
		return EncodeStruct(d, m)
	}
	rv := reflect.ValueOf(v)
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return EncodeStruct(d, m)
}

// EncodeStruct builds a <struct> with one <member> per entry of m.
// Member values are encoded through d. Members are ordered by name so that the output is deterministic.
// If any member fails to encode, no element is returned.
func EncodeStruct(d Dispatcher, m map[string]any) (*Element, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	st := NewElement(TypeStruct)
	for _, name := range names {
		ve, err := d.Dispatch(m[name])
		if err != nil {
			return nil, fmt.Errorf("struct member %q: %w", name, err)
		}
		member := NewElement(tagMember)
		member.AddChild(textElement(tagName, name))
		value := NewElement(tagValue)
		value.AddChild(ve)
		member.AddChild(value)
		st.AddChild(member)
	}
	return st, nil
}

// ArrayEncoder encodes slices and arrays as <array>. []byte is left to Base64Encoder.
type ArrayEncoder struct{}

func (ArrayEncoder) CanEncode(v any) bool {
	switch v.(type) {
	case []any, []string:
		return true
	case []byte:
		return false
	}
	t := reflect.TypeOf(v)
	return t != nil && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array)
}

func (ArrayEncoder) Encode(d Dispatcher, v any) (*Element, error) {
	switch a := v.(type) {
	case []any:
		return EncodeArray(d, a)
	case []string:
		items := make([]any, len(a))
		for i, s := range a {
			items[i] = s
		}
		return EncodeArray(d, items)
	}
	rv := reflect.ValueOf(v)
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return EncodeArray(d, items)
}

// EncodeArray builds an <array> holding the items in order.
func EncodeArray(d Dispatcher, items []any) (*Element, error) {
	data := NewElement(tagData)
	for i, item := range items {
		ie, err := d.Dispatch(item)
		if err != nil {
			return nil, fmt.Errorf("array item %d: %w", i, err)
		}
		value := NewElement(tagValue)
		value.AddChild(ie)
		data.AddChild(value)
	}
	arr := NewElement(TypeArray)
	arr.AddChild(data)
	return arr, nil
}
