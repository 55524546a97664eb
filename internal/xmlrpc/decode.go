package xmlrpc

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// Decode converts a type element (the child of a <value>) or a <value> element into a native value.
//
// Results are string, int32 (<i4>, <int>), int64 (<i8>), bool, float64, []byte, time.Time,
// map[string]any, []any or nil.
func Decode(e *Element) (any, error) {
	switch e.Tag {
	case tagValue:
		return decodeValue(e)
	case TypeString:
		return e.Content, nil
	case TypeInt, TypeI4:
		i, err := strconv.ParseInt(strings.TrimSpace(e.Content), 10, 32)
		if err != nil {
			return nil, &DecodeError{Tag: e.Tag, Reason: err.Error()}
		}
		return int32(i), nil
	case TypeI8:
		i, err := strconv.ParseInt(strings.TrimSpace(e.Content), 10, 64)
		if err != nil {
			return nil, &DecodeError{Tag: e.Tag, Reason: err.Error()}
		}
		return i, nil
	case TypeBoolean:
		switch strings.TrimSpace(e.Content) {
		case "1":
			return true, nil
		case "0":
			return false, nil
		}
		return nil, &DecodeError{Tag: e.Tag, Reason: "invalid boolean: " + strconv.Quote(e.Content)}
	case TypeDouble:
		f, err := strconv.ParseFloat(strings.TrimSpace(e.Content), 64)
		if err != nil {
			return nil, &DecodeError{Tag: e.Tag, Reason: err.Error()}
		}
		return f, nil
	case TypeBase64:
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(e.Content))
		if err != nil {
			return nil, &DecodeError{Tag: e.Tag, Reason: err.Error()}
		}
		return b, nil
	case TypeDateTime:
		t, err := time.Parse(DateTimeFormat, strings.TrimSpace(e.Content))
		if err != nil {
			return nil, &DecodeError{Tag: e.Tag, Reason: err.Error()}
		}
		return t, nil
	case TypeNil:
		return nil, nil
	case TypeStruct:
		return decodeStruct(e)
	case TypeArray:
		return decodeArray(e)
	}
	return nil, &DecodeError{Tag: e.Tag, Reason: "unknown type"}
}

func decodeValue(e *Element) (any, error) {
	switch len(e.Children) {
	case 0:
		// Values without a type element are strings.
		return e.Content, nil
	case 1:
		return Decode(e.Children[0])
	}
	return nil, &DecodeError{Tag: e.Tag, Reason: "multiple type elements"}
}

func decodeStruct(e *Element) (map[string]any, error) {
	m := make(map[string]any, len(e.Children))
	for _, member := range e.Children {
		if member.Tag != tagMember {
			return nil, &DecodeError{Tag: e.Tag, Reason: "unexpected <" + member.Tag + ">"}
		}
		name := member.Child(tagName)
		value := member.Child(tagValue)
		if name == nil || value == nil {
			return nil, &DecodeError{Tag: member.Tag, Reason: "missing name or value"}
		}
		if _, ok := m[name.Content]; ok {
			return nil, &DecodeError{Tag: member.Tag, Reason: "duplicate name " + strconv.Quote(name.Content)}
		}
		v, err := decodeValue(value)
		if err != nil {
			return nil, err
		}
		m[name.Content] = v
	}
	return m, nil
}

func decodeArray(e *Element) ([]any, error) {
	data := e.Child(tagData)
	if data == nil {
		return nil, &DecodeError{Tag: e.Tag, Reason: "missing <data>"}
	}
	items := make([]any, 0, len(data.Children))
	for _, value := range data.Children {
		if value.Tag != tagValue {
			return nil, &DecodeError{Tag: data.Tag, Reason: "unexpected <" + value.Tag + ">"}
		}
		v, err := decodeValue(value)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}
