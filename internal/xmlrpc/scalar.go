package xmlrpc

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Type tags of XML-RPC values.
const (
	TypeString   = "string"
	TypeInt      = "int"
	TypeI4       = "i4"
	TypeI8       = "i8"
	TypeBoolean  = "boolean"
	TypeDouble   = "double"
	TypeBase64   = "base64"
	TypeDateTime = "dateTime.iso8601"
	TypeNil      = "nil"
	TypeStruct   = "struct"
	TypeArray    = "array"
)

// DateTimeFormat is the layout of dateTime.iso8601 values.
const DateTimeFormat = "20060102T15:04:05"

func textElement(tag, content string) *Element {
	e := NewElement(tag)
	e.SetContent(content)
	return e
}

// NilEncoder encodes nil as the <nil/> extension type.
type NilEncoder struct{}

func (NilEncoder) CanEncode(v any) bool { return v == nil }

func (NilEncoder) Encode(_ Dispatcher, _ any) (*Element, error) {
	return NewElement(TypeNil), nil
}

// StringEncoder encodes strings.
type StringEncoder struct{}

func (StringEncoder) CanEncode(v any) bool {
	_, ok := v.(string)
	return ok
}

func (StringEncoder) Encode(_ Dispatcher, v any) (*Element, error) {
	return textElement(TypeString, v.(string)), nil
}

// BoolEncoder encodes booleans as "0" or "1".
type BoolEncoder struct{}

func (BoolEncoder) CanEncode(v any) bool {
	_, ok := v.(bool)
	return ok
}

func (BoolEncoder) Encode(_ Dispatcher, v any) (*Element, error) {
	if v.(bool) {
		return textElement(TypeBoolean, "1"), nil
	}
	return textElement(TypeBoolean, "0"), nil
}

// IntEncoder encodes integer kinds. Values that fit in 32 bits are encoded as <i4>, others as <i8>.
// uint and uint64 values above math.MaxInt64 are not accepted.
type IntEncoder struct{}

func (IntEncoder) CanEncode(v any) bool {
	_, ok := toInt64(v)
	return ok
}

func (IntEncoder) Encode(_ Dispatcher, v any) (*Element, error) {
	i, _ := toInt64(v)
	if i >= math.MinInt32 && i <= math.MaxInt32 {
		return textElement(TypeI4, strconv.FormatInt(i, 10)), nil
	}
	return textElement(TypeI8, strconv.FormatInt(i, 10)), nil
}

func toInt64(v any) (int64, bool) {
	switch i := v.(type) {
	case int:
		return int64(i), true
	case int8:
		return int64(i), true
	case int16:
		return int64(i), true
	case int32:
		return int64(i), true
	case int64:
		return i, true
	case uint8:
		return int64(i), true
	case uint16:
		return int64(i), true
	case uint32:
		return int64(i), true
	case uint:
		if uint64(i) > math.MaxInt64 {
			return 0, false
		}
		return int64(i), true
	case uint64:
		if i > math.MaxInt64 {
			return 0, false
		}
		return int64(i), true
	}
	return 0, false
}

// DoubleEncoder encodes floating point numbers.
type DoubleEncoder struct{}

func (DoubleEncoder) CanEncode(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return false
}

func (DoubleEncoder) Encode(_ Dispatcher, v any) (*Element, error) {
	var f float64
	switch x := v.(type) {
	case float32:
		f = float64(x)
	case float64:
		f = x
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("cannot encode %v as double", f)
	}
	return textElement(TypeDouble, strconv.FormatFloat(f, 'f', -1, 64)), nil
}

// Base64Encoder encodes byte slices.
type Base64Encoder struct{}

func (Base64Encoder) CanEncode(v any) bool {
	_, ok := v.([]byte)
	return ok
}

func (Base64Encoder) Encode(_ Dispatcher, v any) (*Element, error) {
	return textElement(TypeBase64, base64.StdEncoding.EncodeToString(v.([]byte))), nil
}

// TimeEncoder encodes time.Time values in DateTimeFormat. The location is dropped.
type TimeEncoder struct{}

func (TimeEncoder) CanEncode(v any) bool {
	_, ok := v.(time.Time)
	return ok
}

func (TimeEncoder) Encode(_ Dispatcher, v any) (*Element, error) {
	return textElement(TypeDateTime, v.(time.Time).Format(DateTimeFormat)), nil
}
