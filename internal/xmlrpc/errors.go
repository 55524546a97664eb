package xmlrpc

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

var (
	// ErrUnsupportedType is matched by errors returned when no encoder accepts a value.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrMaxDepth is returned when a value is nested deeper than Registry.MaxDepth.
	ErrMaxDepth = errors.New("max nesting depth exceeded")
)

// UnsupportedTypeError is returned by the registry when no encoder can encode a value.
type UnsupportedTypeError struct {
	Value any
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("xmlrpc: unsupported type: %T", e.Value)
}

// Is makes errors.Is(err, ErrUnsupportedType) true.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// EncodingError is the single error kind returned from Registry.Encode.
// The original failure is kept in Err.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return "xmlrpc: encoding failed: " + e.Err.Error()
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when an element tree does not have the expected structure.
type DecodeError struct {
	Tag    string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("xmlrpc: cannot decode <%s>: %s", e.Tag, e.Reason)
}

// Fault is an error returned by the remote end in a fault response.
type Fault struct {
	Code   int
	String string
}

func (e *Fault) Error() string {
	return "xmlrpc fault " + strconv.Itoa(e.Code) + ": " + e.String
}

// StatusError is returned from calls when the HTTP response code is not 200 OK.
type StatusError struct {
	Code   int
	Header http.Header
	Body   string
}

func (e *StatusError) Error() string {
	return "http status: " + strconv.Itoa(e.Code)
}
