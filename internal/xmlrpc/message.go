package xmlrpc

import (
	"encoding/xml"
	"fmt"
)

const (
	tagMethodCall     = "methodCall"
	tagMethodName     = "methodName"
	tagMethodResponse = "methodResponse"
	tagParams         = "params"
	tagParam          = "param"
	tagFault          = "fault"
)

// MethodCall is a request to invoke a remote method.
type MethodCall struct {
	Method string
	Params []any
}

// Element encodes the call with r.
func (c *MethodCall) Element(r *Registry) (*Element, error) {
	root := NewElement(tagMethodCall)
	root.AddChild(textElement(tagMethodName, c.Method))
	params := NewElement(tagParams)
	for _, p := range c.Params {
		pe, err := r.Encode(p)
		if err != nil {
			return nil, err
		}
		value := NewElement(tagValue)
		value.AddChild(pe)
		param := NewElement(tagParam)
		param.AddChild(value)
		params.AddChild(param)
	}
	root.AddChild(params)
	return root, nil
}

// MarshalCall returns the request body of the call.
func MarshalCall(r *Registry, c *MethodCall) ([]byte, error) {
	e, err := c.Element(r)
	if err != nil {
		return nil, err
	}
	return marshalDocument(e)
}

// ParseCall parses a request body.
func ParseCall(b []byte) (*MethodCall, error) {
	root, err := ParseElement(b)
	if err != nil {
		return nil, err
	}
	if root.Tag != tagMethodCall {
		return nil, &DecodeError{Tag: root.Tag, Reason: "not a method call"}
	}
	name := root.Child(tagMethodName)
	if name == nil {
		return nil, &DecodeError{Tag: root.Tag, Reason: "missing <methodName>"}
	}
	c := &MethodCall{Method: name.Content}
	if params := root.Child(tagParams); params != nil {
		for _, param := range params.Children {
			value := param.Child(tagValue)
			if param.Tag != tagParam || value == nil {
				return nil, &DecodeError{Tag: params.Tag, Reason: "malformed <param>"}
			}
			v, err := decodeValue(value)
			if err != nil {
				return nil, err
			}
			c.Params = append(c.Params, v)
		}
	}
	return c, nil
}

// MarshalResponse returns a response body holding a single value.
func MarshalResponse(r *Registry, v any) ([]byte, error) {
	ve, err := r.Encode(v)
	if err != nil {
		return nil, err
	}
	value := NewElement(tagValue)
	value.AddChild(ve)
	param := NewElement(tagParam)
	param.AddChild(value)
	params := NewElement(tagParams)
	params.AddChild(param)
	root := NewElement(tagMethodResponse)
	root.AddChild(params)
	return marshalDocument(root)
}

// MarshalFault returns a fault response body.
func MarshalFault(f *Fault) ([]byte, error) {
	st, err := DefaultRegistry().Encode(map[string]any{
		"faultCode":   f.Code,
		"faultString": f.String,
	})
	if err != nil {
		return nil, err
	}
	value := NewElement(tagValue)
	value.AddChild(st)
	fault := NewElement(tagFault)
	fault.AddChild(value)
	root := NewElement(tagMethodResponse)
	root.AddChild(fault)
	return marshalDocument(root)
}

func marshalDocument(e *Element) ([]byte, error) {
	b, err := xml.Marshal(e)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// ParseResponse parses a response body and returns the decoded value.
// A fault response is returned as a *Fault error.
func ParseResponse(b []byte) (any, error) {
	root, err := ParseElement(b)
	if err != nil {
		return nil, err
	}
	if root.Tag != tagMethodResponse {
		return nil, &DecodeError{Tag: root.Tag, Reason: "not a method response"}
	}
	if fault := root.Child(tagFault); fault != nil {
		return nil, parseFault(fault)
	}
	params := root.Child(tagParams)
	if params == nil {
		return nil, &DecodeError{Tag: root.Tag, Reason: "missing <params>"}
	}
	param := params.Child(tagParam)
	if param == nil {
		return nil, nil
	}
	value := param.Child(tagValue)
	if value == nil {
		return nil, &DecodeError{Tag: param.Tag, Reason: "missing <value>"}
	}
	return decodeValue(value)
}

func parseFault(fault *Element) error {
	value := fault.Child(tagValue)
	if value == nil {
		return &DecodeError{Tag: fault.Tag, Reason: "missing <value>"}
	}
	v, err := decodeValue(value)
	if err != nil {
		return err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return &DecodeError{Tag: fault.Tag, Reason: fmt.Sprintf("fault value is %T", v)}
	}
	f := new(Fault)
	switch code := m["faultCode"].(type) {
	case int32:
		f.Code = int(code)
	case int64:
		f.Code = int(code)
	}
	f.String, _ = m["faultString"].(string)
	return f
}
