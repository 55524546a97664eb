// Package xmlrpc implements the value encoding of the XML-RPC wire format.
//
// Native Go values are encoded into a tree of Elements through a Registry of
// ValueEncoders. The tree is rendered to markup separately, so encoders never
// deal with bytes.
package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Element is a node of an XML-RPC payload.
// A node carries either text content or children, never both.
type Element struct {
	Tag      string
	Content  string
	Children []*Element
}

// NewElement returns an empty element with the given tag.
func NewElement(tag string) *Element {
	return &Element{Tag: tag}
}

// AddChild appends c to the children of e.
func (e *Element) AddChild(c *Element) {
	e.Children = append(e.Children, c)
}

// SetContent sets the text content of e.
func (e *Element) SetContent(s string) {
	e.Content = s
}

// Child returns the first child with the given tag or nil.
func (e *Element) Child(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// Equal reports whether e and o have the same structure.
func (e *Element) Equal(o *Element) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.Tag != o.Tag || e.Content != o.Content || len(e.Children) != len(o.Children) {
		return false
	}
	for i := range e.Children {
		if !e.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// String returns the markup of e.
func (e *Element) String() string {
	b, err := xml.Marshal(e)
	if err != nil {
		return "<!" + err.Error() + ">"
	}
	return string(b)
}

var _ xml.Marshaler = (*Element)(nil)

// MarshalXML writes e and its children as markup.
// An element with both text content and children is an error.
func (e *Element) MarshalXML(enc *xml.Encoder, _ xml.StartElement) error {
	if len(e.Children) > 0 && e.Content != "" {
		return fmt.Errorf("xmlrpc: element <%s> has both content and children", e.Tag)
	}
	start := xml.StartElement{Name: xml.Name{Local: e.Tag}}
	err := enc.EncodeToken(start)
	if err != nil {
		return err
	}
	if len(e.Children) > 0 {
		for _, c := range e.Children {
			err = enc.Encode(c)
			if err != nil {
				return err
			}
		}
	} else if e.Content != "" {
		err = enc.EncodeToken(xml.CharData(e.Content))
		if err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// ParseElement parses markup into an element tree.
// Whitespace between elements is dropped.
func ParseElement(b []byte) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(b))
	var stack []*Element
	var root *Element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			e := NewElement(t.Name.Local)
			if len(stack) > 0 {
				stack[len(stack)-1].AddChild(e)
			} else if root != nil {
				return nil, errors.New("multiple root elements")
			} else {
				root = e
			}
			stack = append(stack, e)
		case xml.EndElement:
			top := stack[len(stack)-1]
			if len(top.Children) > 0 && strings.TrimSpace(top.Content) == "" {
				top.Content = ""
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Content += string(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New("no root element")
	}
	return root, nil
}
