// Package jsonutil formats values for printing on a terminal.
package jsonutil

import (
	"bytes"

	"github.com/fatih/structs"
	"github.com/hokaccha/go-prettyjson"
)

var formatter *prettyjson.Formatter

func init() {
	formatter = prettyjson.NewFormatter()
	formatter.Indent = 0
	formatter.Newline = ""
}

// SetColor enables or disables color output.
func SetColor(enabled bool) {
	formatter.DisabledColor = !enabled
}

// MarshalFields formats each exported field of struct v on its own line as "Name: value",
// in declaration order. Values are written in compact JSON form.
func MarshalFields(v any) ([]byte, error) {
	var buf bytes.Buffer
	for _, f := range structs.New(v).Fields() {
		if !f.IsExported() {
			continue
		}
		b, err := formatter.Marshal(f.Value())
		if err != nil {
			return nil, err
		}
		buf.WriteString(f.Name())
		buf.WriteString(": ")
		buf.Write(b)
		buf.WriteRune('\n')
	}
	return buf.Bytes(), nil
}
