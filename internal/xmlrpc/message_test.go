package xmlrpc

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCall(t *testing.T) {
	b, err := MarshalCall(DefaultRegistry(), &MethodCall{Method: "d.name", Params: []any{"ABC", 1}})
	require.NoError(t, err)
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?>`+"\n"+
		"<methodCall><methodName>d.name</methodName><params>"+
		"<param><value><string>ABC</string></value></param>"+
		"<param><value><i4>1</i4></value></param>"+
		"</params></methodCall>", string(b))

	c, err := ParseCall(b)
	require.NoError(t, err)
	assert.Equal(t, "d.name", c.Method)
	assert.Equal(t, []any{"ABC", int32(1)}, c.Params)
}

func TestMarshalCallUnsupported(t *testing.T) {
	_, err := MarshalCall(DefaultRegistry(), &MethodCall{Method: "x", Params: []any{unknown{}}})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestParseResponse(t *testing.T) {
	body := `<?xml version="1.0"?>
<methodResponse>
  <params>
    <param>
      <value><array><data>
        <value><string>udp://tracker.example:6969</string></value>
        <value><i8>3</i8></value>
      </data></array></value>
    </param>
  </params>
</methodResponse>`
	v, err := ParseResponse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, []any{"udp://tracker.example:6969", int64(3)}, v)
}

func TestParseFault(t *testing.T) {
	b, err := MarshalFault(&Fault{Code: -501, String: "Could not find info-hash."})
	require.NoError(t, err)
	_, err = ParseResponse(b)
	var fault *Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, -501, fault.Code)
	assert.Equal(t, "Could not find info-hash.", fault.String)
}

func TestMarshalResponse(t *testing.T) {
	b, err := MarshalResponse(DefaultRegistry(), map[string]any{"ok": true})
	require.NoError(t, err)
	v, err := ParseResponse(b)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, v)
}

func TestParseResponseMalformed(t *testing.T) {
	for _, body := range []string{
		"",
		"<methodCall/>",
		"<methodResponse/>",
		"<methodResponse><params><param/></params></methodResponse>",
		"<methodResponse><fault><value><string>x</string></value></fault></methodResponse>",
		"<methodResponse><params>",
	} {
		_, err := ParseResponse([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestElementMarkup(t *testing.T) {
	e, err := ParseElement([]byte("<a>\n  <b>x</b>\n  <c/>\n</a>"))
	require.NoError(t, err)
	expected := NewElement("a")
	expected.AddChild(textElement("b", "x"))
	expected.AddChild(NewElement("c"))
	assert.True(t, expected.Equal(e), e.String())
	assert.Equal(t, "<a><b>x</b><c></c></a>", e.String())
	assert.Equal(t, expected.Child("c"), e.Child("c"))
	assert.Nil(t, e.Child("d"))

	_, err = ParseElement([]byte("<a/><b/>"))
	assert.Error(t, err)
}

func TestElementContentAndChildren(t *testing.T) {
	e := textElement("value", "lost")
	e.AddChild(textElement("string", "x"))
	_, err := xml.Marshal(e)
	assert.Error(t, err)
	assert.Contains(t, e.String(), "both content and children")
}
