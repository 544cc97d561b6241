package xenon

import (
	"strings"
	"testing"

	"github.com/lestrrat-go/pdebug"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/lestrrat-go/xenon/node"
)

func TestParseXMLDecl(t *testing.T) {
	const content = `<root/>`
	inputs := map[string]node.XMLDecl{
		`<?xml version="1.0"?>` + content:                                   {Version: "1.0"},
		`<?xml version="1.0" encoding="euc-jp"?>` + content:                 {Version: "1.0", Encoding: "euc-jp"},
		`<?xml version="1.0" encoding="cp932" standalone='yes'?>` + content: {Version: "1.0", Encoding: "cp932", Standalone: node.StandaloneExplicitYes},
		`<?xml version="1.0" standalone="no"?>` + content:                   {Version: "1.0", Standalone: node.StandaloneExplicitNo},
	}

	for input, expected := range inputs {
		t.Logf("checking %q", input)
		doc, err := Parse("test.xml", []byte(input))
		require.NoError(t, err, "Parse should succeed for '%s'", input)
		require.NotNil(t, doc.Prolog.XMLDecl, "the declaration should be recorded")
		require.Equal(t, expected, *doc.Prolog.XMLDecl, "declaration fields match")
	}

	doc, err := Parse("test.xml", []byte(content))
	require.NoError(t, err, "Parse should succeed without an XML declaration")
	require.Nil(t, doc.Prolog.XMLDecl, "no declaration should be recorded")
}

func TestParseMisc(t *testing.T) {
	const input = `<?xml version="1.0"?>
<?xml-stylesheet type="text/xsl" href="style.xsl"?>
<root/>
<!-- trailing comment -->
<?done?>`

	doc, err := Parse("test.xml", []byte(input))
	require.NoError(t, err, "Parse should succeed for '%s'", input)

	require.Equal(t, []node.Misc{
		node.PI{Target: "xml-stylesheet", Data: `type="text/xsl" href="style.xsl"`},
	}, doc.Prolog.Before, "prolog keeps the processing instruction")
	require.Equal(t, []node.Misc{
		node.Comment{Value: " trailing comment "},
		node.PI{Target: "done"},
	}, doc.Epilog, "epilog keeps comment and processing instruction in order")
}

func TestParse(t *testing.T) {
	const input = `<?xml version="1.0"?>
<root foo="bar">
	<!-- this is a sample comment -->
  <child>foo</child>
	<child><![CDATA[
H
E
L
L
O!]]></child>
</root>`
	doc, err := Parse("test.xml", []byte(input))
	require.NoError(t, err, "Parse should succeed for '%s'", input)

	if pdebug.Enabled {
		pdebug.Dump(doc)
	}

	root := doc.Root
	require.Equal(t, "root", root.Name, "root element name matches")
	require.Equal(t, []node.Attribute{
		{Name: "foo", Value: node.AttValue{node.Text{Value: "bar"}}},
	}, root.Attributes, "root attributes match")

	var children []*node.Element
	var comments []node.Comment
	for _, c := range root.Content {
		switch c := c.(type) {
		case *node.Element:
			children = append(children, c)
		case node.Comment:
			comments = append(comments, c)
		}
	}
	require.Len(t, comments, 1, "root carries one comment")
	require.Equal(t, " this is a sample comment ", comments[0].Value, "comment text matches")
	require.Len(t, children, 2, "root has two child elements")
	require.Equal(t, []node.Content{node.Text{Value: "foo"}}, children[0].Content, "first child holds text")
	require.Equal(t, []node.Content{node.CDATA{Value: "\nH\nE\nL\nL\nO!"}}, children[1].Content, "second child holds the CDATA section verbatim")
}

func TestParseBad(t *testing.T) {
	inputs := []string{
		`<?xml version="1.0"?>
<root foo="bar">
  <child>foo</chld>
</root>`,
		`<?xml varsion="1.0"?><root/>`,
		`<root>`,
		`plain text`,
		`<?xml version="1.0"?>`,
		`<a x="v></a>`,
	}
	for _, input := range inputs {
		t.Logf("checking %q", input)
		_, err := Parse("test.xml", []byte(input))
		require.Error(t, err, "Parse should fail for '%s'", input)
	}
}

func TestParseTagMismatch(t *testing.T) {
	_, err := Parse("test.xml", []byte(`<a>text</b>`))
	require.Error(t, err, "Parse should fail on mismatched tags")

	var tm ErrTagMismatch
	require.True(t, errors.As(err, &tm), "error should identify the tag pair: %s", err)
	require.Equal(t, "a", tm.Start, "start tag name is reported")
	require.Equal(t, "b", tm.End, "end tag name is reported")
	require.Contains(t, err.Error(), "'b' does not match start tag 'a'", "message names both tags")
}

func TestParseDocumentEnd(t *testing.T) {
	inputs := []string{
		`<a/><b/>`,
		`<a/>trailing`,
	}
	for _, input := range inputs {
		t.Logf("checking %q", input)
		_, err := Parse("test.xml", []byte(input))
		require.True(t, errors.Is(err, ErrDocumentEnd), "leftover input should be reported for '%s': %s", input, err)
	}
}

func TestParseReferences(t *testing.T) {
	doc, err := Parse("test.xml", []byte(`<a>fish &amp; chips &#65;&#x41; &copy;</a>`))
	require.NoError(t, err, "Parse should succeed")

	require.Equal(t, []node.Content{
		node.Text{Value: "fish "},
		node.EntityRef{Name: "amp"},
		node.Text{Value: " chips "},
		node.CharRef{Value: 65},
		node.CharRef{Value: 65},
		node.Text{Value: " "},
		node.EntityRef{Name: "copy"},
	}, doc.Root.Content, "references stay references; decimal and hex forms carry the same code point")
}

func TestParseLargeCharRef(t *testing.T) {
	doc, err := Parse("test.xml", []byte(`<a>&#4294967296;&#x100000000;</a>`))
	require.NoError(t, err, "Parse should succeed")

	require.Equal(t, []node.Content{
		node.CharRef{Value: 4294967296},
		node.CharRef{Value: 4294967296},
	}, doc.Root.Content, "digit-shaped references stay numeric past the 32-bit mark")
}

func TestParseAttributeValues(t *testing.T) {
	doc, err := Parse("test.xml", []byte(`<a x="1 &amp; 2" y='"quoted"' x="again"/>`))
	require.NoError(t, err, "Parse should succeed")

	attrs := doc.Root.Attributes
	require.Len(t, attrs, 3, "duplicate attribute names are kept as written")
	require.Equal(t, node.AttValue{
		node.Text{Value: "1 "},
		node.EntityRef{Name: "amp"},
		node.Text{Value: " 2"},
	}, attrs[0].Value, "value fragments keep the reference")
	require.Equal(t, "1 &amp; 2", attrs[0].Value.Flatten(), "flattening writes the reference back")
	require.Equal(t, `"quoted"`, attrs[1].Value.Flatten(), "single quotes may hold double quotes")
}

func TestParseEmptyElementForms(t *testing.T) {
	for _, input := range []string{`<a></a>`, `<a/>`} {
		doc, err := Parse("test.xml", []byte(input))
		require.NoError(t, err, "Parse should succeed for '%s'", input)
		require.Equal(t, "a", doc.Root.Name, "root name matches")
		require.Empty(t, doc.Root.Content, "both empty forms parse to no content")
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("test.xml", []byte("<a>\n  <b>x</c>\n</a>"))
	require.Error(t, err, "Parse should fail")

	var pe ErrParseError
	require.True(t, errors.As(err, &pe), "error should carry a position: %s", err)
	require.Equal(t, 2, pe.Pos.Line, "failure is located on the offending line")
	require.Contains(t, err.Error(), "in test.xml", "message names the input")
}

func TestMustParse(t *testing.T) {
	require.Panics(t, func() { MustParse("test.xml", []byte(`<a>`)) }, "MustParse panics on malformed input")
	doc := MustParse("test.xml", []byte(`<a/>`))
	require.Equal(t, "a", doc.Root.Name, "MustParse returns the document")
}

func TestParseEntityTableSnapshot(t *testing.T) {
	const input = `<!DOCTYPE a [
  <!ENTITY greet "hello">
  <!ENTITY greet "goodbye">
  <!ENTITY ext SYSTEM "chap1.xml">
]><a>&greet;</a>`

	doc, err := Parse("test.xml", []byte(input))
	require.NoError(t, err, "Parse should succeed for '%s'", input)

	require.Equal(t, 2, doc.Entities.Len(), "two distinct entity names are recorded")
	def, ok := doc.Entities.Get("greet")
	require.True(t, ok, "greet should be in the table")
	ie, ok := def.(*node.InternalEntity)
	require.True(t, ok, "greet is an internal entity")
	require.Equal(t, "goodbye", ie.Value.Flatten(), "a redeclaration overwrites the earlier definition")

	require.Equal(t, []node.Content{node.EntityRef{Name: "greet"}}, doc.Root.Content, "the reference itself is never substituted")
}

func TestParseDeepNesting(t *testing.T) {
	var sb strings.Builder
	const depth = 200
	for i := 0; i < depth; i++ {
		sb.WriteString("<d>")
	}
	sb.WriteString("x")
	for i := 0; i < depth; i++ {
		sb.WriteString("</d>")
	}
	doc, err := Parse("test.xml", []byte(sb.String()))
	require.NoError(t, err, "Parse should handle deep nesting")

	el := doc.Root
	for i := 1; i < depth; i++ {
		require.Len(t, el.Content, 1, "each level holds exactly one child")
		el = el.Content[0].(*node.Element)
	}
	require.Equal(t, []node.Content{node.Text{Value: "x"}}, el.Content, "innermost element holds the text")
}

func BenchmarkParse(b *testing.B) {
	src := []byte(`<?xml version="1.0"?>
<!DOCTYPE catalog [
  <!ELEMENT catalog (item)*>
  <!ELEMENT item (#PCDATA)>
  <!ATTLIST item id ID #REQUIRED>
  <!ENTITY co "Example Corp">
]>
<catalog>
  <item id="a1">&co; anvil &#8212; heavy</item>
  <item id="a2"><![CDATA[<not markup>]]></item>
  <item id="a3">plain</item>
</catalog>`)

	b.ReportAllocs()
	for b.Loop() {
		if _, err := Parse("bench.xml", src); err != nil {
			b.Fatal(err)
		}
	}
}
