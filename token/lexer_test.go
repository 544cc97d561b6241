package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func kindsOf(s *Stream) []Kind {
	kinds := make([]Kind, len(s.Tokens))
	for i, t := range s.Tokens {
		kinds[i] = t.Kind
	}
	return kinds
}

func valuesOf(s *Stream) []string {
	values := make([]string, len(s.Tokens))
	for i, t := range s.Tokens {
		values[i] = t.Value
	}
	return values
}

func TestLexDocumentKinds(t *testing.T) {
	data := map[string][]Kind{
		`<a/>`: {OpenTag, Name, SelfCloseTag},
		`<root><child a="b">text</child></root>`: {
			OpenTag, Name, CloseTag,
			OpenTag, Name, Name, Equal, Quote, FreeText, Quote, CloseTag,
			FreeText,
			OpenEndTag, Name, CloseTag,
			OpenEndTag, Name, CloseTag,
		},
		`<!-- hi --><a/>`: {
			OpenComment, FreeText, CloseComment,
			OpenTag, Name, SelfCloseTag,
		},
		`<a>&amp;</a>`: {
			OpenTag, Name, CloseTag,
			Amp, FreeText, Semi,
			OpenEndTag, Name, CloseTag,
		},
		`<a><![CDATA[x < & ]] y]]></a>`: {
			OpenTag, Name, CloseTag,
			OpenSection, CDATA, FreeText, CloseSection,
			OpenEndTag, Name, CloseTag,
		},
		`<?xml version="1.0" encoding="utf-8" standalone='yes'?><a/>`: {
			OpenPI, Name,
			Name, Equal, Quote, FreeText, Quote,
			Name, Equal, Quote, FreeText, Quote,
			Name, Equal, Quote, FreeText, Quote,
			ClosePI,
			OpenTag, Name, SelfCloseTag,
		},
		`<?target some raw data?><a/>`: {
			OpenPI, Name, FreeText, ClosePI,
			OpenTag, Name, SelfCloseTag,
		},
	}

	for input, expected := range data {
		t.Logf("checking %q", input)
		s := Lex("test.xml", []byte(input))
		require.Equal(t, expected, kindsOf(s), "token kinds for %q", input)
	}
}

func TestLexCharData(t *testing.T) {
	// whitespace is dropped outside the root element, kept inside it
	s := Lex("test.xml", []byte("\n<a> x &amp; y </a>\n"))
	require.Equal(t,
		[]Kind{OpenTag, Name, CloseTag, FreeText, Amp, FreeText, Semi, FreeText, OpenEndTag, Name, CloseTag},
		kindsOf(s), "token kinds")
	require.Equal(t, " x ", s.Tokens[3].Value, "leading character data")
	require.Equal(t, "amp", s.Tokens[5].Value, "entity name")
	require.Equal(t, " y ", s.Tokens[7].Value, "trailing character data")
}

func TestLexCDATAValue(t *testing.T) {
	s := Lex("test.xml", []byte(`<a><![CDATA[]]></a>`))
	require.Equal(t,
		[]Kind{OpenTag, Name, CloseTag, OpenSection, CDATA, FreeText, CloseSection, OpenEndTag, Name, CloseTag},
		kindsOf(s), "an empty CDATA section still carries a text token")
	require.Equal(t, "", s.Tokens[5].Value, "empty CDATA text")

	s = Lex("test.xml", []byte(`<a><![CDATA[<greeting>&amp;</greeting>]]></a>`))
	require.Equal(t, "<greeting>&amp;</greeting>", s.Tokens[5].Value, "CDATA text is raw")
}

func TestLexDoctype(t *testing.T) {
	input := `<!DOCTYPE a [ <!ENTITY % p "v"> %p; ]><a/>`
	s := Lex("test.xml", []byte(input))
	require.Equal(t, []Kind{
		DOCTYPE, Name, OpenBracket,
		ENTITY, Percent, Name, Quote, FreeText, Quote, CloseTag,
		Percent, Name, Semi,
		CloseBracket, CloseTag,
		OpenTag, Name, SelfCloseTag,
	}, kindsOf(s), "token kinds for %q", input)
}

func TestLexDoctypeConditional(t *testing.T) {
	// the ']]>' closing the section must not eat the ']' closing the
	// internal subset
	input := `<!DOCTYPE a [<![INCLUDE[<!ELEMENT a EMPTY>]]>]><a/>`
	s := Lex("test.xml", []byte(input))
	require.Equal(t, []Kind{
		DOCTYPE, Name, OpenBracket,
		OpenSection, Name, OpenBracket,
		ELEMENT, Name, Name, CloseTag,
		CloseSection,
		CloseBracket, CloseTag,
		OpenTag, Name, SelfCloseTag,
	}, kindsOf(s), "token kinds for %q", input)
}

func TestLexDTDKinds(t *testing.T) {
	data := map[string][]Kind{
		`<!ELEMENT a (b|c)*>`: {
			ELEMENT, Name, OpenParen, Name, Pipe, Name, CloseParen, Star, CloseTag,
		},
		`<!ELEMENT a (#PCDATA)>`: {
			ELEMENT, Name, OpenParen, Hash, Name, CloseParen, CloseTag,
		},
		`<!ATTLIST a v (1|2) "1">`: {
			ATTLIST, Name, Name, OpenParen, Name, Pipe, Name, CloseParen, Quote, FreeText, Quote, CloseTag,
		},
		`<!ENTITY e PUBLIC "p" "s" NDATA gif>`: {
			ENTITY, Name, Name, Quote, FreeText, Quote, Quote, FreeText, Quote, Name, Name, CloseTag,
		},
		`<!NOTATION n SYSTEM "viewer">`: {
			NOTATION, Name, Name, Quote, FreeText, Quote, CloseTag,
		},
		`<!ELEMENT a (b,c?,d+)>`: {
			ELEMENT, Name, OpenParen, Name, Comma, Name, Query, Comma, Name, Plus, CloseParen, CloseTag,
		},
		// '%' followed by a name is a reference, with or without the
		// closing ';'; bare '%' marks a parameter entity declaration
		`%p;`:               {Percent, Name, Semi},
		`%p `:               {Percent, Name},
		`<!ENTITY % n "v">`: {ENTITY, Percent, Name, Quote, FreeText, Quote, CloseTag},
	}

	for input, expected := range data {
		t.Logf("checking %q", input)
		s := LexDTD("test.dtd", []byte(input))
		require.Equal(t, expected, kindsOf(s), "token kinds for %q", input)
	}
}

func TestLexQuotedLiteral(t *testing.T) {
	// both '%' and '&' stay literal inside a DTD quoted value on the
	// first pass; references only come alive on the flattened re-scan
	s := LexDTD("test.dtd", []byte(`<!ENTITY e "a%pe;b&x;c">`))
	require.Equal(t, []Kind{
		ENTITY, Name, Quote, FreeText, Quote, CloseTag,
	}, kindsOf(s), "token kinds")
	require.Equal(t, "a%pe;b&x;c", s.Tokens[3].Value, "literal kept as written")

	// a system literal admits '&', as in a URI query string
	s = LexDTD("test.dtd", []byte(`<!ENTITY % p SYSTEM "http://x/d.dtd?a=1&b=2">`))
	require.Equal(t, []Kind{
		ENTITY, Percent, Name, Name, Quote, FreeText, Quote, CloseTag,
	}, kindsOf(s), "token kinds")
	require.Equal(t, "http://x/d.dtd?a=1&b=2", s.Tokens[5].Value, "system literal kept as written")

	// attribute values in a start tag keep references live
	s = Lex("test.xml", []byte(`<a x="1 &amp; 2"/>`))
	require.Equal(t, []Kind{
		OpenTag, Name, Name, Equal, Quote, FreeText, Amp, FreeText, Semi, FreeText, Quote, SelfCloseTag,
	}, kindsOf(s), "token kinds")
	require.Equal(t, "amp", s.Tokens[7].Value, "entity name")
}

func TestLexInvalid(t *testing.T) {
	data := map[string]string{
		`<a>&am p;</a>`:     "';' is required",
		`<a>&amp</a>`:       "';' is required",
		`<!-- a -- b -->`:   "'--' not allowed in comment",
		`<!-- x`:            "invalid comment section",
		`<a><![CDATA[x</a>`: "invalid CDATA section",
		`<a b="c`:           "literal not finished",
		`<a $>`:             "invalid char",
		`<?pi foo`:          "invalid processing instruction",
		`<!FOO>`:            "invalid markup declaration",
		`<a`:                "end of document reached",
		`<` + strings.Repeat("a", MaxNameLength+1): "name is too long",
	}

	for input, msg := range data {
		if len(input) > 40 {
			t.Logf("checking %q...", input[:40])
		} else {
			t.Logf("checking %q", input)
		}
		s := Lex("test.xml", []byte(input))
		require.NotEmpty(t, s.Tokens, "stream should not be empty")
		last := s.Tokens[len(s.Tokens)-1]
		require.Equal(t, Invalid, last.Kind, "last token is invalid")
		require.Equal(t, msg, last.Value, "invalid token message")
	}
}

func TestRelexValue(t *testing.T) {
	s := RelexValue("entity value", nil, "a %p; &#65; b")
	require.Equal(t, []Kind{
		FreeText, Percent, Name, Semi, FreeText, Amp, FreeText, Semi, FreeText,
	}, kindsOf(s), "token kinds")
	require.Equal(t,
		[]string{"a ", "%", "p", ";", " ", "&", "#65", ";", " b"},
		valuesOf(s), "whitespace is significant in value mode")

	// a '%' not followed by a name start stays literal even here
	s = RelexValue("entity value", nil, "50% of 100%")
	require.Equal(t, []Kind{FreeText}, kindsOf(s), "token kinds")
	require.Equal(t, "50% of 100%", s.Tokens[0].Value, "literal percent")
}

func TestRelexAnchor(t *testing.T) {
	at := &Position{Context: "f.xml", Line: 3, Column: 9}
	s := Relex("macro %p;", at, `<!ELEMENT a EMPTY>`)
	require.NotEmpty(t, s.Tokens, "stream should not be empty")

	pos := s.Tokens[0].Pos
	require.Equal(t, "macro %p;", pos.Context, "synthetic context label")
	require.Equal(t, at, pos.At, "anchor chains back to the reference")
	require.Equal(t,
		"line 1, column 1 in macro %p;, referenced at line 3, column 9 in f.xml",
		pos.String(), "position renders the whole chain")
}

func TestLexPositions(t *testing.T) {
	s := Lex("test.xml", []byte("<a>\n<b/></a>"))
	require.Equal(t,
		[]Kind{OpenTag, Name, CloseTag, FreeText, OpenTag, Name, SelfCloseTag, OpenEndTag, Name, CloseTag},
		kindsOf(s), "token kinds")

	for i, expected := range []Position{
		{Context: "test.xml", Line: 1, Column: 1}, // <
		{Context: "test.xml", Line: 1, Column: 2}, // a
		{Context: "test.xml", Line: 1, Column: 3}, // >
		{Context: "test.xml", Line: 1, Column: 4}, // newline
		{Context: "test.xml", Line: 2, Column: 1}, // <
		{Context: "test.xml", Line: 2, Column: 2}, // b
		{Context: "test.xml", Line: 2, Column: 3}, // />
	} {
		require.Equal(t, expected, s.Tokens[i].Pos, "position of token %d (%s)", i, s.Tokens[i])
	}
}

func TestLexMultibyte(t *testing.T) {
	s := Lex("test.xml", []byte(`<名前 属性="値α">テキスト&αβ;</名前>`))
	require.Equal(t,
		[]Kind{OpenTag, Name, Name, Equal, Quote, FreeText, Quote, CloseTag, FreeText, Amp, FreeText, Semi, OpenEndTag, Name, CloseTag},
		kindsOf(s), "token kinds")
	require.Equal(t, "名前", s.Tokens[1].Value, "element name")
	require.Equal(t, "値α", s.Tokens[5].Value, "attribute value")
	require.Equal(t, "テキスト", s.Tokens[8].Value, "character data")
	require.Equal(t, "αβ", s.Tokens[10].Value, "entity name")

	// columns count runes, not bytes
	require.Equal(t, Position{Context: "test.xml", Line: 1, Column: 5}, s.Tokens[2].Pos, "attribute name position")
}
