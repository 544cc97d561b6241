package xenon

import (
	"strconv"
	"strings"

	"github.com/lestrrat-go/xenon/internal/debug"
	"github.com/lestrrat-go/xenon/node"
	"github.com/lestrrat-go/xenon/parsec"
	"github.com/lestrrat-go/xenon/token"
)

// parseDocument parses a complete document
//
// [1] document ::= prolog element Misc*
func (ctx *parserCtx) parseDocument() (*node.Document, error) {
	if debug.Enabled {
		debug.Printf("START parseDocument")
		defer debug.Printf("END   parseDocument")
	}

	prolog, err := ctx.parseProlog()
	if err != nil {
		return nil, err
	}
	root, err := ctx.parseElement()
	if err != nil {
		return nil, err
	}
	epilog, err := parsec.Many(ctx.st, ctx.parseMisc)
	if err != nil {
		return nil, err
	}
	return &node.Document{
		Prolog:   prolog,
		Entities: ctx.gents,
		Root:     root,
		Epilog:   epilog,
	}, nil
}

// parseProlog parses the material before the root element
//
// [22] prolog ::= XMLDecl? Misc* (doctypedecl Misc*)?
func (ctx *parserCtx) parseProlog() (node.Prolog, error) {
	var prolog node.Prolog

	decl, ok, err := parsec.Option(ctx.st, ctx.parseXMLDecl)
	if err != nil {
		return prolog, err
	}
	if ok {
		prolog.XMLDecl = decl
	}

	prolog.Before, err = parsec.Many(ctx.st, ctx.parseMisc)
	if err != nil {
		return prolog, err
	}

	dtd, ok, err := parsec.Option(ctx.st, ctx.parseDocTypeDecl)
	if err != nil {
		return prolog, err
	}
	if ok {
		prolog.DTD = dtd
		prolog.After, err = parsec.Many(ctx.st, ctx.parseMisc)
		if err != nil {
			return prolog, err
		}
	}
	return prolog, nil
}

// parseXMLDecl parses both the XML declaration of a document and the
// text declaration at the head of an external entity; the latter is a
// subset of the former, and since nothing is validated the difference
// does not matter here
//
// [23] XMLDecl ::= '<?xml' VersionInfo EncodingDecl? SDDecl? S? '?>'
func (ctx *parserCtx) parseXMLDecl() (*node.XMLDecl, error) {
	if err := ctx.tok(token.OpenPI); err != nil {
		return nil, err
	}
	if err := ctx.keyword("xml"); err != nil {
		return nil, err
	}

	decl := &node.XMLDecl{Standalone: node.StandaloneImplicitNo}

	if err := ctx.keyword("version"); err != nil {
		return nil, ctx.st.Fail(ErrVersionRequired)
	}
	if err := ctx.tok(token.Equal); err != nil {
		return nil, err
	}
	v, err := ctx.quotedText()
	if err != nil {
		return nil, err
	}
	decl.Version = v

	if err := ctx.keyword("encoding"); err == nil {
		if err := ctx.tok(token.Equal); err != nil {
			return nil, err
		}
		enc, err := ctx.quotedText()
		if err != nil {
			return nil, err
		}
		decl.Encoding = enc
	}

	if err := ctx.keyword("standalone"); err == nil {
		if err := ctx.tok(token.Equal); err != nil {
			return nil, err
		}
		spos := ctx.st.Pos()
		sd, err := ctx.quotedText()
		if err != nil {
			return nil, err
		}
		switch sd {
		case "yes":
			decl.Standalone = node.StandaloneExplicitYes
		case "no":
			decl.Standalone = node.StandaloneExplicitNo
		default:
			return nil, ctx.st.FailAt(spos, ErrStandaloneLiteral)
		}
	}

	if err := ctx.tok(token.ClosePI); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseMisc parses a comment or a processing instruction; the two
// things allowed around the root element and the doctype declaration
//
// [27] Misc ::= Comment | PI | S
func (ctx *parserCtx) parseMisc() (node.Misc, error) {
	return parsec.OneOf(ctx.st,
		parsec.Alt[node.Misc]{Name: "comment", Rule: func() (node.Misc, error) {
			return ctx.parseComment()
		}},
		parsec.Alt[node.Misc]{Name: "processing instruction", Rule: func() (node.Misc, error) {
			return ctx.parsePI()
		}},
	)
}

func (ctx *parserCtx) parseComment() (node.Comment, error) {
	if err := ctx.tok(token.OpenComment); err != nil {
		return node.Comment{}, err
	}
	t, err := ctx.st.Expect(token.FreeText)
	if err != nil {
		return node.Comment{}, err
	}
	if err := ctx.tok(token.CloseComment); err != nil {
		return node.Comment{}, err
	}
	return node.Comment{Value: t.Value}, nil
}

func (ctx *parserCtx) parsePI() (node.PI, error) {
	if err := ctx.tok(token.OpenPI); err != nil {
		return node.PI{}, err
	}
	target, err := ctx.name()
	if err != nil {
		return node.PI{}, err
	}
	t, err := ctx.st.Expect(token.FreeText)
	if err != nil {
		return node.PI{}, err
	}
	if err := ctx.tok(token.ClosePI); err != nil {
		return node.PI{}, err
	}
	return node.PI{Target: target, Data: t.Value}, nil
}

// parseElement parses an element, empty or with content. An end tag
// naming anything but the open element is fatal; nothing tries to
// repair a malformed tree by guessing which tag was meant.
//
// [39] element ::= EmptyElemTag | STag content ETag
func (ctx *parserCtx) parseElement() (*node.Element, error) {
	if debug.Enabled {
		debug.Printf("START parseElement")
		defer debug.Printf("END   parseElement")
	}

	t := ctx.st.Peek()
	if t.Kind != token.OpenTag {
		return nil, ctx.st.FailAt(t.Pos, ErrStartTagRequired)
	}
	ctx.st.Next()

	name, err := ctx.name()
	if err != nil {
		return nil, err
	}
	attrs, err := parsec.Many(ctx.st, ctx.parseAttribute)
	if err != nil {
		return nil, err
	}

	elem := &node.Element{Name: name, Attributes: attrs}

	switch t := ctx.st.Peek(); t.Kind {
	case token.SelfCloseTag:
		ctx.st.Next()
		return elem, nil
	case token.CloseTag:
		ctx.st.Next()
	default:
		return nil, ctx.st.FailAt(t.Pos, ErrGtRequired)
	}

	elem.Content, err = parsec.Many(ctx.st, ctx.parseContent)
	if err != nil {
		return nil, err
	}

	if err := ctx.tok(token.OpenEndTag); err != nil {
		return nil, err
	}
	et := ctx.st.Peek()
	end, err := ctx.name()
	if err != nil {
		return nil, err
	}
	if end != name {
		return nil, ctx.st.AbortAt(et.Pos, ErrTagMismatch{Start: name, End: end})
	}
	if err := ctx.tok(token.CloseTag); err != nil {
		return nil, err
	}
	return elem, nil
}

func (ctx *parserCtx) parseAttribute() (node.Attribute, error) {
	name, err := ctx.name()
	if err != nil {
		return node.Attribute{}, err
	}
	if err := ctx.tok(token.Equal); err != nil {
		return node.Attribute{}, err
	}
	value, err := ctx.parseAttValue()
	if err != nil {
		return node.Attribute{}, err
	}
	return node.Attribute{Name: name, Value: value}, nil
}

// parseAttValue parses a quoted attribute value. References stay
// unexpanded in the result; unlike entity values there is no second
// pass over attribute text.
//
// [10] AttValue ::= '"' ([^<&"] | Reference)* '"' | ...
func (ctx *parserCtx) parseAttValue() (node.AttValue, error) {
	frags, err := parsec.Bracket(ctx.st,
		func() error { return ctx.tok(token.Quote) },
		func() ([]node.Fragment, error) { return parsec.Many(ctx.st, ctx.parseValueFragment) },
		func() error { return ctx.tok(token.Quote) },
	)
	if err != nil {
		return nil, err
	}
	return node.AttValue(frags), nil
}

func (ctx *parserCtx) parseValueFragment() (node.Fragment, error) {
	if t := ctx.st.Peek(); t.Kind == token.FreeText {
		ctx.st.Next()
		return node.Text{Value: t.Value}, nil
	}
	return ctx.parseReference()
}

// parseContent parses one child of an element.
//
// [43] content ::= CharData? ((element | Reference | CDSect | PI | Comment) CharData?)*
func (ctx *parserCtx) parseContent() (node.Content, error) {
	switch t := ctx.st.Peek(); t.Kind {
	case token.OpenTag:
		return ctx.parseElement()
	case token.FreeText:
		ctx.st.Next()
		return node.Text{Value: t.Value}, nil
	case token.Amp:
		ref, err := ctx.parseReference()
		if err != nil {
			return nil, err
		}
		switch ref := ref.(type) {
		case node.EntityRef:
			return ref, nil
		case node.CharRef:
			return ref, nil
		}
	case token.OpenSection:
		return ctx.parseCDSect()
	case token.OpenComment:
		return ctx.parseComment()
	case token.OpenPI:
		return ctx.parsePI()
	}
	return nil, ctx.st.Unexpected(ErrContentRequired)
}

// parseCDSect parses a CDATA section.
//
// [18] CDSect ::= '<![CDATA[' CData ']]>'
func (ctx *parserCtx) parseCDSect() (node.CDATA, error) {
	if err := ctx.tok(token.OpenSection); err != nil {
		return node.CDATA{}, err
	}
	if err := ctx.tok(token.CDATA); err != nil {
		return node.CDATA{}, err
	}
	t, err := ctx.st.Expect(token.FreeText)
	if err != nil {
		return node.CDATA{}, err
	}
	if err := ctx.tok(token.CloseSection); err != nil {
		return node.CDATA{}, err
	}
	return node.CDATA{Value: t.Value}, nil
}

// parseReference parses '&...;' and classifies the text between the
// delimiters by shape: "#x" plus hex digits is a hexadecimal character
// reference, "#" plus decimal digits a decimal one, and anything else
// the name of a general entity, recorded as written. Nothing is looked
// up and nothing is substituted, not even the predefined names like
// 'amp'.
//
// [67] Reference ::= EntityRef | CharRef
func (ctx *parserCtx) parseReference() (node.Fragment, error) {
	if err := ctx.tok(token.Amp); err != nil {
		return nil, err
	}
	t, err := ctx.st.Expect(token.FreeText)
	if err != nil {
		return nil, err
	}
	if err := ctx.tok(token.Semi); err != nil {
		return nil, err
	}
	return classifyReference(t.Value), nil
}

func classifyReference(text string) node.Fragment {
	if rest, ok := strings.CutPrefix(text, "#x"); ok && isAllHex(rest) {
		if v, err := strconv.ParseInt(rest, 16, 64); err == nil {
			return node.CharRef{Value: int(v)}
		}
	} else if rest, ok := strings.CutPrefix(text, "#"); ok && isAllDigits(rest) {
		if v, err := strconv.ParseInt(rest, 10, 64); err == nil {
			return node.CharRef{Value: int(v)}
		}
	}
	return node.EntityRef{Name: text}
}

func isAllHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case '0' <= r && r <= '9':
		case 'a' <= r && r <= 'f':
		case 'A' <= r && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
