package xenon

import (
	"github.com/pkg/errors"

	"github.com/lestrrat-go/xenon/internal/debug"
	"github.com/lestrrat-go/xenon/node"
	"github.com/lestrrat-go/xenon/parsec"
	"github.com/lestrrat-go/xenon/token"
)

// parseDocTypeDecl parses '<!DOCTYPE ...>' with its optional external
// identifier and optional internal subset. Once the keyword is in,
// anything malformed inside is fatal; there is no sensible way to
// resume a document whose DTD did not parse.
//
// [28] doctypedecl ::= '<!DOCTYPE' S Name (S ExternalID)? S? ('[' intSubset ']' S?)? '>'
func (ctx *parserCtx) parseDocTypeDecl() (*node.DocTypeDecl, error) {
	if debug.Enabled {
		debug.Printf("START parseDocTypeDecl")
		defer debug.Printf("END   parseDocTypeDecl")
	}

	if err := ctx.tok(token.DOCTYPE); err != nil {
		return nil, err
	}
	return parsec.Must(ctx.st, func() (*node.DocTypeDecl, error) {
		name, err := ctx.name()
		if err != nil {
			return nil, ctx.st.Unexpected(ErrDocTypeNameRequired)
		}
		dtd := &node.DocTypeDecl{Name: name}

		extid, ok, err := parsec.Option(ctx.st, ctx.parseExternalID)
		if err != nil {
			return nil, err
		}
		if ok {
			dtd.ExternalID = &extid
		}

		if ctx.st.Peek().Kind == token.OpenBracket {
			ctx.st.Next()
			dtd.Decls, err = ctx.parseIntSubset()
			if err != nil {
				return nil, err
			}
			if err := ctx.tok(token.CloseBracket); err != nil {
				return nil, err
			}
		}

		if err := ctx.tok(token.CloseTag); err != nil {
			return nil, ctx.st.Unexpected(ErrDocTypeNotFinished)
		}
		return dtd, nil
	})
}

// parseIntSubset parses declarations up to the ']' that closes the
// internal subset. A parameter-entity reference between declarations
// expands and its content is parsed in place.
//
// [28b] intSubset ::= (markupdecl | DeclSep)*
func (ctx *parserCtx) parseIntSubset() ([]node.MarkupDecl, error) {
	groups, err := parsec.Many(ctx.st, func() ([]node.MarkupDecl, error) {
		d, err := ctx.parseMarkupDecl()
		if err == nil {
			return []node.MarkupDecl{d}, nil
		}
		if parsec.IsFatal(err) {
			return nil, err
		}
		if serr := ctx.parseDeclSep(); serr != nil {
			if parsec.IsFatal(serr) {
				return nil, serr
			}
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return flattenDecls(groups), nil
}

// parseDeclSep expands a parameter-entity reference standing on its
// own between declarations. The replacement text is spliced like
// anywhere else and may contribute whole declarations, or nothing at
// all.
//
// [28a] DeclSep ::= PEReference | S
func (ctx *parserCtx) parseDeclSep() error {
	m := ctx.st.Mark()
	name, refPos, ok := ctx.peRefAhead(m)
	if !ok {
		return ctx.st.Unexpected(ErrMarkupDeclRequired)
	}
	return ctx.expand(refPos, name)
}

func flattenDecls(groups [][]node.MarkupDecl) []node.MarkupDecl {
	var decls []node.MarkupDecl
	for _, g := range groups {
		decls = append(decls, g...)
	}
	return decls
}

// parseMarkupDecl parses a single markup declaration.
//
// [29] markupdecl ::= elementdecl | AttlistDecl | EntityDecl | NotationDecl | PI | Comment
func (ctx *parserCtx) parseMarkupDecl() (node.MarkupDecl, error) {
	switch t := ctx.st.Peek(); t.Kind {
	case token.ELEMENT:
		return ctx.parseElementDecl()
	case token.ATTLIST:
		return ctx.parseAttListDecl()
	case token.ENTITY:
		return ctx.parseEntityDecl()
	case token.NOTATION:
		return ctx.parseNotationDecl()
	case token.OpenComment:
		return ctx.parseComment()
	case token.OpenPI:
		return ctx.parsePI()
	}
	return nil, ctx.st.Unexpected(ErrMarkupDeclRequired)
}

// parseExtSubset parses a whole external subset: an optional text
// declaration, then declarations and conditional sections until the
// input runs out.
//
// [30] extSubset ::= TextDecl? extSubsetDecl
func (ctx *parserCtx) parseExtSubset() ([]node.MarkupDecl, error) {
	if debug.Enabled {
		debug.Printf("START parseExtSubset")
		defer debug.Printf("END   parseExtSubset")
	}

	// a text declaration is acknowledged and dropped; the input is
	// already decoded by the time it gets here
	if _, _, err := parsec.Option(ctx.st, ctx.parseXMLDecl); err != nil {
		return nil, err
	}
	return ctx.parseExtSubsetDecls()
}

// parseExtSubsetDecls parses external-subset constructs until nothing
// more matches: markup declarations, conditional sections, and
// parameter-entity references standing between them.
//
// [31] extSubsetDecl ::= ( markupdecl | conditionalSect | DeclSep)*
func (ctx *parserCtx) parseExtSubsetDecls() ([]node.MarkupDecl, error) {
	groups, err := parsec.Many(ctx.st, func() ([]node.MarkupDecl, error) {
		if ctx.st.Peek().Kind == token.OpenSection {
			return ctx.parseConditionalSect()
		}
		d, err := ctx.parseMarkupDecl()
		if err == nil {
			return []node.MarkupDecl{d}, nil
		}
		if parsec.IsFatal(err) {
			return nil, err
		}
		if serr := ctx.parseDeclSep(); serr != nil {
			if parsec.IsFatal(serr) {
				return nil, serr
			}
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return flattenDecls(groups), nil
}

// parseConditionalSect parses '<![ INCLUDE [...]]>' or
// '<![ IGNORE [...]]>'. An included body is parsed as external-subset
// declarations and handed back inline; an ignored body is skipped at
// the token level, matching nested section delimiters but interpreting
// nothing.
//
// [61] conditionalSect ::= includeSect | ignoreSect
func (ctx *parserCtx) parseConditionalSect() ([]node.MarkupDecl, error) {
	if debug.Enabled {
		debug.Printf("START parseConditionalSect")
		defer debug.Printf("END   parseConditionalSect")
	}

	if err := ctx.tok(token.OpenSection); err != nil {
		return nil, err
	}
	keyword, err := peRef(ctx, ctx.parseSectionKeyword)
	if err != nil {
		return nil, err
	}
	return parsec.Must(ctx.st, func() ([]node.MarkupDecl, error) {
		if err := ctx.tok(token.OpenBracket); err != nil {
			return nil, ctx.st.Unexpected(ErrConditionalNotStarted)
		}
		if keyword == "IGNORE" {
			return nil, ctx.skipIgnoredSect()
		}
		decls, err := ctx.parseExtSubsetDecls()
		if err != nil {
			return nil, err
		}
		if err := ctx.tok(token.CloseSection); err != nil {
			return nil, ctx.st.Unexpected(ErrConditionalNotFinished)
		}
		return decls, nil
	})
}

func (ctx *parserCtx) parseSectionKeyword() (string, error) {
	t := ctx.st.Peek()
	if t.Kind == token.Name && (t.Value == "INCLUDE" || t.Value == "IGNORE") {
		ctx.st.Next()
		return t.Value, nil
	}
	return "", ctx.st.Unexpected(ErrConditionalKeywordRequired)
}

// skipIgnoredSect consumes tokens up to the ']]>' matching the section
// being ignored. Nested '<![' ... ']]>' pairs are tracked so an ignored
// section may contain further conditional sections; everything else
// goes by uninterpreted.
func (ctx *parserCtx) skipIgnoredSect() error {
	depth := 0
	for {
		t := ctx.st.Next()
		switch t.Kind {
		case token.OpenSection:
			depth++
		case token.CloseSection:
			if depth == 0 {
				return nil
			}
			depth--
		case token.Invalid:
			return ctx.st.AbortAt(t.Pos, errors.New(t.Value))
		case token.EOF:
			return ctx.st.AbortAt(t.Pos, ErrConditionalNotFinished)
		}
	}
}

// parseElementDecl parses an element type declaration.
//
// [45] elementdecl ::= '<!ELEMENT' S Name S contentspec S? '>'
func (ctx *parserCtx) parseElementDecl() (*node.ElementDecl, error) {
	if debug.Enabled {
		debug.Printf("START parseElementDecl")
		defer debug.Printf("END   parseElementDecl")
	}

	if err := ctx.tok(token.ELEMENT); err != nil {
		return nil, err
	}
	return parsec.Must(ctx.st, func() (*node.ElementDecl, error) {
		name, err := peRef(ctx, ctx.name)
		if err != nil {
			return nil, ctx.orUnexpected(err, ErrNameRequired)
		}
		spec, err := peRef(ctx, ctx.parseContentSpec)
		if err != nil {
			return nil, err
		}
		if _, err := peWhitespace(ctx, ctx.closeTag); err != nil {
			return nil, ctx.orUnexpected(err, ErrGtRequired)
		}
		return &node.ElementDecl{Name: name, Content: spec}, nil
	})
}

// closeTag adapts the closing '>' to the shape the wrappers want.
func (ctx *parserCtx) closeTag() (struct{}, error) {
	return struct{}{}, ctx.tok(token.CloseTag)
}

// parseContentSpec parses the content model of an element declaration.
//
// [46] contentspec ::= 'EMPTY' | 'ANY' | Mixed | children
func (ctx *parserCtx) parseContentSpec() (node.ContentSpec, error) {
	switch t := ctx.st.Peek(); {
	case t.Kind == token.Name && t.Value == "EMPTY":
		ctx.st.Next()
		return node.EmptyContent{}, nil
	case t.Kind == token.Name && t.Value == "ANY":
		ctx.st.Next()
		return node.AnyContent{}, nil
	}
	return parsec.Choice(ctx.st,
		func() (node.ContentSpec, error) { return ctx.parseMixed() },
		func() (node.ContentSpec, error) {
			cp, err := ctx.parseCP()
			if err != nil {
				return nil, err
			}
			return &node.ChildrenContent{CP: cp}, nil
		},
	)
}

// parseMixed parses a mixed content model. With names present the
// trailing '*' is mandatory; bare '(#PCDATA)' may omit it.
//
// [51] Mixed ::= '(' S? '#PCDATA' (S? '|' S? Name)* S? ')*' | '(' S? '#PCDATA' S? ')'
func (ctx *parserCtx) parseMixed() (node.ContentSpec, error) {
	if err := ctx.tok(token.OpenParen); err != nil {
		return nil, err
	}
	if err := ctx.tok(token.Hash); err != nil {
		return nil, err
	}
	if err := ctx.keyword("PCDATA"); err != nil {
		return nil, ctx.st.Unexpected(ErrPCDATARequired)
	}

	names, err := parsec.Many(ctx.st, func() (string, error) {
		if err := ctx.tok(token.Pipe); err != nil {
			return "", err
		}
		return peRef(ctx, ctx.name)
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.tok(token.CloseParen); err != nil {
		return nil, err
	}

	if len(names) > 0 {
		if err := ctx.tok(token.Star); err != nil {
			return nil, ctx.st.Unexpected(ErrStarRequired)
		}
	} else if ctx.st.Peek().Kind == token.Star {
		ctx.st.Next()
	}
	return &node.MixedContent{Names: names}, nil
}

// parseCP parses one content particle: a name or a parenthesized
// group, then an optional occurrence mark.
//
// [48] cp ::= (Name | choice | seq) ('?' | '*' | '+')?
func (ctx *parserCtx) parseCP() (node.CP, error) {
	var particle node.Particle
	switch t := ctx.st.Peek(); t.Kind {
	case token.Name:
		ctx.st.Next()
		particle = node.NameParticle{Name: t.Value}
	case token.OpenParen:
		ctx.st.Next()
		group, err := ctx.parseGroup()
		if err != nil {
			return node.CP{}, err
		}
		particle = group
	default:
		return node.CP{}, ctx.st.Unexpected(ErrNameRequired)
	}
	return node.CP{Particle: particle, Occur: ctx.parseOccur()}, nil
}

// parseGroup parses the body of a parenthesized particle after the
// '(' is consumed. One or more '|'-separated particles form a choice,
// ','-separated ones a sequence; a single particle becomes a sequence
// of one.
//
// [49] choice ::= '(' S? cp ( S? '|' S? cp )+ S? ')'
// [50] seq    ::= '(' S? cp ( S? ',' S? cp )* S? ')'
func (ctx *parserCtx) parseGroup() (node.Particle, error) {
	item := func() (node.CP, error) {
		return peRef(ctx, ctx.parseCP)
	}

	first, err := item()
	if err != nil {
		return nil, err
	}

	var particle node.Particle
	if ctx.st.Peek().Kind == token.Pipe {
		alts := []node.CP{first}
		for ctx.st.Peek().Kind == token.Pipe {
			ctx.st.Next()
			cp, err := item()
			if err != nil {
				return nil, err
			}
			alts = append(alts, cp)
		}
		particle = &node.ChoiceParticle{Alternatives: alts}
	} else {
		items := []node.CP{first}
		for ctx.st.Peek().Kind == token.Comma {
			ctx.st.Next()
			cp, err := item()
			if err != nil {
				return nil, err
			}
			items = append(items, cp)
		}
		particle = &node.SeqParticle{Items: items}
	}

	if err := ctx.tok(token.CloseParen); err != nil {
		return nil, err
	}
	return particle, nil
}

func (ctx *parserCtx) parseOccur() node.Occur {
	switch ctx.st.Peek().Kind {
	case token.Query:
		ctx.st.Next()
		return node.OccurOpt
	case token.Star:
		ctx.st.Next()
		return node.OccurMult
	case token.Plus:
		ctx.st.Next()
		return node.OccurPlus
	}
	return node.OccurOnce
}

// parseAttListDecl parses an attribute-list declaration.
//
// [52] AttlistDecl ::= '<!ATTLIST' S Name AttDef* S? '>'
func (ctx *parserCtx) parseAttListDecl() (*node.AttListDecl, error) {
	if debug.Enabled {
		debug.Printf("START parseAttListDecl")
		defer debug.Printf("END   parseAttListDecl")
	}

	if err := ctx.tok(token.ATTLIST); err != nil {
		return nil, err
	}
	return parsec.Must(ctx.st, func() (*node.AttListDecl, error) {
		name, err := peRef(ctx, ctx.name)
		if err != nil {
			return nil, ctx.orUnexpected(err, ErrNameRequired)
		}
		defs, err := parsec.Many(ctx.st, func() (node.AttDef, error) {
			return peRef(ctx, ctx.parseAttDef)
		})
		if err != nil {
			return nil, err
		}
		if _, err := peWhitespace(ctx, ctx.closeTag); err != nil {
			return nil, ctx.orUnexpected(err, ErrGtRequired)
		}
		return &node.AttListDecl{Element: name, Defs: defs}, nil
	})
}

// parseAttDef parses one attribute definition inside an ATTLIST.
//
// [53] AttDef ::= S Name S AttType S DefaultDecl
func (ctx *parserCtx) parseAttDef() (node.AttDef, error) {
	name, err := ctx.name()
	if err != nil {
		return node.AttDef{}, err
	}
	typ, err := peRef(ctx, ctx.parseAttType)
	if err != nil {
		return node.AttDef{}, err
	}
	def, err := peRef(ctx, ctx.parseDefaultDecl)
	if err != nil {
		return node.AttDef{}, err
	}
	return node.AttDef{Name: name, Type: typ, Default: def}, nil
}

// parseAttType parses an attribute type.
//
// [54] AttType ::= StringType | TokenizedType | EnumeratedType
func (ctx *parserCtx) parseAttType() (node.AttType, error) {
	if t := ctx.st.Peek(); t.Kind == token.Name {
		var typ node.AttributeType
		switch t.Value {
		case "CDATA":
			typ = node.AttrCDATA
		case "ID":
			typ = node.AttrID
		case "IDREF":
			typ = node.AttrIDRef
		case "IDREFS":
			typ = node.AttrIDRefs
		case "ENTITY":
			typ = node.AttrEntity
		case "ENTITIES":
			typ = node.AttrEntities
		case "NMTOKEN":
			typ = node.AttrNMToken
		case "NMTOKENS":
			typ = node.AttrNMTokens
		case "NOTATION":
			return ctx.parseNotationType()
		default:
			return node.AttType{}, ctx.st.FailAt(t.Pos, ErrAttrTypeRequired)
		}
		ctx.st.Next()
		return node.AttType{Type: typ}, nil
	}
	return ctx.parseEnumeration()
}

// parseNotationType parses 'NOTATION (n1 | n2 | ...)'.
//
// [58] NotationType ::= 'NOTATION' S '(' S? Name (S? '|' S? Name)* S? ')'
func (ctx *parserCtx) parseNotationType() (node.AttType, error) {
	if err := ctx.keyword("NOTATION"); err != nil {
		return node.AttType{}, err
	}
	names, err := parsec.Bracket(ctx.st,
		func() error { return ctx.tok(token.OpenParen) },
		func() ([]string, error) {
			return parsec.SepBy1(ctx.st,
				func() (string, error) { return peRef(ctx, ctx.name) },
				func() error { return ctx.tok(token.Pipe) },
			)
		},
		func() error { return ctx.tok(token.CloseParen) },
	)
	if err != nil {
		return node.AttType{}, err
	}
	return node.AttType{Type: node.AttrNotation, Enum: names}, nil
}

// parseEnumeration parses '(tok1 | tok2 | ...)'.
//
// [59] Enumeration ::= '(' S? Nmtoken (S? '|' S? Nmtoken)* S? ')'
func (ctx *parserCtx) parseEnumeration() (node.AttType, error) {
	names, err := parsec.Bracket(ctx.st,
		func() error { return ctx.tok(token.OpenParen) },
		func() ([]string, error) {
			return parsec.SepBy1(ctx.st,
				func() (string, error) { return peRef(ctx, ctx.name) },
				func() error { return ctx.tok(token.Pipe) },
			)
		},
		func() error { return ctx.tok(token.CloseParen) },
	)
	if err != nil {
		return node.AttType{}, err
	}
	return node.AttType{Type: node.AttrEnumeration, Enum: names}, nil
}

// parseDefaultDecl parses the default for an attribute definition. A
// plain quoted value and the value after #FIXED are attribute values,
// with references recorded but not expanded.
//
// [60] DefaultDecl ::= '#REQUIRED' | '#IMPLIED' | (('#FIXED' S)? AttValue)
func (ctx *parserCtx) parseDefaultDecl() (node.DefaultDecl, error) {
	if ctx.st.Peek().Kind == token.Hash {
		ctx.st.Next()
		word, err := ctx.name()
		if err != nil {
			return node.DefaultDecl{}, err
		}
		switch word {
		case "REQUIRED":
			return node.DefaultDecl{Type: node.AttrDefaultRequired}, nil
		case "IMPLIED":
			return node.DefaultDecl{Type: node.AttrDefaultImplied}, nil
		case "FIXED":
			value, err := peRef(ctx, ctx.parseAttValue)
			if err != nil {
				return node.DefaultDecl{}, err
			}
			return node.DefaultDecl{Type: node.AttrDefaultFixed, Value: value}, nil
		}
		return node.DefaultDecl{}, ctx.st.Fail(ErrDefaultDeclRequired)
	}
	value, err := ctx.parseAttValue()
	if err != nil {
		return node.DefaultDecl{}, err
	}
	return node.DefaultDecl{Type: node.AttrDefaultNone, Value: value}, nil
}

// parseEntityDecl parses both forms of entity declaration. The parsed
// definition is registered in the matching table immediately, before
// anything after the declaration is looked at, so a following
// declaration can already reference it. Redeclaring a name silently
// replaces the definition from that point on.
//
// [70] EntityDecl ::= GEDecl | PEDecl
// [71] GEDecl ::= '<!ENTITY' S Name S EntityDef S? '>'
// [72] PEDecl ::= '<!ENTITY' S '%' S Name S PEDef S? '>'
func (ctx *parserCtx) parseEntityDecl() (node.MarkupDecl, error) {
	if debug.Enabled {
		debug.Printf("START parseEntityDecl")
		defer debug.Printf("END   parseEntityDecl")
	}

	if err := ctx.tok(token.ENTITY); err != nil {
		return nil, err
	}
	return parsec.Must(ctx.st, func() (node.MarkupDecl, error) {
		if ctx.st.Peek().Kind == token.Percent {
			ctx.st.Next()
			return ctx.parsePEDeclTail()
		}
		return ctx.parseGEDeclTail()
	})
}

func (ctx *parserCtx) parsePEDeclTail() (node.MarkupDecl, error) {
	name, err := peRef(ctx, ctx.name)
	if err != nil {
		return nil, ctx.orUnexpected(err, ErrNameRequired)
	}
	def, err := peRef(ctx, ctx.parsePEDef)
	if err != nil {
		return nil, err
	}
	if _, err := peWhitespace(ctx, ctx.closeTag); err != nil {
		return nil, ctx.orUnexpected(err, ErrGtRequired)
	}
	if debug.Enabled {
		debug.Printf("registering parameter entity %%%s;", name)
	}
	ctx.pents.Set(name, def)
	return &node.PEDecl{Name: name, Def: def}, nil
}

func (ctx *parserCtx) parseGEDeclTail() (node.MarkupDecl, error) {
	name, err := peRef(ctx, ctx.name)
	if err != nil {
		return nil, ctx.orUnexpected(err, ErrNameRequired)
	}
	def, err := peRef(ctx, ctx.parseEntityDef)
	if err != nil {
		return nil, err
	}
	if _, err := peWhitespace(ctx, ctx.closeTag); err != nil {
		return nil, ctx.orUnexpected(err, ErrGtRequired)
	}
	if debug.Enabled {
		debug.Printf("registering general entity &%s;", name)
	}
	ctx.gents.Set(name, def)
	return &node.GEDecl{Name: name, Def: def}, nil
}

// parseEntityDef parses the definition of a general entity: a value,
// or an external identifier with an optional NDATA annotation marking
// the entity unparsed.
//
// [73] EntityDef ::= EntityValue | (ExternalID NDataDecl?)
func (ctx *parserCtx) parseEntityDef() (node.EntityDef, error) {
	if ctx.st.Peek().Kind == token.Quote {
		value, err := ctx.parseEntityValue()
		if err != nil {
			return nil, err
		}
		return &node.InternalEntity{Value: value}, nil
	}
	id, err := ctx.parseExternalID()
	if err != nil {
		return nil, ctx.orUnexpected(err, ErrEntityValueRequired)
	}
	ext := &node.ExternalEntity{ID: id}
	if t := ctx.st.Peek(); t.Kind == token.Name && t.Value == "NDATA" {
		ctx.st.Next()
		ndata, err := peRef(ctx, ctx.name)
		if err != nil {
			return nil, ctx.orUnexpected(err, ErrNameRequired)
		}
		ext.NData = ndata
	}
	return ext, nil
}

// parsePEDef parses the definition of a parameter entity. No NDATA
// here; parameter entities are always parsed.
//
// [74] PEDef ::= EntityValue | ExternalID
func (ctx *parserCtx) parsePEDef() (node.PEDef, error) {
	if ctx.st.Peek().Kind == token.Quote {
		value, err := ctx.parseEntityValue()
		if err != nil {
			return nil, err
		}
		return &node.InternalEntity{Value: value}, nil
	}
	id, err := ctx.parseExternalID()
	if err != nil {
		return nil, ctx.orUnexpected(err, ErrEntityValueRequired)
	}
	return &node.ExternalEntity{ID: id}, nil
}

// parseEntityValue parses a quoted entity value in two passes. The
// first collects the raw fragments between the quotes with '%' still
// literal. The second flattens them and re-scans the text with both
// reference forms live, expanding parameter entities against the
// tables as they stand at this declaration. What is stored is the
// result of the second pass.
//
// [9] EntityValue ::= '"' ([^%&"] | PEReference | Reference)* '"' | ...
func (ctx *parserCtx) parseEntityValue() (node.EntityValue, error) {
	vpos := ctx.st.Pos()
	raw, err := parsec.Bracket(ctx.st,
		func() error { return ctx.tok(token.Quote) },
		func() ([]node.Fragment, error) { return parsec.Many(ctx.st, ctx.parseValueFragment) },
		func() error { return ctx.tok(token.Quote) },
	)
	if err != nil {
		return nil, err
	}
	return ctx.rescanValue(vpos, node.EntityValue(raw).Flatten())
}

// parseExternalID parses 'SYSTEM "sys"' or 'PUBLIC "pub" "sys"'.
//
// [75] ExternalID ::= 'SYSTEM' S SystemLiteral | 'PUBLIC' S PubidLiteral S SystemLiteral
func (ctx *parserCtx) parseExternalID() (node.ExternalID, error) {
	t := ctx.st.Peek()
	if t.Kind != token.Name {
		return node.ExternalID{}, ctx.st.Unexpected(ErrExternalIDRequired)
	}
	switch t.Value {
	case "SYSTEM":
		ctx.st.Next()
		sys, err := peRef(ctx, ctx.quotedText)
		if err != nil {
			return node.ExternalID{}, err
		}
		return node.ExternalID{SystemID: sys}, nil
	case "PUBLIC":
		ctx.st.Next()
		pub, err := peRef(ctx, ctx.quotedText)
		if err != nil {
			return node.ExternalID{}, err
		}
		sys, err := peRef(ctx, ctx.quotedText)
		if err != nil {
			return node.ExternalID{}, err
		}
		return node.ExternalID{PublicID: pub, SystemID: sys}, nil
	}
	return node.ExternalID{}, ctx.st.FailAt(t.Pos, ErrExternalIDRequired)
}

// parseNotationDecl parses a notation declaration. Alone among the
// users of external identifiers, a notation may carry a public
// identifier with no system literal after it.
//
// [82] NotationDecl ::= '<!NOTATION' S Name S (ExternalID | PublicID) S? '>'
// [83] PublicID ::= 'PUBLIC' S PubidLiteral
func (ctx *parserCtx) parseNotationDecl() (*node.NotationDecl, error) {
	if debug.Enabled {
		debug.Printf("START parseNotationDecl")
		defer debug.Printf("END   parseNotationDecl")
	}

	if err := ctx.tok(token.NOTATION); err != nil {
		return nil, err
	}
	return parsec.Must(ctx.st, func() (*node.NotationDecl, error) {
		name, err := peRef(ctx, ctx.name)
		if err != nil {
			return nil, ctx.orUnexpected(err, ErrNameRequired)
		}
		id, err := parsec.Choice(ctx.st,
			func() (node.ExternalID, error) { return ctx.parseExternalID() },
			func() (node.ExternalID, error) { return ctx.parsePublicID() },
		)
		if err != nil {
			return nil, ctx.orUnexpected(err, ErrNotationIDRequired)
		}
		if _, err := peWhitespace(ctx, ctx.closeTag); err != nil {
			return nil, ctx.orUnexpected(err, ErrGtRequired)
		}
		return &node.NotationDecl{Name: name, ID: id}, nil
	})
}

func (ctx *parserCtx) parsePublicID() (node.ExternalID, error) {
	if err := ctx.keyword("PUBLIC"); err != nil {
		return node.ExternalID{}, err
	}
	pub, err := peRef(ctx, ctx.quotedText)
	if err != nil {
		return node.ExternalID{}, err
	}
	return node.ExternalID{PublicID: pub}, nil
}
