// Package xenon is a non-validating parser for XML 1.0 documents and
// DTDs. It parses documents into a literal tree in which entity
// references, CDATA sections and the DTD's declarations are all kept
// as written, and it implements the parameter-entity machinery of the
// DTD grammar in full: references expand mid-parse, by re-lexing
// replacement text and splicing it in front of the remaining input,
// so declarations may arrive through any number of macro layers and
// still parse as if written in place.
package xenon

import (
	"github.com/pkg/errors"

	"github.com/lestrrat-go/xenon/node"
	"github.com/lestrrat-go/xenon/parsec"
	"github.com/lestrrat-go/xenon/token"
)

// Version is the library version, reported by the bundled tools.
const Version = "0.1.0"

// Parse parses a complete XML document. label names the input in
// diagnostics, typically a file name. The error for malformed input
// unwraps to an ErrParseError holding the position where the parse
// stopped making progress.
func Parse(label string, src []byte, options ...Option) (*node.Document, error) {
	ctx := &parserCtx{}
	ctx.init(token.Lex(label, src), options...)
	doc, err := ctx.parseDocument()
	if err == nil && !ctx.st.AtEOF() {
		err = ctx.st.Unexpected(ErrDocumentEnd)
	}
	if err != nil {
		return nil, parseFailure(ctx, err, "failed to parse document")
	}
	return doc, nil
}

// MustParse is Parse for inputs that must be well-formed, such as
// compiled-in documents; it panics where Parse errors.
func MustParse(label string, src []byte, options ...Option) *node.Document {
	doc, err := Parse(label, src, options...)
	if err != nil {
		panic(err)
	}
	return doc
}

// ParseDTD parses DTD text on its own. The input may be a standalone
// external subset, or a full document whose prolog carries a doctype
// declaration, in which case that embedded DTD is returned and the
// rest of the document is left alone. A standalone subset yields a
// DocTypeDecl with an empty Name.
//
// When the input is neither - no declarations, no doctype - the error
// is ErrDTDNotFound, distinct from any parse error.
func ParseDTD(label string, src []byte, options ...Option) (*node.DocTypeDecl, error) {
	ctx := &parserCtx{}
	ctx.init(token.LexDTD(label, src), options...)
	decls, err := ctx.parseExtSubset()
	switch {
	case err != nil:
		// only a committed declaration fails the subset loop
		return nil, parseFailure(ctx, err, "failed to parse DTD")
	case hasMarkup(decls):
		if !ctx.st.AtEOF() {
			return nil, parseFailure(ctx, ctx.st.Unexpected(ErrDocumentEnd), "failed to parse DTD")
		}
		return &node.DocTypeDecl{Decls: decls}, nil
	}

	ctx = &parserCtx{}
	ctx.init(token.Lex(label, src), options...)
	prolog, perr := ctx.parseProlog()
	if perr != nil {
		return nil, parseFailure(ctx, perr, "failed to parse DTD")
	}
	if prolog.DTD == nil {
		return nil, ErrDTDNotFound
	}
	return prolog.DTD, nil
}

// MustParseDTD is ParseDTD, panicking on any error.
func MustParseDTD(label string, src []byte, options ...Option) *node.DocTypeDecl {
	dtd, err := ParseDTD(label, src, options...)
	if err != nil {
		panic(err)
	}
	return dtd
}

// hasMarkup reports whether decls holds at least one actual markup
// declaration. Comments and processing instructions do not count; a
// document that merely starts with a comment must not be mistaken for
// an external subset.
func hasMarkup(decls []node.MarkupDecl) bool {
	for _, d := range decls {
		switch d.(type) {
		case node.Comment, node.PI:
		default:
			return true
		}
	}
	return false
}

// parseFailure picks the failure worth reporting and shapes it for the
// caller.
func parseFailure(ctx *parserCtx, err error, msg string) error {
	best := ctx.st.Best(err)
	if f, ok := best.(*parsec.Failure); ok {
		return errors.Wrap(ErrParseError{Err: f.Err, Pos: f.Pos}, msg)
	}
	return errors.Wrap(best, msg)
}
