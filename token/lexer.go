package token

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lestrrat-go/strcursor"

	"github.com/lestrrat-go/xenon/internal/debug"
)

// Lex turns a complete XML document into a token stream. label seeds
// every position, and is typically the name of the file the text came
// from. Lexing itself never fails: text that cannot be tokenized ends
// the stream with an Invalid token carrying the message, and a parse
// that reaches that far reports it with the token's position.
func Lex(label string, src []byte) *Stream {
	lx := newLexer(label, nil, Normalize(src))
	lx.document()
	return lx.stream()
}

// LexDTD turns a standalone external DTD subset into a token stream.
func LexDTD(label string, src []byte) *Stream {
	lx := newLexer(label, nil, Normalize(src))
	lx.dtd(false)
	return lx.stream()
}

// Relex lexes entity replacement text as DTD input under a synthetic
// context label such as "macro %name;" or "file f". at anchors every
// resulting position at the reference that triggered the expansion, so
// a diagnostic inside the replacement text still leads back to the
// document. The text must already be normalized.
func Relex(label string, at *Position, text string) *Stream {
	lx := newLexer(label, at, []byte(text))
	lx.dtd(false)
	return lx.stream()
}

// RelexValue lexes flattened entity-value text for the second,
// reference-aware pass over a quoted value. Unlike DTD input,
// whitespace is significant and parameter-entity references are
// recognized outside of any quotes.
func RelexValue(label string, at *Position, text string) *Stream {
	lx := newLexer(label, at, []byte(text))
	lx.value()
	return lx.stream()
}

type lexer struct {
	cur     strcursor.Cursor
	nleft   int
	label   string
	at      *Position
	out     []Token
	depth   int
	stopped bool
}

func newLexer(label string, at *Position, src []byte) *lexer {
	return &lexer{
		cur:   strcursor.NewRuneCursor(bytes.NewReader(src)),
		nleft: utf8.RuneCount(src),
		label: label,
		at:    at,
	}
}

func (lx *lexer) stream() *Stream {
	return &Stream{Tokens: lx.out, End: lx.pos()}
}

func (lx *lexer) pos() Position {
	return Position{
		Context: lx.label,
		Line:    lx.cur.LineNumber(),
		Column:  lx.cur.Column(),
		At:      lx.at,
	}
}

// peek is 1-based lookahead: peek(1) is the next rune. nleft counts
// the runes not yet consumed, so peek(n) and consume(n) are only
// called with n proven by hasChars(n).
func (lx *lexer) peek(n int) rune {
	if n == 1 {
		return lx.cur.Peek()
	}
	return lx.cur.PeekN(n)
}

func (lx *lexer) hasChars(n int) bool {
	return lx.nleft >= n
}

func (lx *lexer) done() bool {
	return lx.nleft < 1
}

func (lx *lexer) advance(n int) {
	lx.cur.Advance(n)
	lx.nleft -= n
}

func (lx *lexer) consume(n int) string {
	if n <= 0 {
		return ""
	}
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		sb.WriteRune(lx.peek(i))
	}
	lx.advance(n)
	return sb.String()
}

func (lx *lexer) consumeString(s string) bool {
	if !lx.cur.ConsumeString(s) {
		return false
	}
	lx.nleft -= utf8.RuneCountInString(s)
	return true
}

func (lx *lexer) emit(pos Position, k Kind, v string) {
	if debug.Enabled {
		debug.Printf("emit %s at %s", Token{Kind: k, Value: v}, &pos)
	}
	lx.out = append(lx.out, Token{Kind: k, Value: v, Pos: pos})
}

// fail emits an Invalid token and stops the lexer. Everything after
// the failure point stays unlexed.
func (lx *lexer) fail(pos Position, msg string) {
	lx.emit(pos, Invalid, msg)
	lx.stopped = true
}

func (lx *lexer) skipBlanks() {
	for !lx.done() && IsBlank(lx.peek(1)) {
		lx.advance(1)
	}
}

func isNameStartChar(r rune) bool {
	return r == '_' || r == ':' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return r == '.' || r == '-' || r == '_' || r == ':' ||
		unicode.IsLetter(r) || unicode.IsDigit(r) ||
		unicode.In(r, unicode.Extender)
}

func (lx *lexer) name() (string, bool) {
	if lx.done() || !isNameStartChar(lx.peek(1)) {
		return "", false
	}
	i := 1
	for lx.hasChars(i+1) && isNameChar(lx.peek(i+1)) {
		i++
	}
	if i > MaxNameLength {
		lx.fail(lx.pos(), "name is too long")
		return "", false
	}
	return lx.consume(i), true
}

// document lexes in document content mode. Whitespace between markup
// is dropped outside the root element and kept as character data
// inside it.
func (lx *lexer) document() {
	for !lx.stopped && !lx.done() {
		if lx.depth == 0 {
			lx.skipBlanks()
			if lx.done() {
				return
			}
		}
		switch lx.peek(1) {
		case '<':
			lx.markup()
		case '&':
			lx.reference()
		default:
			lx.chardata()
		}
	}
}

func (lx *lexer) chardata() {
	pos := lx.pos()
	i := 1
	for lx.hasChars(i + 1) {
		c := lx.peek(i + 1)
		if c == '<' || c == '&' {
			break
		}
		i++
	}
	lx.emit(pos, FreeText, lx.consume(i))
}

func (lx *lexer) markup() {
	pos := lx.pos()
	switch {
	case lx.consumeString("<!--"):
		lx.emit(pos, OpenComment, "<!--")
		lx.comment()
	case lx.cur.HasPrefixString("<![CDATA["):
		lx.advance(3)
		lx.emit(pos, OpenSection, "<![")
		kpos := lx.pos()
		lx.advance(6)
		lx.emit(kpos, CDATA, "CDATA")
		lx.cdata()
	case lx.consumeString("<!"):
		if lx.declKeyword(pos) == DOCTYPE {
			lx.dtd(true)
		}
	case lx.consumeString("<?"):
		lx.pi(pos)
	case lx.consumeString("</"):
		lx.emit(pos, OpenEndTag, "</")
		lx.tag(true)
	default:
		lx.advance(1)
		lx.emit(pos, OpenTag, "<")
		lx.tag(false)
	}
}

// reference lexes "&...;" into Amp, FreeText, Semi. The text between
// the delimiters is classified later, by shape, in the grammar.
func (lx *lexer) reference() {
	pos := lx.pos()
	lx.advance(1)
	lx.emit(pos, Amp, "&")
	tpos := lx.pos()
	i := 0
	for lx.hasChars(i + 1) {
		c := lx.peek(i + 1)
		if c == ';' {
			break
		}
		if IsBlank(c) || c == '<' || c == '&' {
			lx.fail(tpos, "';' is required")
			return
		}
		i++
	}
	lx.emit(tpos, FreeText, lx.consume(i))
	spos := lx.pos()
	if !lx.consumeString(";") {
		lx.fail(spos, "';' is required")
		return
	}
	lx.emit(spos, Semi, ";")
}

func (lx *lexer) comment() {
	pos := lx.pos()
	i := 1
	found := false
	for ; lx.hasChars(i); i++ {
		if lx.peek(i) == '-' && lx.hasChars(i+1) && lx.peek(i+1) == '-' {
			i--
			found = true
			break
		}
	}
	if !found {
		lx.fail(pos, "invalid comment section")
		return
	}
	body := lx.consume(i)
	dpos := lx.pos()
	lx.advance(2)
	if !lx.consumeString(">") {
		lx.fail(dpos, "'--' not allowed in comment")
		return
	}
	lx.emit(pos, FreeText, body)
	lx.emit(dpos, CloseComment, "-->")
}

func (lx *lexer) cdata() {
	pos := lx.pos()
	i := 1
	found := false
	for ; lx.hasChars(i); i++ {
		if lx.peek(i) == ']' && lx.hasChars(i+2) &&
			lx.peek(i+1) == ']' && lx.peek(i+2) == '>' {
			i--
			found = true
			break
		}
	}
	if !found {
		lx.fail(pos, "invalid CDATA section")
		return
	}
	lx.emit(pos, FreeText, lx.consume(i))
	cpos := lx.pos()
	lx.advance(3)
	lx.emit(cpos, CloseSection, "]]>")
}

// declKeyword lexes the keyword right after "<!" and reports which one
// it was. "<!DOCTYPE" in document mode switches the lexer into DTD
// mode; the caller decides that, since the same keywords also show up
// inside a subset.
func (lx *lexer) declKeyword(pos Position) Kind {
	i := 0
	for lx.hasChars(i + 1) {
		c := lx.peek(i + 1)
		if c < 'A' || c > 'Z' {
			break
		}
		i++
	}
	switch lx.consume(i) {
	case "DOCTYPE":
		lx.emit(pos, DOCTYPE, "<!DOCTYPE")
		return DOCTYPE
	case "ELEMENT":
		lx.emit(pos, ELEMENT, "<!ELEMENT")
		return ELEMENT
	case "ATTLIST":
		lx.emit(pos, ATTLIST, "<!ATTLIST")
		return ATTLIST
	case "ENTITY":
		lx.emit(pos, ENTITY, "<!ENTITY")
		return ENTITY
	case "NOTATION":
		lx.emit(pos, NOTATION, "<!NOTATION")
		return NOTATION
	default:
		lx.fail(pos, "invalid markup declaration")
		return Invalid
	}
}

func (lx *lexer) pi(pos Position) {
	lx.emit(pos, OpenPI, "<?")
	npos := lx.pos()
	target, ok := lx.name()
	if !ok {
		if !lx.stopped {
			lx.fail(npos, "processing instruction target required")
		}
		return
	}
	lx.emit(npos, Name, target)
	if target == "xml" && !lx.done() && IsBlank(lx.peek(1)) {
		lx.xmlDecl()
		return
	}
	lx.skipBlanks()
	bpos := lx.pos()
	i := 1
	found := false
	for ; lx.hasChars(i); i++ {
		if lx.peek(i) == '?' && lx.hasChars(i+1) && lx.peek(i+1) == '>' {
			i--
			found = true
			break
		}
	}
	if !found {
		lx.fail(bpos, "invalid processing instruction")
		return
	}
	lx.emit(bpos, FreeText, lx.consume(i))
	cpos := lx.pos()
	lx.advance(2)
	lx.emit(cpos, ClosePI, "?>")
}

// xmlDecl lexes the attribute-shaped pseudo-instruction "<?xml ...?>"
// (both the document XML declaration and the text declaration at the
// head of an external entity). "<?xml" and the target name are already
// emitted.
func (lx *lexer) xmlDecl() {
	for !lx.stopped && !lx.done() {
		lx.skipBlanks()
		if lx.done() {
			break
		}
		pos := lx.pos()
		c := lx.peek(1)
		switch {
		case lx.consumeString("?>"):
			lx.emit(pos, ClosePI, "?>")
			return
		case c == '=':
			lx.advance(1)
			lx.emit(pos, Equal, "=")
		case c == '"' || c == '\'':
			lx.quoted(false)
		case isNameStartChar(c):
			n, _ := lx.name()
			lx.emit(pos, Name, n)
		default:
			lx.fail(pos, "invalid XML declaration")
			return
		}
	}
	if !lx.stopped {
		lx.fail(lx.pos(), "end of document reached")
	}
}

func (lx *lexer) tag(end bool) {
	npos := lx.pos()
	n, ok := lx.name()
	if !ok {
		if !lx.stopped {
			lx.fail(npos, "invalid xml name")
		}
		return
	}
	lx.emit(npos, Name, n)
	for !lx.stopped && !lx.done() {
		lx.skipBlanks()
		if lx.done() {
			break
		}
		pos := lx.pos()
		c := lx.peek(1)
		switch {
		case c == '>':
			lx.advance(1)
			lx.emit(pos, CloseTag, ">")
			if end {
				if lx.depth > 0 {
					lx.depth--
				}
			} else {
				lx.depth++
			}
			return
		case lx.consumeString("/>"):
			lx.emit(pos, SelfCloseTag, "/>")
			return
		case c == '=':
			lx.advance(1)
			lx.emit(pos, Equal, "=")
		case c == '"' || c == '\'':
			lx.quoted(true)
		case isNameStartChar(c):
			an, ok := lx.name()
			if ok {
				lx.emit(pos, Name, an)
			}
		default:
			lx.fail(pos, "invalid char")
			return
		}
	}
	if !lx.stopped {
		lx.fail(lx.pos(), "end of document reached")
	}
}

// quoted lexes a quoted literal: a Quote token, the literal text, and
// the matching Quote. refs controls whether '&' starts a live
// general-entity reference inside the literal: attribute values in a
// start tag keep references live, while DTD and XML-declaration
// literals (system and pubid literals, entity values ahead of their
// re-scan, attribute defaults) take every character up to the closing
// quote as written. A '%' stays literal either way; parameter entities
// inside entity values are only recognized on the flattened re-scan.
func (lx *lexer) quoted(refs bool) {
	qpos := lx.pos()
	q := lx.peek(1)
	lx.advance(1)
	lx.emit(qpos, Quote, string(q))
	for !lx.stopped {
		fpos := lx.pos()
		i := 1
		stop := rune(0)
		for ; lx.hasChars(i); i++ {
			c := lx.peek(i)
			if c == q || (refs && c == '&') {
				stop = c
				i--
				break
			}
		}
		if stop == 0 {
			lx.fail(qpos, "literal not finished")
			return
		}
		if i > 0 {
			lx.emit(fpos, FreeText, lx.consume(i))
		}
		ppos := lx.pos()
		if stop == q {
			lx.advance(1)
			lx.emit(ppos, Quote, string(q))
			return
		}
		lx.reference()
	}
}

// dtd lexes markup declarations. pop is true when the mode was entered
// through "<!DOCTYPE" in a document, in which case the '>' closing the
// declaration returns the lexer to content mode. Whitespace between
// tokens is dropped.
func (lx *lexer) dtd(pop bool) {
	bracket := 0
	for !lx.stopped && !lx.done() {
		lx.skipBlanks()
		if lx.done() {
			return
		}
		pos := lx.pos()
		c := lx.peek(1)
		switch {
		case lx.consumeString("<!--"):
			lx.emit(pos, OpenComment, "<!--")
			lx.comment()
		case lx.consumeString("<!["):
			lx.emit(pos, OpenSection, "<![")
		case lx.consumeString("<!"):
			lx.declKeyword(pos)
		case lx.consumeString("<?"):
			lx.pi(pos)
		case lx.consumeString("]]>"):
			// closes the '[' that opened the section body
			lx.emit(pos, CloseSection, "]]>")
			if bracket > 0 {
				bracket--
			}
		case c == '>':
			lx.advance(1)
			lx.emit(pos, CloseTag, ">")
			if pop && bracket == 0 {
				return
			}
		case c == '[':
			lx.advance(1)
			lx.emit(pos, OpenBracket, "[")
			bracket++
		case c == ']':
			lx.advance(1)
			lx.emit(pos, CloseBracket, "]")
			if bracket > 0 {
				bracket--
			}
		case c == '(':
			lx.advance(1)
			lx.emit(pos, OpenParen, "(")
		case c == ')':
			lx.advance(1)
			lx.emit(pos, CloseParen, ")")
		case c == '|':
			lx.advance(1)
			lx.emit(pos, Pipe, "|")
		case c == ',':
			lx.advance(1)
			lx.emit(pos, Comma, ",")
		case c == '?':
			lx.advance(1)
			lx.emit(pos, Query, "?")
		case c == '*':
			lx.advance(1)
			lx.emit(pos, Star, "*")
		case c == '+':
			lx.advance(1)
			lx.emit(pos, Plus, "+")
		case c == '#':
			lx.advance(1)
			lx.emit(pos, Hash, "#")
		case c == '=':
			lx.advance(1)
			lx.emit(pos, Equal, "=")
		case c == ';':
			lx.advance(1)
			lx.emit(pos, Semi, ";")
		case c == '%':
			lx.peRef()
		case c == '&':
			lx.reference()
		case c == '"' || c == '\'':
			lx.quoted(false)
		case isNameChar(c):
			// nmtokens may start with characters names may not,
			// e.g. the digits of an enumerated attribute value
			lx.nmtoken(pos)
		default:
			lx.fail(pos, "invalid char")
			return
		}
	}
}

func (lx *lexer) nmtoken(pos Position) {
	i := 1
	for lx.hasChars(i+1) && isNameChar(lx.peek(i+1)) {
		i++
	}
	if i > MaxNameLength {
		lx.fail(pos, "name is too long")
		return
	}
	lx.emit(pos, Name, lx.consume(i))
}

// peRef lexes '%'. Followed by a name it is a parameter-entity
// reference and lexes as Percent, Name, Semi; otherwise it is the bare
// percent marking a parameter-entity declaration.
func (lx *lexer) peRef() {
	pos := lx.pos()
	lx.advance(1)
	lx.emit(pos, Percent, "%")
	if lx.done() || !isNameStartChar(lx.peek(1)) {
		return
	}
	npos := lx.pos()
	n, ok := lx.name()
	if !ok {
		return
	}
	lx.emit(npos, Name, n)
	spos := lx.pos()
	if lx.consumeString(";") {
		lx.emit(spos, Semi, ";")
	}
}

// value lexes flattened entity-value text. Whitespace is significant;
// both kinds of reference are live.
func (lx *lexer) value() {
	for !lx.stopped && !lx.done() {
		c := lx.peek(1)
		switch {
		case c == '&':
			lx.reference()
		case c == '%' && lx.hasChars(2) && isNameStartChar(lx.peek(2)):
			lx.peRef()
		default:
			lx.valueText()
		}
	}
}

func (lx *lexer) valueText() {
	pos := lx.pos()
	i := 1
	for lx.hasChars(i + 1) {
		c := lx.peek(i + 1)
		if c == '&' {
			break
		}
		if c == '%' && lx.hasChars(i+2) && isNameStartChar(lx.peek(i+2)) {
			break
		}
		i++
	}
	lx.emit(pos, FreeText, lx.consume(i))
}
