// Package token turns XML document and DTD text into position-tagged
// token streams. It also provides the re-entry points used to lex
// parameter-entity replacement text and external subsets under a
// synthetic context, so that diagnostics can point into expanded text
// while still naming the reference that introduced it.
package token

import "fmt"

// Kind classifies a lexed token.
type Kind int

const (
	Invalid Kind = iota // lexical error; Value carries the message
	EOF                 // synthesized at end of stream, never stored
	Name
	FreeText
	Quote        // '"' or "'"
	OpenTag      // <
	CloseTag     // >
	OpenEndTag   // </
	SelfCloseTag // />
	OpenComment  // <!--
	CloseComment // -->
	OpenPI       // <?
	ClosePI      // ?>
	OpenSection  // <![
	CloseSection // ]]>
	OpenBracket  // [
	CloseBracket // ]
	OpenParen    // (
	CloseParen   // )
	Equal        // =
	Query        // ?
	Star         // *
	Plus         // +
	Comma        // ,
	Pipe         // |
	Amp          // &
	Percent      // %
	Semi         // ;
	Hash         // #
	DOCTYPE      // <!DOCTYPE
	ELEMENT      // <!ELEMENT
	ATTLIST      // <!ATTLIST
	ENTITY       // <!ENTITY
	NOTATION     // <!NOTATION
	CDATA        // CDATA keyword after <![
)

// MaxNameLength is the maximum number of characters allowed in a
// single XML name.
const MaxNameLength = 50000

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid input"
	case EOF:
		return "end of input"
	case Name:
		return "name"
	case FreeText:
		return "text"
	case Quote:
		return "quote"
	case OpenTag:
		return "'<'"
	case CloseTag:
		return "'>'"
	case OpenEndTag:
		return "'</'"
	case SelfCloseTag:
		return "'/>'"
	case OpenComment:
		return "'<!--'"
	case CloseComment:
		return "'-->'"
	case OpenPI:
		return "'<?'"
	case ClosePI:
		return "'?>'"
	case OpenSection:
		return "'<!['"
	case CloseSection:
		return "']]>'"
	case OpenBracket:
		return "'['"
	case CloseBracket:
		return "']'"
	case OpenParen:
		return "'('"
	case CloseParen:
		return "')'"
	case Equal:
		return "'='"
	case Query:
		return "'?'"
	case Star:
		return "'*'"
	case Plus:
		return "'+'"
	case Comma:
		return "','"
	case Pipe:
		return "'|'"
	case Amp:
		return "'&'"
	case Percent:
		return "'%'"
	case Semi:
		return "';'"
	case Hash:
		return "'#'"
	case DOCTYPE:
		return "'<!DOCTYPE'"
	case ELEMENT:
		return "'<!ELEMENT'"
	case ATTLIST:
		return "'<!ATTLIST'"
	case ENTITY:
		return "'<!ENTITY'"
	case NOTATION:
		return "'<!NOTATION'"
	case CDATA:
		return "'CDATA'"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Position identifies where a token was lexed from. Context is either
// the diagnostic label the caller supplied for the whole input, or a
// synthetic label such as "macro %name;" or "file f" for text that
// entered the stream through entity expansion. For synthetic contexts
// At points at the reference that triggered the expansion, forming a
// chain back to the original source.
type Position struct {
	Context string
	Line    int
	Column  int
	At      *Position
}

func (p *Position) String() string {
	s := fmt.Sprintf("line %d, column %d in %s", p.Line, p.Column, p.Context)
	if p.At != nil {
		s = s + ", referenced at " + p.At.String()
	}
	return s
}

// Token is a single lexed token.
type Token struct {
	Kind  Kind
	Value string
	Pos   Position
}

func (t Token) String() string {
	switch t.Kind {
	case Name, FreeText, Invalid:
		return fmt.Sprintf("%s %q", t.Kind, t.Value)
	case Quote:
		return fmt.Sprintf("quote %s", t.Value)
	default:
		return t.Kind.String()
	}
}

// Stream is a fully lexed token sequence. End is the position just past
// the last token, used to report errors at end of input.
type Stream struct {
	Tokens []Token
	End    Position
}

// IsBlank reports whether r is XML whitespace.
func IsBlank(r rune) bool {
	return r == 0x20 || (0x9 <= r && r <= 0xa) || r == 0xd
}
