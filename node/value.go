package node

import (
	"strconv"
	"strings"
)

// Fragment is one piece of a quoted value: literal text, or a
// reference kept as written. Text, EntityRef and CharRef implement it.
type Fragment interface {
	fragment()
}

func (Text) fragment()      {}
func (EntityRef) fragment() {}
func (CharRef) fragment()   {}

// AttValue is a parsed attribute value.
type AttValue []Fragment

// EntityValue is a parsed entity value, fragment by fragment as it
// appeared between the quotes of its declaration.
type EntityValue []Fragment

// Flatten reconstructs the literal text of the value, writing each
// reference back in a textual form ("&name;", "&#N;"). Re-lexing the
// result is how replacement text re-enters a parse, so the output must
// lex back to an equivalent stream.
func (v EntityValue) Flatten() string {
	return flatten(v)
}

// Flatten reconstructs the literal text of the attribute value.
func (v AttValue) Flatten() string {
	return flatten(v)
}

func flatten(frags []Fragment) string {
	var sb strings.Builder
	for _, f := range frags {
		switch f := f.(type) {
		case Text:
			sb.WriteString(f.Value)
		case EntityRef:
			sb.WriteByte('&')
			sb.WriteString(f.Name)
			sb.WriteByte(';')
		case CharRef:
			sb.WriteString("&#")
			sb.WriteString(strconv.Itoa(f.Value))
			sb.WriteByte(';')
		}
	}
	return sb.String()
}
