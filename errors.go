package xenon

import (
	"errors"
	"fmt"

	"github.com/lestrrat-go/xenon/token"
)

var (
	ErrAttrTypeRequired           = errors.New("attribute type required")
	ErrConditionalKeywordRequired = errors.New("'INCLUDE' or 'IGNORE' required")
	ErrConditionalNotFinished     = errors.New("conditional section not finished")
	ErrConditionalNotStarted      = errors.New("conditional section must start with a '['")
	ErrContentRequired            = errors.New("content required")
	ErrDTDNotFound                = errors.New("no DTD found")
	ErrDefaultDeclRequired        = errors.New("'#REQUIRED', '#IMPLIED' or '#FIXED' required")
	ErrDocTypeNameRequired        = errors.New("doctype name required")
	ErrDocTypeNotFinished         = errors.New("doctype not finished")
	ErrDocumentEnd                = errors.New("extra content at document end")
	ErrEntityValueNotFinished     = errors.New("entity value not finished")
	ErrEntityValueRequired        = errors.New("entity value required")
	ErrExternalIDRequired         = errors.New("'SYSTEM' or 'PUBLIC' required")
	ErrGtRequired                 = errors.New("'>' was required here")
	ErrMarkupDeclRequired         = errors.New("markup declaration required")
	ErrNameRequired               = errors.New("name is required")
	ErrNotationIDRequired         = errors.New("external or public ID required in NOTATION declaration")
	ErrPCDATARequired             = errors.New("'#PCDATA' required")
	ErrStandaloneLiteral          = errors.New("standalone accepts only 'yes' or 'no'")
	ErrStarRequired               = errors.New("'*' is required")
	ErrStartTagRequired           = errors.New("start tag expected, '<' not found")
	ErrTooManyEntityExpansions    = errors.New("too many entity expansions")
	ErrVersionRequired            = errors.New("version is required in an XML declaration")
)

// ErrParseError decorates the failure that made the most progress with
// the position it happened at. Positions inside expanded entity text
// carry the whole chain of references that led there.
type ErrParseError struct {
	Err error
	Pos token.Position
}

func (e ErrParseError) Error() string {
	return fmt.Sprintf("%s at %s", e.Err, &e.Pos)
}

func (e ErrParseError) Unwrap() error {
	return e.Err
}

// ErrTagMismatch is an end tag that does not pair with the open start
// tag.
type ErrTagMismatch struct {
	Start string
	End   string
}

func (e ErrTagMismatch) Error() string {
	return fmt.Sprintf("end tag '%s' does not match start tag '%s'", e.End, e.Start)
}

// ErrUndefinedParamEntity is a parameter-entity reference to a name
// with no visible declaration. Declarations only count once they appear
// before the point of use.
type ErrUndefinedParamEntity struct {
	Name string
}

func (e ErrUndefinedParamEntity) Error() string {
	return fmt.Sprintf("parameter entity '%%%s;' used but not defined", e.Name)
}

// ErrNonWhitespaceParamEntity is a parameter entity used in a position
// that only tolerates whitespace, with replacement text that is not
// whitespace.
type ErrNonWhitespaceParamEntity struct {
	Name string
}

func (e ErrNonWhitespaceParamEntity) Error() string {
	return fmt.Sprintf("parameter entity '%%%s;' must expand to whitespace here", e.Name)
}

// ErrEntityResolution is a failed read of an external entity. The parse
// stops, but the caller can still pick the failure apart: Name is the
// entity that referenced the resource and Err the resolver's own error.
type ErrEntityResolution struct {
	Name     string
	SystemID string
	Err      error
}

func (e ErrEntityResolution) Error() string {
	return fmt.Sprintf("failed to resolve entity '%%%s;' (system ID %q): %s", e.Name, e.SystemID, e.Err)
}

func (e ErrEntityResolution) Unwrap() error {
	return e.Err
}
