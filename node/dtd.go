package node

// DocTypeDecl is a parsed document type declaration: the declared root
// name, the optional external subset reference, and the markup
// declarations. A DTD parsed from a standalone external subset has an
// empty Name and carries the subset's declarations directly, with
// conditional sections already resolved.
type DocTypeDecl struct {
	Name       string
	ExternalID *ExternalID
	Decls      []MarkupDecl
}

// MarkupDecl is one declaration inside a DTD. Implemented by
// *ElementDecl, *AttListDecl, *GEDecl, *PEDecl, *NotationDecl, and by
// Comment and PI for the misc items a subset may carry.
type MarkupDecl interface {
	markupDecl()
}

// ExternalID locates an external entity or subset by system literal,
// public identifier, or both.
type ExternalID struct {
	PublicID string
	SystemID string
}

// ElementDecl declares an element type and its content specification.
type ElementDecl struct {
	Name    string
	Content ContentSpec
}

// ContentSpec is the right-hand side of an ELEMENT declaration.
// Implemented by EmptyContent, AnyContent, *MixedContent and
// *ChildrenContent.
type ContentSpec interface {
	contentSpec()
}

// EmptyContent is the EMPTY keyword.
type EmptyContent struct{}

// AnyContent is the ANY keyword.
type AnyContent struct{}

// MixedContent is (#PCDATA | name | ...)*; Names is empty for a bare
// (#PCDATA).
type MixedContent struct {
	Names []string
}

// ChildrenContent is an element content model.
type ChildrenContent struct {
	CP CP
}

// Occur is a content-particle occurrence marker.
type Occur int

const (
	OccurOnce Occur = iota
	OccurOpt        // ?
	OccurMult       // *
	OccurPlus       // +
)

// CP is a content particle together with its occurrence marker.
type CP struct {
	Particle Particle
	Occur    Occur
}

// Particle is the body of a content particle. Implemented by
// NameParticle, *ChoiceParticle and *SeqParticle.
type Particle interface {
	particle()
}

// NameParticle is a child element name.
type NameParticle struct {
	Name string
}

// ChoiceParticle is (a | b | ...).
type ChoiceParticle struct {
	Alternatives []CP
}

// SeqParticle is (a , b , ...).
type SeqParticle struct {
	Items []CP
}

// AttributeType represents the declared type of an attribute.
type AttributeType int

const (
	AttrInvalid AttributeType = iota
	AttrCDATA
	AttrID
	AttrIDRef
	AttrIDRefs
	AttrEntity
	AttrEntities
	AttrNMToken
	AttrNMTokens
	AttrEnumeration
	AttrNotation
)

// AttType is an attribute's declared type, with the value list when
// the type is an enumeration or a notation list.
type AttType struct {
	Type AttributeType
	Enum []string
}

// AttributeDefault represents the default declaration of an attribute.
// AttrDefaultNone means a plain default value without a keyword.
type AttributeDefault int

const (
	AttrDefaultNone AttributeDefault = iota
	AttrDefaultRequired
	AttrDefaultImplied
	AttrDefaultFixed
)

// DefaultDecl is an attribute's default declaration. Value is set for
// AttrDefaultNone and AttrDefaultFixed.
type DefaultDecl struct {
	Type  AttributeDefault
	Value AttValue
}

// AttDef is one attribute definition within an ATTLIST declaration.
type AttDef struct {
	Name    string
	Type    AttType
	Default DefaultDecl
}

// AttListDecl declares attributes for an element type.
type AttListDecl struct {
	Element string
	Defs    []AttDef
}

// GEDecl declares a general entity.
type GEDecl struct {
	Name string
	Def  EntityDef
}

// PEDecl declares a parameter entity.
type PEDecl struct {
	Name string
	Def  PEDef
}

// EntityDef is a general entity's definition: *InternalEntity or
// *ExternalEntity.
type EntityDef interface {
	entityDef()
}

// PEDef is a parameter entity's definition: *InternalEntity or
// *ExternalEntity (never with NData).
type PEDef interface {
	peDef()
}

// InternalEntity is an entity defined by an inline value.
type InternalEntity struct {
	Value EntityValue
}

// ExternalEntity is an entity defined by an external identifier.
// NData names the notation of an unparsed entity and is only ever set
// on general entities.
type ExternalEntity struct {
	ID    ExternalID
	NData string
}

// NotationDecl declares a notation. Either identifier may appear on
// its own; a public identifier alone is permitted here, unlike in an
// entity declaration.
type NotationDecl struct {
	Name string
	ID   ExternalID
}

func (*ElementDecl) markupDecl()  {}
func (*AttListDecl) markupDecl()  {}
func (*GEDecl) markupDecl()       {}
func (*PEDecl) markupDecl()       {}
func (*NotationDecl) markupDecl() {}
func (Comment) markupDecl()       {}
func (PI) markupDecl()            {}

func (EmptyContent) contentSpec()     {}
func (AnyContent) contentSpec()       {}
func (*MixedContent) contentSpec()    {}
func (*ChildrenContent) contentSpec() {}

func (NameParticle) particle()    {}
func (*ChoiceParticle) particle() {}
func (*SeqParticle) particle()    {}

func (*InternalEntity) entityDef() {}
func (*ExternalEntity) entityDef() {}
func (*InternalEntity) peDef()     {}
func (*ExternalEntity) peDef()     {}
