// Package node declares the value types a parse produces: the document
// tree, the DTD declaration types, and the entity definitions held by
// the symbol tables. The parser only populates these; nothing in this
// package knows how to parse.
package node

// Standalone is the value of the standalone pseudo-attribute of an XML
// declaration.
type Standalone int

const (
	// StandaloneImplicitNo means the declaration did not carry the
	// pseudo-attribute.
	StandaloneImplicitNo Standalone = iota
	StandaloneExplicitYes
	StandaloneExplicitNo
)

// XMLDecl is the document's XML declaration. The same shape carries a
// text declaration at the head of an external entity, where Version
// may be empty and Standalone never appears.
type XMLDecl struct {
	Version    string
	Encoding   string
	Standalone Standalone
}

// Misc is what may appear between declarations outside the root
// element: a comment or a processing instruction.
type Misc interface {
	misc()
}

// Prolog is everything before the root element.
type Prolog struct {
	XMLDecl *XMLDecl
	Before  []Misc // between the XML declaration and the DOCTYPE
	DTD     *DocTypeDecl
	After   []Misc // between the DOCTYPE and the root element
}

// Document is the result of a full document parse. Entities is the
// final state of the general-entity table accumulated while parsing;
// references in content are recorded against it but never substituted.
type Document struct {
	Prolog   Prolog
	Entities *SymTab[EntityDef]
	Root     *Element
	Epilog   []Misc
}
