package node

// Content is a single node of element content.
type Content interface {
	content()
}

// Element is a parsed element. Attributes keep source order, and
// duplicate attribute names are kept as written; rejecting them is a
// validation concern, not a parsing one.
type Element struct {
	Name       string
	Attributes []Attribute
	Content    []Content
}

// Attribute is a single name="value" pair.
type Attribute struct {
	Name  string
	Value AttValue
}

// Text is literal character data.
type Text struct {
	Value string
}

// CDATA is the contents of a CDATA section, unparsed.
type CDATA struct {
	Value string
}

// Comment is the text between "<!--" and "-->".
type Comment struct {
	Value string
}

// PI is a processing instruction.
type PI struct {
	Target string
	Data   string
}

// EntityRef is a general-entity reference "&name;", recorded with the
// name exactly as written. This parser never substitutes general
// entities; "&amp;" stays a reference to "amp".
type EntityRef struct {
	Name string
}

// CharRef is a numeric character reference. Value holds the code
// point whether the source wrote it in decimal or hex form.
type CharRef struct {
	Value int
}

func (*Element) content() {}
func (Text) content()     {}
func (CDATA) content()    {}
func (Comment) content()  {}
func (PI) content()       {}

func (EntityRef) content() {}
func (CharRef) content()   {}

func (Comment) misc() {}
func (PI) misc()      {}
