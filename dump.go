package xenon

import (
	"io"
	"strconv"
	"strings"

	"github.com/lestrrat-go/xenon/node"
)

// Dumper serializes parsed documents and DTDs back to XML text.
// References are written back in reference form, so dumping an
// unmodified parse result produces a document that parses to an
// equivalent tree.
type Dumper struct{}

// DumpDoc writes doc as an XML document.
func (d *Dumper) DumpDoc(out io.Writer, doc *node.Document) error {
	w := &dumpWriter{out: out}
	if decl := doc.Prolog.XMLDecl; decl != nil {
		w.xmlDecl(decl)
	}
	for _, m := range doc.Prolog.Before {
		w.misc(m)
	}
	if dtd := doc.Prolog.DTD; dtd != nil {
		w.docTypeDecl(dtd)
	}
	for _, m := range doc.Prolog.After {
		w.misc(m)
	}
	if doc.Root != nil {
		w.element(doc.Root)
		w.str("\n")
	}
	for _, m := range doc.Epilog {
		w.misc(m)
	}
	return w.err
}

// DumpDTD writes dtd back as markup. A DTD extracted from a document
// keeps its DOCTYPE form; one parsed from a standalone subset has no
// name to declare, so its declarations are written bare, one per line.
func (d *Dumper) DumpDTD(out io.Writer, dtd *node.DocTypeDecl) error {
	w := &dumpWriter{out: out}
	if dtd.Name != "" {
		w.docTypeDecl(dtd)
		return w.err
	}
	for _, decl := range dtd.Decls {
		w.markupDecl(decl)
		w.str("\n")
	}
	return w.err
}

// DumpEntity writes the declaration form of a single general entity.
func (d *Dumper) DumpEntity(out io.Writer, name string, def node.EntityDef) error {
	w := &dumpWriter{out: out}
	w.geDecl(&node.GEDecl{Name: name, Def: def})
	w.str("\n")
	return w.err
}

// dumpWriter keeps the first write error and turns every write after
// it into a no-op, so the serializing methods can skip error plumbing.
type dumpWriter struct {
	out io.Writer
	err error
}

func (w *dumpWriter) str(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.out, s)
}

func (w *dumpWriter) xmlDecl(decl *node.XMLDecl) {
	w.str(`<?xml version="`)
	w.str(decl.Version)
	w.str(`"`)
	if decl.Encoding != "" {
		w.str(` encoding="`)
		w.str(decl.Encoding)
		w.str(`"`)
	}
	switch decl.Standalone {
	case node.StandaloneExplicitYes:
		w.str(` standalone="yes"`)
	case node.StandaloneExplicitNo:
		w.str(` standalone="no"`)
	}
	w.str("?>\n")
}

func (w *dumpWriter) misc(m node.Misc) {
	switch m := m.(type) {
	case node.Comment:
		w.comment(m)
	case node.PI:
		w.pi(m)
	}
	w.str("\n")
}

func (w *dumpWriter) element(el *node.Element) {
	w.str("<")
	w.str(el.Name)
	for _, attr := range el.Attributes {
		w.str(" ")
		w.str(attr.Name)
		w.str("=")
		w.quoted(attr.Value.Flatten())
	}
	if len(el.Content) == 0 {
		w.str("/>")
		return
	}
	w.str(">")
	for _, c := range el.Content {
		w.content(c)
	}
	w.str("</")
	w.str(el.Name)
	w.str(">")
}

func (w *dumpWriter) content(c node.Content) {
	switch c := c.(type) {
	case *node.Element:
		w.element(c)
	case node.Text:
		w.str(c.Value)
	case node.CDATA:
		w.str("<![CDATA[")
		w.str(c.Value)
		w.str("]]>")
	case node.Comment:
		w.comment(c)
	case node.PI:
		w.pi(c)
	case node.EntityRef:
		w.str("&")
		w.str(c.Name)
		w.str(";")
	case node.CharRef:
		w.str("&#")
		w.str(strconv.Itoa(c.Value))
		w.str(";")
	}
}

func (w *dumpWriter) comment(c node.Comment) {
	w.str("<!--")
	w.str(c.Value)
	w.str("-->")
}

func (w *dumpWriter) pi(pi node.PI) {
	w.str("<?")
	w.str(pi.Target)
	if pi.Data != "" {
		w.str(" ")
		w.str(pi.Data)
	}
	w.str("?>")
}

func (w *dumpWriter) docTypeDecl(dtd *node.DocTypeDecl) {
	w.str("<!DOCTYPE ")
	w.str(dtd.Name)
	if dtd.ExternalID != nil {
		w.str(" ")
		w.externalID(dtd.ExternalID)
	}
	if len(dtd.Decls) > 0 {
		w.str(" [\n")
		for _, decl := range dtd.Decls {
			w.markupDecl(decl)
			w.str("\n")
		}
		w.str("]")
	}
	w.str(">\n")
}

func (w *dumpWriter) markupDecl(decl node.MarkupDecl) {
	switch decl := decl.(type) {
	case *node.ElementDecl:
		w.elementDecl(decl)
	case *node.AttListDecl:
		w.attListDecl(decl)
	case *node.GEDecl:
		w.geDecl(decl)
	case *node.PEDecl:
		w.peDecl(decl)
	case *node.NotationDecl:
		w.notationDecl(decl)
	case node.Comment:
		w.comment(decl)
	case node.PI:
		w.pi(decl)
	}
}

func (w *dumpWriter) elementDecl(decl *node.ElementDecl) {
	w.str("<!ELEMENT ")
	w.str(decl.Name)
	w.str(" ")
	w.contentSpec(decl.Content)
	w.str(">")
}

func (w *dumpWriter) contentSpec(spec node.ContentSpec) {
	switch spec := spec.(type) {
	case node.EmptyContent:
		w.str("EMPTY")
	case node.AnyContent:
		w.str("ANY")
	case *node.MixedContent:
		w.str("(#PCDATA")
		for _, name := range spec.Names {
			w.str("|")
			w.str(name)
		}
		w.str(")")
		if len(spec.Names) > 0 {
			w.str("*")
		}
	case *node.ChildrenContent:
		w.cp(spec.CP)
	}
}

func (w *dumpWriter) cp(cp node.CP) {
	switch p := cp.Particle.(type) {
	case node.NameParticle:
		w.str(p.Name)
	case *node.ChoiceParticle:
		w.str("(")
		for i, alt := range p.Alternatives {
			if i > 0 {
				w.str("|")
			}
			w.cp(alt)
		}
		w.str(")")
	case *node.SeqParticle:
		w.str("(")
		for i, item := range p.Items {
			if i > 0 {
				w.str(",")
			}
			w.cp(item)
		}
		w.str(")")
	}
	switch cp.Occur {
	case node.OccurOpt:
		w.str("?")
	case node.OccurMult:
		w.str("*")
	case node.OccurPlus:
		w.str("+")
	}
}

func (w *dumpWriter) attListDecl(decl *node.AttListDecl) {
	w.str("<!ATTLIST ")
	w.str(decl.Element)
	for _, def := range decl.Defs {
		w.str(" ")
		w.str(def.Name)
		w.str(" ")
		w.attType(def.Type)
		w.str(" ")
		w.defaultDecl(def.Default)
	}
	w.str(">")
}

func (w *dumpWriter) attType(at node.AttType) {
	switch at.Type {
	case node.AttrCDATA:
		w.str("CDATA")
	case node.AttrID:
		w.str("ID")
	case node.AttrIDRef:
		w.str("IDREF")
	case node.AttrIDRefs:
		w.str("IDREFS")
	case node.AttrEntity:
		w.str("ENTITY")
	case node.AttrEntities:
		w.str("ENTITIES")
	case node.AttrNMToken:
		w.str("NMTOKEN")
	case node.AttrNMTokens:
		w.str("NMTOKENS")
	case node.AttrNotation:
		w.str("NOTATION ")
		w.enum(at.Enum)
	case node.AttrEnumeration:
		w.enum(at.Enum)
	}
}

func (w *dumpWriter) enum(values []string) {
	w.str("(")
	for i, v := range values {
		if i > 0 {
			w.str("|")
		}
		w.str(v)
	}
	w.str(")")
}

func (w *dumpWriter) defaultDecl(dd node.DefaultDecl) {
	switch dd.Type {
	case node.AttrDefaultRequired:
		w.str("#REQUIRED")
	case node.AttrDefaultImplied:
		w.str("#IMPLIED")
	case node.AttrDefaultFixed:
		w.str("#FIXED ")
		w.quoted(dd.Value.Flatten())
	case node.AttrDefaultNone:
		w.quoted(dd.Value.Flatten())
	}
}

func (w *dumpWriter) geDecl(decl *node.GEDecl) {
	w.str("<!ENTITY ")
	w.str(decl.Name)
	w.str(" ")
	w.entityDef(decl.Def)
	w.str(">")
}

func (w *dumpWriter) peDecl(decl *node.PEDecl) {
	w.str("<!ENTITY % ")
	w.str(decl.Name)
	w.str(" ")
	switch def := decl.Def.(type) {
	case *node.InternalEntity:
		w.quoted(def.Value.Flatten())
	case *node.ExternalEntity:
		w.externalID(&def.ID)
	}
	w.str(">")
}

func (w *dumpWriter) entityDef(def node.EntityDef) {
	switch def := def.(type) {
	case *node.InternalEntity:
		w.quoted(def.Value.Flatten())
	case *node.ExternalEntity:
		w.externalID(&def.ID)
		if def.NData != "" {
			w.str(" NDATA ")
			w.str(def.NData)
		}
	}
}

func (w *dumpWriter) notationDecl(decl *node.NotationDecl) {
	w.str("<!NOTATION ")
	w.str(decl.Name)
	w.str(" ")
	w.externalID(&decl.ID)
	w.str(">")
}

func (w *dumpWriter) externalID(id *node.ExternalID) {
	if id.PublicID != "" {
		w.str("PUBLIC ")
		w.quoted(id.PublicID)
		if id.SystemID != "" {
			w.str(" ")
			w.quoted(id.SystemID)
		}
		return
	}
	w.str("SYSTEM ")
	w.quoted(id.SystemID)
}

// A parsed literal cannot contain its own delimiter, so whichever
// quote the text lacks is safe to reuse.
func (w *dumpWriter) quoted(s string) {
	q := `"`
	if strings.Contains(s, `"`) {
		q = `'`
	}
	w.str(q)
	w.str(s)
	w.str(q)
}
