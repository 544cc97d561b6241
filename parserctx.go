package xenon

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/lestrrat-go/xenon/internal/debug"
	"github.com/lestrrat-go/xenon/node"
	"github.com/lestrrat-go/xenon/parsec"
	"github.com/lestrrat-go/xenon/token"
)

// parserCtx carries everything a single parse run threads through the
// grammar: the token stream state, the entity tables accumulated so
// far, and the machinery for reading and re-lexing entity replacement
// text. Entity tables only ever grow; a declaration parsed out of an
// expansion stays visible even if the surrounding rule later
// backtracks.
type parserCtx struct {
	st    *parsec.State
	pents *node.SymTab[node.PEDef]
	gents *node.SymTab[node.EntityDef]

	// relex re-lexes replacement text at the point of expansion. It is
	// DTD-mode lexing except while re-scanning an entity value, where
	// whitespace is significant.
	relex func(label string, at *token.Position, text string) *token.Stream

	resolver Resolver
	external map[string]string // system ID -> normalized text

	nbent  int // expansions performed so far
	maxent int
}

func (ctx *parserCtx) init(s *token.Stream, options ...Option) {
	ctx.st = parsec.New(s)
	ctx.pents = node.NewSymTab[node.PEDef]()
	ctx.gents = node.NewSymTab[node.EntityDef]()
	ctx.relex = token.Relex
	ctx.external = make(map[string]string)
	ctx.maxent = DefaultExpansionLimit
	for _, option := range options {
		switch option.Ident() {
		case identResolver{}:
			ctx.resolver = option.Value().(Resolver)
		case identExpansionLimit{}:
			ctx.maxent = option.Value().(int)
		}
	}
}

func (ctx *parserCtx) tok(k token.Kind) error {
	_, err := ctx.st.Expect(k)
	return err
}

func (ctx *parserCtx) name() (string, error) {
	t, err := ctx.st.Expect(token.Name)
	if err != nil {
		return "", err
	}
	return t.Value, nil
}

// keyword consumes a name token with exactly the given value.
func (ctx *parserCtx) keyword(word string) error {
	t := ctx.st.Peek()
	if t.Kind == token.Name && t.Value == word {
		ctx.st.Next()
		return nil
	}
	return ctx.st.FailAt(t.Pos, errors.Errorf("'%s' required", word))
}

// orUnexpected keeps a fatal failure as is and otherwise reports repl
// at the current token, for rules that trade a low-level mismatch for
// a more useful message. A fatal failure already is the better
// message.
func (ctx *parserCtx) orUnexpected(err, repl error) error {
	if parsec.IsFatal(err) {
		return err
	}
	return ctx.st.Unexpected(repl)
}

// quotedText consumes a quoted literal that allows no references, such
// as a system literal or the version of an XML declaration.
func (ctx *parserCtx) quotedText() (string, error) {
	if err := ctx.tok(token.Quote); err != nil {
		return "", err
	}
	var s string
	if t := ctx.st.Peek(); t.Kind == token.FreeText {
		ctx.st.Next()
		s = t.Value
	}
	if err := ctx.tok(token.Quote); err != nil {
		return "", err
	}
	return s, nil
}

// peRef runs rule at a grammar position where a parameter-entity
// reference may stand in for the construct itself. The rule is tried
// as written first. If it fails without committing and the input is
// sitting on '%name;', the reference is expanded: the entity's
// replacement text is re-lexed under a synthetic context anchored at
// the reference, spliced in front of the remaining input, and the rule
// is retried against the combined stream. Chained references expand one
// by one until the rule succeeds or something other than a reference is
// in the way.
//
// A reference to an undefined parameter entity is fatal, as is running
// past the expansion limit.
func peRef[T any](ctx *parserCtx, rule func() (T, error)) (T, error) {
	var zero T
	m := ctx.st.Mark()
	v, err := rule()
	if err == nil {
		return v, nil
	}
	if parsec.IsFatal(err) {
		return zero, err
	}
	ctx.st.Reset(m)

	name, refPos, ok := ctx.peRefAhead(m)
	if !ok {
		return zero, err
	}
	if exerr := ctx.expand(refPos, name); exerr != nil {
		return zero, exerr
	}
	return peRef(ctx, rule)
}

// peWhitespace runs rule at a position where a parameter entity may
// only contribute whitespace, such as just before the '>' closing a
// markup declaration. References are consumed and checked rather than
// spliced; replacement text that is not entirely whitespace (after
// following chained references) is fatal.
func peWhitespace[T any](ctx *parserCtx, rule func() (T, error)) (T, error) {
	var zero T
	m := ctx.st.Mark()
	v, err := rule()
	if err == nil {
		return v, nil
	}
	if parsec.IsFatal(err) {
		return zero, err
	}
	ctx.st.Reset(m)

	name, refPos, ok := ctx.peRefAhead(m)
	if !ok {
		return zero, err
	}
	if wserr := ctx.checkWhitespace(refPos, name); wserr != nil {
		return zero, wserr
	}
	// the reference contributed nothing; go again after it
	return peWhitespace(ctx, rule)
}

// peRefAhead consumes '%name;' if that is what is next. On anything
// else it resets to m and reports false.
func (ctx *parserCtx) peRefAhead(m parsec.Mark) (string, token.Position, bool) {
	pt := ctx.st.Peek()
	if pt.Kind != token.Percent {
		return "", token.Position{}, false
	}
	ctx.st.Next()
	nt := ctx.st.Peek()
	if nt.Kind != token.Name {
		ctx.st.Reset(m)
		return "", token.Position{}, false
	}
	ctx.st.Next()
	if ctx.st.Peek().Kind != token.Semi {
		ctx.st.Reset(m)
		return "", token.Position{}, false
	}
	ctx.st.Next()
	return nt.Value, pt.Pos, true
}

// expand splices the replacement text of the named parameter entity in
// front of the remaining input.
func (ctx *parserCtx) expand(refPos token.Position, name string) error {
	if debug.Enabled {
		debug.Printf("expanding parameter entity %%%s; at %s", name, &refPos)
	}

	def, ok := ctx.pents.Get(name)
	if !ok {
		return ctx.st.AbortAt(refPos, ErrUndefinedParamEntity{Name: name})
	}
	if err := ctx.countExpansion(refPos); err != nil {
		return err
	}

	var label, text string
	switch def := def.(type) {
	case *node.InternalEntity:
		label = fmt.Sprintf("macro %%%s;", name)
		text = def.Value.Flatten()
	case *node.ExternalEntity:
		read, err := ctx.readExternal(refPos, name, def.ID)
		if err != nil {
			return err
		}
		label = fmt.Sprintf("file %s", def.ID.SystemID)
		text = read
	}
	ctx.st.SpliceStream(ctx.relex(label, &refPos, text))
	return nil
}

func (ctx *parserCtx) countExpansion(refPos token.Position) error {
	ctx.nbent++
	if ctx.nbent > ctx.maxent {
		return ctx.st.AbortAt(refPos, ErrTooManyEntityExpansions)
	}
	return nil
}

// readExternal fetches the text behind an external identifier, at most
// once per system ID for the whole run.
func (ctx *parserCtx) readExternal(refPos token.Position, name string, id node.ExternalID) (string, error) {
	if text, ok := ctx.external[id.SystemID]; ok {
		return text, nil
	}
	if ctx.resolver == nil {
		return "", ctx.st.AbortAt(refPos, ErrEntityResolution{
			Name:     name,
			SystemID: id.SystemID,
			Err:      errors.New("no resolver configured"),
		})
	}
	raw, err := ctx.resolver.ResolveEntity(id.SystemID, id.PublicID)
	if err != nil {
		return "", ctx.st.AbortAt(refPos, ErrEntityResolution{
			Name:     name,
			SystemID: id.SystemID,
			Err:      err,
		})
	}
	text := dropTextDecl(string(token.Normalize(raw)))
	ctx.external[id.SystemID] = text
	return text, nil
}

// dropTextDecl removes a leading text declaration. The declaration
// describes the resource's storage form and is not part of the
// replacement text, which may re-enter the grammar at positions where
// no such declaration could ever be parsed.
func dropTextDecl(text string) string {
	rest, ok := strings.CutPrefix(text, "<?xml")
	if !ok || rest == "" || !token.IsBlank(rune(rest[0])) {
		return text
	}
	if i := strings.Index(rest, "?>"); i >= 0 {
		return rest[i+2:]
	}
	return text
}

// checkWhitespace verifies that the named parameter entity expands to
// whitespace, following chained references transitively.
func (ctx *parserCtx) checkWhitespace(refPos token.Position, name string) error {
	for {
		def, ok := ctx.pents.Get(name)
		if !ok {
			return ctx.st.AbortAt(refPos, ErrUndefinedParamEntity{Name: name})
		}
		if err := ctx.countExpansion(refPos); err != nil {
			return err
		}

		var text string
		switch def := def.(type) {
		case *node.InternalEntity:
			text = def.Value.Flatten()
		case *node.ExternalEntity:
			read, err := ctx.readExternal(refPos, name, def.ID)
			if err != nil {
				return err
			}
			text = read
		}

		if isAllBlank(text) {
			return nil
		}
		next, ok := singlePERef(text)
		if !ok {
			return ctx.st.AbortAt(refPos, ErrNonWhitespaceParamEntity{Name: name})
		}
		name = next
	}
}

func isAllBlank(s string) bool {
	for _, r := range s {
		if !token.IsBlank(r) {
			return false
		}
	}
	return true
}

// singlePERef reports the name n when s is exactly '%n;' surrounded by
// nothing but whitespace.
func singlePERef(s string) (string, bool) {
	s = strings.TrimFunc(s, token.IsBlank)
	if len(s) < 3 || s[0] != '%' || s[len(s)-1] != ';' {
		return "", false
	}
	name := s[1 : len(s)-1]
	if strings.ContainsFunc(name, token.IsBlank) {
		return "", false
	}
	return name, true
}

// rescanValue is the second pass over a quoted entity value: the
// fragments collected between the quotes are flattened back to text and
// re-lexed as a value in its own right, with parameter-entity
// references live this time. Expansions nest through the same machinery
// as everywhere else, against the entity tables as they stand right
// now.
func (ctx *parserCtx) rescanValue(at token.Position, flat string) (node.EntityValue, error) {
	st, relex := ctx.st, ctx.relex
	ctx.st = parsec.New(token.RelexValue("entity value", &at, flat))
	ctx.relex = token.RelexValue
	defer func() {
		ctx.st, ctx.relex = st, relex
	}()

	frags, err := parsec.Many(ctx.st, func() (node.Fragment, error) {
		return peRef(ctx, ctx.parseValueFragment)
	})
	if err != nil {
		return nil, err
	}
	if !ctx.st.AtEOF() {
		return nil, parsec.Fatal(ctx.st.Best(ctx.st.Fail(ErrEntityValueNotFinished)))
	}
	return node.EntityValue(frags), nil
}
