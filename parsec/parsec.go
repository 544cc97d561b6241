// Package parsec is the backtracking engine underneath the grammar: a
// token stream that can have replacement streams spliced onto its
// front, a mark/reset discipline for ordered choice, and a small set
// of combinators over both. It knows nothing about XML; the grammar
// packages supply all meaning.
package parsec

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/lestrrat-go/xenon/token"
)

// Failure is a parse failure bound to the position it happened at. A
// fatal failure aborts the whole run; a recoverable one only fails the
// current alternative, and an enclosing Choice may try the next.
type Failure struct {
	Pos   token.Position
	Err   error
	Fatal bool
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s at %s", f.Err, &f.Pos)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// IsFatal reports whether err is a failure no enclosing choice may
// recover from.
func IsFatal(err error) bool {
	f, ok := err.(*Failure)
	return ok && f.Fatal
}

// Fatal upgrades a failure so that no enclosing choice recovers from
// it. Non-failure errors pass through unchanged.
func Fatal(err error) error {
	if f, ok := err.(*Failure); ok {
		f.Fatal = true
	}
	return err
}

// frame is one pending stream of input. The newest frame is consumed
// first; an exhausted frame is popped silently.
type frame struct {
	toks []token.Token
	off  int
}

// State threads through every rule of a run: the remaining input as a
// stack of pending token streams, and the deepest failure recorded so
// far. A State is single-use and not safe for concurrent use.
type State struct {
	frames    []frame
	end       token.Position
	consumed  int
	deepest   *Failure
	deepestAt int
}

func New(s *token.Stream) *State {
	return &State{
		frames: []frame{{toks: s.Tokens}},
		end:    s.End,
	}
}

// Peek returns the next token without consuming it. At the end of the
// input it returns an EOF token positioned just past the last token of
// the outermost stream.
func (st *State) Peek() token.Token {
	for n := len(st.frames); n > 0; n = len(st.frames) {
		f := &st.frames[n-1]
		if f.off < len(f.toks) {
			return f.toks[f.off]
		}
		st.frames = st.frames[:n-1]
	}
	return token.Token{Kind: token.EOF, Pos: st.end}
}

// Next consumes and returns the next token. EOF is never consumed.
func (st *State) Next() token.Token {
	t := st.Peek()
	if t.Kind != token.EOF {
		st.frames[len(st.frames)-1].off++
		st.consumed++
	}
	return t
}

// Pos reports the position of the next token.
func (st *State) Pos() token.Position {
	return st.Peek().Pos
}

// AtEOF reports whether all pending input is consumed.
func (st *State) AtEOF() bool {
	return st.Peek().Kind == token.EOF
}

// Mark captures the current input configuration, including any
// spliced streams and how far each has been consumed.
type Mark struct {
	frames   []frame
	consumed int
}

func (st *State) Mark() Mark {
	fr := make([]frame, len(st.frames))
	copy(fr, st.frames)
	return Mark{frames: fr, consumed: st.consumed}
}

// Reset restores the input to a previously captured configuration.
// The deepest-failure record deliberately survives, so diagnostics
// still point at the furthest the run ever got.
func (st *State) Reset(m Mark) {
	fr := make([]frame, len(m.frames))
	copy(fr, m.frames)
	st.frames = fr
	st.consumed = m.consumed
}

// Splice prepends tokens onto the remaining input; the next token
// consumed is toks[0]. Used for pushing back lookahead.
func (st *State) Splice(toks ...token.Token) {
	if len(toks) == 0 {
		return
	}
	st.frames = append(st.frames, frame{toks: toks})
}

// SpliceStream prepends a freshly lexed stream onto the remaining
// input. Used for injecting entity replacement text mid-parse; the
// stream is consumed in full before the outer input resumes.
func (st *State) SpliceStream(s *token.Stream) {
	if len(s.Tokens) == 0 {
		return
	}
	st.frames = append(st.frames, frame{toks: s.Tokens})
}

// Fail returns a recoverable failure of the current alternative at
// the current position.
func (st *State) Fail(err error) error {
	return st.fail(st.Pos(), err, false)
}

// FailAt is Fail at an explicit position.
func (st *State) FailAt(pos token.Position, err error) error {
	return st.fail(pos, err, false)
}

// Abort returns a fatal failure at the current position: the whole
// run stops and reports err, no matter what choices enclose it.
func (st *State) Abort(err error) error {
	return st.fail(st.Pos(), err, true)
}

// AbortAt is Abort at an explicit position.
func (st *State) AbortAt(pos token.Position, err error) error {
	return st.fail(pos, err, true)
}

func (st *State) fail(pos token.Position, err error, fatal bool) error {
	if f, ok := err.(*Failure); ok {
		if fatal {
			f.Fatal = true
		}
		return f
	}
	f := &Failure{Pos: pos, Err: err, Fatal: fatal}
	if st.deepest == nil || st.consumed >= st.deepestAt {
		st.deepest = f
		st.deepestAt = st.consumed
	}
	return f
}

// Best returns the failure worth reporting for a failed run: a fatal
// err as is, otherwise the deepest recoverable failure recorded, which
// is where the input actually stopped making sense.
func (st *State) Best(err error) error {
	if IsFatal(err) {
		return err
	}
	if st.deepest != nil {
		return st.deepest
	}
	return err
}

// Expect consumes the next token when it has the wanted kind, and
// fails without consuming otherwise. An Invalid token fails with the
// message the lexer stored in it.
func (st *State) Expect(k token.Kind) (token.Token, error) {
	t := st.Peek()
	switch t.Kind {
	case k:
		return st.Next(), nil
	case token.Invalid:
		return t, st.FailAt(t.Pos, errors.New(t.Value))
	default:
		return t, st.FailAt(t.Pos, errors.Errorf("%s required", k))
	}
}

// Unexpected records a recoverable failure at the current token,
// preferring the lexer's own message when the input could not even be
// tokenized.
func (st *State) Unexpected(err error) error {
	t := st.Peek()
	if t.Kind == token.Invalid {
		return st.FailAt(t.Pos, errors.New(t.Value))
	}
	return st.FailAt(t.Pos, err)
}
