package parsec

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/lestrrat-go/xenon/token"
)

func testStream(kinds ...token.Kind) *token.Stream {
	toks := make([]token.Token, len(kinds))
	for i, k := range kinds {
		toks[i] = token.Token{Kind: k, Pos: token.Position{Context: "test", Line: 1, Column: i + 1}}
	}
	return &token.Stream{
		Tokens: toks,
		End:    token.Position{Context: "test", Line: 1, Column: len(kinds) + 1},
	}
}

func TestEmptyStream(t *testing.T) {
	st := New(testStream())
	require.True(t, st.AtEOF(), "empty stream should be at EOF")
	require.Equal(t, token.EOF, st.Peek().Kind, "Peek should report EOF")
	require.Equal(t, token.EOF, st.Next().Kind, "Next should report EOF")
	require.True(t, st.AtEOF(), "EOF should not be consumable")
	require.Equal(t, 1, st.Pos().Column, "EOF position should be just past the input")
}

func TestChoiceBacktracks(t *testing.T) {
	st := New(testStream(token.Name))
	v, err := Choice(st,
		func() (string, error) {
			st.Next()
			return "", st.Fail(errors.New("first alternative bails"))
		},
		func() (string, error) {
			tok, err := st.Expect(token.Name)
			if err != nil {
				return "", err
			}
			_ = tok
			return "second", nil
		},
	)
	require.NoError(t, err, "second alternative should succeed")
	require.Equal(t, "second", v, "Choice should return the succeeding alternative's value")
	require.True(t, st.AtEOF(), "the name should be consumed exactly once")
}

func TestChoiceFatal(t *testing.T) {
	st := New(testStream(token.Name))
	ran := false
	_, err := Choice(st,
		func() (string, error) {
			return "", st.Abort(errors.New("committed"))
		},
		func() (string, error) {
			ran = true
			return "never", nil
		},
	)
	require.Error(t, err, "fatal failure should propagate")
	require.True(t, IsFatal(err), "failure should stay fatal")
	require.False(t, ran, "no alternative may run after a fatal failure")
}

func TestSpliceOrder(t *testing.T) {
	st := New(testStream(token.CloseTag))
	st.Splice(
		token.Token{Kind: token.OpenParen},
		token.Token{Kind: token.CloseParen},
	)
	require.Equal(t, token.OpenParen, st.Next().Kind, "spliced tokens come first")
	require.Equal(t, token.CloseParen, st.Next().Kind)
	require.Equal(t, token.CloseTag, st.Next().Kind, "original input resumes after the splice")
	require.True(t, st.AtEOF())
}

func TestResetDropsSplice(t *testing.T) {
	st := New(testStream(token.CloseTag))
	m := st.Mark()
	st.SpliceStream(testStream(token.OpenParen))
	require.Equal(t, token.OpenParen, st.Peek().Kind, "spliced stream should be pending")
	st.Reset(m)
	require.Equal(t, token.CloseTag, st.Peek().Kind, "reset should restore the pre-splice configuration")
}

func TestResetRestoresSpliceProgress(t *testing.T) {
	st := New(testStream(token.CloseTag))
	st.Splice(
		token.Token{Kind: token.OpenParen},
		token.Token{Kind: token.CloseParen},
	)
	st.Next() // OpenParen
	m := st.Mark()
	st.Next() // CloseParen
	st.Next() // CloseTag
	require.True(t, st.AtEOF())
	st.Reset(m)
	require.Equal(t, token.CloseParen, st.Next().Kind, "reset should restore mid-splice position")
	require.Equal(t, token.CloseTag, st.Next().Kind)
}

func TestBestReportsDeepest(t *testing.T) {
	st := New(testStream(token.OpenParen, token.Name, token.CloseTag))
	_, err := Choice(st,
		func() (string, error) {
			if _, err := st.Expect(token.OpenParen); err != nil {
				return "", err
			}
			if _, err := st.Expect(token.Name); err != nil {
				return "", err
			}
			_, err := st.Expect(token.CloseParen)
			return "", err // fails two tokens in
		},
		func() (string, error) {
			_, err := st.Expect(token.Name)
			return "", err // fails immediately
		},
	)
	require.Error(t, err, "both alternatives should fail")
	best := st.Best(err)
	var f *Failure
	require.ErrorAs(t, best, &f, "Best should yield a Failure")
	require.Equal(t, 3, f.Pos.Column, "deepest failure should be where the first alternative stopped")
}

func TestManyStopsWithoutConsuming(t *testing.T) {
	st := New(testStream(token.Name, token.Name, token.CloseTag))
	vals, err := Many(st, func() (token.Token, error) {
		return st.Expect(token.Name)
	})
	require.NoError(t, err, "Many should absorb the recoverable failure")
	require.Len(t, vals, 2, "Many should collect both names")
	require.Equal(t, token.CloseTag, st.Peek().Kind, "the failing token should not be consumed")
}

func TestSepBy1BacktracksTrailingSep(t *testing.T) {
	st := New(testStream(token.Name, token.Pipe, token.Name, token.Pipe, token.CloseParen))
	vals, err := SepBy1(st,
		func() (token.Token, error) { return st.Expect(token.Name) },
		func() error {
			_, err := st.Expect(token.Pipe)
			return err
		},
	)
	require.NoError(t, err)
	require.Len(t, vals, 2)
	require.Equal(t, token.Pipe, st.Peek().Kind, "the trailing separator should be left unconsumed")
}

func TestExpectInvalidToken(t *testing.T) {
	s := &token.Stream{
		Tokens: []token.Token{{
			Kind:  token.Invalid,
			Value: "'--' not allowed in comment",
			Pos:   token.Position{Context: "test", Line: 3, Column: 7},
		}},
		End: token.Position{Context: "test", Line: 3, Column: 7},
	}
	st := New(s)
	_, err := st.Expect(token.Name)
	require.Error(t, err)
	require.Contains(t, err.Error(), "'--' not allowed in comment", "the lexer's message should surface as is")
	require.Contains(t, err.Error(), "line 3, column 7", "the failure should carry the token position")
}

func TestContextPrefixesMessage(t *testing.T) {
	st := New(testStream(token.CloseTag))
	_, err := Context(st, "in element declaration", func() (string, error) {
		_, err := st.Expect(token.Name)
		return "", err
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "in element declaration: ", "context should prefix the message")
}

func TestMustUpgradesToFatal(t *testing.T) {
	st := New(testStream(token.CloseTag))
	_, err := Must(st, func() (string, error) {
		_, err := st.Expect(token.Name)
		return "", err
	})
	require.Error(t, err)
	require.True(t, IsFatal(err), "Must should make the failure fatal")
}

func TestMustReportsDeepest(t *testing.T) {
	missingClose := errors.New("')' required here")
	st := New(testStream(token.OpenParen, token.Name, token.CloseTag))
	_, err := Must(st, func() (string, error) {
		return Choice(st,
			func() (string, error) {
				if _, err := st.Expect(token.OpenParen); err != nil {
					return "", err
				}
				if _, err := st.Expect(token.Name); err != nil {
					return "", err
				}
				return "", st.Fail(missingClose) // fails two tokens in
			},
			func() (string, error) {
				_, err := st.Expect(token.Name)
				return "", err // fails immediately, and last
			},
		)
	})
	require.Error(t, err)
	require.True(t, IsFatal(err), "Must should make the failure fatal")
	require.True(t, errors.Is(err, missingClose), "the deepest failure should surface, not the last alternative's")
	var f *Failure
	require.ErrorAs(t, err, &f)
	require.Equal(t, 3, f.Pos.Column, "the failure should sit where the first alternative stopped")
}

func TestOneOfListsAlternatives(t *testing.T) {
	st := New(testStream(token.CloseTag))
	_, err := OneOf(st,
		Alt[string]{Name: "element declaration", Rule: func() (string, error) {
			_, err := st.Expect(token.ELEMENT)
			return "", err
		}},
		Alt[string]{Name: "attribute-list declaration", Rule: func() (string, error) {
			_, err := st.Expect(token.ATTLIST)
			return "", err
		}},
	)
	require.Error(t, err, "no alternative should match '>'")
	require.Contains(t, err.Error(), "expected one of: element declaration, attribute-list declaration",
		"the combined failure should list every alternative by name")
	require.Equal(t, token.CloseTag, st.Peek().Kind, "nothing should be consumed")
}

func TestOption(t *testing.T) {
	st := New(testStream(token.Name, token.CloseTag))

	v, ok, err := Option(st, func() (token.Token, error) {
		return st.Expect(token.Name)
	})
	require.NoError(t, err)
	require.True(t, ok, "the name should match")
	require.Equal(t, token.Name, v.Kind)

	_, ok, err = Option(st, func() (token.Token, error) {
		return st.Expect(token.Name)
	})
	require.NoError(t, err, "a recoverable failure should be absorbed")
	require.False(t, ok, "'>' is not a name")
	require.Equal(t, token.CloseTag, st.Peek().Kind, "the input should be untouched")
}

func TestOptionFatal(t *testing.T) {
	st := New(testStream(token.CloseTag))
	_, _, err := Option(st, func() (string, error) {
		return "", st.Abort(errors.New("no way back"))
	})
	require.Error(t, err, "Option must not absorb a fatal failure")
	require.True(t, IsFatal(err))
}

func TestBracket(t *testing.T) {
	st := New(testStream(token.OpenParen, token.Name, token.CloseParen))
	v, err := Bracket(st,
		func() error {
			_, err := st.Expect(token.OpenParen)
			return err
		},
		func() (token.Token, error) {
			return st.Expect(token.Name)
		},
		func() error {
			_, err := st.Expect(token.CloseParen)
			return err
		},
	)
	require.NoError(t, err)
	require.Equal(t, token.Name, v.Kind, "Bracket should return the body's value")
	require.True(t, st.AtEOF())
}

func TestMany1RequiresOne(t *testing.T) {
	st := New(testStream(token.CloseTag))
	_, err := Many1(st, func() (token.Token, error) {
		return st.Expect(token.Name)
	})
	require.Error(t, err, "Many1 should fail when the first application fails")
}

func TestFailureUnwrap(t *testing.T) {
	sentinel := errors.New("name required here")
	st := New(testStream(token.CloseTag))
	err := st.Fail(sentinel)
	require.True(t, errors.Is(err, sentinel), "a failure should unwrap to the error it was built from")

	wrapped := Fatal(st.Fail(errors.Wrap(sentinel, "while parsing")))
	require.True(t, errors.Is(wrapped, sentinel), "wrapping and upgrading should keep the chain intact")
}
