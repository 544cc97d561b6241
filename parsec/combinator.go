package parsec

import (
	"strings"

	"github.com/pkg/errors"
)

// Combinators are free generic functions rather than State methods
// because methods cannot carry their own type parameters. Every
// alternative passed in is a closure over the same State.

// Choice tries each alternative in order, resetting the input after a
// recoverable failure so the next alternative starts from the same
// point. A fatal failure propagates immediately. When nothing
// succeeds, the last alternative's failure is returned.
func Choice[T any](st *State, alts ...func() (T, error)) (T, error) {
	var zero T
	m := st.Mark()
	var err error
	for _, alt := range alts {
		var v T
		v, err = alt()
		if err == nil {
			return v, nil
		}
		if IsFatal(err) {
			return zero, err
		}
		st.Reset(m)
	}
	return zero, err
}

// Alt names one alternative of a multi-way choice.
type Alt[T any] struct {
	Name string
	Rule func() (T, error)
}

// OneOf is Choice over named alternatives. When all of them fail
// recoverably the combined failure lists every name that would have
// been acceptable at that position.
func OneOf[T any](st *State, alts ...Alt[T]) (T, error) {
	var zero T
	m := st.Mark()
	for _, alt := range alts {
		v, err := alt.Rule()
		if err == nil {
			return v, nil
		}
		if IsFatal(err) {
			return zero, err
		}
		st.Reset(m)
	}
	names := make([]string, len(alts))
	for i, alt := range alts {
		names[i] = alt.Name
	}
	return zero, st.Fail(errors.Errorf("expected one of: %s", strings.Join(names, ", ")))
}

// Many applies f until it fails recoverably, collecting the results.
// f must consume input when it succeeds; a successful empty match ends
// the loop instead of spinning on it.
func Many[T any](st *State, f func() (T, error)) ([]T, error) {
	var out []T
	for {
		m := st.Mark()
		before := st.consumed
		v, err := f()
		if err != nil {
			if IsFatal(err) {
				return nil, err
			}
			st.Reset(m)
			return out, nil
		}
		if st.consumed == before {
			return out, nil
		}
		out = append(out, v)
	}
}

// Many1 is Many requiring at least one success.
func Many1[T any](st *State, f func() (T, error)) ([]T, error) {
	first, err := f()
	if err != nil {
		return nil, err
	}
	rest, err := Many(st, f)
	if err != nil {
		return nil, err
	}
	return append([]T{first}, rest...), nil
}

// SepBy1 parses one or more items separated by sep. A trailing sep
// with no item after it is backtracked, not consumed.
func SepBy1[T any](st *State, item func() (T, error), sep func() error) ([]T, error) {
	first, err := item()
	if err != nil {
		return nil, err
	}
	out := []T{first}
	for {
		m := st.Mark()
		if err := sep(); err != nil {
			if IsFatal(err) {
				return nil, err
			}
			st.Reset(m)
			return out, nil
		}
		v, err := item()
		if err != nil {
			if IsFatal(err) {
				return nil, err
			}
			st.Reset(m)
			return out, nil
		}
		out = append(out, v)
	}
}

// Bracket parses open, body, close, and returns the body's value.
func Bracket[T any](st *State, open func() error, body func() (T, error), close func() error) (T, error) {
	var zero T
	if err := open(); err != nil {
		return zero, err
	}
	v, err := body()
	if err != nil {
		return zero, err
	}
	if err := close(); err != nil {
		return zero, err
	}
	return v, nil
}

// Option applies f; a recoverable failure resets the input and
// reports ok=false instead of an error.
func Option[T any](st *State, f func() (T, error)) (T, bool, error) {
	m := st.Mark()
	v, err := f()
	if err != nil {
		var zero T
		if IsFatal(err) {
			return zero, false, err
		}
		st.Reset(m)
		return zero, false, nil
	}
	return v, true, nil
}

// Context runs f and, when it fails, prefixes msg to the failure's
// message without changing how it failed or where the input stands.
func Context[T any](st *State, msg string, f func() (T, error)) (T, error) {
	v, err := f()
	if err != nil {
		if fl, ok := err.(*Failure); ok {
			fl.Err = errors.Wrap(fl.Err, msg)
		}
		return v, err
	}
	return v, nil
}

// Must upgrades a recoverable failure of f to a fatal one. Rules use
// it once they have consumed something that commits them, so that a
// malformed construct is reported where it is malformed instead of
// surfacing as a failure of some enclosing choice. The failure that
// gets upgraded is the deepest one recorded, not whichever alternative
// of f happened to fail last.
func Must[T any](st *State, f func() (T, error)) (T, error) {
	v, err := f()
	if err != nil {
		if fl, ok := st.Best(err).(*Failure); ok {
			fl.Fatal = true
			return v, fl
		}
	}
	return v, err
}
