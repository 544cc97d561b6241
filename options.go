package xenon

import (
	"io/fs"

	"github.com/lestrrat-go/option"
)

type Option = option.Interface

type identExpansionLimit struct{}
type identResolver struct{}

// DefaultExpansionLimit is the number of entity expansions a single
// parse may perform before giving up. Recursive parameter entities are
// caught by this limit rather than by cycle detection.
const DefaultExpansionLimit = 10000

// WithResolver specifies how external parameter entities are read when
// the DTD references them. Without a resolver any attempt to expand an
// external entity fails.
func WithResolver(v Resolver) Option {
	return option.New(identResolver{}, v)
}

// WithFS reads external entities from fsys, treating system identifiers
// as slash-separated paths within it.
func WithFS(fsys fs.FS) Option {
	return option.New(identResolver{}, FSResolver{FS: fsys})
}

// WithExpansionLimit overrides DefaultExpansionLimit.
func WithExpansionLimit(v int) Option {
	return option.New(identExpansionLimit{}, v)
}
