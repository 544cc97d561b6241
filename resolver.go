package xenon

import "io/fs"

// Resolver reads the external resources a DTD references. systemID is
// the system literal exactly as written in the declaration; publicID is
// the public identifier when the declaration carried one, else "".
//
// A parse reads each system identifier at most once and reuses the
// bytes for every later reference to it.
type Resolver interface {
	ResolveEntity(systemID, publicID string) ([]byte, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(systemID, publicID string) ([]byte, error)

func (f ResolverFunc) ResolveEntity(systemID, publicID string) ([]byte, error) {
	return f(systemID, publicID)
}

// FSResolver resolves system identifiers as paths in an fs.FS.
type FSResolver struct {
	FS fs.FS
}

func (r FSResolver) ResolveEntity(systemID, publicID string) ([]byte, error) {
	return fs.ReadFile(r.FS, systemID)
}
