package node

import "iter"

// SymTab is an insertion-ordered symbol table. Setting a name that is
// already present overwrites the definition in place, keeping the
// original position in the order; parsing relies on that policy for
// repeated entity declarations, so a table's final state reflects the
// last declaration of each name.
type SymTab[V any] struct {
	names  []string
	values map[string]V
}

func NewSymTab[V any]() *SymTab[V] {
	return &SymTab[V]{
		values: make(map[string]V),
	}
}

func (t *SymTab[V]) Set(name string, value V) {
	if _, exists := t.values[name]; !exists {
		t.names = append(t.names, name)
	}
	t.values[name] = value
}

func (t *SymTab[V]) Get(name string) (V, bool) {
	value, ok := t.values[name]
	return value, ok
}

func (t *SymTab[V]) Len() int {
	return len(t.names)
}

// Range iterates over the entries in insertion order.
func (t *SymTab[V]) Range() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, name := range t.names {
			if !yield(name, t.values[name]) {
				break
			}
		}
	}
}
