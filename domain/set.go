package domain

import (
	"slices"

	"github.com/samber/lo"
)

// Set holds names only. Cross references between sessions and rooms are
// kept as keys so that neither side owns the other.
type Set map[string]struct{}

func (s Set) Add(name string) {
	s[name] = struct{}{}
}

func (s Set) Remove(name string) {
	delete(s, name)
}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s Set) Sorted() []string {
	names := lo.Keys(s)
	slices.Sort(names)
	return names
}
