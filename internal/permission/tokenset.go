package permission

import (
	"sort"
	"strings"
)

// TokenSet is an unordered set of permission tokens. The pipe-delimited
// text form exists only at the storage boundary; everything above the
// repositories works with the set type.
type TokenSet map[Token]struct{}

// NewTokenSet builds a set from the given tokens.
func NewTokenSet(tokens ...Token) TokenSet {
	s := make(TokenSet, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// ParseTokenSet decodes the delimited storage form. Empty segments are
// skipped, so "" decodes to the empty set.
func ParseTokenSet(encoded, sep string) TokenSet {
	s := make(TokenSet)
	for _, part := range strings.Split(encoded, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		s[Token(part)] = struct{}{}
	}
	return s
}

// Encode renders the delimited storage form with tokens sorted for
// deterministic rows.
func (s TokenSet) Encode(sep string) string {
	tokens := make([]string, 0, len(s))
	for t := range s {
		tokens = append(tokens, string(t))
	}
	sort.Strings(tokens)
	return strings.Join(tokens, sep)
}

// Has reports membership.
func (s TokenSet) Has(t Token) bool {
	_, ok := s[t]
	return ok
}

// Add inserts a token.
func (s TokenSet) Add(t Token) {
	s[t] = struct{}{}
}

// Remove deletes a token.
func (s TokenSet) Remove(t Token) {
	delete(s, t)
}

// Union returns a new set containing both operands' tokens.
func (s TokenSet) Union(other TokenSet) TokenSet {
	out := make(TokenSet, len(s)+len(other))
	for t := range s {
		out[t] = struct{}{}
	}
	for t := range other {
		out[t] = struct{}{}
	}
	return out
}

// Difference returns a new set with other's tokens removed.
func (s TokenSet) Difference(other TokenSet) TokenSet {
	out := make(TokenSet, len(s))
	for t := range s {
		if _, ok := other[t]; !ok {
			out[t] = struct{}{}
		}
	}
	return out
}

// Len returns the number of tokens in the set.
func (s TokenSet) Len() int {
	return len(s)
}

// Equal reports whether both sets hold exactly the same tokens.
func (s TokenSet) Equal(other TokenSet) bool {
	if len(s) != len(other) {
		return false
	}
	for t := range s {
		if _, ok := other[t]; !ok {
			return false
		}
	}
	return true
}
