package protocol

import (
	"sort"
	"strings"
)

// Command is one ref update requested by the pusher.
type Command struct {
	OldOID  string
	NewOID  string
	RefName string
}

// Options holds push options keyed by name. Later values replace earlier ones.
type Options map[string]string

// CapList is a set of capability tokens.
type CapList map[string]bool

// ParseCapList splits s on ASCII whitespace into a capability set.
func ParseCapList(s string) CapList {
	c := make(CapList)
	for _, tok := range asciiFields(s) {
		c[tok] = true
	}
	return c
}

func (c CapList) Has(name string) bool {
	return c[name]
}

// String returns the capabilities sorted and space separated.
func (c CapList) String() string {
	names := make([]string, 0, len(c))
	for name, ok := range c {
		if ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, " ")
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

func asciiFields(s string) []string {
	return strings.FieldsFunc(s, isASCIISpace)
}
