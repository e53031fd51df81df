package qname

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Separator splits namespace segments.
const Separator = `\`

// segmentRegex matches a single identifier segment. Bytes 0x80-0xff are
// accepted so UTF-8 identifiers pass through untouched.
var segmentRegex = regexp.MustCompile(`^[A-Za-z_\x{80}-\x{10FFFF}][A-Za-z0-9_\x{80}-\x{10FFFF}]*$`)

// Name is a parsed qualified name.
type Name struct {
	Namespace []string
	Simple    string
}

// Parse creates a Name from its textual form. A single leading separator
// (fully qualified form) is accepted and dropped.
func Parse(raw string) (*Name, error) {
	trimmed := strings.TrimPrefix(raw, Separator)
	if trimmed == "" {
		return nil, fmt.Errorf("qualified name cannot be empty")
	}

	parts := strings.Split(trimmed, Separator)
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("qualified name %q contains empty segment", raw)
		}
		if !segmentRegex.MatchString(part) {
			return nil, fmt.Errorf("invalid name segment %q in %q", part, raw)
		}
	}

	return &Name{
		Namespace: parts[:len(parts)-1],
		Simple:    parts[len(parts)-1],
	}, nil
}

// String renders the canonical form without a leading separator.
func (n *Name) String() string {
	if n == nil {
		return ""
	}
	if len(n.Namespace) == 0 {
		return n.Simple
	}
	return strings.Join(n.Namespace, Separator) + Separator + n.Simple
}

// Key returns the case-folded lookup key of the name.
func (n *Name) Key() string {
	return Fold(n.String())
}

// Equal reports whether two names denote the same symbol.
func (n *Name) Equal(other *Name) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.Key() == other.Key()
}

// Key returns the lookup key for a raw name without validating it.
func Key(raw string) string {
	return Fold(strings.TrimPrefix(raw, Separator))
}

// Fold applies Unicode case folding. A fresh Caser is used per call because
// cases.Caser keeps internal state and is not safe for concurrent use.
func Fold(s string) string {
	return cases.Fold().String(s)
}
