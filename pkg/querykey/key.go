// Package querykey defines hierarchical query keys and the canonical key
// vocabulary shared by views (which subscribe) and mutations (which publish).
package querykey

import (
	"fmt"
	"strings"
)

// Key is an ordered sequence of scalar segments, from the most general
// category to the most specific instance.
//
// Segments are compared by their string form, so the integer 42 and the
// string "42" are the same segment. Producers should still put the same type
// in the same position.
type Key []any

// Of builds a Key from the given segments.
func Of(segments ...any) Key {
	return Key(segments)
}

// Len returns the number of segments.
func (k Key) Len() int {
	return len(k)
}

// Segment returns the string form of the i-th segment.
func (k Key) Segment(i int) string {
	return segmentString(k[i])
}

// Strings returns every segment in its string form.
func (k Key) Strings() []string {
	out := make([]string, len(k))
	for i := range k {
		out[i] = segmentString(k[i])
	}
	return out
}

// String renders the key as a bracketed, comma separated list.
func (k Key) String() string {
	return "[" + strings.Join(k.Strings(), ",") + "]"
}

// Path renders the key in the slash form read by Parse.
func (k Key) Path() string {
	return strings.Join(k.Strings(), "/")
}

// Equal reports whether both keys have the same length and segments.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && HasPrefix(k, other)
}

// HasPrefix reports whether prefix is a segment-wise prefix of key.
// Every key is a prefix of itself, and the empty key is a prefix of all keys.
func HasPrefix(key, prefix Key) bool {
	if len(prefix) > len(key) {
		return false
	}
	for i := range prefix {
		if segmentString(prefix[i]) != segmentString(key[i]) {
			return false
		}
	}
	return true
}

// Related reports whether one key is a prefix of the other, in either
// direction.
func Related(a, b Key) bool {
	return HasPrefix(a, b) || HasPrefix(b, a)
}

// AnyRelated reports whether any key of subscribed is related to any key of
// published.
func AnyRelated(subscribed, published []Key) bool {
	for _, s := range subscribed {
		for _, p := range published {
			if Related(s, p) {
				return true
			}
		}
	}
	return false
}

// Parse splits a key rendered as slash separated segments ("tasks/org-1/all").
// Every segment of the result is a string.
func Parse(s string) Key {
	s = strings.Trim(s, "/")
	if s == "" {
		return Key{}
	}
	parts := strings.Split(s, "/")
	key := make(Key, len(parts))
	for i, p := range parts {
		key[i] = p
	}
	return key
}

func segmentString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
