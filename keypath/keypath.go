// Package keypath implements the dot-segmented translation key used to
// address entries in locale resources.
//
// A key is one or more segments joined by '.', for example "nav.home" or
// "errors.404.title". Segments are made of ASCII letters, digits, '_' and
// '-'. Empty segments (leading, trailing or doubled separators) are invalid.
//
// Parse is the single gate every caller passes user input through before
// handing a key to the editing engine.
package keypath

import (
	"errors"
	"fmt"
	"strings"
)

// Separator joins key segments.
const Separator = "."

var (
	// ErrInvalidKey is matched by every *InvalidKeyError.
	ErrInvalidKey = errors.New("invalid translation key")
	// ErrNoParent is returned by Parent on a single-segment key.
	ErrNoParent = errors.New("key has no parent")
)

// InvalidKeyError reports why a key string was rejected.
type InvalidKeyError struct {
	Key    string
	Reason string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid translation key %q: %s", e.Key, e.Reason)
}

func (e *InvalidKeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

// KeyPath is an immutable, validated translation key. The zero value is the
// empty path and is only used to denote the tree root.
type KeyPath struct {
	segs []string
}

// Parse validates s and returns the corresponding KeyPath.
func Parse(s string) (KeyPath, error) {
	if s == "" {
		return KeyPath{}, &InvalidKeyError{Key: s, Reason: "empty key"}
	}
	segs := strings.Split(s, Separator)
	for i, seg := range segs {
		if err := checkSegment(seg); err != "" {
			return KeyPath{}, &InvalidKeyError{Key: s, Reason: fmt.Sprintf("segment %d: %s", i+1, err)}
		}
	}
	return KeyPath{segs: segs}, nil
}

// MustParse is like Parse but panics on invalid input. Intended for
// constants and tests.
func MustParse(s string) KeyPath {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// FromSegments builds a KeyPath from already split segments.
func FromSegments(segs ...string) (KeyPath, error) {
	if len(segs) == 0 {
		return KeyPath{}, &InvalidKeyError{Reason: "empty key"}
	}
	joined := strings.Join(segs, Separator)
	for i, seg := range segs {
		if err := checkSegment(seg); err != "" {
			return KeyPath{}, &InvalidKeyError{Key: joined, Reason: fmt.Sprintf("segment %d: %s", i+1, err)}
		}
	}
	return KeyPath{segs: append([]string(nil), segs...)}, nil
}

// Valid reports whether s is a valid key.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func checkSegment(seg string) string {
	if seg == "" {
		return "empty segment"
	}
	for _, r := range seg {
		if !isSegmentRune(r) {
			return fmt.Sprintf("illegal character %q", r)
		}
	}
	return ""
}

func isSegmentRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	}
	return false
}

// String returns the dotted form.
func (k KeyPath) String() string {
	return strings.Join(k.segs, Separator)
}

// IsZero reports whether k is the empty (root) path.
func (k KeyPath) IsZero() bool { return len(k.segs) == 0 }

// Len returns the number of segments.
func (k KeyPath) Len() int { return len(k.segs) }

// Segments returns a copy of the segments.
func (k KeyPath) Segments() []string {
	return append([]string(nil), k.segs...)
}

// LastSegment returns the final segment, or "" for the root path.
func (k KeyPath) LastSegment() string {
	if len(k.segs) == 0 {
		return ""
	}
	return k.segs[len(k.segs)-1]
}

// Equal reports whether both paths have the same segments.
func (k KeyPath) Equal(q KeyPath) bool {
	if len(k.segs) != len(q.segs) {
		return false
	}
	for i := range k.segs {
		if k.segs[i] != q.segs[i] {
			return false
		}
	}
	return true
}

// Child appends a segment.
func (k KeyPath) Child(seg string) (KeyPath, error) {
	if err := checkSegment(seg); err != "" {
		return KeyPath{}, &InvalidKeyError{Key: k.String() + Separator + seg, Reason: err}
	}
	segs := make([]string, len(k.segs), len(k.segs)+1)
	copy(segs, k.segs)
	return KeyPath{segs: append(segs, seg)}, nil
}

// Parent drops the last segment.
func (k KeyPath) Parent() (KeyPath, error) {
	if len(k.segs) <= 1 {
		return KeyPath{}, ErrNoParent
	}
	return KeyPath{segs: k.segs[:len(k.segs)-1:len(k.segs)-1]}, nil
}

// CommonPrefixLength returns how many leading segments k and q share.
func (k KeyPath) CommonPrefixLength(q KeyPath) int {
	n := 0
	for n < len(k.segs) && n < len(q.segs) && k.segs[n] == q.segs[n] {
		n++
	}
	return n
}

// IsPrefixOf reports whether q equals k or lies below it.
func (k KeyPath) IsPrefixOf(q KeyPath) bool {
	return len(k.segs) <= len(q.segs) && k.CommonPrefixLength(q) == len(k.segs)
}

// IsAncestorOf reports whether q lies strictly below k.
func (k KeyPath) IsAncestorOf(q KeyPath) bool {
	return len(k.segs) < len(q.segs) && k.IsPrefixOf(q)
}

// Rebase substitutes oldPrefix with newPrefix at the head of k. It returns
// false when k is not at or below oldPrefix.
func (k KeyPath) Rebase(oldPrefix, newPrefix KeyPath) (KeyPath, bool) {
	if !oldPrefix.IsPrefixOf(k) {
		return KeyPath{}, false
	}
	rest := k.segs[len(oldPrefix.segs):]
	segs := make([]string, 0, len(newPrefix.segs)+len(rest))
	segs = append(segs, newPrefix.segs...)
	segs = append(segs, rest...)
	return KeyPath{segs: segs}, true
}

// Ancestors returns every proper prefix of k, shortest first.
func (k KeyPath) Ancestors() []KeyPath {
	if len(k.segs) < 2 {
		return nil
	}
	out := make([]KeyPath, 0, len(k.segs)-1)
	for i := 1; i < len(k.segs); i++ {
		out = append(out, KeyPath{segs: k.segs[:i:i]})
	}
	return out
}

// IsPrefixString reports whether the raw key string s is prefix or a
// descendant of prefix, without parsing s.
func IsPrefixString(prefix, s string) bool {
	return s == prefix || strings.HasPrefix(s, prefix+Separator)
}
