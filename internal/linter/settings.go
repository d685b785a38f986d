package linter

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrUnknownOption is returned when an override names an option the linter does not declare.
	ErrUnknownOption = errors.New("unknown option")
	// ErrInvalidOption is returned when an override cannot be converted to the option's type.
	ErrInvalidOption = errors.New("invalid option value")
)

// Defaults maps option names to default values. Values must be string or bool;
// the type of the default decides how overrides are interpreted.
type Defaults map[string]any

// StringSet is a set of short strings, typically single option letters.
type StringSet map[string]struct{}

// NewCharSet builds a set holding each character of s once.
func NewCharSet(s string) StringSet {
	set := make(StringSet, len(s))
	for _, r := range s {
		set[string(r)] = struct{}{}
	}
	return set
}

// Contains reports whether v is in the set.
func (s StringSet) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// IsSubsetOf reports whether every member of s is also in other.
func (s StringSet) IsSubsetOf(other StringSet) bool {
	for v := range s {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}

// Sorted returns the members in lexical order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Settings is the resolved, read-only configuration of one linter.
// Accessors panic when asked for an option the linter never declared or
// with the wrong type: that is a defect in the linter, not in the input.
type Settings struct {
	linter string
	values map[string]any
}

// Resolve starts from defaults and applies overrides, converting each
// override to the type of its default. Unknown keys and unconvertible
// values are rejected.
func Resolve(linter string, defaults Defaults, overrides map[string]string) (*Settings, error) {
	values := make(map[string]any, len(defaults))
	for key, value := range defaults {
		switch value.(type) {
		case string, bool:
		default:
			panic(fmt.Sprintf("linter %s: default for %q has unsupported type %T", linter, key, value))
		}
		values[key] = value
	}

	for key, raw := range overrides {
		def, ok := defaults[key]
		if !ok {
			return nil, fmt.Errorf("linter %s: %w %q", linter, ErrUnknownOption, key)
		}
		switch def.(type) {
		case bool:
			b, err := parseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("linter %s: %w for %q: %v", linter, ErrInvalidOption, key, err)
			}
			values[key] = b
		case string:
			values[key] = raw
		}
	}

	return &Settings{linter: linter, values: values}, nil
}

// EmptySettings returns settings for a linter without options.
func EmptySettings(linter string) *Settings {
	return &Settings{linter: linter, values: map[string]any{}}
}

// Linter returns the name of the linter these settings belong to.
func (s *Settings) Linter() string {
	return s.linter
}

// Keys returns the declared option names in lexical order.
func (s *Settings) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the raw value of an option.
func (s *Settings) Value(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// String returns a string option.
func (s *Settings) String(key string) string {
	v, ok := s.values[key].(string)
	if !ok {
		panic(fmt.Sprintf("linter %s: option %q is not a declared string option", s.linter, key))
	}
	return v
}

// Bool returns a boolean option.
func (s *Settings) Bool(key string) bool {
	v, ok := s.values[key].(bool)
	if !ok {
		panic(fmt.Sprintf("linter %s: option %q is not a declared boolean option", s.linter, key))
	}
	return v
}

// StringSet returns a string option interpreted as a set of characters.
func (s *Settings) StringSet(key string) StringSet {
	return NewCharSet(s.String(key))
}

// parseBool accepts the spellings strconv.ParseBool knows plus yes/no/on/off.
func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(raw))
}
