// Package linter defines the rule framework used to check Jenkins job
// documents: the tri-state Result, the Context a rule runs against, the
// Linter contract with its root-tag gate, the shared shell build step helper,
// the concrete rules and the registry that names them.
package linter

import "fmt"

// Result is the outcome of one linter against one document.
type Result int

const (
	// Pass means the document satisfies the rule.
	Pass Result = iota
	// Fail means the document violates the rule.
	Fail
	// Skip means the rule does not apply to the document.
	Skip
)

// String returns the upper-case name of the result.
func (r Result) String() string {
	switch r {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Skip:
		return "SKIP"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// IsSuccess reports whether the result counts as a success when results are
// aggregated. Only Fail is a failure.
func (r Result) IsSuccess() bool {
	return r != Fail
}

// IsSuccess is the function form of Result.IsSuccess.
func IsSuccess(r Result) bool {
	return r.IsSuccess()
}

// MarshalText encodes the result as its name so reports stay readable.
func (r Result) MarshalText() ([]byte, error) {
	switch r {
	case Pass, Fail, Skip:
		return []byte(r.String()), nil
	default:
		return nil, fmt.Errorf("invalid result %d", int(r))
	}
}

// UnmarshalText decodes a result name produced by MarshalText.
func (r *Result) UnmarshalText(text []byte) error {
	parsed, err := ParseResult(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseResult converts a result name back into a Result.
func ParseResult(s string) (Result, error) {
	switch s {
	case "PASS":
		return Pass, nil
	case "FAIL":
		return Fail, nil
	case "SKIP":
		return Skip, nil
	default:
		return 0, fmt.Errorf("unknown result %q", s)
	}
}
