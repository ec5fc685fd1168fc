package errors

import (
	"math/big"
	"strings"
	"unicode"
)

// ValidateN checks that n is a usable item count for derangement queries.
//
// The rules follow the engine's domain:
//   - n < 1 is rejected (there is nothing to arrange)
//   - n == 1 is unsatisfiable (the single item can only map to itself)
//   - n > max is an overflow of the fixed-width representation
//
// A max of 0 or less disables the upper bound.
func ValidateN(n, max int) error {
	if n < 1 {
		return New(ErrCodeInvalidInput, "n must be at least 1, got %d", n)
	}
	if n == 1 {
		return New(ErrCodeUnsatisfiable, "no derangement of a single item exists")
	}
	if max > 0 && n > max {
		return New(ErrCodeOverflow, "n=%d exceeds supported maximum %d", n, max)
	}
	return nil
}

// ParseRank parses a decimal rank of arbitrary size.
// Leading '+' and surrounding whitespace are accepted; negative values,
// empty strings and non-decimal input are not.
func ParseRank(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, New(ErrCodeInvalidRank, "rank cannot be empty")
	}
	if strings.HasPrefix(s, "-") {
		return nil, New(ErrCodeInvalidRank, "rank must be non-negative: %q", s)
	}
	for _, r := range strings.TrimPrefix(s, "+") {
		if r < '0' || r > '9' {
			return nil, New(ErrCodeInvalidRank, "rank must be a decimal integer: %q", s)
		}
	}
	v, ok := new(big.Int).SetString(strings.TrimPrefix(s, "+"), 10)
	if !ok {
		return nil, New(ErrCodeInvalidRank, "rank must be a decimal integer: %q", s)
	}
	return v, nil
}

// ValidateDir validates a directory path supplied through flags or config.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidateDir(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "directory cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
