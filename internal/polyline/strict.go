package polyline

import (
	"errors"
	"fmt"

	"commute-route-service/internal/domain"
)

var (
	// ErrInvalidCharacter reports a byte outside the printable range 63-126.
	ErrInvalidCharacter = errors.New("polyline: invalid character")
	// ErrTruncated reports a final group whose continuation bit is still set.
	ErrTruncated = errors.New("polyline: truncated value")
	// ErrOverflow reports a value spanning more groups than fit in 64 bits.
	ErrOverflow = errors.New("polyline: value overflows 64 bits")
)

const (
	minChar = 63
	maxChar = 126

	// maxGroups bounds one value to what fits in 64 bits.
	maxGroups = 12
)

// SyntaxError describes where an encoded polyline is malformed.
type SyntaxError struct {
	Offset int
	Char   byte
	Err    error
}

func (e *SyntaxError) Error() string {
	if errors.Is(e.Err, ErrInvalidCharacter) {
		return fmt.Sprintf("%v %q at offset %d", e.Err, e.Char, e.Offset)
	}
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Validate checks that s only contains characters of the encoding alphabet,
// that every value is terminated, and that no value overflows.
// An odd number of values is accepted; Decode drops the last one.
func Validate(s string) error {
	groups := 0
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < minChar || c > maxChar {
			return &SyntaxError{Offset: i, Char: c, Err: ErrInvalidCharacter}
		}

		if groups == 0 {
			start = i
		}
		groups++

		if (c-asciiOffset)&continuationBit == 0 {
			groups = 0
			continue
		}
		if groups >= maxGroups {
			return &SyntaxError{Offset: start, Char: c, Err: ErrOverflow}
		}
	}

	if groups > 0 {
		return &SyntaxError{Offset: start, Err: ErrTruncated}
	}
	return nil
}

// DecodeStrict validates s and then decodes it exactly like Decode.
func DecodeStrict(s string) ([]domain.Coordinates, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	return Decode(s), nil
}
