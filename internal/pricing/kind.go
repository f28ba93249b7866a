package pricing

import (
	"fmt"
	"strings"
)

// Kind is the exercise right of a European option: Call or Put.
type Kind int

const (
	Call Kind = iota // right to buy at the strike
	Put              // right to sell at the strike
)

// String returns the display name used in reports ("Call" or "Put").
func (k Kind) String() string {
	switch k {
	case Call:
		return "Call"
	case Put:
		return "Put"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the two defined kinds.
func (k Kind) Valid() bool {
	return k == Call || k == Put
}

// ParseKind converts user input into a Kind.
//
// Accepted values (case-insensitive, surrounding spaces ignored):
//   - "c", "call"
//   - "p", "put"
//
// Any other value returns an error wrapping ErrInvalidKind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "call":
		return Call, nil
	case "p", "put":
		return Put, nil
	}
	return Call, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// MarshalText encodes the kind as its display name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes any value accepted by ParseKind.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
