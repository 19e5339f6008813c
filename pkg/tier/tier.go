package tier

import (
	"fmt"
	"strconv"
	"strings"
)

// Tier is a subscription level. Tiers form a total order:
// Free < Pro < Business. Gating code relies on that order through AtLeast,
// so the numeric values below must never be reordered.
type Tier int

const (
	Free Tier = iota
	Pro
	Business
)

// All returns every tier in ascending order.
func All() []Tier {
	return []Tier{Free, Pro, Business}
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	return t >= Free && t <= Business
}

// AtLeast reports whether t ranks at or above other.
func (t Tier) AtLeast(other Tier) bool {
	return t >= other
}

// DisplayName returns the human readable plan name used in upgrade messages.
func (t Tier) DisplayName() string {
	switch t {
	case Free:
		return "Free"
	case Pro:
		return "Pro"
	case Business:
		return "Business"
	default:
		return "Unknown"
	}
}

func (t Tier) String() string {
	return strings.ToLower(t.DisplayName())
}

// Parse accepts a tier name ("free", "Pro", "BUSINESS") or its ordinal ("0".."2").
func Parse(s string) (Tier, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "free":
		return Free, nil
	case "pro":
		return Pro, nil
	case "business":
		return Business, nil
	}

	if n, err := strconv.Atoi(v); err == nil {
		if t := Tier(n); t.Valid() {
			return t, nil
		}
	}

	return Free, fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name or ordinal.
func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
