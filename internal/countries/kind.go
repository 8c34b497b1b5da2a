package countries

import (
	"fmt"
	"strings"
)

// Kind selects the lookup path and matching semantics of a search.
type Kind string

const (
	KindCountry Kind = "country"
	KindCapital Kind = "capital"
	KindRegion  Kind = "region"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindCountry, KindCapital, KindRegion:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown search kind %q", ErrInvalidSearch, s)
	}
}

func (k Kind) String() string {
	return string(k)
}
