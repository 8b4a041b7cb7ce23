// Package location checks that an address lies inside the service area and
// normalizes it for distance lookups.
package location

import (
	"strings"
	"unicode"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// Validator is pure and safe for concurrent use.
type Validator struct {
	areas   []string
	suffix  string
	markers map[string]struct{}
}

// NewValidator builds a validator for the given service areas. suffix is
// appended to addresses that carry none of the region markers.
func NewValidator(areas []string, suffix string, markers []string) *Validator {
	m := make(map[string]struct{}, len(markers))
	for _, mk := range markers {
		m[strings.ToLower(mk)] = struct{}{}
	}
	return &Validator{areas: areas, suffix: suffix, markers: m}
}

// Default is the Calgary metropolitan service area.
func Default() *Validator {
	return NewValidator(
		[]string{"Calgary", "Airdrie", "Chestermere", "Okotoks"},
		", Alberta, Canada",
		[]string{"alberta", "canada", "ab"},
	)
}

// ServiceAreas returns the display names of the served municipalities.
func (v *Validator) ServiceAreas() []string {
	out := make([]string, len(v.areas))
	copy(out, v.areas)
	return out
}

// Validate returns the normalized address, or a *domain.RowError.
func (v *Validator) Validate(address string) (string, error) {
	addr := strings.TrimSpace(address)
	if addr == "" {
		return "", domain.Reject(domain.ErrMissingField, "Address is required")
	}

	lower := strings.ToLower(addr)
	served := false
	for _, area := range v.areas {
		if strings.Contains(lower, strings.ToLower(area)) {
			served = true
			break
		}
	}
	if !served {
		return "", domain.Reject(domain.ErrOutOfServiceArea,
			"Delivery only available in: "+strings.Join(v.areas, ", "))
	}

	if v.hasRegion(lower) {
		return addr, nil
	}
	return addr + v.suffix, nil
}

func (v *Validator) hasRegion(lower string) bool {
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		if _, ok := v.markers[tok]; ok {
			return true
		}
	}
	return false
}
