package domain

import (
	"fmt"
	"strings"
)

// WeightClass is the package_size token of an input row.
type WeightClass string

const (
	WeightSmall     WeightClass = "1-5kg"
	WeightMedium    WeightClass = "5-15kg"
	WeightLarge     WeightClass = "15-30kg"
	WeightOversized WeightClass = "30kg+"
)

// resolvedKg is the weight each class is priced at.
var resolvedKg = map[WeightClass]float64{
	WeightSmall:     5,
	WeightMedium:    15,
	WeightLarge:     30,
	WeightOversized: 35,
}

// WeightClasses lists the accepted classes from lightest to heaviest.
func WeightClasses() []WeightClass {
	return []WeightClass{WeightSmall, WeightMedium, WeightLarge, WeightOversized}
}

// ParseWeightClass matches a raw token case-insensitively after trimming.
func ParseWeightClass(raw string) (WeightClass, error) {
	w := WeightClass(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := resolvedKg[w]; !ok {
		names := make([]string, 0, len(resolvedKg))
		for _, c := range WeightClasses() {
			names = append(names, string(c))
		}
		return "", Reject(ErrInvalidWeightClass,
			fmt.Sprintf("Invalid package size %q. Must be one of: %s", raw, strings.Join(names, ", ")))
	}
	return w, nil
}

// ResolvedKg returns the weight used for pricing. Unknown classes resolve to
// the oversized weight.
func (w WeightClass) ResolvedKg() float64 {
	if kg, ok := resolvedKg[w]; ok {
		return kg
	}
	return resolvedKg[WeightOversized]
}
