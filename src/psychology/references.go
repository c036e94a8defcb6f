package psychology

import "strings"

// ReferenceItem is an everyday purchase used for symbolic comparisons.
type ReferenceItem struct {
	Name  string
	Price float64
}

// referencePrices is checked in order; the first match wins.
var referencePrices = []ReferenceItem{
	{Name: "café", Price: 3.5},
	{Name: "place de cinéma", Price: 12},
	{Name: "magazine", Price: 6},
	{Name: "sandwich", Price: 7},
	{Name: "livre", Price: 15},
}

func ReferencePrices() []ReferenceItem {
	out := make([]ReferenceItem, len(referencePrices))
	copy(out, referencePrices)
	return out
}

var discretionaryCategories = map[string]bool{
	"restaurant":     true,
	"restaurants":    true,
	"loisirs":        true,
	"sorties":        true,
	"shopping":       true,
	"vêtements":      true,
	"divertissement": true,
	"voyages":        true,
	"café":           true,
	"bar":            true,
	"jeux":           true,
	"entertainment":  true,
	"dining":         true,
}

var insuranceCategories = map[string]bool{
	"assurance":  true,
	"assurances": true,
	"mutuelle":   true,
	"insurance":  true,
	"prévoyance": true,
}

// feeKeywords are matched case-insensitively against descriptions.
var feeKeywords = []string{
	"frais",
	"commission",
	"agios",
	"cotisation carte",
	"fee",
	"pénalité",
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsDiscretionary reports whether spending in the category is impulsive or optional.
func IsDiscretionary(category string) bool {
	return discretionaryCategories[normalize(category)]
}

// IsInsurance reports whether the category is protection-oriented spending.
func IsInsurance(category string) bool {
	return insuranceCategories[normalize(category)]
}

// IsFeeDescription reports whether a description names a bank fee or commission.
func IsFeeDescription(description string) bool {
	d := normalize(description)
	if d == "" {
		return false
	}
	for _, kw := range feeKeywords {
		if strings.Contains(d, kw) {
			return true
		}
	}
	return false
}
