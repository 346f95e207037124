package enums

import "fmt"

// ProductOption describes how a quote line participates in customer choice.
type ProductOption string

const (
	ProductOptionIncluded    ProductOption = "Included"
	ProductOptionOptional    ProductOption = "Optional"
	ProductOptionRecommended ProductOption = "Recommended"
)

var validProductOptions = []ProductOption{
	ProductOptionIncluded,
	ProductOptionOptional,
	ProductOptionRecommended,
}

// String implements fmt.Stringer.
func (p ProductOption) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductOption.
func (p ProductOption) IsValid() bool {
	for _, candidate := range validProductOptions {
		if candidate == p {
			return true
		}
	}
	return false
}

// Selectable reports whether the customer may pick the option in a group.
func (p ProductOption) Selectable() bool {
	return p == ProductOptionOptional || p == ProductOptionRecommended
}

// ParseProductOption converts raw input into a ProductOption.
func ParseProductOption(value string) (ProductOption, error) {
	for _, candidate := range validProductOptions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product option %q", value)
}
