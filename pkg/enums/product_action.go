package enums

import "fmt"

// ProductAction names a bulk admin operation over products.
type ProductAction string

const (
	ProductActionActivate   ProductAction = "activate"
	ProductActionDeactivate ProductAction = "deactivate"
	ProductActionOutOfStock ProductAction = "out_of_stock"
	ProductActionDuplicate  ProductAction = "duplicate"
)

var validProductActions = []ProductAction{
	ProductActionActivate,
	ProductActionDeactivate,
	ProductActionOutOfStock,
	ProductActionDuplicate,
}

// String implements fmt.Stringer.
func (a ProductAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ProductAction.
func (a ProductAction) IsValid() bool {
	for _, candidate := range validProductActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseProductAction converts raw input into a ProductAction.
func ParseProductAction(value string) (ProductAction, error) {
	for _, candidate := range validProductActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product action %q", value)
}
