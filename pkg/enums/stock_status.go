package enums

// StockStatus is the derived availability shown in admin listings.
type StockStatus string

const (
	StockStatusOut StockStatus = "out_of_stock"
	StockStatusLow StockStatus = "low_stock"
	StockStatusIn  StockStatus = "in_stock"
)

// LowStockThreshold is the highest stock count still reported as low.
const LowStockThreshold = 5

// StockStatusFor derives the availability bucket for a stock count.
func StockStatusFor(stock int) StockStatus {
	switch {
	case stock <= 0:
		return StockStatusOut
	case stock <= LowStockThreshold:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// Label returns the admin display text.
func (s StockStatus) Label() string {
	switch s {
	case StockStatusOut:
		return "Out of Stock"
	case StockStatusLow:
		return "Low Stock"
	default:
		return "In Stock"
	}
}
