package money

import (
	"encoding/json"
	"fmt"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits carried by every price and total.
const Places = 2

var usd = accounting.Accounting{Symbol: "$", Precision: Places, Thousand: ",", Decimal: "."}

// Amount serializes a decimal as a fixed-point string such as "25.50".
type Amount decimal.Decimal

// From wraps a decimal value.
func From(d decimal.Decimal) Amount {
	return Amount(d)
}

// Decimal returns the wrapped value.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.Decimal(a)
}

// String renders the amount with two fractional digits.
func (a Amount) String() string {
	return Format(a.Decimal())
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts quoted decimal strings. Bare JSON numbers are rejected
// so floating point never enters a price.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("amount must be a decimal string")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid amount %q", raw)
	}
	*a = Amount(d)
	return nil
}

// Format renders d with two fractional digits, rounding half away from zero.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// Label renders d for operator displays, e.g. "$1,250.00".
func Label(d decimal.Decimal) string {
	return usd.FormatMoneyDecimal(d.Round(Places))
}

// LineTotal multiplies a unit price by a quantity.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
