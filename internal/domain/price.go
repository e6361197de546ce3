package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is a non-negative amount in the single display currency.
// It always travels on the wire as a decimal string with two fractional digits.
type Price struct {
	decimal.Decimal
}

// NewPrice rounds d to two places.
func NewPrice(d decimal.Decimal) Price {
	return Price{Decimal: d.Round(2)}
}

// ParsePrice parses user or wire input such as "12.5" into a Price.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Price{}, Invalid("price required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, Invalid("malformed price %q", s)
	}
	if d.IsNegative() {
		return Price{}, Invalid("price must not be negative")
	}
	return NewPrice(d), nil
}

// MustPrice is ParsePrice for literals known to be valid.
func MustPrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Price) String() string {
	return p.StringFixed(2)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.StringFixed(2))), nil
}

// UnmarshalJSON accepts both "12.50" and 12.5; the cart service stores doubles.
func (p *Price) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	p.Decimal = d
	return nil
}
