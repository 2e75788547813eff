package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money is an exact amount in minor currency units, e.g. cents.
// The ledger computes totals as integers; floats never enter.
type Money struct {
	Amount   int64
	Currency currency.Unit
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

// Decimal renders the amount in major units using the currency's scale.
func (m Money) Decimal() decimal.Decimal {
	scale, _ := currency.Cash.Rounding(m.Currency)
	return decimal.New(m.Amount, int32(-scale))
}

func (m Money) String() string {
	scale, _ := currency.Cash.Rounding(m.Currency)
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(int32(scale)), m.Currency)
}
