package service

import (
	"github.com/shopspring/decimal"
)

// LinePrice is the unrounded price of one order line.
func LinePrice(quantity uint, unit decimal.Decimal) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

type Line struct {
	Quantity  uint
	UnitPrice decimal.Decimal
}

// Total sums the lines and rounds once, to cents.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LinePrice(l.Quantity, l.UnitPrice))
	}
	return total.Round(2)
}
