// Package quantity holds the cart quantity/weight arithmetic shared by the cart
// screen and the product-detail screen.
//
// Display quantities are kilograms for weight units and counts for piece units.
// Every arithmetic step re-rounds to 3 decimal places.
package quantity

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Unit is the unit of sale of a product.
type Unit string

const (
	UnitKilogram Unit = "kg"
	UnitGram     Unit = "g"
	UnitPiece    Unit = "piece"
)

// ErrUnknownUnit is returned by ParseUnit for anything but kg, g or piece.
var ErrUnknownUnit = errors.New("unknown unit")

// ParseUnit validates a unit string coming off the wire.
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(s); u {
	case UnitKilogram, UnitGram, UnitPiece:
		return u, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

// IsWeight reports whether the unit is sold by mass.
func (u Unit) IsWeight() bool {
	return u == UnitKilogram || u == UnitGram
}

// Product is the product reference carried by a line item.
type Product struct {
	ID       string
	Name     string
	Unit     Unit
	Price    decimal.Decimal
	ImageURL string
}

// LineItem is one row of the cart as the user sees it. Is250g and Is500g are
// derived from Quantity and only drive the shortcut button highlighting.
type LineItem struct {
	ID       string
	Product  Product
	Quantity decimal.Decimal
	Is250g   bool
	Is500g   bool
}

// Selection is the output of Detect.
type Selection struct {
	Is250g bool
	Is500g bool
}

var (
	quarter    = decimal.RequireFromString("0.25")
	half       = decimal.RequireFromString("0.5")
	one        = decimal.NewFromInt(1)
	gramsPerKg = decimal.NewFromInt(1000)
	tolerance  = decimal.RequireFromString("0.001")
)

// Round rounds a display quantity to 3 decimal places.
func Round(q decimal.Decimal) decimal.Decimal {
	return q.Round(3)
}

// Detect classifies a kilogram quantity into the round-number increments it
// represents. 0.25 and 0.75 read as 250g, 0.5 and 1.5 as 500g, whole kilograms
// and zero as neither. Negative quantities are treated as zero.
func Detect(q decimal.Decimal) Selection {
	q = Round(q)
	if !q.IsPositive() {
		return Selection{}
	}
	onQuarter := multipleOf(q, quarter)
	onHalf := multipleOf(q, half)
	onWhole := multipleOf(q, one)
	return Selection{
		Is250g: onQuarter && !onHalf,
		Is500g: onHalf && !onWhole,
	}
}

// multipleOf reports whether q mod step is within tolerance of zero.
func multipleOf(q, step decimal.Decimal) bool {
	r := q.Mod(step)
	return r.LessThan(tolerance) || step.Sub(r).LessThan(tolerance)
}

// NewLineItem builds a line item with its selection flags derived from q.
func NewLineItem(id string, product Product, q decimal.Decimal) LineItem {
	return withQuantity(LineItem{ID: id, Product: product}, q)
}

func withQuantity(it LineItem, q decimal.Decimal) LineItem {
	it.Quantity = Round(q)
	if !it.Product.Unit.IsWeight() {
		it.Is250g, it.Is500g = false, false
		return it
	}
	sel := Detect(it.Quantity)
	it.Is250g = sel.Is250g
	it.Is500g = sel.Is500g
	return it
}
