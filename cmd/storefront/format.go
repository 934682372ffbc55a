package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kiwari-pos/storefront/internal/quantity"
	"github.com/shopspring/decimal"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func rupiah(d decimal.Decimal) string {
	return "Rp " + d.StringFixed(0)
}

// unitPrice renders a catalog price with its unit of sale.
func unitPrice(price decimal.Decimal, unit quantity.Unit) string {
	switch unit {
	case quantity.UnitKilogram:
		return rupiah(price) + "/kg"
	case quantity.UnitGram:
		return rupiah(price) + "/g"
	}
	return rupiah(price) + "/pc"
}

// displayQuantity renders a display quantity: kilograms for weight units and
// a count otherwise.
func displayQuantity(unit quantity.Unit, q decimal.Decimal) string {
	if unit.IsWeight() {
		return q.String() + " kg"
	}
	return q.String() + " pc"
}

// serverQuantity renders an order quantity as stored by the backend.
func serverQuantity(unit quantity.Unit, q int64) string {
	if unit.IsWeight() {
		return fmt.Sprintf("%d g", q)
	}
	return fmt.Sprintf("%d pc", q)
}

// shortcuts shows which weight shortcut buttons would be highlighted.
func shortcuts(it quantity.LineItem) string {
	if !it.Product.Unit.IsWeight() {
		return ""
	}
	mark := func(on bool, label string) string {
		if on {
			return "[" + label + "]"
		}
		return " " + label + " "
	}
	return mark(it.Is250g, "250g") + mark(it.Is500g, "500g")
}
