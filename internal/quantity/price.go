package quantity

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrEmptyOrder is returned when no line item survives payload conversion.
var ErrEmptyOrder = errors.New("order has no items with a positive quantity")

// Price is unit price × display quantity, rounded to 2 decimal places.
// Weight and piece units are priced the same way.
func Price(it LineItem) decimal.Decimal {
	return it.Product.Price.Mul(it.Quantity).Round(2)
}

// Total sums Price over the items kept by keep. A nil keep keeps everything.
func Total(items []LineItem, keep func(LineItem) bool) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if keep != nil && !keep(it) {
			continue
		}
		total = total.Add(Price(it))
	}
	return total
}

// OrderLine is one {productId, quantity} pair of an order request.
type OrderLine struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// Codec converts between server quantities (grams or piece counts) and
// display quantities.
type Codec struct {
	// LegacyPieceScaling divides piece counts by 1000 when seeding display
	// quantities, matching older storefront builds.
	LegacyPieceScaling bool
}

// FromServer turns a server quantity into a display quantity.
func (c Codec) FromServer(unit Unit, serverQty int64) decimal.Decimal {
	q := decimal.NewFromInt(serverQty)
	if unit.IsWeight() || c.LegacyPieceScaling {
		return Round(q.Div(gramsPerKg))
	}
	return q
}

// ToServer turns a display quantity into the integer the backend expects:
// grams for weight units, a count for piece units.
func (c Codec) ToServer(unit Unit, display decimal.Decimal) int64 {
	if unit.IsWeight() {
		return display.Mul(gramsPerKg).Round(0).IntPart()
	}
	return display.Round(0).IntPart()
}

// OrderLines builds the order payload. Items whose server quantity is not
// positive are dropped; ErrEmptyOrder is returned if nothing remains.
func (c Codec) OrderLines(items []LineItem) ([]OrderLine, error) {
	lines := make([]OrderLine, 0, len(items))
	for _, it := range items {
		q := c.ToServer(it.Product.Unit, it.Quantity)
		if q <= 0 {
			continue
		}
		lines = append(lines, OrderLine{ProductID: it.Product.ID, Quantity: q})
	}
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	return lines, nil
}
