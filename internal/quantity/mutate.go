package quantity

import "github.com/shopspring/decimal"

// Increment identifies one of the weight shortcut buttons.
type Increment int

const (
	Increment250g Increment = iota + 1
	Increment500g
)

func (inc Increment) valid() bool {
	return inc == Increment250g || inc == Increment500g
}

func (inc Increment) amount() decimal.Decimal {
	if inc == Increment500g {
		return half
	}
	return quarter
}

func (inc Increment) selected(it LineItem) bool {
	if inc == Increment500g {
		return it.Is500g
	}
	return it.Is250g
}

func (inc Increment) String() string {
	switch inc {
	case Increment250g:
		return "250g"
	case Increment500g:
		return "500g"
	}
	return "unknown"
}

// Increase adds one whole unit (1 kg or 1 piece) to the item with the given ID.
func Increase(items []LineItem, id string) []LineItem {
	return Step(items, id, 1)
}

// Decrease removes one whole unit from the item with the given ID.
func Decrease(items []LineItem, id string) []LineItem {
	return Step(items, id, -1)
}

// Step changes the item with the given ID by delta whole units and returns a
// new slice. Weight quantities floor at 0, piece quantities floor at 1.
func Step(items []LineItem, id string, delta int) []LineItem {
	return update(items, id, func(it LineItem) LineItem {
		q := Round(it.Quantity.Add(decimal.NewFromInt(int64(delta))))
		if it.Product.Unit.IsWeight() {
			if q.IsNegative() {
				q = decimal.Zero
			}
			return withQuantity(it, q)
		}
		if q.LessThan(one) {
			q = one
		}
		return withQuantity(it, q)
	})
}

// Toggle applies a 250g/500g shortcut to the item with the given ID. A set flag
// subtracts the increment (floor 0), a clear flag adds it; both flags are then
// recomputed from the new total. Piece items and unknown increments leave the
// item unchanged.
func Toggle(items []LineItem, id string, inc Increment) []LineItem {
	return update(items, id, func(it LineItem) LineItem {
		if !it.Product.Unit.IsWeight() || !inc.valid() {
			return it
		}
		var q decimal.Decimal
		if inc.selected(it) {
			q = it.Quantity.Sub(inc.amount())
		} else {
			q = it.Quantity.Add(inc.amount())
		}
		q = Round(q)
		if q.IsNegative() {
			q = decimal.Zero
		}
		return withQuantity(it, q)
	})
}

func update(items []LineItem, id string, fn func(LineItem) LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == id {
			out[i] = fn(out[i])
		}
	}
	return out
}
