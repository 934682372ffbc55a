// Package shoplist reads free-text shopping lists ("beras 1.5kg", "telur 10
// butir") and matches each line to a catalog product.
package shoplist

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/kiwari-pos/storefront/internal/quantity"
	"github.com/shopspring/decimal"
)

// Measure says how the amount on a line was written.
type Measure int

const (
	// MeasureNone is a bare number (or nothing): kilograms for weight
	// products, pieces otherwise.
	MeasureNone Measure = iota
	MeasureGrams
	MeasurePieces
)

// Item is one parsed list line.
type Item struct {
	RawText     string
	Description string
	Amount      decimal.Decimal
	Measure     Measure
}

// List is the result of Parse.
type List struct {
	Items    []Item
	Warnings []string
}

var (
	ErrNoItems      = errors.New("no items found in list")
	ErrWrongMeasure = errors.New("amount does not fit the product unit")
	ErrBadAmount    = errors.New("amount must be positive")
)

// unitFactors maps the accepted unit words to grams (weights) or to a piece
// multiplier.
var unitFactors = map[string]struct {
	measure Measure
	factor  int64
}{
	"kg":    {MeasureGrams, 1000},
	"kilo":  {MeasureGrams, 1000},
	"g":     {MeasureGrams, 1},
	"gr":    {MeasureGrams, 1},
	"gram":  {MeasureGrams, 1},
	"ons":   {MeasureGrams, 100},
	"pc":    {MeasurePieces, 1},
	"pcs":   {MeasurePieces, 1},
	"biji":  {MeasurePieces, 1},
	"butir": {MeasurePieces, 1},
	"buah":  {MeasurePieces, 1},
	"ikat":  {MeasurePieces, 1},
	"pack":  {MeasurePieces, 1},
	"lusin": {MeasurePieces, 12},
}

// Parse reads one item per line. Blank lines and lines starting with # are
// ignored, list bullets are stripped, and lines without a product name are
// reported as warnings.
func Parse(text string) (*List, error) {
	list := &List{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "-*•"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		item, err := parseItemLine(line)
		if err != nil {
			list.Warnings = append(list.Warnings, fmt.Sprintf("skipped %q: %v", line, err))
			continue
		}
		list.Items = append(list.Items, *item)
	}

	if len(list.Items) == 0 {
		return nil, ErrNoItems
	}
	return list, nil
}

// parseItemLine parses a single line such as "cabe merah 250g", "telur 10
// butir" or "2 kg beras". The first amount wins; later numbers stay in the
// description.
func parseItemLine(line string) (*Item, error) {
	tokens := strings.Fields(strings.ToLower(line))

	amount := decimal.NewFromInt(1)
	measure := MeasureNone
	var desc []string
	found := false

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if found {
			desc = append(desc, tok)
			continue
		}
		if q, m, ok := parseQtyUnitToken(tok); ok {
			amount, measure, found = q, m, true
			continue
		}
		if q, ok := parseNumber(tok); ok {
			amount, found = q, true
			if i+1 < len(tokens) {
				if u, ok := unitFactors[tokens[i+1]]; ok {
					amount = amount.Mul(decimal.NewFromInt(u.factor))
					measure = u.measure
					i++
				}
			}
			continue
		}
		desc = append(desc, tok)
	}

	if len(desc) == 0 {
		return nil, errors.New("no product name")
	}
	if !amount.IsPositive() {
		return nil, ErrBadAmount
	}
	return &Item{
		RawText:     line,
		Description: strings.Join(desc, " "),
		Amount:      amount,
		Measure:     measure,
	}, nil
}

// parseNumber accepts "1.5" and the comma decimal "1,5".
func parseNumber(tok string) (decimal.Decimal, bool) {
	tok = strings.Replace(tok, ",", ".", 1)
	if tok == "" || !unicode.IsDigit(rune(tok[0])) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(tok)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// parseQtyUnitToken parses "5kg" into (5000, MeasureGrams). Only known units
// match.
func parseQtyUnitToken(tok string) (decimal.Decimal, Measure, bool) {
	digitEnd := 0
	for i, r := range tok {
		if unicode.IsDigit(r) || r == '.' || r == ',' {
			digitEnd = i + 1
		} else {
			break
		}
	}
	if digitEnd == 0 || digitEnd == len(tok) {
		return decimal.Zero, MeasureNone, false
	}

	u, ok := unitFactors[tok[digitEnd:]]
	if !ok {
		return decimal.Zero, MeasureNone, false
	}
	q, ok := parseNumber(tok[:digitEnd])
	if !ok {
		return decimal.Zero, MeasureNone, false
	}
	return q.Mul(decimal.NewFromInt(u.factor)), u.measure, true
}

// ServerQuantity converts the line amount into the backend cart quantity for
// a product sold in unit: grams for weight units, a count for piece units.
func (it Item) ServerQuantity(unit quantity.Unit) (int64, error) {
	var q decimal.Decimal
	switch {
	case unit.IsWeight() && it.Measure == MeasureGrams:
		q = it.Amount.Round(0)
	case unit.IsWeight() && it.Measure == MeasureNone:
		q = it.Amount.Mul(decimal.NewFromInt(1000)).Round(0)
	case !unit.IsWeight() && it.Measure != MeasureGrams:
		if !it.Amount.Equal(it.Amount.Truncate(0)) {
			return 0, fmt.Errorf("%w: pieces must be whole", ErrWrongMeasure)
		}
		q = it.Amount
	case unit.IsWeight():
		return 0, fmt.Errorf("%w: sold by weight", ErrWrongMeasure)
	default:
		return 0, fmt.Errorf("%w: sold per piece", ErrWrongMeasure)
	}

	if !q.IsPositive() {
		return 0, ErrBadAmount
	}
	return q.IntPart(), nil
}
