package shoplist

import (
	"errors"
	"testing"

	"github.com/kiwari-pos/storefront/internal/quantity"
)

func TestParseItemLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		desc    string
		amount  string
		measure Measure
	}{
		{"attached kg", "beras 1.5kg", "beras", "1500", MeasureGrams},
		{"attached grams", "cabe merah 250g", "cabe merah", "250", MeasureGrams},
		{"separate unit", "telur 10 butir", "telur", "10", MeasurePieces},
		{"amount first", "2 kg Beras Pandan", "beras pandan", "2000", MeasureGrams},
		{"comma decimal", "bawang putih 0,5 kg", "bawang putih", "500", MeasureGrams},
		{"ons", "daging sapi 5ons", "daging sapi", "500", MeasureGrams},
		{"dozen", "telur 1 lusin", "telur", "12", MeasurePieces},
		{"bare number", "telur 6", "telur", "6", MeasureNone},
		{"no amount", "garam", "garam", "1", MeasureNone},
		{"second number kept", "minyak 2 liter 1", "minyak liter 1", "2", MeasureNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := parseItemLine(tt.input)
			if err != nil {
				t.Fatalf("parseItemLine(%q): %v", tt.input, err)
			}
			if item.Description != tt.desc {
				t.Errorf("description: got %q, want %q", item.Description, tt.desc)
			}
			if item.Amount.String() != tt.amount {
				t.Errorf("amount: got %s, want %s", item.Amount, tt.amount)
			}
			if item.Measure != tt.measure {
				t.Errorf("measure: got %d, want %d", item.Measure, tt.measure)
			}
		})
	}
}

func TestParseItemLine_Rejects(t *testing.T) {
	for _, input := range []string{"2kg", "0 beras", "5 butir"} {
		if _, err := parseItemLine(input); err == nil {
			t.Errorf("parseItemLine(%q): expected error", input)
		}
	}
}

func TestParse(t *testing.T) {
	text := "# belanja minggu ini\n" +
		"- beras 5kg\n" +
		"\n" +
		"* telur 10\n" +
		"500g\n" +
		"• cabe rawit 1 ons\n"

	list, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(list.Items) != 3 {
		t.Fatalf("items: got %d, want 3", len(list.Items))
	}
	if list.Items[2].Description != "cabe rawit" || list.Items[2].Amount.String() != "100" {
		t.Errorf("third item: got %+v", list.Items[2])
	}
	if len(list.Warnings) != 1 {
		t.Errorf("warnings: got %v, want 1", list.Warnings)
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := Parse("# nothing\n\n500g\n"); !errors.Is(err, ErrNoItems) {
		t.Errorf("got %v, want ErrNoItems", err)
	}
}

func TestServerQuantity(t *testing.T) {
	mustParse := func(s string) Item {
		item, err := parseItemLine(s)
		if err != nil {
			t.Fatalf("parseItemLine(%q): %v", s, err)
		}
		return *item
	}

	tests := []struct {
		name  string
		line  string
		unit  quantity.Unit
		want  int64
		isErr error
	}{
		{"grams on kg product", "beras 1.5kg", quantity.UnitKilogram, 1500, nil},
		{"bare number is kilograms", "beras 2", quantity.UnitKilogram, 2000, nil},
		{"bare fraction is kilograms", "beras 0.25", quantity.UnitGram, 250, nil},
		{"grams on gram product", "lada 100g", quantity.UnitGram, 100, nil},
		{"pieces", "telur 10 butir", quantity.UnitPiece, 10, nil},
		{"bare number is pieces", "telur 6", quantity.UnitPiece, 6, nil},
		{"default one piece", "semangka", quantity.UnitPiece, 1, nil},
		{"weight on piece product", "telur 500g", quantity.UnitPiece, 0, ErrWrongMeasure},
		{"pieces on weight product", "beras 2 biji", quantity.UnitKilogram, 0, ErrWrongMeasure},
		{"fractional pieces", "telur 1.5", quantity.UnitPiece, 0, ErrWrongMeasure},
		{"rounds to nothing", "lada 0.0001", quantity.UnitGram, 0, ErrBadAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mustParse(tt.line).ServerQuantity(tt.unit)
			if tt.isErr != nil {
				if !errors.Is(err, tt.isErr) {
					t.Fatalf("err: got %v, want %v", err, tt.isErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("quantity: got %d, want %d", got, tt.want)
			}
		})
	}
}
