package shoplist

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Cabe Merah Keriting", "cabe merah keriting"},
		{"BERAS  Pandan", "beras pandan"},
		{"minyak,goreng", "minyak goreng"},
		{"telur (ayam)!", "telur ayam"},
	}
	for _, tt := range tests {
		if got := normalize(tt.input); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func catalog() []Entry {
	return []Entry{
		{ID: "rice", Name: "Beras Pandan Wangi"},
		{ID: "chili-red", Name: "Cabai Merah Keriting"},
		{ID: "chili-green", Name: "Cabai Hijau"},
		{ID: "egg-chicken", Name: "Telur Ayam"},
		{ID: "egg-duck", Name: "Telur Bebek"},
		{ID: "shallot", Name: "Bawang Merah"},
		{ID: "garlic", Name: "Bawang Putih"},
	}
}

func TestMatch(t *testing.T) {
	m := NewMatcher(catalog())

	tests := []struct {
		name   string
		input  string
		status MatchStatus
		id     string
		n      int
	}{
		{"name word", "beras", Matched, "rice", 0},
		{"more shared words", "beras pandan", Matched, "rice", 0},
		{"alias and variant", "cabe merah kriting", Matched, "chili-red", 0},
		{"variant narrows", "cabai merah", Matched, "chili-red", 0},
		{"variant filters out others", "telur bebek", Matched, "egg-duck", 0},
		{"variant keeps type apart", "bawang putih", Matched, "garlic", 0},
		{"tie", "cabe", Ambiguous, "", 2},
		{"tie on shared word", "telur", Ambiguous, "", 2},
		{"unknown", "sabun cuci", Unmatched, "", 0},
		{"variant nobody has", "telur puyuh", Unmatched, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := m.Match(tt.input)
			if res.Status != tt.status {
				t.Fatalf("Match(%q) status = %s, want %s", tt.input, res.Status, tt.status)
			}
			if tt.id != "" && res.Entry.ID != tt.id {
				t.Errorf("Match(%q) = %s, want %s", tt.input, res.Entry.ID, tt.id)
			}
			if len(res.Candidates) != tt.n {
				t.Errorf("Match(%q) candidates = %d, want %d", tt.input, len(res.Candidates), tt.n)
			}
		})
	}
}
