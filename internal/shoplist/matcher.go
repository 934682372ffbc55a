package shoplist

import (
	"strings"
	"unicode"
)

// MatchStatus is the outcome of matching one list line.
type MatchStatus string

const (
	Matched   MatchStatus = "MATCHED"
	Ambiguous MatchStatus = "AMBIGUOUS"
	Unmatched MatchStatus = "UNMATCHED"
)

// Entry is a catalog product as the matcher sees it.
type Entry struct {
	ID   string
	Name string
}

// MatchResult carries the single Entry when Matched and the tied top
// candidates when Ambiguous.
type MatchResult struct {
	Status     MatchStatus
	Entry      *Entry
	Candidates []Entry
}

// Matcher scores list descriptions against catalog entries by the words they
// share with the product name.
type Matcher struct {
	entries  []Entry
	keywords [][]string
}

const (
	variantWeight = 5
	regularWeight = 1
)

// variantKeywords narrow a product down (colour, size, cut). When the list
// line names one, only entries carrying it can match.
var variantKeywords = map[string]bool{
	"merah":    true,
	"hijau":    true,
	"kuning":   true,
	"putih":    true,
	"hitam":    true,
	"rawit":    true,
	"keriting": true,
	"besar":    true,
	"kecil":    true,
	"sedang":   true,
	"ayam":     true,
	"bebek":    true,
	"puyuh":    true,
}

// NewMatcher pre-tokenizes the entry names. "Cabe" and "cabai" are spelled
// both ways on lists, so aliases are folded in both the names and the input.
func NewMatcher(entries []Entry) *Matcher {
	m := &Matcher{entries: entries, keywords: make([][]string, len(entries))}
	for i, e := range entries {
		seen := make(map[string]bool)
		var kws []string
		for _, tok := range tokens(e.Name) {
			if !seen[tok] {
				seen[tok] = true
				kws = append(kws, tok)
			}
		}
		m.keywords[i] = kws
	}
	return m
}

// Match finds the entry whose keywords best overlap the description.
func (m *Matcher) Match(description string) MatchResult {
	input := make(map[string]bool)
	variants := make(map[string]bool)
	for _, tok := range tokens(description) {
		input[tok] = true
		if variantKeywords[tok] {
			variants[tok] = true
		}
	}

	best := 0
	var top []Entry
	for i, e := range m.entries {
		kws := m.keywords[i]
		if !hasAll(kws, variants) {
			continue
		}

		score := 0
		for _, kw := range kws {
			if !input[kw] {
				continue
			}
			if variantKeywords[kw] {
				score += variantWeight
			} else {
				score += regularWeight
			}
		}

		switch {
		case score == 0 || score < best:
		case score > best:
			best = score
			top = []Entry{e}
		default:
			top = append(top, e)
		}
	}

	switch len(top) {
	case 0:
		return MatchResult{Status: Unmatched}
	case 1:
		return MatchResult{Status: Matched, Entry: &top[0]}
	}
	return MatchResult{Status: Ambiguous, Candidates: top}
}

func hasAll(keywords []string, want map[string]bool) bool {
	for w := range want {
		found := false
		for _, kw := range keywords {
			if kw == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// aliases maps common alternative spellings to the one used for matching.
var aliases = map[string]string{
	"cabe":    "cabai",
	"kriting": "keriting",
}

func tokens(s string) []string {
	toks := strings.Fields(normalize(s))
	for i, tok := range toks {
		if a, ok := aliases[tok]; ok {
			toks[i] = a
		}
	}
	return toks
}

// normalize lowercases s and turns everything but letters and digits into
// single spaces.
func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
