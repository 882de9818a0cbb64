// Package lexicon matches free text against weighted keyword categories.
package lexicon

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/rcliao/eunoia-signals/internal/model"
)

// Kind says how a category takes part in risk aggregation.
type Kind string

const (
	KindRisk       Kind = "risk"
	KindProtective Kind = "protective"
	KindPositive   Kind = "positive"
	KindNeutral    Kind = "neutral"
)

var validKinds = map[Kind]bool{
	KindRisk:       true,
	KindProtective: true,
	KindPositive:   true,
	KindNeutral:    true,
}

// Category is a named keyword list with its weight and severity label.
type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Kind     Kind     `yaml:"kind" json:"kind"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	Weight   float64  `yaml:"weight,omitempty" json:"weight"`
	Severity string   `yaml:"severity,omitempty" json:"severity,omitempty"`
}

// Duplicate records a keyword dropped from a later category because an
// earlier category already claimed it.
type Duplicate struct {
	Keyword string `json:"keyword"`
	Kept    string `json:"kept"`
	Dropped string `json:"dropped"`
}

// Lexicon is an immutable, compiled set of categories.
type Lexicon struct {
	name       string
	categories []Category
	index      map[string]int
	duplicates []Duplicate
}

// Hits is the outcome of matching one text.
type Hits struct {
	// Counts holds the number of distinct keywords found per category.
	// Every category is present, unmatched ones with 0.
	Counts  map[string]int
	Matched []model.Match
}

// New compiles categories into a Lexicon. Keywords are normalized; a keyword
// listed in more than one category stays with the first one.
// A zero weight is treated as 1.
func New(name string, categories []Category) (*Lexicon, error) {
	l := &Lexicon{
		name:  name,
		index: make(map[string]int, len(categories)),
	}
	owner := map[string]string{}

	for _, c := range categories {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, fmt.Errorf("category name is required")
		}
		if _, ok := l.index[c.Name]; ok {
			return nil, fmt.Errorf("duplicate category %q", c.Name)
		}
		if c.Kind == "" {
			c.Kind = KindRisk
		}
		if !validKinds[c.Kind] {
			return nil, fmt.Errorf("category %q: invalid kind %q (valid: risk, protective, positive, neutral)", c.Name, c.Kind)
		}
		if c.Weight < 0 {
			return nil, fmt.Errorf("category %q: negative weight %v", c.Name, c.Weight)
		}
		if c.Weight == 0 {
			c.Weight = 1
		}
		if c.Severity != "" {
			if _, err := model.ParseLevel(c.Severity); err != nil {
				return nil, fmt.Errorf("category %q: %w", c.Name, err)
			}
		}

		keywords := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			n := Normalize(kw)
			if n == "" {
				return nil, fmt.Errorf("category %q: keyword %q is empty after normalization", c.Name, kw)
			}
			if prev, ok := owner[n]; ok {
				if prev != c.Name {
					l.duplicates = append(l.duplicates, Duplicate{Keyword: n, Kept: prev, Dropped: c.Name})
				}
				continue
			}
			owner[n] = c.Name
			keywords = append(keywords, n)
		}
		c.Keywords = keywords

		l.index[c.Name] = len(l.categories)
		l.categories = append(l.categories, c)
	}

	return l, nil
}

// MustNew is New for static presets.
func MustNew(name string, categories []Category) *Lexicon {
	l, err := New(name, categories)
	if err != nil {
		panic(err)
	}
	return l
}

// Name returns the lexicon name.
func (l *Lexicon) Name() string { return l.name }

// Categories returns a copy of the compiled categories in declaration order.
func (l *Lexicon) Categories() []Category {
	out := make([]Category, len(l.categories))
	for i, c := range l.categories {
		c.Keywords = append([]string(nil), c.Keywords...)
		out[i] = c
	}
	return out
}

// Category looks up a category by name.
func (l *Lexicon) Category(name string) (Category, bool) {
	i, ok := l.index[name]
	if !ok {
		return Category{}, false
	}
	return l.categories[i], true
}

// Duplicates lists keywords dropped by the first-category-wins rule.
func (l *Lexicon) Duplicates() []Duplicate {
	return append([]Duplicate(nil), l.duplicates...)
}

// Match finds every keyword of every category in text. Matching is a plain
// substring test on the normalized text, so "triste" also hits "contristado".
func (l *Lexicon) Match(text string) Hits {
	hits := Hits{Counts: make(map[string]int, len(l.categories))}
	for _, c := range l.categories {
		hits.Counts[c.Name] = 0
	}

	normalized := Normalize(text)
	if normalized == "" {
		return hits
	}

	type found struct {
		keyword string
		pos     int
	}
	for _, c := range l.categories {
		var fs []found
		for _, kw := range c.Keywords {
			if p := strings.Index(normalized, kw); p >= 0 {
				fs = append(fs, found{keyword: kw, pos: p})
			}
		}
		// first occurrence in the text, keyword order on ties
		sort.SliceStable(fs, func(i, j int) bool { return fs[i].pos < fs[j].pos })

		hits.Counts[c.Name] = len(fs)
		for _, f := range fs {
			hits.Matched = append(hits.Matched, model.Match{
				Category: c.Name,
				Keyword:  f.keyword,
				Kind:     string(c.Kind),
			})
		}
	}

	return hits
}

// Normalize lower-cases text, composes it to NFC, replaces punctuation and
// symbols with spaces and collapses whitespace runs.
func Normalize(text string) string {
	text = norm.NFC.String(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}
