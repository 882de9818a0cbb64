package lexicon

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"punctuation only", "¡¿...!?", ""},
		{"lower and strip", "¡Hola,   MUNDO!!", "hola mundo"},
		{"keeps accents", "Me siento SOLO, sin mí estarían mejor.", "me siento solo sin mí estarían mejor"},
		{"composes decomposed accents", "autolesio\u0301n", "autolesi\u00f3n"},
		{"digits and underscore", "día_1: 100%", "día_1 100"},
		{"newlines collapse", "no\n\tpuedo   más", "no puedo más"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatch_CrisisScenario(t *testing.T) {
	hits := Crisis().Match("no quiero vivir, sin esperanza")

	if hits.Counts["suicide_indirect"] != 1 {
		t.Errorf("suicide_indirect = %d, want 1", hits.Counts["suicide_indirect"])
	}
	if hits.Counts["hopelessness"] != 1 {
		t.Errorf("hopelessness = %d, want 1", hits.Counts["hopelessness"])
	}
	// "esperanza" is also a protective keyword and matches inside "sin esperanza"
	if hits.Counts["hope"] != 1 {
		t.Errorf("hope = %d, want 1", hits.Counts["hope"])
	}

	var got []string
	for _, m := range hits.Matched {
		got = append(got, m.Category+":"+m.Keyword)
	}
	want := []string{"suicide_indirect:no quiero vivir", "hopelessness:sin esperanza", "hope:esperanza"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("matched = %v, want %v", got, want)
	}
	if hits.Matched[2].Kind != string(KindProtective) {
		t.Errorf("expected protective kind, got %q", hits.Matched[2].Kind)
	}
}

func TestMatch_AllCategoriesPresent(t *testing.T) {
	l := Crisis()
	hits := l.Match("hoy fue un buen día")
	if len(hits.Counts) != len(l.Categories()) {
		t.Fatalf("expected %d counts, got %d", len(l.Categories()), len(hits.Counts))
	}
	for name, n := range hits.Counts {
		if n != 0 {
			t.Errorf("%s = %d, want 0", name, n)
		}
	}
	if len(hits.Matched) != 0 {
		t.Errorf("expected no matches, got %v", hits.Matched)
	}
}

func TestMatch_CaseInsensitive(t *testing.T) {
	l := Crisis()
	lower := l.Match("he pensado en hacerme daño, es insoportable")
	upper := l.Match("HE PENSADO EN HACERME DAÑO, ES INSOPORTABLE")
	if !reflect.DeepEqual(lower, upper) {
		t.Errorf("case changed result:\nlower=%+v\nupper=%+v", lower, upper)
	}
	if lower.Counts["self_harm"] != 1 || lower.Counts["desperation"] != 1 {
		t.Errorf("unexpected counts %v", lower.Counts)
	}
}

func TestMatch_SubstringFalsePositive(t *testing.T) {
	hits := Mood().Match("Su tristeza era evidente")
	if hits.Counts["negative"] != 1 {
		t.Errorf("expected substring hit for 'triste' in 'tristeza', got %d", hits.Counts["negative"])
	}
}

func TestMatch_CountsDistinctKeywords(t *testing.T) {
	l := MustNew("t", []Category{{Name: "a", Keywords: []string{"solo"}}})
	hits := l.Match("solo, solo y solo")
	if hits.Counts["a"] != 1 {
		t.Errorf("expected 1 distinct keyword, got %d", hits.Counts["a"])
	}
}

func TestMatch_FirstSeenOrderWithinCategory(t *testing.T) {
	l := MustNew("t", []Category{{Name: "a", Keywords: []string{"beta", "alpha", "gamma"}}})
	hits := l.Match("gamma, then alpha, then beta")

	var got []string
	for _, m := range hits.Matched {
		got = append(got, m.Keyword)
	}
	want := []string{"gamma", "alpha", "beta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestMatch_EmptyText(t *testing.T) {
	hits := Crisis().Match("")
	if len(hits.Matched) != 0 {
		t.Errorf("expected no matches, got %v", hits.Matched)
	}
	if hits.Counts["suicide_direct"] != 0 {
		t.Error("expected zero counts")
	}
}

func TestNew_FirstCategoryWins(t *testing.T) {
	l, err := New("t", []Category{
		{Name: "a", Keywords: []string{"x", "y"}},
		{Name: "b", Keywords: []string{"Y!", "z"}},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	dups := l.Duplicates()
	if len(dups) != 1 {
		t.Fatalf("expected 1 duplicate, got %v", dups)
	}
	if dups[0] != (Duplicate{Keyword: "y", Kept: "a", Dropped: "b"}) {
		t.Errorf("unexpected duplicate %+v", dups[0])
	}

	hits := l.Match("y")
	if hits.Counts["a"] != 1 || hits.Counts["b"] != 0 {
		t.Errorf("expected first category to win, got %v", hits.Counts)
	}

	b, _ := l.Category("b")
	if !reflect.DeepEqual(b.Keywords, []string{"z"}) {
		t.Errorf("expected b keywords [z], got %v", b.Keywords)
	}
}

func TestNew_Defaults(t *testing.T) {
	l, err := New("t", []Category{{Name: "a", Keywords: []string{"x"}}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c, ok := l.Category("a")
	if !ok {
		t.Fatal("category not found")
	}
	if c.Kind != KindRisk {
		t.Errorf("expected default kind risk, got %q", c.Kind)
	}
	if c.Weight != 1 {
		t.Errorf("expected default weight 1, got %v", c.Weight)
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cats []Category
	}{
		{"empty name", []Category{{Name: " ", Keywords: []string{"x"}}}},
		{"duplicate category", []Category{{Name: "a"}, {Name: "a"}}},
		{"bad kind", []Category{{Name: "a", Kind: "bogus"}}},
		{"negative weight", []Category{{Name: "a", Weight: -1}}},
		{"bad severity", []Category{{Name: "a", Severity: "urgent"}}},
		{"empty keyword", []Category{{Name: "a", Keywords: []string{"!!!"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New("t", tt.cats); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPresets(t *testing.T) {
	for _, name := range PresetNames() {
		l, err := Preset(name)
		if err != nil {
			t.Fatalf("preset %s: %v", name, err)
		}
		if len(l.Duplicates()) != 0 {
			t.Errorf("preset %s has duplicates: %v", name, l.Duplicates())
		}
	}
	if _, err := Preset("nope"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	data, err := yaml.Marshal(Crisis().File())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "crisis.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(l.Categories(), Crisis().Categories()) {
		t.Error("loaded lexicon differs from preset")
	}
}

func TestParse(t *testing.T) {
	l, err := Parse([]byte(`
name: custom
categories:
  - name: grief
    kind: risk
    weight: 3
    severity: high
    keywords: [duelo, "lo extraño"]
  - name: faith
    kind: protective
    keywords: [fe]
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if l.Name() != "custom" {
		t.Errorf("expected name custom, got %q", l.Name())
	}
	hits := l.Match("Lo extraño mucho, pero tengo fe")
	if hits.Counts["grief"] != 1 || hits.Counts["faith"] != 1 {
		t.Errorf("unexpected counts %v", hits.Counts)
	}

	if _, err := Parse([]byte("name: empty\n")); err == nil {
		t.Error("expected error for lexicon without categories")
	}
}
