package trend

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rcliao/eunoia-signals/internal/model"
)

func scores(vals ...float64) []model.ScoreResult {
	out := make([]model.ScoreResult, len(vals))
	for i, v := range vals {
		out[i] = model.ScoreResult{TotalScore: v}
	}
	return out
}

func withMatch(r model.ScoreResult, category, kind string) model.ScoreResult {
	r.Matched = append(r.Matched, model.Match{Category: category, Keyword: category, Kind: kind})
	return r
}

func TestDetect_InsufficientData(t *testing.T) {
	for _, h := range [][]model.ScoreResult{nil, {}, scores(5), scores(1, 20)} {
		got := Detect(h, DefaultConfig())
		if got.Level != model.TrendInsufficientData {
			t.Errorf("len %d: level = %s, want insufficient_data", len(h), got.Level)
		}
		if got.RecentAvg != 0 || got.OlderAvg != 0 {
			t.Errorf("len %d: expected zero averages, got %+v", len(h), got)
		}
		if got.PersistentCategories == nil {
			t.Errorf("len %d: expected empty, non-nil categories", len(h))
		}
	}
}

func TestDetect_MinHistoryFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinHistory = 1
	if got := Detect(scores(1, 2), cfg); got.Level != model.TrendInsufficientData {
		t.Errorf("level = %s, want insufficient_data", got.Level)
	}
}

func TestDetect_Escalating(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Recent, cfg.Older = 3, 3

	got := Detect(scores(1, 1, 1, 8, 9, 10), cfg)
	if got.RecentAvg != 9 {
		t.Errorf("recent avg = %v, want 9", got.RecentAvg)
	}
	if got.OlderAvg != 1 {
		t.Errorf("older avg = %v, want 1", got.OlderAvg)
	}
	if got.Level != model.TrendEscalating {
		t.Errorf("level = %s, want escalating", got.Level)
	}
	if got.Samples != 6 {
		t.Errorf("samples = %d, want 6", got.Samples)
	}
}

func TestDetect_Levels(t *testing.T) {
	tests := []struct {
		name      string
		history   []model.ScoreResult
		want      model.TrendLevel
		recentAvg float64
		olderAvg  float64
	}{
		{"improving", scores(10, 10, 10, 2, 3, 4), model.TrendImproving, 3, 10},
		{"stable", scores(4, 5, 6, 5, 5, 5), model.TrendStable, 5, 5},
		{"only recent window, older defaults to zero", scores(1, 2, 3), model.TrendEscalating, 2, 0},
		{"all zero is stable", scores(0, 0, 0, 0), model.TrendStable, 0, 0},
		{"partial older window", scores(2, 3, 3, 3), model.TrendStable, 3, 2},
		{"only last six count", scores(50, 50, 1, 1, 1, 1, 1, 1), model.TrendStable, 1, 1},
		{"less negative is not escalation", scores(-2, -2, -2, -2.5, -2.5, -2.5), model.TrendStable, -2.5, -2},
		{"steady negative is stable", scores(-1, -1, -1, -1, -1, -1), model.TrendStable, -1, -1},
		{"negative to positive escalates", scores(-2, -2, -2, 1, 1, 1), model.TrendEscalating, 1, -2},
		{"positive to negative improves", scores(3, 3, 3, -1, -1, -1), model.TrendImproving, -1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.history, DefaultConfig())
			if got.Level != tt.want {
				t.Errorf("level = %s, want %s", got.Level, tt.want)
			}
			if math.Abs(got.RecentAvg-tt.recentAvg) > 1e-9 {
				t.Errorf("recent avg = %v, want %v", got.RecentAvg, tt.recentAvg)
			}
			if math.Abs(got.OlderAvg-tt.olderAvg) > 1e-9 {
				t.Errorf("older avg = %v, want %v", got.OlderAvg, tt.olderAvg)
			}
		})
	}
}

func TestDetect_CustomFactors(t *testing.T) {
	cfg := Config{Recent: 2, Older: 2, EscalationFactor: 3, ImprovementFactor: 0.1}
	// recent 4 vs older 2: not above 2*3, not below 2*0.1
	if got := Detect(scores(2, 2, 4, 4), cfg); got.Level != model.TrendStable {
		t.Errorf("level = %s, want stable", got.Level)
	}
}

func TestDetect_PersistentThemes(t *testing.T) {
	var h []model.ScoreResult
	for i := 0; i < 4; i++ {
		r := model.ScoreResult{TotalScore: 3}
		r = withMatch(r, "hopelessness", "risk")
		if i%2 == 0 {
			r = withMatch(r, "isolation", "risk")
		}
		r = withMatch(r, "support", "protective")
		h = append(h, r)
	}

	got := Detect(h, DefaultConfig())
	if !reflect.DeepEqual(got.PersistentCategories, []string{"hopelessness"}) {
		t.Errorf("persistent = %v, want [hopelessness]", got.PersistentCategories)
	}

	// protective categories never count as themes, however frequent
	for _, c := range got.PersistentCategories {
		if c == "support" {
			t.Error("protective category reported as theme")
		}
	}
}

func TestDetect_PersistentThemesWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ThemeWindow = 3

	h := []model.ScoreResult{
		withMatch(model.ScoreResult{}, "self_harm", "risk"),
		withMatch(model.ScoreResult{}, "self_harm", "risk"),
		withMatch(model.ScoreResult{}, "self_harm", "risk"),
		{}, {}, {},
	}
	if got := Detect(h, cfg); len(got.PersistentCategories) != 0 {
		t.Errorf("expected themes outside the window to be ignored, got %v", got.PersistentCategories)
	}
}

func TestDetectSamples_SkipsMissingTimestamps(t *testing.T) {
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	samples := []Sample{
		{At: base.Add(5 * time.Hour), Result: model.ScoreResult{TotalScore: 10}},
		{At: time.Time{}, Result: model.ScoreResult{TotalScore: 100}},
		{At: base.Add(4 * time.Hour), Result: model.ScoreResult{TotalScore: 9}},
		{At: base, Result: model.ScoreResult{TotalScore: 1}},
		{At: base.Add(3 * time.Hour), Result: model.ScoreResult{TotalScore: 8}},
		{At: base.Add(2 * time.Hour), Result: model.ScoreResult{TotalScore: 1}},
		{At: base.Add(1 * time.Hour), Result: model.ScoreResult{TotalScore: 1}},
	}

	got := DetectSamples(samples, DefaultConfig())
	if got.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", got.Skipped)
	}
	if got.Samples != 6 {
		t.Errorf("samples = %d, want 6", got.Samples)
	}
	if got.Level != model.TrendEscalating || got.RecentAvg != 9 || got.OlderAvg != 1 {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestDetectSamples_AllSkipped(t *testing.T) {
	samples := []Sample{{Result: model.ScoreResult{TotalScore: 1}}, {}, {}}
	got := DetectSamples(samples, DefaultConfig())
	if got.Level != model.TrendInsufficientData {
		t.Errorf("level = %s, want insufficient_data", got.Level)
	}
	if got.Skipped != 3 {
		t.Errorf("skipped = %d, want 3", got.Skipped)
	}
}

func TestOrder_Stable(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	out, skipped := Order([]Sample{
		{At: at, Result: model.ScoreResult{TotalScore: 1}},
		{At: at, Result: model.ScoreResult{TotalScore: 2}},
	})
	if skipped != 0 || out[0].TotalScore != 1 || out[1].TotalScore != 2 {
		t.Errorf("expected insertion order kept for equal timestamps, got %v", out)
	}
}

func TestOrderSamples_KeepsIDs(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	out, skipped := OrderSamples([]Sample{
		{ID: "b", At: at.Add(time.Hour)},
		{ID: "none"},
		{ID: "a", At: at},
	})
	if skipped != 1 || len(out) != 2 || out[0].ID != "a" || out[1].ID != "b" {
		t.Errorf("got %+v skipped %d", out, skipped)
	}
}
