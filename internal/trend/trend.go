// Package trend compares recent and older windows of per-message scores.
package trend

import (
	"sort"
	"time"

	"github.com/rcliao/eunoia-signals/internal/lexicon"
	"github.com/rcliao/eunoia-signals/internal/model"
)

const (
	DefaultRecent            = 3
	DefaultOlder             = 3
	DefaultEscalationFactor  = 1.5
	DefaultImprovementFactor = 0.7
	DefaultThemeWindow       = 10
	DefaultThemeThreshold    = 3
	DefaultMinHistory        = 3
)

// Config configures window sizes and factors.
type Config struct {
	Recent            int     `yaml:"recent" json:"recent"`
	Older             int     `yaml:"older" json:"older"`
	EscalationFactor  float64 `yaml:"escalation_factor" json:"escalation_factor"`
	ImprovementFactor float64 `yaml:"improvement_factor" json:"improvement_factor"`
	ThemeWindow       int     `yaml:"theme_window" json:"theme_window"`
	ThemeThreshold    int     `yaml:"theme_threshold" json:"theme_threshold"`
	MinHistory        int     `yaml:"min_history" json:"min_history"`
}

// DefaultConfig returns the default trend configuration.
func DefaultConfig() Config {
	return Config{
		Recent:            DefaultRecent,
		Older:             DefaultOlder,
		EscalationFactor:  DefaultEscalationFactor,
		ImprovementFactor: DefaultImprovementFactor,
		ThemeWindow:       DefaultThemeWindow,
		ThemeThreshold:    DefaultThemeThreshold,
		MinHistory:        DefaultMinHistory,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Recent <= 0 {
		c.Recent = d.Recent
	}
	if c.Older <= 0 {
		c.Older = d.Older
	}
	if c.EscalationFactor <= 0 {
		c.EscalationFactor = d.EscalationFactor
	}
	if c.ImprovementFactor <= 0 {
		c.ImprovementFactor = d.ImprovementFactor
	}
	if c.ThemeWindow <= 0 {
		c.ThemeWindow = d.ThemeWindow
	}
	if c.ThemeThreshold <= 0 {
		c.ThemeThreshold = d.ThemeThreshold
	}
	// never fewer than three samples
	if c.MinHistory < DefaultMinHistory {
		c.MinHistory = DefaultMinHistory
	}
	return c
}

// Detect reports the trend of history, oldest first. Histories shorter than
// MinHistory are reported as insufficient data. The reported averages keep
// their sign; the comparison treats negative averages as zero.
func Detect(history []model.ScoreResult, cfg Config) model.TrendResult {
	cfg = cfg.withDefaults()
	res := model.TrendResult{
		Level:                model.TrendInsufficientData,
		PersistentCategories: []string{},
		Samples:              len(history),
	}
	if len(history) < cfg.MinHistory {
		return res
	}

	n := len(history)
	recentStart := max(0, n-cfg.Recent)
	olderStart := max(0, recentStart-cfg.Older)

	res.RecentAvg = mean(history[recentStart:])
	res.OlderAvg = mean(history[olderStart:recentStart])

	// negative averages carry no risk and compare as zero
	recent, older := max(res.RecentAvg, 0), max(res.OlderAvg, 0)
	switch {
	case recent > older*cfg.EscalationFactor:
		res.Level = model.TrendEscalating
	case recent < older*cfg.ImprovementFactor:
		res.Level = model.TrendImproving
	default:
		res.Level = model.TrendStable
	}

	res.PersistentCategories = persistentThemes(history, cfg.ThemeWindow, cfg.ThemeThreshold)
	return res
}

// Sample is a score with the message it came from.
type Sample struct {
	ID     string
	At     time.Time
	Result model.ScoreResult
}

// DetectSamples orders samples by time and runs Detect. Samples without a
// timestamp are skipped and counted.
func DetectSamples(samples []Sample, cfg Config) model.TrendResult {
	history, skipped := Order(samples)
	res := Detect(history, cfg)
	res.Skipped = skipped
	return res
}

// Order drops samples with a zero timestamp and returns the remaining
// results sorted oldest first, along with the number dropped.
func Order(samples []Sample) ([]model.ScoreResult, int) {
	valid, skipped := OrderSamples(samples)
	out := make([]model.ScoreResult, len(valid))
	for i, s := range valid {
		out[i] = s.Result
	}
	return out, skipped
}

// OrderSamples is Order keeping the samples. Equal timestamps keep their
// input order.
func OrderSamples(samples []Sample) ([]Sample, int) {
	valid := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if s.At.IsZero() {
			continue
		}
		valid = append(valid, s)
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].At.Before(valid[j].At) })
	return valid, len(samples) - len(valid)
}

// persistentThemes returns the risk categories matched at least threshold
// times across the last window results, sorted by name.
func persistentThemes(history []model.ScoreResult, window, threshold int) []string {
	counts := map[string]int{}
	for _, r := range history[max(0, len(history)-window):] {
		for _, m := range r.Matched {
			if m.Kind == string(lexicon.KindRisk) {
				counts[m.Category]++
			}
		}
	}

	themes := []string{}
	for cat, n := range counts {
		if n >= threshold {
			themes = append(themes, cat)
		}
	}
	sort.Strings(themes)
	return themes
}

func mean(rs []model.ScoreResult) float64 {
	if len(rs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rs {
		sum += r.TotalScore
	}
	return sum / float64(len(rs))
}
