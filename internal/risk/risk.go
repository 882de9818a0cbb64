// Package risk aggregates lexicon hits and sentiment polarity into a single
// risk score and buckets it into an ordinal level.
//
// For every matched category the score is
//
//	hits / max(1, words) * weight
//
// where hits is the number of distinct keywords found (multiplied by the
// weight again when WeightedHits is set). Risk categories add to the total,
// protective categories subtract count*weight, and negative polarity adds
// max(0, -polarity).
package risk

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rcliao/eunoia-signals/internal/lexicon"
	"github.com/rcliao/eunoia-signals/internal/model"
)

// Default thresholds of the crisis preset.
const (
	DefaultMediumThreshold   = 5.0
	DefaultHighThreshold     = 10.0
	DefaultCriticalThreshold = 15.0
)

// Thresholds are the lower bounds of the medium, high and critical levels.
type Thresholds struct {
	Medium   float64 `yaml:"medium" json:"medium"`
	High     float64 `yaml:"high" json:"high"`
	Critical float64 `yaml:"critical" json:"critical"`
}

// Level buckets a score.
func (t Thresholds) Level(score float64) model.Level {
	switch {
	case score >= t.Critical:
		return model.LevelCritical
	case score >= t.High:
		return model.LevelHigh
	case score >= t.Medium:
		return model.LevelMedium
	default:
		return model.LevelLow
	}
}

// Validate checks that the thresholds are positive and strictly increasing.
func (t Thresholds) Validate() error {
	if t.Medium <= 0 || t.High <= t.Medium || t.Critical <= t.High {
		return fmt.Errorf("thresholds must satisfy 0 < medium < high < critical, got %v/%v/%v", t.Medium, t.High, t.Critical)
	}
	return nil
}

// Config selects thresholds and the hit weighting scheme.
type Config struct {
	Name         string     `yaml:"name" json:"name"`
	Thresholds   Thresholds `yaml:"thresholds" json:"thresholds"`
	WeightedHits bool       `yaml:"weighted_hits" json:"weighted_hits"`
}

var presets = map[string]Config{
	"crisis": {
		Name:         "crisis",
		Thresholds:   Thresholds{Medium: DefaultMediumThreshold, High: DefaultHighThreshold, Critical: DefaultCriticalThreshold},
		WeightedHits: true,
	},
	"linear": {
		Name:       "linear",
		Thresholds: Thresholds{Medium: DefaultMediumThreshold, High: DefaultHighThreshold, Critical: DefaultCriticalThreshold},
	},
	"ratio": {
		Name:       "ratio",
		Thresholds: Thresholds{Medium: 0.3, High: 0.5, Critical: 0.8},
	},
}

// DefaultConfig returns the crisis preset.
func DefaultConfig() Config {
	return presets["crisis"]
}

// Preset returns a named configuration.
func Preset(name string) (Config, error) {
	c, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown preset %q (valid: %v)", name, PresetNames())
	}
	return c, nil
}

// PresetNames lists the built-in presets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Score computes the ScoreResult of text. Polarity is clamped to [-1, 1].
// Empty text always yields a zero result at level low.
func Score(text string, lex *lexicon.Lexicon, polarity float64, cfg Config) model.ScoreResult {
	cats := lex.Categories()
	res := model.ScoreResult{
		PerCategory: make(map[string]float64, len(cats)),
		Matched:     []model.Match{},
	}
	for _, c := range cats {
		res.PerCategory[c.Name] = 0
	}

	if strings.TrimSpace(text) == "" {
		return res
	}

	res.WordCount = len(strings.Fields(text))
	res.Polarity = math.Max(-1, math.Min(1, polarity))

	hits := lex.Match(text)
	words := float64(max(1, res.WordCount))

	for _, c := range cats {
		n := hits.Counts[c.Name]
		if n == 0 {
			continue
		}
		if c.Kind == lexicon.KindProtective {
			adj := float64(n) * c.Weight
			res.PerCategory[c.Name] = adj
			res.ProtectiveAdjustment += adj
			continue
		}

		raw := float64(n)
		if cfg.WeightedHits {
			raw *= c.Weight
		}
		s := raw / words * c.Weight
		res.PerCategory[c.Name] = s
		if c.Kind == lexicon.KindRisk {
			res.TotalNegative += s
		}
	}
	if len(hits.Matched) > 0 {
		res.Matched = hits.Matched
	}

	res.TotalScore = res.TotalNegative - res.ProtectiveAdjustment + math.Max(0, -res.Polarity)
	res.Level = cfg.Thresholds.Level(res.TotalScore)
	res.RequiresImmediateAttention = res.TotalScore >= cfg.Thresholds.Critical

	return res
}

// Scorer binds a lexicon and a configuration.
type Scorer struct {
	Lexicon *lexicon.Lexicon
	Config  Config
}

// Score scores text with the bound lexicon and configuration.
func (s Scorer) Score(text string, polarity float64) model.ScoreResult {
	return Score(text, s.Lexicon, polarity, s.Config)
}
