package model

import (
	"fmt"
	"strings"
)

// Level is the ordinal risk bucket of a score.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
	LevelCritical
)

var levelNames = [...]string{"low", "medium", "high", "critical"}

func (l Level) String() string {
	if l < LevelLow || l > LevelCritical {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// AtLeast reports whether l is the same as or above o.
func (l Level) AtLeast(o Level) bool { return l >= o }

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelLow, fmt.Errorf("invalid level %q (valid: low, medium, high, critical)", s)
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Match is one keyword found in a text.
type Match struct {
	Category string `json:"category"`
	Keyword  string `json:"keyword"`
	Kind     string `json:"kind"`
}

// ScoreResult is the scored form of one message.
type ScoreResult struct {
	PerCategory                map[string]float64 `json:"per_category"`
	TotalNegative              float64            `json:"total_negative"`
	ProtectiveAdjustment       float64            `json:"protective_adjustment"`
	Polarity                   float64            `json:"polarity"`
	TotalScore                 float64            `json:"total_score"`
	Level                      Level              `json:"level"`
	Matched                    []Match            `json:"matched"`
	WordCount                  int                `json:"word_count"`
	RequiresImmediateAttention bool               `json:"requires_immediate_attention"`
}

// TrendLevel is the direction reported by the trend detector.
type TrendLevel string

const (
	TrendInsufficientData TrendLevel = "insufficient_data"
	TrendEscalating       TrendLevel = "escalating"
	TrendImproving        TrendLevel = "improving"
	TrendStable           TrendLevel = "stable"
)

// TrendResult summarises a window comparison over a score history.
type TrendResult struct {
	Level                TrendLevel `json:"level"`
	RecentAvg            float64    `json:"recent_avg"`
	OlderAvg             float64    `json:"older_avg"`
	PersistentCategories []string   `json:"persistent_categories"`
	Samples              int        `json:"samples"`
	Skipped              int        `json:"skipped,omitempty"`
}
