package trend

import (
	"github.com/rcliao/eunoia-signals/internal/lexicon"
	"github.com/rcliao/eunoia-signals/internal/model"
)

// PatternConfig configures the escalation pattern checks.
type PatternConfig struct {
	// CrisisScore is the score at which a message counts as a crisis message
	// for the frequency check; usually the medium threshold.
	CrisisScore      float64 `yaml:"crisis_score" json:"crisis_score"`
	FrequencyWindow  int     `yaml:"frequency_window" json:"frequency_window"`
	FrequencyFactor  float64 `yaml:"frequency_factor" json:"frequency_factor"`
	SeverityWindow   int     `yaml:"severity_window" json:"severity_window"`
	SeverityFactor   float64 `yaml:"severity_factor" json:"severity_factor"`
	ProtectiveWindow int     `yaml:"protective_window" json:"protective_window"`
}

// DefaultPatternConfig returns the default pattern configuration.
func DefaultPatternConfig() PatternConfig {
	return PatternConfig{
		CrisisScore:      5,
		FrequencyWindow:  7,
		FrequencyFactor:  1.5,
		SeverityWindow:   5,
		SeverityFactor:   1.3,
		ProtectiveWindow: 5,
	}
}

func (c PatternConfig) withDefaults() PatternConfig {
	d := DefaultPatternConfig()
	if c.CrisisScore <= 0 {
		c.CrisisScore = d.CrisisScore
	}
	if c.FrequencyWindow <= 0 {
		c.FrequencyWindow = d.FrequencyWindow
	}
	if c.FrequencyFactor <= 0 {
		c.FrequencyFactor = d.FrequencyFactor
	}
	if c.SeverityWindow <= 0 {
		c.SeverityWindow = d.SeverityWindow
	}
	if c.SeverityFactor <= 0 {
		c.SeverityFactor = d.SeverityFactor
	}
	if c.ProtectiveWindow <= 0 {
		c.ProtectiveWindow = d.ProtectiveWindow
	}
	return c
}

// RateChange compares the share of crisis messages in two periods.
type RateChange struct {
	Detected   bool    `json:"detected"`
	RecentRate float64 `json:"recent_rate"`
	OlderRate  float64 `json:"older_rate"`
}

// AvgChange compares the mean score of two periods.
type AvgChange struct {
	Detected  bool    `json:"detected"`
	RecentAvg float64 `json:"recent_avg"`
	OlderAvg  float64 `json:"older_avg"`
}

// CountChange compares protective factor mentions in two periods.
type CountChange struct {
	Detected bool `json:"detected"`
	Recent   int  `json:"recent"`
	Older    int  `json:"older"`
}

// Themes lists categories that keep coming back.
type Themes struct {
	Detected bool     `json:"detected"`
	Themes   []string `json:"themes"`
}

// Patterns holds the escalation checks that had enough data to run.
type Patterns struct {
	FrequencyEscalation *RateChange  `json:"frequency_escalation,omitempty"`
	SeverityEscalation  *AvgChange   `json:"severity_escalation,omitempty"`
	PersistentThemes    *Themes      `json:"persistent_themes,omitempty"`
	DecliningProtective *CountChange `json:"declining_protective,omitempty"`
}

// Any reports whether an escalation pattern was detected. Declining
// protective factors are reported but do not count as escalation.
func (p Patterns) Any() bool {
	return (p.FrequencyEscalation != nil && p.FrequencyEscalation.Detected) ||
		(p.SeverityEscalation != nil && p.SeverityEscalation.Detected) ||
		(p.PersistentThemes != nil && p.PersistentThemes.Detected)
}

// DetectPatterns runs the escalation checks over history, oldest first.
// Histories shorter than the trend MinHistory yield no patterns.
func DetectPatterns(history []model.ScoreResult, cfg Config, pc PatternConfig) Patterns {
	cfg = cfg.withDefaults()
	pc = pc.withDefaults()

	var p Patterns
	n := len(history)
	if n < cfg.MinHistory {
		return p
	}

	// more crisis messages recently than before
	fw := pc.FrequencyWindow
	if n > fw {
		recent := history[n-fw:]
		older := history[max(0, n-2*fw) : n-fw]
		rr := crisisRate(recent, pc.CrisisScore)
		or := crisisRate(older, pc.CrisisScore)
		p.FrequencyEscalation = &RateChange{
			Detected:   rr > or*pc.FrequencyFactor,
			RecentRate: rr,
			OlderRate:  or,
		}
	}

	// heavier language recently than before
	sw := pc.SeverityWindow
	if n >= 2*sw {
		ra := mean(history[n-sw:])
		oa := mean(history[n-2*sw : n-sw])
		p.SeverityEscalation = &AvgChange{
			Detected:  max(ra, 0) > max(oa, 0)*pc.SeverityFactor,
			RecentAvg: ra,
			OlderAvg:  oa,
		}
	}

	themes := persistentThemes(history, cfg.ThemeWindow, cfg.ThemeThreshold)
	p.PersistentThemes = &Themes{Detected: len(themes) > 0, Themes: themes}

	// fewer protective factors mentioned recently than before
	pw := pc.ProtectiveWindow
	if n >= 2*pw {
		rc := ProtectiveCount(history[n-pw:])
		oc := ProtectiveCount(history[n-2*pw : n-pw])
		p.DecliningProtective = &CountChange{Detected: rc < oc, Recent: rc, Older: oc}
	}

	return p
}

// ProtectiveCount counts protective keyword matches across results.
func ProtectiveCount(rs []model.ScoreResult) int {
	n := 0
	for _, r := range rs {
		for _, m := range r.Matched {
			if m.Kind == string(lexicon.KindProtective) {
				n++
			}
		}
	}
	return n
}

func crisisRate(rs []model.ScoreResult, threshold float64) float64 {
	if len(rs) == 0 {
		return 0
	}
	hits := 0
	for _, r := range rs {
		if r.TotalScore >= threshold {
			hits++
		}
	}
	return float64(hits) / float64(len(rs))
}
