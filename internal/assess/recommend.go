package assess

import (
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/eunoia-signals/internal/model"
	"github.com/rcliao/eunoia-signals/internal/trend"
)

// recommend derives follow-up actions from the latest message, the detected
// patterns and how often protective factors came up recently.
func recommend(history []model.ScoreResult, p trend.Patterns, cfg Config) []string {
	recs := []string{}
	th := cfg.Risk.Thresholds

	if n := len(history); n > 0 {
		latest := history[n-1].TotalScore
		switch {
		case latest >= th.Critical:
			recs = append(recs,
				"IMMEDIATE INTERVENTION: contact emergency services or a crisis line",
				"Provide emergency numbers: 911 or the national suicide prevention line (988)")
		case latest >= th.High:
			recs = append(recs,
				"HIGH RISK: schedule an urgent session with a mental health professional",
				"Activate the family and social support network")
		}
	}

	if p.FrequencyEscalation != nil && p.FrequencyEscalation.Detected {
		recs = append(recs, "Escalation pattern detected: increase monitoring frequency")
	}
	if p.PersistentThemes != nil && p.PersistentThemes.Detected {
		recs = append(recs, fmt.Sprintf("Persistent themes detected (%s): focus therapy on these areas",
			strings.Join(p.PersistentThemes.Themes, ", ")))
	}

	if p.DecliningProtective != nil && p.DecliningProtective.Detected {
		recs = append(recs, "Protective factors come up less than before: revisit coping strategies and the support network")
	}

	recent := history[max(0, len(history)-cfg.RecentWindow):]
	if trend.ProtectiveCount(recent) < cfg.ProtectiveMinimum {
		recs = append(recs, "Strengthen protective factors: identify and build coping strategies")
	}
	return recs
}

var alertActions = map[model.Level][]string{
	model.LevelCritical: {
		"Contact emergency services immediately",
		"Notify the assigned therapist",
		"Activate the crisis protocol",
		"Consider immediate in-person intervention",
	},
	model.LevelHigh: {
		"Schedule an urgent appointment with the therapist",
		"Increase follow-up frequency",
		"Activate the family and social support network",
		"Consider adjusting the treatment plan",
	},
	model.LevelMedium: {
		"Schedule a follow-up within 24-48 hours",
		"Offer self-help resources",
		"Monitor more closely",
		"Suggest coping techniques",
	},
	model.LevelLow: {
		"Continue regular follow-up",
		"Reinforce protective factors",
		"Keep communication open",
	},
}

// Actions returns the alert actions recommended for a level.
func Actions(l model.Level) []string {
	return append([]string(nil), alertActions[l]...)
}

func newAlert(l model.Level, score float64, cfg Config, at time.Time) *Alert {
	a := &Alert{
		Level:                      l,
		Score:                      score,
		RequiresImmediateAttention: l == model.LevelCritical,
		Actions:                    Actions(l),
		CreatedAt:                  at,
	}
	if l == model.LevelCritical {
		a.EmergencyContacts = append([]string(nil), cfg.EmergencyContacts...)
	}
	return a
}
