package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/eunoia-signals/internal/assess"
	"github.com/rcliao/eunoia-signals/internal/lexicon"
	"github.com/rcliao/eunoia-signals/internal/risk"
	"github.com/rcliao/eunoia-signals/internal/trend"
)

// Profile is an analysis profile. Unset sections keep the preset defaults.
type Profile struct {
	Preset       string               `yaml:"preset,omitempty"`
	Thresholds   *risk.Thresholds     `yaml:"thresholds,omitempty"`
	WeightedHits *bool                `yaml:"weighted_hits,omitempty"`
	Trend        *trend.Config        `yaml:"trend,omitempty"`
	Patterns     *trend.PatternConfig `yaml:"patterns,omitempty"`
	Assessment   *AssessmentProfile   `yaml:"assessment,omitempty"`
	Lexicon      *lexicon.File        `yaml:"lexicon,omitempty"`
}

// AssessmentProfile overrides conversation assessment settings.
type AssessmentProfile struct {
	RecentWindow      int      `yaml:"recent_window,omitempty"`
	MinMessages       int      `yaml:"min_messages,omitempty"`
	ProtectiveMinimum *int     `yaml:"protective_minimum,omitempty"`
	EmergencyContacts []string `yaml:"emergency_contacts,omitempty"`
}

// Analysis is a resolved profile, ready to use.
type Analysis struct {
	Lexicon *lexicon.Lexicon
	Assess  assess.Config
}

// ParseProfile decodes a YAML profile. Unknown fields are an error.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &p, nil
}

// LoadProfile reads a YAML profile file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(data)
}

// Resolve overlays the profile onto its preset. A non-empty preset argument
// replaces the profile's own preset. A nil profile resolves the preset alone.
func (p *Profile) Resolve(preset string) (*Analysis, error) {
	if p == nil {
		p = &Profile{}
	}
	if preset == "" {
		preset = p.Preset
	}
	if preset == "" {
		preset = risk.DefaultConfig().Name
	}

	rc, err := risk.Preset(preset)
	if err != nil {
		return nil, err
	}
	if p.Thresholds != nil {
		rc.Thresholds = *p.Thresholds
	}
	if p.WeightedHits != nil {
		rc.WeightedHits = *p.WeightedHits
	}
	if err := rc.Thresholds.Validate(); err != nil {
		return nil, err
	}

	ac := assess.DefaultConfig()
	ac.Risk = rc
	// the crisis frequency check follows the medium threshold
	ac.Patterns.CrisisScore = rc.Thresholds.Medium
	if p.Trend != nil {
		ac.Trend = *p.Trend
	}
	if p.Patterns != nil {
		ac.Patterns = *p.Patterns
		if ac.Patterns.CrisisScore <= 0 {
			ac.Patterns.CrisisScore = rc.Thresholds.Medium
		}
	}
	if a := p.Assessment; a != nil {
		if a.RecentWindow > 0 {
			ac.RecentWindow = a.RecentWindow
		}
		if a.MinMessages > 0 {
			ac.MinMessages = a.MinMessages
		}
		if a.ProtectiveMinimum != nil {
			ac.ProtectiveMinimum = *a.ProtectiveMinimum
		}
		if len(a.EmergencyContacts) > 0 {
			ac.EmergencyContacts = a.EmergencyContacts
		}
	}

	lex := lexicon.Crisis()
	if p.Lexicon != nil {
		name := p.Lexicon.Name
		if name == "" {
			name = "profile"
		}
		lex, err = lexicon.New(name, p.Lexicon.Categories)
		if err != nil {
			return nil, fmt.Errorf("profile lexicon: %w", err)
		}
	}

	return &Analysis{Lexicon: lex, Assess: ac}, nil
}

// Dump renders an analysis back to a complete profile.
func (a *Analysis) Dump() ([]byte, error) {
	weighted := a.Assess.Risk.WeightedHits
	th := a.Assess.Risk.Thresholds
	tc := a.Assess.Trend
	pc := a.Assess.Patterns
	pm := a.Assess.ProtectiveMinimum
	file := a.Lexicon.File()
	p := Profile{
		Preset:       a.Assess.Risk.Name,
		Thresholds:   &th,
		WeightedHits: &weighted,
		Trend:        &tc,
		Patterns:     &pc,
		Assessment: &AssessmentProfile{
			RecentWindow:      a.Assess.RecentWindow,
			MinMessages:       a.Assess.MinMessages,
			ProtectiveMinimum: &pm,
			EmergencyContacts: a.Assess.EmergencyContacts,
		},
		Lexicon: &file,
	}
	return yaml.Marshal(p)
}
