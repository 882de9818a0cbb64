// Package assess builds a crisis risk assessment of a whole conversation
// from per-message scores, trend and escalation patterns.
package assess

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rcliao/eunoia-signals/internal/lexicon"
	"github.com/rcliao/eunoia-signals/internal/model"
	"github.com/rcliao/eunoia-signals/internal/risk"
	"github.com/rcliao/eunoia-signals/internal/sentiment"
	"github.com/rcliao/eunoia-signals/internal/trend"
)

// DefaultEmergencyContacts are attached to critical alerts.
var DefaultEmergencyContacts = []string{
	"988 Suicide & Crisis Lifeline: call or text 988",
	"Emergencies: 911",
	"Crisis Text Line: text HOLA to 741741",
}

// Config tunes an assessment.
type Config struct {
	Risk     risk.Config         `yaml:"-" json:"-"`
	Trend    trend.Config        `yaml:"trend" json:"trend"`
	Patterns trend.PatternConfig `yaml:"patterns" json:"patterns"`

	// RecentWindow is the number of latest user messages averaged for the
	// overall score and checked for immediate intervention.
	RecentWindow int `yaml:"recent_window" json:"recent_window"`
	// MinMessages is the fewest user messages worth assessing.
	MinMessages int `yaml:"min_messages" json:"min_messages"`
	// ProtectiveMinimum is the number of protective mentions in the recent
	// window below which strengthening them is recommended.
	ProtectiveMinimum int `yaml:"protective_minimum" json:"protective_minimum"`
	PreviewRunes      int `yaml:"preview_runes" json:"preview_runes"`

	EmergencyContacts []string `yaml:"emergency_contacts" json:"emergency_contacts"`
}

// DefaultConfig returns the default assessment configuration.
func DefaultConfig() Config {
	return Config{
		Risk:              risk.DefaultConfig(),
		Trend:             trend.DefaultConfig(),
		Patterns:          trend.DefaultPatternConfig(),
		RecentWindow:      5,
		MinMessages:       2,
		ProtectiveMinimum: 2,
		PreviewRunes:      100,
		EmergencyContacts: DefaultEmergencyContacts,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Risk.Thresholds.Validate() != nil {
		c.Risk = d.Risk
	}
	if c.RecentWindow <= 0 {
		c.RecentWindow = d.RecentWindow
	}
	if c.MinMessages <= 0 {
		c.MinMessages = d.MinMessages
	}
	if c.ProtectiveMinimum < 0 {
		c.ProtectiveMinimum = d.ProtectiveMinimum
	}
	if c.PreviewRunes <= 0 {
		c.PreviewRunes = d.PreviewRunes
	}
	if c.EmergencyContacts == nil {
		c.EmergencyContacts = d.EmergencyContacts
	}
	return c
}

// MessageScore is the score of one user message.
type MessageScore struct {
	MessageID string            `json:"message_id"`
	Timestamp time.Time         `json:"timestamp"`
	Result    model.ScoreResult `json:"result"`
}

// Highlight points at the highest-risk message.
type Highlight struct {
	MessageID string    `json:"message_id"`
	Preview   string    `json:"preview"`
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score"`
}

// Alert is raised for high and critical assessments.
type Alert struct {
	Level                      model.Level `json:"level"`
	Score                      float64     `json:"score"`
	RequiresImmediateAttention bool        `json:"requires_immediate_attention"`
	Actions                    []string    `json:"actions"`
	EmergencyContacts          []string    `json:"emergency_contacts,omitempty"`
	CreatedAt                  time.Time   `json:"created_at"`
}

// Assessment is the outcome of assessing one conversation.
type Assessment struct {
	ConversationID        string            `json:"conversation_id"`
	UserID                string            `json:"user_id,omitempty"`
	AssessedAt            time.Time         `json:"assessed_at"`
	InsufficientData      bool              `json:"insufficient_data"`
	MessagesAnalyzed      int               `json:"messages_analyzed"`
	Skipped               int               `json:"skipped,omitempty"`
	AverageRecentScore    float64           `json:"average_recent_score"`
	MaxScore              float64           `json:"max_score"`
	HighestRisk           *Highlight        `json:"highest_risk,omitempty"`
	ImmediateIntervention bool              `json:"immediate_intervention"`
	EscalationDetected    bool              `json:"escalation_detected"`
	Level                 model.Level       `json:"level"`
	Trend                 model.TrendResult `json:"trend"`
	Patterns              trend.Patterns    `json:"patterns"`
	Recommendations       []string          `json:"recommendations"`
	Alert                 *Alert            `json:"alert,omitempty"`
	Scores                []MessageScore    `json:"scores,omitempty"`
}

// Assessor scores conversations. Analyzer may be nil, in which case every
// message has polarity 0.
type Assessor struct {
	Lexicon  *lexicon.Lexicon
	Analyzer sentiment.Analyzer
	Config   Config
	Logger   *slog.Logger
	Now      func() time.Time
}

// New returns an Assessor with the crisis lexicon and default config.
func New(analyzer sentiment.Analyzer, logger *slog.Logger) *Assessor {
	return &Assessor{
		Lexicon:  lexicon.Crisis(),
		Analyzer: analyzer,
		Config:   DefaultConfig(),
		Logger:   logger,
	}
}

func (a *Assessor) now() time.Time {
	if a.Now != nil {
		return a.Now().UTC()
	}
	return time.Now().UTC()
}

func (a *Assessor) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// Score scores the user messages of msgs in time order. Messages without a
// timestamp are skipped; the number skipped is returned.
func (a *Assessor) Score(ctx context.Context, msgs []model.Message) ([]MessageScore, int, error) {
	samples, err := a.samples(ctx, msgs)
	if err != nil {
		return nil, 0, err
	}
	ordered, skipped := trend.OrderSamples(samples)
	return messageScores(ordered), skipped, nil
}

// samples scores the timestamped user messages. User messages without a
// timestamp are kept unscored with a zero time so ordering counts them.
func (a *Assessor) samples(ctx context.Context, msgs []model.Message) ([]trend.Sample, error) {
	cfg := a.Config.withDefaults()
	lex := a.Lexicon
	if lex == nil {
		lex = lexicon.Crisis()
	}

	out := make([]trend.Sample, 0, len(msgs))
	for _, m := range msgs {
		if m.Sender != model.SenderUser {
			continue
		}
		if m.Timestamp.IsZero() {
			a.logger().Debug("skipping message without timestamp", "message", m.ID)
			out = append(out, trend.Sample{ID: m.ID})
			continue
		}
		var polarity float64
		if a.Analyzer != nil {
			p, err := a.Analyzer.Polarity(ctx, m.Content)
			if err != nil {
				return nil, fmt.Errorf("polarity of %s: %w", m.ID, err)
			}
			polarity = p
		}
		out = append(out, trend.Sample{
			ID:     m.ID,
			At:     m.Timestamp,
			Result: risk.Score(m.Content, lex, polarity, cfg.Risk),
		})
	}
	return out, nil
}

func messageScores(samples []trend.Sample) []MessageScore {
	out := make([]MessageScore, len(samples))
	for i, s := range samples {
		out[i] = MessageScore{MessageID: s.ID, Timestamp: s.At, Result: s.Result}
	}
	return out
}

// Assess assesses one conversation.
func (a *Assessor) Assess(ctx context.Context, conv model.Conversation, msgs []model.Message) (*Assessment, error) {
	cfg := a.Config.withDefaults()
	res := &Assessment{
		ConversationID:  conv.ID,
		UserID:          conv.UserID,
		AssessedAt:      a.now(),
		Recommendations: []string{},
	}

	users := 0
	for _, m := range msgs {
		if m.Sender == model.SenderUser {
			users++
		}
	}
	if users < cfg.MinMessages {
		res.InsufficientData = true
		return res, nil
	}

	samples, err := a.samples(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("assess %s: %w", conv.ID, err)
	}
	ordered, skipped := trend.OrderSamples(samples)
	scores := messageScores(ordered)
	res.Skipped = skipped
	if len(scores) == 0 {
		res.InsufficientData = true
		return res, nil
	}

	history := make([]model.ScoreResult, len(scores))
	for i, s := range scores {
		history[i] = s.Result
	}

	res.MessagesAnalyzed = len(scores)
	res.Scores = scores
	res.Trend = trend.DetectSamples(samples, cfg.Trend)
	res.Patterns = trend.DetectPatterns(history, cfg.Trend, cfg.Patterns)
	res.EscalationDetected = res.Patterns.Any()

	recent := scores[max(0, len(scores)-cfg.RecentWindow):]
	var sum float64
	for _, s := range recent {
		sum += s.Result.TotalScore
		if s.Result.RequiresImmediateAttention {
			res.ImmediateIntervention = true
		}
	}
	res.AverageRecentScore = sum / float64(len(recent))

	top := scores[0]
	for _, s := range scores[1:] {
		if s.Result.TotalScore > top.Result.TotalScore {
			top = s
		}
	}
	res.MaxScore = top.Result.TotalScore
	res.HighestRisk = &Highlight{
		MessageID: top.MessageID,
		Preview:   preview(contentOf(msgs, top.MessageID), cfg.PreviewRunes),
		Timestamp: top.Timestamp,
		Score:     top.Result.TotalScore,
	}

	res.Level = finalLevel(res.MaxScore, res.AverageRecentScore, res.EscalationDetected, cfg.Risk.Thresholds)
	res.Recommendations = recommend(history, res.Patterns, cfg)
	if res.Level.AtLeast(model.LevelHigh) {
		res.Alert = newAlert(res.Level, res.MaxScore, cfg, res.AssessedAt)
	}

	a.logger().Debug("assessed conversation",
		"conversation", conv.ID,
		"messages", res.MessagesAnalyzed,
		"level", res.Level.String(),
		"max", res.MaxScore)
	return res, nil
}

// finalLevel combines the peak score, recent average and pattern signal.
func finalLevel(maxScore, avg float64, escalation bool, th risk.Thresholds) model.Level {
	switch {
	case maxScore >= th.Critical || escalation:
		return model.LevelCritical
	case maxScore >= th.High || avg >= th.High:
		return model.LevelHigh
	case maxScore >= th.Medium || avg >= th.Medium:
		return model.LevelMedium
	default:
		return model.LevelLow
	}
}

func contentOf(msgs []model.Message, id string) string {
	for _, m := range msgs {
		if m.ID == id {
			return m.Content
		}
	}
	return ""
}

// preview truncates s to n runes, marking the cut with "...".
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
