package patterns

import (
	"context"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/rcliao/eunoia-signals/internal/lexicon"
	"github.com/rcliao/eunoia-signals/internal/model"
	"github.com/rcliao/eunoia-signals/internal/sentiment"
)

// Polarity levels for the recent mood insight.
const (
	NegativeMoodPolarity = -0.3
	PositiveMoodPolarity = 0.3
	insightWindow        = 5
	previewRunes         = 100
)

// Point is one user message on the sentiment timeline.
type Point struct {
	MessageID  string    `json:"message_id"`
	At         time.Time `json:"at"`
	Polarity   float64   `json:"polarity"`
	CrisisHits []string  `json:"crisis_hits,omitempty"`
	Length     int       `json:"length"`
	Preview    string    `json:"preview"`
}

// Insight is a user-facing observation about the history.
type Insight struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// Timeline builds the sentiment timeline of the timestamped user messages,
// oldest first, and returns how many were skipped for lacking a timestamp.
func Timeline(ctx context.Context, msgs []model.Message, analyzer sentiment.Analyzer, crisis *lexicon.Lexicon) ([]Point, int, error) {
	if analyzer == nil {
		analyzer = sentiment.NewKeywordAnalyzer(nil)
	}
	if crisis == nil {
		crisis = lexicon.Crisis()
	}

	points := []Point{}
	skipped := 0
	for _, m := range msgs {
		if m.Sender != model.SenderUser {
			continue
		}
		if m.Timestamp.IsZero() {
			skipped++
			continue
		}
		p, err := analyzer.Polarity(ctx, m.Content)
		if err != nil {
			return nil, 0, fmt.Errorf("polarity of %s: %w", m.ID, err)
		}
		var hits []string
		for _, match := range crisis.Match(m.Content).Matched {
			if match.Kind == string(lexicon.KindRisk) {
				hits = append(hits, match.Keyword)
			}
		}
		points = append(points, Point{
			MessageID:  m.ID,
			At:         m.Timestamp,
			Polarity:   p,
			CrisisHits: hits,
			Length:     utf8.RuneCountInString(m.Content),
			Preview:    clip(m.Content, previewRunes),
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].At.Before(points[j].At) })
	return points, skipped, nil
}

// Insights derives observations from the timeline and activity summary.
func Insights(points []Point, act Activity) []Insight {
	insights := []Insight{}

	if len(points) > 0 {
		recent := points[max(0, len(points)-insightWindow):]
		var sum float64
		for _, p := range recent {
			sum += p.Polarity
		}
		switch avg := sum / float64(len(recent)); {
		case avg < NegativeMoodPolarity:
			insights = append(insights, Insight{
				Type:     "warning",
				Category: "mood",
				Message:  "Recent mood is trending negative. Consider scheduling a session with your therapist.",
				Priority: "high",
			})
		case avg > PositiveMoodPolarity:
			insights = append(insights, Insight{
				Type:     "positive",
				Category: "mood",
				Message:  "Your mood is improving. Keep up the strategies that are working for you!",
				Priority: "medium",
			})
		}
	}

	for _, p := range points {
		if len(p.CrisisHits) > 0 {
			insights = append(insights, Insight{
				Type:     "alert",
				Category: "crisis",
				Message:  "Crisis indicators detected. Seeking professional support right away is important.",
				Priority: "critical",
			})
			break
		}
	}

	if act.Frequency == FrequencySporadic {
		insights = append(insights, Insight{
			Type:     "suggestion",
			Category: "engagement",
			Message:  "Consider more regular conversations for better follow-up of your wellbeing.",
			Priority: "low",
		})
	}
	return insights
}

// Report is the combined pattern analysis of one conversation.
type Report struct {
	ConversationID string    `json:"conversation_id"`
	Activity       Activity  `json:"activity"`
	Mood           Mood      `json:"mood"`
	Timeline       []Point   `json:"timeline"`
	Insights       []Insight `json:"insights"`
}

// Options configures Analyze. Zero values use the keyword analyzer, the
// built-in lexicons and UTC.
type Options struct {
	Analyzer sentiment.Analyzer
	Crisis   *lexicon.Lexicon
	Moods    *lexicon.Lexicon
	Location *time.Location
}

// Analyze runs every pattern analysis over msgs.
func Analyze(ctx context.Context, conversationID string, msgs []model.Message, opts Options) (*Report, error) {
	points, _, err := Timeline(ctx, msgs, opts.Analyzer, opts.Crisis)
	if err != nil {
		return nil, err
	}
	act := AnalyzeActivity(msgs, opts.Location)
	return &Report{
		ConversationID: conversationID,
		Activity:       act,
		Mood:           AnalyzeMood(msgs, opts.Moods, opts.Location),
		Timeline:       points,
		Insights:       Insights(points, act),
	}, nil
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
