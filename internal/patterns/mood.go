package patterns

import (
	"fmt"
	"sort"
	"time"

	"github.com/rcliao/eunoia-signals/internal/lexicon"
	"github.com/rcliao/eunoia-signals/internal/model"
)

// MoodPoint is the dominant mood of one user message.
type MoodPoint struct {
	MessageID string         `json:"message_id"`
	At        time.Time      `json:"at"`
	Mood      string         `json:"mood"`
	Intensity int            `json:"intensity"`
	Scores    map[string]int `json:"scores"`
}

// MoodStats aggregates the points of one mood.
type MoodStats struct {
	Count        int     `json:"count"`
	Percentage   float64 `json:"percentage"`
	AvgIntensity float64 `json:"avg_intensity"`
	MaxIntensity int     `json:"max_intensity"`
	MinIntensity int     `json:"min_intensity"`
}

// Mood is the mood history of a conversation.
type Mood struct {
	Timeline     []MoodPoint               `json:"timeline"`
	Daily        map[string]map[string]int `json:"daily"`
	Hourly       map[int]map[string]int    `json:"hourly"`
	Transitions  map[string]map[string]int `json:"transitions"`
	Distribution map[string]MoodStats      `json:"distribution"`
	Insights     []string                  `json:"insights"`
	Skipped      int                       `json:"skipped,omitempty"`
}

// AnalyzeMood assigns each timestamped user message its dominant mood from
// lex (the mood indicator lexicon when nil). Messages without any mood
// keyword are left out. Risk categories of lex count as negative moods.
func AnalyzeMood(msgs []model.Message, lex *lexicon.Lexicon, loc *time.Location) Mood {
	if lex == nil {
		lex = lexicon.MoodIndicators()
	}
	if loc == nil {
		loc = time.UTC
	}
	mood := Mood{
		Timeline:     []MoodPoint{},
		Daily:        map[string]map[string]int{},
		Hourly:       map[int]map[string]int{},
		Transitions:  map[string]map[string]int{},
		Distribution: map[string]MoodStats{},
		Insights:     []string{},
	}

	var user []model.Message
	for _, m := range msgs {
		if m.Sender != model.SenderUser {
			continue
		}
		if m.Timestamp.IsZero() {
			mood.Skipped++
			continue
		}
		user = append(user, m)
	}
	sort.SliceStable(user, func(i, j int) bool { return user[i].Timestamp.Before(user[j].Timestamp) })

	cats := lex.Categories()
	prev := ""
	for _, m := range user {
		counts := lex.Match(m.Content).Counts
		best, intensity := "", 0
		for _, c := range cats {
			if counts[c.Name] > intensity {
				best, intensity = c.Name, counts[c.Name]
			}
		}
		if intensity == 0 {
			continue
		}

		t := m.Timestamp.In(loc)
		bump(mood.Daily, t.Format(time.DateOnly), best)
		bump(mood.Hourly, t.Hour(), best)
		if prev != "" && prev != best {
			bump(mood.Transitions, prev, best)
		}
		prev = best

		mood.Timeline = append(mood.Timeline, MoodPoint{
			MessageID: m.ID,
			At:        m.Timestamp,
			Mood:      best,
			Intensity: intensity,
			Scores:    counts,
		})
	}

	mood.Distribution = distribution(mood.Timeline)
	mood.Insights = moodInsights(mood, negativeMoods(cats))
	return mood
}

func bump[K comparable](m map[K]map[string]int, k K, mood string) {
	if m[k] == nil {
		m[k] = map[string]int{}
	}
	m[k][mood]++
}

func negativeMoods(cats []lexicon.Category) map[string]bool {
	neg := map[string]bool{}
	for _, c := range cats {
		if c.Kind == lexicon.KindRisk {
			neg[c.Name] = true
		}
	}
	return neg
}

func distribution(timeline []MoodPoint) map[string]MoodStats {
	dist := map[string]MoodStats{}
	sums := map[string]int{}
	for _, p := range timeline {
		s, ok := dist[p.Mood]
		if !ok {
			s.MinIntensity = p.Intensity
		}
		s.Count++
		s.MaxIntensity = max(s.MaxIntensity, p.Intensity)
		s.MinIntensity = min(s.MinIntensity, p.Intensity)
		sums[p.Mood] += p.Intensity
		dist[p.Mood] = s
	}
	for name, s := range dist {
		s.Percentage = float64(s.Count) / float64(len(timeline)) * 100
		s.AvgIntensity = float64(sums[name]) / float64(s.Count)
		dist[name] = s
	}
	return dist
}

func moodInsights(mood Mood, negative map[string]bool) []string {
	insights := []string{}
	tl := mood.Timeline
	if len(tl) == 0 {
		return insights
	}

	// most frequent, earliest seen on ties
	counts := map[string]int{}
	top := ""
	for _, p := range tl {
		counts[p.Mood]++
	}
	for _, p := range tl {
		if top == "" || counts[p.Mood] > counts[top] {
			top = p.Mood
		}
	}
	insights = append(insights, fmt.Sprintf("Most frequent mood is %q (%d times)", top, counts[top]))

	worstHour, worstHourN := -1, 0
	for h := 0; h < 24; h++ {
		if n := negativeCount(mood.Hourly[h], negative); n > worstHourN {
			worstHour, worstHourN = h, n
		}
	}
	if worstHour >= 0 {
		insights = append(insights, fmt.Sprintf("Hour with the most negative moods is %02d:00", worstHour))
	}

	if len(mood.Daily) >= 7 {
		insights = append(insights, fmt.Sprintf("Mood recorded over %d days", len(mood.Daily)))
	}
	days := make([]string, 0, len(mood.Daily))
	for d := range mood.Daily {
		days = append(days, d)
	}
	sort.Strings(days)
	worstDay, worstDayN := "", 0
	for _, d := range days {
		if n := negativeCount(mood.Daily[d], negative); n > worstDayN {
			worstDay, worstDayN = d, n
		}
	}
	if worstDay != "" {
		insights = append(insights, fmt.Sprintf("Day with the most negative moods was %s", worstDay))
	}

	if len(tl) >= 5 {
		seen := map[string]bool{}
		for _, p := range tl[len(tl)-5:] {
			seen[p.Mood] = true
		}
		switch {
		case len(seen) == 1:
			insights = append(insights, "Mood has been stable recently")
		case len(seen) >= 4:
			insights = append(insights, "Mood has been highly variable recently")
		}
	}
	return insights
}

func negativeCount(moods map[string]int, negative map[string]bool) int {
	n := 0
	for m, c := range moods {
		if negative[m] {
			n += c
		}
	}
	return n
}
