// Package patterns summarizes when users write and how their mood moves
// over a conversation history.
package patterns

import (
	"sort"
	"time"
	"unicode/utf8"

	"github.com/rcliao/eunoia-signals/internal/model"
)

// Frequency buckets for the average gap between user messages.
const (
	FrequencyInsufficient = "insufficient_data"
	FrequencyDaily        = "daily"
	FrequencyWeekly       = "weekly"
	FrequencyMonthly      = "monthly"
	FrequencySporadic     = "sporadic"
)

const topN = 3

// HourCount is the number of messages sent in an hour of the day.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// DayCount is the number of messages sent on a weekday.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// Activity describes when and how much a user writes.
type Activity struct {
	TotalMessages    int         `json:"total_messages"`
	AvgMessageLength float64     `json:"avg_message_length"`
	ActiveHours      []HourCount `json:"active_hours"`
	ActiveDays       []DayCount  `json:"active_days"`
	AvgDaysBetween   float64     `json:"avg_days_between"`
	Frequency        string      `json:"frequency"`
	Skipped          int         `json:"skipped,omitempty"`
}

// AnalyzeActivity summarizes user messages. Hours and weekdays are taken in
// loc (UTC when nil); messages without a timestamp only count toward totals.
func AnalyzeActivity(msgs []model.Message, loc *time.Location) Activity {
	if loc == nil {
		loc = time.UTC
	}
	act := Activity{
		ActiveHours: []HourCount{},
		ActiveDays:  []DayCount{},
		Frequency:   FrequencyInsufficient,
	}

	var hours [24]int
	var days [7]int
	var stamps []time.Time
	var runes int
	for _, m := range msgs {
		if m.Sender != model.SenderUser {
			continue
		}
		act.TotalMessages++
		runes += utf8.RuneCountInString(m.Content)
		if m.Timestamp.IsZero() {
			act.Skipped++
			continue
		}
		t := m.Timestamp.In(loc)
		hours[t.Hour()]++
		days[t.Weekday()]++
		stamps = append(stamps, t)
	}
	if act.TotalMessages == 0 {
		return act
	}
	act.AvgMessageLength = float64(runes) / float64(act.TotalMessages)

	for h, n := range hours {
		if n > 0 {
			act.ActiveHours = append(act.ActiveHours, HourCount{Hour: h, Count: n})
		}
	}
	sort.SliceStable(act.ActiveHours, func(i, j int) bool { return act.ActiveHours[i].Count > act.ActiveHours[j].Count })
	act.ActiveHours = act.ActiveHours[:min(topN, len(act.ActiveHours))]

	for d, n := range days {
		if n > 0 {
			act.ActiveDays = append(act.ActiveDays, DayCount{Day: time.Weekday(d).String(), Count: n})
		}
	}
	sort.SliceStable(act.ActiveDays, func(i, j int) bool { return act.ActiveDays[i].Count > act.ActiveDays[j].Count })
	act.ActiveDays = act.ActiveDays[:min(topN, len(act.ActiveDays))]

	if len(stamps) >= 2 {
		sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
		span := stamps[len(stamps)-1].Sub(stamps[0])
		act.AvgDaysBetween = span.Hours() / 24 / float64(len(stamps)-1)
		act.Frequency = frequency(act.AvgDaysBetween)
	}
	return act
}

func frequency(avgDays float64) string {
	switch {
	case avgDays < 1:
		return FrequencyDaily
	case avgDays < 7:
		return FrequencyWeekly
	case avgDays < 30:
		return FrequencyMonthly
	default:
		return FrequencySporadic
	}
}
