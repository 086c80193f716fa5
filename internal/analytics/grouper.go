package analytics

import (
	"fmt"
	"sort"
	"time"

	"chatdash.app/api/internal/model"
)

// Period selects the calendar granularity used by GroupChatsByPeriod.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod maps user input to a Period, defaulting to PeriodDay.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodWeek:
		return PeriodWeek
	case PeriodMonth:
		return PeriodMonth
	default:
		return PeriodDay
	}
}

// PeriodKey formats the start of the period containing t as a sortable key.
// Weeks start on Monday.
func PeriodKey(t time.Time, period Period) string {
	switch period {
	case PeriodWeek:
		offset := (int(t.Weekday()) + 6) % 7
		return startOfDay(t).AddDate(0, 0, -offset).Format("2006-01-02")
	case PeriodMonth:
		return t.Format("2006-01")
	default:
		return startOfDay(t).Format("2006-01-02")
	}
}

// GroupChatsByPeriod buckets conversations by start date, ascending by key.
func GroupChatsByPeriod(convs []model.Conversation, period Period) []model.PeriodBucket {
	if len(convs) == 0 {
		return []model.PeriodBucket{}
	}

	index := make(map[string]int)
	buckets := make([]model.PeriodBucket, 0)
	for _, c := range convs {
		key := PeriodKey(c.Date, period)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, model.PeriodBucket{Date: key})
		}
		buckets[i].Count++
		buckets[i].Add(c.Status)
	}

	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Date < buckets[j].Date })
	return buckets
}

// AnalyzeProductMentions ranks products by the number of conversations
// mentioning them, with per-status breakdown.
func AnalyzeProductMentions(convs []model.Conversation) []model.ProductStats {
	index := make(map[string]int)
	stats := make([]model.ProductStats, 0)
	for _, c := range convs {
		for _, p := range c.Products {
			i, ok := index[p]
			if !ok {
				i = len(stats)
				index[p] = i
				stats = append(stats, model.ProductStats{Name: p})
			}
			stats[i].Mentions++
			stats[i].Conversations++
			stats[i].Add(c.Status)
		}
	}

	for i := range stats {
		if stats[i].Conversations > 0 {
			stats[i].ConversionRate = round1(float64(stats[i].Won) / float64(stats[i].Conversations) * 100)
		}
	}

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Mentions > stats[j].Mentions })
	return stats
}

// AnalyzeConversationHours returns a 24-slot histogram of start hours.
func AnalyzeConversationHours(convs []model.Conversation) []model.HourSlot {
	if len(convs) == 0 {
		return []model.HourSlot{}
	}

	slots := make([]model.HourSlot, 24)
	for h := range slots {
		slots[h].Hour = fmt.Sprintf("%02d:00", h)
	}
	for _, c := range convs {
		slots[c.Date.Hour()].Count++
	}
	return slots
}

// GetPeakHours returns the topN busiest hours. Ties keep ascending hour order.
func GetPeakHours(convs []model.Conversation, topN int) []model.HourSlot {
	slots := AnalyzeConversationHours(convs)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Count > slots[j].Count })
	if topN >= 0 && len(slots) > topN {
		slots = slots[:topN]
	}
	return slots
}

var dayNames = []string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

// AnalyzeByDayOfWeek returns a Sunday-first histogram with won/lost counts.
func AnalyzeByDayOfWeek(convs []model.Conversation) []model.DaySlot {
	if len(convs) == 0 {
		return []model.DaySlot{}
	}

	days := make([]model.DaySlot, len(dayNames))
	for i, name := range dayNames {
		days[i] = model.DaySlot{Day: name, DayIndex: i}
	}
	for _, c := range convs {
		d := &days[int(c.Date.Weekday())]
		d.Count++
		switch c.Status {
		case model.StatusWon:
			d.Won++
		case model.StatusLost:
			d.Lost++
		}
	}
	return days
}

// AnalyzeClients aggregates conversations per client, keyed by phone with the
// name as fallback, most active first.
func AnalyzeClients(convs []model.Conversation) []model.ClientStats {
	index := make(map[string]int)
	clients := make([]model.ClientStats, 0)
	for _, c := range convs {
		key := c.ClientPhone
		if key == "" {
			key = c.ClientName
		}
		i, ok := index[key]
		if !ok {
			i = len(clients)
			index[key] = i
			clients = append(clients, model.ClientStats{
				Phone:           c.ClientPhone,
				Name:            c.ClientName,
				LastInteraction: c.Date,
				Products:        []string{},
			})
		}
		cs := &clients[i]
		cs.ConversationCount++
		cs.Add(c.Status)
		if c.Date.After(cs.LastInteraction) {
			cs.LastInteraction = c.Date
		}
		cs.Products = appendUnique(cs.Products, c.Products...)
	}

	sort.SliceStable(clients, func(i, j int) bool {
		return clients[i].ConversationCount > clients[j].ConversationCount
	})
	return clients
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
