package analytics

import (
	"math"
	"sort"

	"chatdash.app/api/internal/model"
)

const topProductsLimit = 10

// CalculateKPIs summarizes a conversation set. An empty set yields zero values.
func CalculateKPIs(convs []model.Conversation) model.KPISummary {
	if len(convs) == 0 {
		return model.KPISummary{TopProducts: []model.ProductCount{}}
	}

	var (
		counts        model.StatusCounts
		totalDuration float64
		products      = newCounter()
		phones        = make(map[string]struct{})
	)

	for _, c := range convs {
		counts.Add(c.Status)
		totalDuration += c.Duration
		for _, p := range c.Products {
			products.inc(p)
		}
		if c.ClientPhone != "" {
			phones[c.ClientPhone] = struct{}{}
		}
	}

	top := products.sorted()
	if len(top) > topProductsLimit {
		top = top[:topProductsLimit]
	}

	total := float64(len(convs))
	return model.KPISummary{
		TotalConversations:   len(convs),
		OpenConversations:    counts.Open,
		WonConversations:     counts.Won,
		LostConversations:    counts.Lost,
		PendingConversations: counts.Pending,
		AverageResponseTime:  round1(totalDuration / total / 60),
		ConversionRate:       round1(float64(counts.Won) / total * 100),
		TopProducts:          top,
		TotalUniqueClients:   len(phones),
	}
}

// GetConversationMetrics reports message volume, duration and abandonment.
func GetConversationMetrics(convs []model.Conversation) model.ConversationMetrics {
	if len(convs) == 0 {
		return model.ConversationMetrics{}
	}

	var messages int
	var duration float64
	var pending int
	for _, c := range convs {
		messages += c.MessageCount
		duration += c.Duration
		if c.Status == model.StatusPending {
			pending++
		}
	}

	total := float64(len(convs))
	return model.ConversationMetrics{
		AverageMessagesPerConversation: round1(float64(messages) / total),
		AverageDuration:                round1(duration / total / 60),
		AbandonmentRate:                round1(float64(pending) / total * 100),
	}
}

// counter tallies keys and remembers first-seen order for stable ranking.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) inc(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) sorted() []model.ProductCount {
	out := make([]model.ProductCount, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, model.ProductCount{Product: k, Count: c.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// round1 rounds half up to one decimal place.
func round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Floor(v*10+0.5) / 10
}
