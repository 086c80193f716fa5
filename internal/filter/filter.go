// Package filter narrows conversation sets by date, status, product, client
// and free text. Every active criterion intersects the result.
package filter

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"chatdash.app/api/internal/model"
)

// StatusAll disables the status filter.
const StatusAll = "TODAS"

// Filters is the full filter configuration. Zero values are no-ops.
type Filters struct {
	DatePreset DatePreset `json:"datePreset"`
	StartDate  *time.Time `json:"startDate"`
	EndDate    *time.Time `json:"endDate"`
	Status     string     `json:"status"`
	Product    string     `json:"product"`
	Client     string     `json:"client"`
	SearchText string     `json:"searchText"`
}

// Clear returns the neutral filter set.
func Clear() Filters {
	return Filters{Status: StatusAll}
}

// HasActive reports whether any criterion would narrow the result.
func (f Filters) HasActive() bool {
	return f.DatePreset != "" ||
		f.StartDate != nil ||
		f.EndDate != nil ||
		(f.Status != "" && f.Status != StatusAll) ||
		f.Product != "" ||
		f.Client != "" ||
		f.SearchText != ""
}

// Engine applies Filters using an injected clock for relative presets.
type Engine struct {
	clock    clockwork.Clock
	location *time.Location
}

func NewEngine(clock clockwork.Clock, location *time.Location) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if location == nil {
		location = time.Local
	}
	return &Engine{clock: clock, location: location}
}

func (e *Engine) Now() time.Time {
	return e.clock.Now().In(e.location)
}

func (e *Engine) Location() *time.Location {
	return e.location
}

// Apply returns a new slice holding the conversations that pass every active filter.
func (e *Engine) Apply(convs []model.Conversation, f Filters) []model.Conversation {
	out := make([]model.Conversation, len(convs))
	copy(out, convs)

	if f.StartDate != nil || f.EndDate != nil {
		out = e.ByDateRange(out, f.StartDate, f.EndDate)
	}
	if f.DatePreset != "" {
		out = e.ByDatePreset(out, f.DatePreset)
	}
	if f.Status != "" && f.Status != StatusAll {
		out = ByStatus(out, model.Status(f.Status))
	}
	if f.Product != "" {
		out = ByProduct(out, f.Product)
	}
	if f.Client != "" {
		out = ByClient(out, f.Client)
	}
	if f.SearchText != "" {
		out = BySearchText(out, f.SearchText)
	}
	return out
}

// ByDateRange keeps conversations dated from the start of start's day through
// the end of end's day. Either bound may be nil.
func (e *Engine) ByDateRange(convs []model.Conversation, start, end *time.Time) []model.Conversation {
	if start == nil && end == nil {
		return convs
	}

	var from, to time.Time
	if start != nil {
		from = startOfDay(start.In(e.location))
	}
	if end != nil {
		to = endOfDay(end.In(e.location))
	}

	return where(convs, func(c model.Conversation) bool {
		if start != nil && c.Date.Before(from) {
			return false
		}
		if end != nil && c.Date.After(to) {
			return false
		}
		return true
	})
}

// ByDatePreset resolves preset against the engine clock. Unknown presets are no-ops.
func (e *Engine) ByDatePreset(convs []model.Conversation, preset DatePreset) []model.Conversation {
	start, end, ok := preset.Range(e.Now())
	if !ok {
		return convs
	}
	return e.ByDateRange(convs, &start, &end)
}

func ByStatus(convs []model.Conversation, status model.Status) []model.Conversation {
	if status == "" || status == StatusAll {
		return convs
	}
	return where(convs, func(c model.Conversation) bool { return c.Status == status })
}

func ByProduct(convs []model.Conversation, product string) []model.Conversation {
	if product == "" {
		return convs
	}
	needle := strings.ToLower(product)
	return where(convs, func(c model.Conversation) bool {
		return anyContains(c.Products, needle)
	})
}

func ByClient(convs []model.Conversation, client string) []model.Conversation {
	if client == "" {
		return convs
	}
	needle := strings.ToLower(client)
	return where(convs, func(c model.Conversation) bool {
		return contains(c.ClientName, needle) || contains(c.ClientPhone, needle)
	})
}

// BySearchText matches client name, phone, initial message, products and
// every raw message body.
func BySearchText(convs []model.Conversation, text string) []model.Conversation {
	if text == "" {
		return convs
	}
	needle := strings.ToLower(text)
	return where(convs, func(c model.Conversation) bool {
		if contains(c.ClientName, needle) || contains(c.ClientPhone, needle) || contains(c.InitialMessage, needle) {
			return true
		}
		if anyContains(c.Products, needle) {
			return true
		}
		for _, m := range c.Messages {
			if contains(m.Data.Content, needle) {
				return true
			}
		}
		return false
	})
}

func where(convs []model.Conversation, keep func(model.Conversation) bool) []model.Conversation {
	out := make([]model.Conversation, 0, len(convs))
	for _, c := range convs {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func contains(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}

func anyContains(values []string, lowerNeedle string) bool {
	for _, v := range values {
		if contains(v, lowerNeedle) {
			return true
		}
	}
	return false
}
