package model

import "time"

// KPISummary aggregates a conversation set into dashboard counters.
type KPISummary struct {
	TotalConversations   int            `json:"totalConversations"`
	OpenConversations    int            `json:"openConversations"`
	WonConversations     int            `json:"wonConversations"`
	LostConversations    int            `json:"lostConversations"`
	PendingConversations int            `json:"pendingConversations"`
	AverageResponseTime  float64        `json:"averageResponseTime"` // minutes
	ConversionRate       float64        `json:"conversionRate"`      // percent
	TopProducts          []ProductCount `json:"topProducts"`
	TotalUniqueClients   int            `json:"totalUniqueClients"`
}

type ProductCount struct {
	Product string `json:"product"`
	Count   int    `json:"count"`
}

// StatusCounts holds per-status tallies.
type StatusCounts struct {
	Open    int `json:"open"`
	Won     int `json:"won"`
	Lost    int `json:"lost"`
	Pending int `json:"pending"`
}

// Add increments the counter matching status.
func (c *StatusCounts) Add(status Status) {
	switch status {
	case StatusOpen:
		c.Open++
	case StatusWon:
		c.Won++
	case StatusLost:
		c.Lost++
	case StatusPending:
		c.Pending++
	}
}

func (c StatusCounts) Total() int {
	return c.Open + c.Won + c.Lost + c.Pending
}

// PeriodBucket counts conversations that started within one calendar period.
type PeriodBucket struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	StatusCounts
}

type ProductStats struct {
	Name           string  `json:"name"`
	Mentions       int     `json:"mentions"`
	Conversations  int     `json:"conversations"`
	ConversionRate float64 `json:"conversionRate"`
	StatusCounts
}

type HourSlot struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

type DaySlot struct {
	Day      string `json:"day"`
	DayIndex int    `json:"dayIndex"`
	Count    int    `json:"count"`
	Won      int    `json:"won"`
	Lost     int    `json:"lost"`
}

// Growth compares the size of two conversation sets.
type Growth struct {
	Current    int     `json:"current"`
	Previous   int     `json:"previous"`
	Growth     float64 `json:"growth"`
	IsPositive bool    `json:"isPositive"`
}

type PeriodComparison struct {
	TotalChange float64 `json:"totalChange"`
	WonChange   float64 `json:"wonChange"`
	OpenChange  float64 `json:"openChange"`
}

type ConversationMetrics struct {
	AverageMessagesPerConversation float64 `json:"averageMessagesPerConversation"`
	AverageDuration                float64 `json:"averageDuration"` // minutes
	AbandonmentRate                float64 `json:"abandonmentRate"` // percent
}

type ClientStats struct {
	Phone             string    `json:"phone"`
	Name              string    `json:"name"`
	ConversationCount int       `json:"conversationCount"`
	LastInteraction   time.Time `json:"lastInteraction"`
	Products          []string  `json:"products"`
	StatusCounts
}
