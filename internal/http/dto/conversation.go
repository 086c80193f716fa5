package dto

import (
	"time"

	"chatdash.app/api/internal/model"
)

// ConversationSummary is a table row; messages are only sent on detail.
type ConversationSummary struct {
	ID             string       `json:"id"`
	SessionID      string       `json:"sessionId"`
	ClientName     string       `json:"clientName"`
	ClientPhone    string       `json:"clientPhone"`
	InitialMessage string       `json:"initialMessage"`
	Date           time.Time    `json:"date"`
	Duration       float64      `json:"duration"`
	MessageCount   int          `json:"messageCount"`
	Status         model.Status `json:"status"`
	Products       []string     `json:"products"`
	Tools          []string     `json:"tools"`
}

func ToConversationSummary(c model.Conversation) ConversationSummary {
	return ConversationSummary{
		ID:             c.ID,
		SessionID:      c.SessionID,
		ClientName:     c.ClientName,
		ClientPhone:    c.ClientPhone,
		InitialMessage: c.InitialMessage,
		Date:           c.Date,
		Duration:       c.Duration,
		MessageCount:   c.MessageCount,
		Status:         c.Status,
		Products:       c.Products,
		Tools:          c.Tools,
	}
}

type ConversationDetail struct {
	ConversationSummary
	Timestamp     float64            `json:"timestamp"`
	LastTimestamp float64            `json:"lastTimestamp"`
	Messages      []model.RawMessage `json:"messages"`
}

func ToConversationDetail(c *model.Conversation) ConversationDetail {
	return ConversationDetail{
		ConversationSummary: ToConversationSummary(*c),
		Timestamp:           c.Timestamp,
		LastTimestamp:       c.LastTimestamp,
		Messages:            c.Messages,
	}
}
