package model

import "time"

// MessageType identifies the author of a raw chat message.
type MessageType string

const (
	MessageTypeHuman MessageType = "human"
	MessageTypeAI    MessageType = "ai"
)

// RawMessage is a chat message exactly as delivered by the upstream API.
type RawMessage struct {
	Type MessageType    `json:"type" jsonschema:"enum=human,enum=ai"`
	Data RawMessageData `json:"data"`
}

type RawMessageData struct {
	Content   string  `json:"content"`
	Timestamp float64 `json:"timestamp" jsonschema_description:"Unix time in seconds"`
}

// RawConversation is one chat session from the upstream API.
type RawConversation struct {
	SessionID string       `json:"sessionID"`
	Messages  []RawMessage `json:"messages"`
}

// Status is the outcome label assigned to a conversation.
type Status string

const (
	StatusOpen    Status = "ABIERTA"
	StatusWon     Status = "GANADA"
	StatusLost    Status = "PERDIDA"
	StatusPending Status = "PENDIENTE"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusOpen, StatusWon, StatusLost, StatusPending}

func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusWon, StatusLost, StatusPending:
		return true
	default:
		return false
	}
}

const (
	UnknownClientName  = "Desconocido"
	UnknownClientPhone = "Sin teléfono"
)

// Conversation is the normalized view of a RawConversation. Values are never
// mutated after the transformer builds them.
type Conversation struct {
	ID             string       `json:"id"`
	SessionID      string       `json:"sessionID,omitempty"`
	ClientName     string       `json:"clientName"`
	ClientPhone    string       `json:"clientPhone"`
	InitialMessage string       `json:"initialMessage"`
	Date           time.Time    `json:"date"`
	Timestamp      float64      `json:"timestamp"`
	LastTimestamp  float64      `json:"lastTimestamp"`
	Duration       float64      `json:"duration"`
	MessageCount   int          `json:"messageCount"`
	Status         Status       `json:"status"`
	Products       []string     `json:"products"`
	Tools          []string     `json:"tools"`
	Messages       []RawMessage `json:"messages,omitempty"`
}

// Field exposes conversation attributes by key for generic table rendering.
func (c Conversation) Field(key string) any {
	switch key {
	case "id":
		return c.ID
	case "clientName":
		return c.ClientName
	case "clientPhone":
		return c.ClientPhone
	case "initialMessage":
		return c.InitialMessage
	case "date":
		return c.Date
	case "timestamp":
		return c.Timestamp
	case "duration":
		return c.Duration
	case "messageCount":
		return c.MessageCount
	case "status":
		return string(c.Status)
	default:
		return nil
	}
}

// FieldKeys lists the keys accepted by Field.
func (c Conversation) FieldKeys() []string {
	return conversationKeys
}

var conversationKeys = []string{
	"id", "clientName", "clientPhone", "initialMessage", "date",
	"timestamp", "duration", "messageCount", "status",
}
