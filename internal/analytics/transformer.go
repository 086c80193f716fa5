package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"chatdash.app/api/internal/model"
)

// Transformer turns raw upstream conversations into model.Conversation values.
type Transformer struct {
	classifier  Classifier
	clock       clockwork.Clock
	location    *time.Location
	concurrency int
}

type TransformerOption func(*Transformer)

func WithClassifier(c Classifier) TransformerOption {
	return func(t *Transformer) { t.classifier = c }
}

func WithClock(c clockwork.Clock) TransformerOption {
	return func(t *Transformer) { t.clock = c }
}

// WithConcurrency transforms up to n conversations at once. The classifier
// must then be safe for concurrent use.
func WithConcurrency(n int) TransformerOption {
	return func(t *Transformer) { t.concurrency = n }
}

// WithLocation sets the zone used for Conversation.Date.
func WithLocation(loc *time.Location) TransformerOption {
	return func(t *Transformer) { t.location = loc }
}

func NewTransformer(opts ...TransformerOption) *Transformer {
	t := &Transformer{
		classifier: NewKeywordClassifier(),
		clock:      clockwork.NewRealClock(),
		location:   time.Local,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var defaultTransformer = NewTransformer()

// TransformSingleChat converts one raw conversation with the keyword classifier.
// It returns nil when the conversation has no messages.
func TransformSingleChat(raw model.RawConversation, index int) *model.Conversation {
	return defaultTransformer.TransformOne(context.Background(), raw, index)
}

// TransformChatData converts a batch, silently dropping empty conversations.
func TransformChatData(raws []model.RawConversation) []model.Conversation {
	return defaultTransformer.Transform(context.Background(), raws)
}

// Transform keeps the input order and drops empty conversations.
func (t *Transformer) Transform(ctx context.Context, raws []model.RawConversation) []model.Conversation {
	converted := make([]*model.Conversation, len(raws))
	if t.concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(t.concurrency)
		for i, raw := range raws {
			g.Go(func() error {
				converted[i] = t.TransformOne(gctx, raw, i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, raw := range raws {
			converted[i] = t.TransformOne(ctx, raw, i)
		}
	}

	out := make([]model.Conversation, 0, len(raws))
	for _, conv := range converted {
		if conv != nil {
			out = append(out, *conv)
		}
	}
	return out
}

func (t *Transformer) TransformOne(ctx context.Context, raw model.RawConversation, index int) *model.Conversation {
	messages := raw.Messages
	if len(messages) == 0 {
		return nil
	}

	var human HumanMessage
	for _, m := range messages {
		if m.Type == model.MessageTypeHuman {
			human = ParseHumanMessage(m.Data.Content)
			break
		}
	}

	timestamp := messages[0].Data.Timestamp
	if timestamp == 0 {
		timestamp = float64(t.clock.Now().UnixMilli()) / 1000
	}
	lastTimestamp := messages[len(messages)-1].Data.Timestamp
	if lastTimestamp == 0 {
		lastTimestamp = timestamp
	}

	products := []string{}
	tools := []string{}
	for _, m := range messages {
		if m.Type != model.MessageTypeAI {
			continue
		}
		products = appendUnique(products, ExtractProductsMentioned(m.Data.Content)...)
		tools = appendUnique(tools, ExtractToolsUsed(m.Data.Content)...)
	}

	id := raw.SessionID
	if id == "" {
		id = fmt.Sprintf("chat-%d", index)
	}

	conv := &model.Conversation{
		ID:             id,
		SessionID:      raw.SessionID,
		ClientName:     orDefault(human.Name, model.UnknownClientName),
		ClientPhone:    orDefault(human.Phone, model.UnknownClientPhone),
		InitialMessage: human.Message,
		Date:           unixSeconds(timestamp).In(t.location),
		Timestamp:      timestamp,
		LastTimestamp:  lastTimestamp,
		Duration:       lastTimestamp - timestamp,
		MessageCount:   len(messages),
		Status:         t.classifier.Classify(ctx, messages),
		Products:       products,
		Tools:          tools,
		Messages:       messages,
	}
	return conv
}

func unixSeconds(ts float64) time.Time {
	return time.UnixMilli(int64(math.Round(ts * 1000)))
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
