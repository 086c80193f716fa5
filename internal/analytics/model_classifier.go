package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"chatdash.app/api/common/llm"
	"chatdash.app/api/internal/model"
)

type statusResponse struct {
	Status string `json:"status" jsonschema:"enum=ABIERTA,enum=GANADA,enum=PERDIDA,enum=PENDIENTE" jsonschema_description:"Outcome of the sales conversation"`
}

var statusSchema = llm.GenerateSchema[statusResponse]()

const (
	modelClassifierAttempts = 2
	maxTranscriptMessages   = 20
	labelCacheSize          = 4096
)

// ModelClassifier asks an LLM for the conversation outcome and falls back to
// the keyword rules when the call fails or returns an unknown label. Model
// labels are cached per conversation until a new message arrives. It is safe
// for concurrent use.
type ModelClassifier struct {
	llm      llm.Client
	fallback Classifier
	timeout  time.Duration
	labels   *lru.Cache[string, model.Status]
}

func NewModelClassifier(client llm.Client, timeout time.Duration) *ModelClassifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	labels, _ := lru.New[string, model.Status](labelCacheSize)
	return &ModelClassifier{
		llm:      client,
		fallback: NewKeywordClassifier(),
		timeout:  timeout,
		labels:   labels,
	}
}

func (c *ModelClassifier) Classify(ctx context.Context, messages []model.RawMessage) model.Status {
	if len(messages) == 0 {
		return model.StatusPending
	}

	key := labelKey(messages)
	if status, ok := c.labels.Get(key); ok {
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp statusResponse
	var err error
	for attempt := 0; attempt < modelClassifierAttempts; attempt++ {
		_, err = c.llm.Chat(ctx, llm.Request{
			SystemPrompt: classifierSystemPrompt,
			UserPrompt:   buildTranscript(messages),
			SchemaName:   "conversation_status",
			Schema:       statusSchema,
			Temperature:  llm.Temp(0),
		}, &resp)
		if err == nil || !llm.IsRetryable(ctx, err) {
			break
		}
	}

	status := model.Status(resp.Status)
	if err != nil || !status.IsValid() {
		slog.WarnContext(ctx, "model classification failed, using keyword rules",
			"error", err,
			"label", resp.Status)
		return c.fallback.Classify(ctx, messages)
	}
	c.labels.Add(key, status)
	return status
}

// labelKey identifies a conversation revision: the same opening message with
// the same count and last timestamp has not changed since it was labeled.
func labelKey(messages []model.RawMessage) string {
	first, last := messages[0], messages[len(messages)-1]
	return fmt.Sprintf("%v|%d|%v|%s", first.Data.Timestamp, len(messages), last.Data.Timestamp, first.Data.Content)
}

func buildTranscript(messages []model.RawMessage) string {
	if len(messages) > maxTranscriptMessages {
		messages = messages[len(messages)-maxTranscriptMessages:]
	}
	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(fmt.Sprintf("[%s]: %s\n", m.Type, m.Data.Content))
	}
	return sb.String()
}

const classifierSystemPrompt = `You label sales chat conversations between a customer (human) and an assistant (ai) for an electrical supplies distributor.

Labels:
- GANADA: the customer confirms a purchase, order, quote or price acceptance.
- PERDIDA: the customer declines, finds it too expensive, or postpones.
- ABIERTA: the conversation is ongoing without a clear outcome.
- PENDIENTE: the customer has not engaged enough to tell.

Answer with the single best label.`
