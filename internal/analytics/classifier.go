package analytics

import (
	"context"
	"strings"

	"chatdash.app/api/internal/model"
)

// Classifier assigns an outcome status to a conversation's message sequence.
// Implementations must always return one of model.Statuses.
type Classifier interface {
	Classify(ctx context.Context, messages []model.RawMessage) model.Status
}

var winKeywords = []string{
	"comprar", "compra", "acepto", "proceder", "cotización", "cotizacion",
	"precio", "cuánto cuesta", "cuanto cuesta", "enviar", "pedido",
	"confirmar", "si", "gracias", "perfecto", "ok", "vale", "orden",
}

var loseKeywords = []string{
	"no gracias", "no me interesa", "muy caro", "caro", "no necesito",
	"no quiero", "cancelar", "después", "otro día", "no ahora",
}

// KeywordClassifier inspects the last message for purchase or decline words.
// Win keywords are checked first, so "no gracias" classifies as won because
// it contains "gracias".
type KeywordClassifier struct{}

func NewKeywordClassifier() KeywordClassifier {
	return KeywordClassifier{}
}

func (KeywordClassifier) Classify(_ context.Context, messages []model.RawMessage) model.Status {
	return ClassifyConversationStatus(messages)
}

// ClassifyConversationStatus applies the keyword rules without a context.
func ClassifyConversationStatus(messages []model.RawMessage) model.Status {
	if len(messages) == 0 {
		return model.StatusPending
	}

	last := messages[len(messages)-1]
	if len(messages) == 1 && last.Type == model.MessageTypeHuman {
		return model.StatusOpen
	}

	content := strings.ToLower(last.Data.Content)
	if containsAny(content, winKeywords) {
		return model.StatusWon
	}
	if containsAny(content, loseKeywords) {
		return model.StatusLost
	}

	if len(messages) > 2 {
		return model.StatusOpen
	}
	return model.StatusPending
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
