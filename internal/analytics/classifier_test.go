package analytics_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"chatdash.app/api/internal/analytics"
	"chatdash.app/api/internal/model"
)

func human(content string) model.RawMessage {
	return model.RawMessage{Type: model.MessageTypeHuman, Data: model.RawMessageData{Content: content}}
}

func ai(content string) model.RawMessage {
	return model.RawMessage{Type: model.MessageTypeAI, Data: model.RawMessageData{Content: content}}
}

var _ = Describe("ClassifyConversationStatus", func() {
	DescribeTable("labels conversations from their last message",
		func(messages []model.RawMessage, expected model.Status) {
			Expect(analytics.ClassifyConversationStatus(messages)).To(Equal(expected))
		},
		Entry("empty conversation is pending", []model.RawMessage{}, model.StatusPending),
		Entry("single human message is open", []model.RawMessage{human("quiero comprar")}, model.StatusOpen),
		Entry("single ai message without keywords is pending", []model.RawMessage{ai("hola")}, model.StatusPending),
		Entry("win keyword wins", []model.RawMessage{human("hola"), ai("Muchas GRACIAS")}, model.StatusWon),
		Entry("lose keyword loses", []model.RawMessage{human("hola"), human("me parece caro")}, model.StatusLost),
		Entry("win takes precedence over lose", []model.RawMessage{human("hola"), human("no gracias")}, model.StatusWon),
		Entry("active exchange without conclusion is open",
			[]model.RawMessage{human("hola"), ai("hola"), human("hmm")}, model.StatusOpen),
		Entry("two messages without keywords are pending", []model.RawMessage{human("hola"), ai("hola")}, model.StatusPending),
	)

	It("is exposed through the Classifier strategy", func() {
		var c analytics.Classifier = analytics.NewKeywordClassifier()

		Expect(c.Classify(context.Background(), []model.RawMessage{human("a"), ai("perfecto")})).To(Equal(model.StatusWon))
	})
})
