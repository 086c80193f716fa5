package analytics_test

import (
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"chatdash.app/api/internal/analytics"
	"chatdash.app/api/internal/model"
)

type convOpt func(*model.Conversation)

func withPhone(p string) convOpt { return func(c *model.Conversation) { c.ClientPhone = p } }
func withName(n string) convOpt { return func(c *model.Conversation) { c.ClientName = n } }
func withDuration(d float64) convOpt { return func(c *model.Conversation) { c.Duration = d } }
func withMessages(n int) convOpt { return func(c *model.Conversation) { c.MessageCount = n } }
func withProducts(p ...string) convOpt { return func(c *model.Conversation) { c.Products = p } }
func withDate(t time.Time) convOpt { return func(c *model.Conversation) { c.Date = t } }

func conversation(status model.Status, opts ...convOpt) model.Conversation {
	c := model.Conversation{
		Status:      status,
		ClientName:  model.UnknownClientName,
		ClientPhone: model.UnknownClientPhone,
		Date:        time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
		Products:    []string{},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

var _ = Describe("CalculateKPIs", func() {
	It("returns zero values for an empty set", func() {
		kpis := analytics.CalculateKPIs(nil)

		Expect(kpis.TotalConversations).To(BeZero())
		Expect(kpis.ConversionRate).To(BeZero())
		Expect(kpis.AverageResponseTime).To(BeZero())
		Expect(kpis.TopProducts).NotTo(BeNil())
		Expect(kpis.TopProducts).To(BeEmpty())
		Expect(kpis.TotalUniqueClients).To(BeZero())
	})

	It("tallies statuses, rates and unique clients", func() {
		convs := []model.Conversation{
			conversation(model.StatusWon, withPhone("1"), withDuration(120)),
			conversation(model.StatusLost, withPhone("2"), withDuration(60)),
			conversation(model.StatusOpen, withPhone("1"), withDuration(0)),
		}

		kpis := analytics.CalculateKPIs(convs)

		Expect(kpis.TotalConversations).To(Equal(3))
		Expect(kpis.WonConversations).To(Equal(1))
		Expect(kpis.LostConversations).To(Equal(1))
		Expect(kpis.OpenConversations).To(Equal(1))
		Expect(kpis.PendingConversations).To(BeZero())
		Expect(kpis.ConversionRate).To(Equal(33.3))
		Expect(kpis.AverageResponseTime).To(Equal(1.0))
		Expect(kpis.TotalUniqueClients).To(Equal(2))
	})

	It("ranks products by count keeping first-seen order on ties", func() {
		convs := []model.Conversation{
			conversation(model.StatusWon, withProducts("Eaton", "ABB")),
			conversation(model.StatusWon, withProducts("ABB", "Philips")),
			conversation(model.StatusWon, withProducts("Philips")),
		}

		kpis := analytics.CalculateKPIs(convs)

		Expect(kpis.TopProducts).To(Equal([]model.ProductCount{
			{Product: "ABB", Count: 2},
			{Product: "Philips", Count: 2},
			{Product: "Eaton", Count: 1},
		}))
	})

	It("keeps at most ten products", func() {
		products := make([]string, 12)
		for i := range products {
			products[i] = fmt.Sprintf("p%d", i)
		}

		kpis := analytics.CalculateKPIs([]model.Conversation{conversation(model.StatusOpen, withProducts(products...))})

		Expect(kpis.TopProducts).To(HaveLen(10))
		Expect(kpis.TopProducts[0].Product).To(Equal("p0"))
	})
})

var _ = Describe("GetConversationMetrics", func() {
	It("returns zeros for an empty set", func() {
		Expect(analytics.GetConversationMetrics(nil)).To(Equal(model.ConversationMetrics{}))
	})

	It("averages messages and duration and reports abandonment", func() {
		convs := []model.Conversation{
			conversation(model.StatusPending, withMessages(2), withDuration(90)),
			conversation(model.StatusWon, withMessages(5), withDuration(30)),
			conversation(model.StatusOpen, withMessages(4), withDuration(0)),
		}

		metrics := analytics.GetConversationMetrics(convs)

		Expect(metrics.AverageMessagesPerConversation).To(Equal(3.7))
		Expect(metrics.AverageDuration).To(Equal(0.7))
		Expect(metrics.AbandonmentRate).To(Equal(33.3))
	})
})
