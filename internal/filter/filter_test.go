package filter_test

import (
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"chatdash.app/api/internal/filter"
	"chatdash.app/api/internal/model"
)

func ptr(t time.Time) *time.Time { return &t }

func ids(convs []model.Conversation) []string {
	out := make([]string, len(convs))
	for i, c := range convs {
		out[i] = c.ID
	}
	return out
}

var _ = Describe("Engine", func() {
	var (
		now    time.Time
		engine *filter.Engine
		convs  []model.Conversation
	)

	BeforeEach(func() {
		now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
		engine = filter.NewEngine(clockwork.NewFakeClockAt(now), time.UTC)
		convs = []model.Conversation{
			{
				ID: "today", ClientName: "Ana Soto", ClientPhone: "56911111111",
				InitialMessage: "busco tableros", Date: now.Add(-2 * time.Hour),
				Status: model.StatusWon, Products: []string{"Schneider"},
			},
			{
				ID: "yesterday", ClientName: "Luis", ClientPhone: "56922222222",
				Date: now.AddDate(0, 0, -1), Status: model.StatusOpen, Products: []string{"ABB", "Eaton"},
				Messages: []model.RawMessage{{Type: model.MessageTypeAI, Data: model.RawMessageData{Content: "Tenemos canaletas"}}},
			},
			{
				ID: "lastmonth", ClientName: "Desconocido", ClientPhone: "Sin teléfono",
				Date: now.AddDate(0, 0, -20), Status: model.StatusLost, Products: []string{},
			},
			{
				ID: "old", ClientName: "Marta", ClientPhone: "56933333333",
				Date: now.AddDate(0, 0, -60), Status: model.StatusPending, Products: []string{"Philips"},
			},
		}
	})

	It("is the identity under the neutral filter set", func() {
		Expect(engine.Apply(convs, filter.Clear())).To(Equal(convs))
		Expect(engine.Apply(convs, filter.Filters{})).To(Equal(convs))
	})

	It("does not alias the input slice", func() {
		out := engine.Apply(convs, filter.Clear())
		out[0].ID = "changed"

		Expect(convs[0].ID).To(Equal("today"))
	})

	Describe("status", func() {
		It("keeps only the selected label", func() {
			out := engine.Apply(convs, filter.Filters{Status: string(model.StatusOpen)})

			Expect(ids(out)).To(Equal([]string{"yesterday"}))
		})

		It("is idempotent", func() {
			f := filter.Filters{Status: string(model.StatusWon)}
			once := engine.Apply(convs, f)

			Expect(engine.Apply(once, f)).To(Equal(once))
		})

		It("treats TODAS as all", func() {
			Expect(filter.ByStatus(convs, filter.StatusAll)).To(HaveLen(4))
		})
	})

	DescribeTable("date presets relative to the clock",
		func(preset filter.DatePreset, expected []string) {
			Expect(ids(engine.Apply(convs, filter.Filters{DatePreset: preset}))).To(Equal(expected))
		},
		Entry("today", filter.PresetToday, []string{"today"}),
		Entry("yesterday", filter.PresetYesterday, []string{"yesterday"}),
		Entry("7 days", filter.Preset7Days, []string{"today", "yesterday"}),
		Entry("30 days", filter.Preset30Days, []string{"today", "yesterday", "lastmonth"}),
		Entry("90 days", filter.Preset90Days, []string{"today", "yesterday", "lastmonth", "old"}),
		Entry("unknown preset is a no-op", filter.DatePreset("forever"), []string{"today", "yesterday", "lastmonth", "old"}),
	)

	Describe("date range", func() {
		It("includes whole days at both ends", func() {
			out := engine.Apply(convs, filter.Filters{
				StartDate: ptr(time.Date(2024, 6, 14, 23, 0, 0, 0, time.UTC)),
				EndDate:   ptr(time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)),
			})

			Expect(ids(out)).To(Equal([]string{"yesterday"}))
		})

		It("accepts open-ended bounds", func() {
			Expect(ids(engine.Apply(convs, filter.Filters{StartDate: ptr(now.AddDate(0, 0, -1))}))).
				To(Equal([]string{"today", "yesterday"}))
			Expect(ids(engine.Apply(convs, filter.Filters{EndDate: ptr(now.AddDate(0, 0, -30))}))).
				To(Equal([]string{"old"}))
		})

		It("intersects with a preset", func() {
			out := engine.Apply(convs, filter.Filters{
				DatePreset: filter.Preset30Days,
				EndDate:    ptr(now.AddDate(0, 0, -1)),
			})

			Expect(ids(out)).To(Equal([]string{"yesterday", "lastmonth"}))
		})
	})

	Describe("text filters", func() {
		It("matches products case-insensitively by substring", func() {
			Expect(ids(engine.Apply(convs, filter.Filters{Product: "schnei"}))).To(Equal([]string{"today"}))
		})

		It("matches client name or phone", func() {
			Expect(ids(engine.Apply(convs, filter.Filters{Client: "ana"}))).To(Equal([]string{"today"}))
			Expect(ids(engine.Apply(convs, filter.Filters{Client: "5692222"}))).To(Equal([]string{"yesterday"}))
		})

		It("searches across messages and products", func() {
			Expect(ids(engine.Apply(convs, filter.Filters{SearchText: "CANALETAS"}))).To(Equal([]string{"yesterday"}))
			Expect(ids(engine.Apply(convs, filter.Filters{SearchText: "philips"}))).To(Equal([]string{"old"}))
			Expect(ids(engine.Apply(convs, filter.Filters{SearchText: "tableros"}))).To(Equal([]string{"today"}))
		})

		It("combines every active criterion", func() {
			out := engine.Apply(convs, filter.Filters{
				Status:     string(model.StatusOpen),
				Product:    "abb",
				SearchText: "luis",
			})
			Expect(ids(out)).To(Equal([]string{"yesterday"}))

			out = engine.Apply(convs, filter.Filters{Status: string(model.StatusWon), Product: "abb"})
			Expect(out).To(BeEmpty())
		})
	})
})

var _ = Describe("Filters", func() {
	It("reports whether anything narrows the set", func() {
		Expect(filter.Clear().HasActive()).To(BeFalse())
		Expect(filter.Filters{Status: "GANADA"}.HasActive()).To(BeTrue())
		Expect(filter.Filters{DatePreset: filter.PresetToday}.HasActive()).To(BeTrue())
	})

	It("describes active filters", func() {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

		labels := filter.Describe(filter.Filters{
			DatePreset: filter.Preset7Days,
			StartDate:  &start,
			EndDate:    &end,
			Status:     "PERDIDA",
			SearchText: "cable",
		})

		Expect(labels).To(Equal([]string{
			"Últimos 7 días",
			"Rango: 2024-01-01 - 2024-01-31",
			"Estado: PERDIDA",
			`Búsqueda: "cable"`,
		}))
		Expect(filter.Describe(filter.Clear())).To(BeEmpty())
	})

	It("validates presets", func() {
		Expect(filter.Preset90Days.IsValid()).To(BeTrue())
		Expect(filter.DatePreset("1year").IsValid()).To(BeFalse())
	})
})
