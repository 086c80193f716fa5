package table_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"chatdash.app/api/internal/table"
)

type product struct {
	name  string
	brand string
	stock int
}

func (p product) Field(key string) any {
	switch key {
	case "name":
		return p.name
	case "brand":
		return p.brand
	case "stock":
		return p.stock
	}
	return nil
}

func (p product) FieldKeys() []string { return []string{"name", "brand", "stock"} }

func names(rows []product) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.name
	}
	return out
}

var columns = []table.Column[product]{
	{Key: "name", Header: "Nombre", Sortable: true},
	{Key: "brand", Header: "Marca"},
	{Key: "stock", Header: "Stock", Sortable: true, Align: table.AlignRight},
	{Key: "label", Header: "Etiqueta", Sortable: true, Render: func(p product) string {
		return fmt.Sprintf("%s/%s", p.brand, p.name)
	}},
}

var _ = Describe("Table", func() {
	var (
		rows []product
		t    *table.Table[product]
	)

	BeforeEach(func() {
		rows = []product{
			{name: "cable", brand: "Legrand", stock: 9},
			{name: "Breaker", brand: "ABB", stock: 100},
			{name: "ampolleta", brand: "Philips", stock: 20},
			{name: "enchufe", brand: "Legrand", stock: 9},
			{name: "tablero", brand: "Schneider", stock: 1},
			{name: "canaleta", brand: "Legrand", stock: 50},
			{name: "foco", brand: "Osram", stock: 3},
		}
		t = table.New(rows, table.Options[product]{Columns: columns, PageSize: 3})
	})

	Describe("search", func() {
		It("returns nothing for an absent substring", func() {
			t.SetQuery("zzz")

			page := t.Current()
			Expect(page.Rows).To(BeEmpty())
			Expect(page.Total).To(BeZero())
			Expect(page.TotalPages).To(Equal(1))
		})

		It("matches string fields case-insensitively", func() {
			t.SetQuery("LEGRAND")

			Expect(names(t.Sorted())).To(Equal([]string{"cable", "enchufe", "canaleta"}))
		})

		It("never matches numeric fields", func() {
			Expect(table.Search(rows, "100", nil)).To(BeEmpty())
		})

		It("restricts matching to the configured keys", func() {
			Expect(table.Search(rows, "abb", []string{"name"})).To(BeEmpty())
			Expect(names(table.Search(rows, "abb", []string{"brand"}))).To(Equal([]string{"Breaker"}))
		})
	})

	Describe("sorting", func() {
		It("compares strings without case", func() {
			Expect(t.ToggleSort("name")).To(BeTrue())

			Expect(names(t.Sorted())).To(Equal([]string{"ampolleta", "Breaker", "cable", "canaleta", "enchufe", "foco", "tablero"}))
		})

		It("compares numbers numerically and keeps ties stable", func() {
			t.ToggleSort("stock")

			Expect(names(t.Sorted())).To(Equal([]string{"tablero", "foco", "cable", "enchufe", "ampolleta", "canaleta", "Breaker"}))
		})

		It("flips direction on the same column and returns to the start", func() {
			t.ToggleSort("stock")
			asc := names(t.Sorted())

			t.ToggleSort("stock")
			page := t.Current()
			Expect(page.Direction).To(Equal(table.Desc))
			Expect(names(t.Sorted())[0]).To(Equal("Breaker"))

			t.ToggleSort("stock")
			Expect(names(t.Sorted())).To(Equal(asc))
		})

		It("restarts ascending on a new column", func() {
			t.ToggleSort("stock")
			t.ToggleSort("stock")
			t.ToggleSort("name")

			page := t.Current()
			Expect(page.SortKey).To(Equal("name"))
			Expect(page.Direction).To(Equal(table.Asc))
		})

		It("ignores non-sortable and unknown columns", func() {
			Expect(t.ToggleSort("brand")).To(BeFalse())
			Expect(t.ToggleSort("missing")).To(BeFalse())
			Expect(names(t.Sorted())).To(Equal(names(rows)))
		})

		It("sorts by rendered output when a renderer exists", func() {
			t.ToggleSort("label")

			Expect(names(t.Sorted())[:2]).To(Equal([]string{"Breaker", "cable"}))
		})
	})

	Describe("pagination", func() {
		It("returns non-overlapping pages that rebuild the sorted set", func() {
			t.ToggleSort("name")
			all := names(t.Sorted())

			var seen []string
			for p := 1; p <= 3; p++ {
				t.SetPage(p)
				page := t.Current()
				Expect(page.TotalPages).To(Equal(3))
				seen = append(seen, names(page.Rows)...)
			}

			Expect(seen).To(Equal(all))
		})

		It("clamps the page into range", func() {
			t.SetPage(99)
			Expect(t.Current().Page).To(Equal(3))
			Expect(t.Current().Rows).To(HaveLen(1))

			t.SetPage(-1)
			Expect(t.Current().Page).To(Equal(1))
		})

		It("resets to the first page when query or sort changes", func() {
			t.SetPage(3)
			t.SetQuery("a")
			Expect(t.Current().Page).To(Equal(1))

			t.SetPage(2)
			t.ToggleSort("name")
			Expect(t.Current().Page).To(Equal(1))
		})

		It("uses the default page size when unset", func() {
			t = table.New(rows, table.Options[product]{Columns: columns})

			Expect(t.Current().Rows).To(HaveLen(table.DefaultPageSize))
		})
	})

	Describe("Paginate", func() {
		It("handles an empty set", func() {
			out, page, total := table.Paginate([]int{}, 4, 10)

			Expect(out).To(BeEmpty())
			Expect(page).To(Equal(1))
			Expect(total).To(Equal(1))
		})
	})

	It("parses directions", func() {
		Expect(table.ParseDirection("DESC")).To(Equal(table.Desc))
		Expect(table.ParseDirection("")).To(Equal(table.Asc))
	})
})
