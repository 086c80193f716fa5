package store_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"chatdash.app/api/internal/model"
	"chatdash.app/api/internal/store"
)

var _ = Describe("MemoryClientStore", func() {
	var (
		ctx     context.Context
		clients store.ClientStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		clients = store.NewMemoryStores().Clients()
	})

	It("lists clients newest first", func() {
		Expect(clients.Create(ctx, &model.Client{ID: 1, CompanyName: "Uno"})).To(Succeed())
		Expect(clients.Create(ctx, &model.Client{ID: 2, CompanyName: "Dos"})).To(Succeed())

		list, err := clients.List(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(2))
		Expect(list[0].CompanyName).To(Equal("Dos"))
		Expect(list[0].Agents).NotTo(BeNil())
	})

	It("stamps the creation time", func() {
		c := &model.Client{ID: 1, CompanyName: "Uno"}
		Expect(clients.Create(ctx, c)).To(Succeed())

		Expect(c.CreatedAt).NotTo(BeZero())
	})

	It("deletes by id", func() {
		Expect(clients.Create(ctx, &model.Client{ID: 1, CompanyName: "Uno"})).To(Succeed())

		Expect(clients.Delete(ctx, 1)).To(Succeed())
		Expect(clients.Delete(ctx, 1)).To(MatchError(store.ErrNotFound))

		list, _ := clients.List(ctx)
		Expect(list).To(BeEmpty())
	})
})
