package store_test

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"chatdash.app/api/core/db/sqlc"
	"chatdash.app/api/internal/model"
	"chatdash.app/api/internal/store"
)

// fakeDB serves canned client rows in column order to the generated queries.
type fakeDB struct {
	rows     [][]any
	affected int64
	lastSQL  string
	lastArgs []any
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.lastSQL, f.lastArgs = sql, args
	if f.affected == 0 {
		return pgconn.NewCommandTag("DELETE 0"), nil
	}
	return pgconn.NewCommandTag("DELETE 1"), nil
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	f.lastSQL, f.lastArgs = sql, args
	return &fakeRows{rows: f.rows, idx: -1}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	f.lastSQL, f.lastArgs = sql, args
	if len(f.rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{values: f.rows[0]}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.idx], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.rows[r.idx], dest)
}

func assign(values, dest []any) error {
	if len(values) != len(dest) {
		return errors.New("column count mismatch")
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *string:
			*d = v.(string)
		case *[]string:
			*d = v.([]string)
		case *pgtype.Timestamptz:
			*d = pgtype.Timestamptz{Time: v.(time.Time), Valid: true}
		default:
			return errors.New("unsupported destination")
		}
	}
	return nil
}

func clientRow(id int64, name string, created time.Time) []any {
	return []any{id, name, "", "", []string(nil), []string{"+56 9 1111"}, created}
}

var _ = Describe("ClientStore", func() {
	var (
		ctx     context.Context
		db      *fakeDB
		clients store.ClientStore
		created time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = &fakeDB{}
		clients = store.NewStores(sqlc.New(db)).Clients()
		created = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	})

	It("inserts with empty slices and reads back the stored row", func() {
		db.rows = [][]any{clientRow(42, "Eléctrica Sur", created)}
		c := &model.Client{ID: 42, CompanyName: "Eléctrica Sur"}

		Expect(clients.Create(ctx, c)).To(Succeed())

		Expect(db.lastSQL).To(ContainSubstring("INSERT INTO clients"))
		Expect(db.lastArgs[4]).To(Equal([]string{}))
		Expect(c.CreatedAt).To(Equal(created))
		Expect(c.Agents).To(Equal([]string{}))
		Expect(c.Phones).To(Equal([]string{"+56 9 1111"}))
	})

	It("lists the rows in query order", func() {
		db.rows = [][]any{
			clientRow(2, "Dos", created.Add(time.Hour)),
			clientRow(1, "Uno", created),
		}

		list, err := clients.List(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(db.lastSQL).To(ContainSubstring("ORDER BY created_at DESC, id DESC"))
		Expect(list).To(HaveLen(2))
		Expect(list[0].CompanyName).To(Equal("Dos"))
		Expect(list[1].Agents).NotTo(BeNil())
	})

	It("returns an empty list without rows", func() {
		list, err := clients.List(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(list).NotTo(BeNil())
		Expect(list).To(BeEmpty())
	})

	It("deletes by id", func() {
		db.affected = 1

		Expect(clients.Delete(ctx, 7)).To(Succeed())
		Expect(db.lastArgs).To(Equal([]any{int64(7)}))
	})

	It("reports a missing client", func() {
		Expect(clients.Delete(ctx, 7)).To(MatchError(store.ErrNotFound))
	})
})
