// Package table implements search, sort and pagination over any record type
// for tabular views.
package table

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultPageSize matches the dashboard's table widget.
const DefaultPageSize = 5

// Record exposes named fields to the table engine.
type Record interface {
	Field(key string) any
	FieldKeys() []string
}

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection defaults to Asc for anything but "desc".
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// Column describes one rendered column. When Render is set its output is
// also the sort key.
type Column[T Record] struct {
	Key      string             `json:"key"`
	Header   string             `json:"header"`
	Render   func(row T) string `json:"-"`
	Sortable bool               `json:"sortable"`
	Align    Align              `json:"align,omitempty"`
	Width    string             `json:"width,omitempty"`
}

type Options[T Record] struct {
	Columns    []Column[T]
	PageSize   int
	SearchKeys []string // empty means every key of the row
}

// Page is one rendered slice of the table.
type Page[T Record] struct {
	Rows       []T       `json:"rows"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
	Total      int       `json:"total"`
	Query      string    `json:"query,omitempty"`
	SortKey    string    `json:"sortKey,omitempty"`
	Direction  Direction `json:"direction,omitempty"`
}

// Table holds the interactive state of one table view: query, sort and page.
type Table[T Record] struct {
	opts    Options[T]
	rows    []T
	query   string
	sortKey string
	dir     Direction
	page    int
}

func New[T Record](rows []T, opts Options[T]) *Table[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Table[T]{opts: opts, rows: rows, dir: Asc, page: 1}
}

// SetRows replaces the data while keeping query and sort.
func (t *Table[T]) SetRows(rows []T) {
	t.rows = rows
}

// SetQuery changes the search text and returns to the first page.
func (t *Table[T]) SetQuery(q string) {
	t.query = q
	t.page = 1
}

// ToggleSort mimics a header click: the same column flips direction, another
// column starts ascending. Non-sortable or unknown columns are ignored.
func (t *Table[T]) ToggleSort(key string) bool {
	col, ok := t.column(key)
	if !ok || !col.Sortable {
		return false
	}
	t.page = 1
	if t.sortKey == key {
		if t.dir == Asc {
			t.dir = Desc
		} else {
			t.dir = Asc
		}
		return true
	}
	t.sortKey = key
	t.dir = Asc
	return true
}

// SetSort sets sort key and direction directly. An unknown or non-sortable
// key clears sorting.
func (t *Table[T]) SetSort(key string, dir Direction) {
	if col, ok := t.column(key); !ok || !col.Sortable {
		key = ""
	}
	if key != t.sortKey || dir != t.dir {
		t.page = 1
	}
	t.sortKey = key
	t.dir = dir
}

func (t *Table[T]) SetPage(page int) {
	t.page = page
}

func (t *Table[T]) Columns() []Column[T] {
	return t.opts.Columns
}

// Current renders the page for the current state, clamping the page number.
func (t *Table[T]) Current() Page[T] {
	sorted := t.Sorted()
	rows, page, totalPages := Paginate(sorted, t.page, t.opts.PageSize)
	t.page = page
	return Page[T]{
		Rows:       rows,
		Page:       page,
		PageSize:   t.opts.PageSize,
		TotalPages: totalPages,
		Total:      len(sorted),
		Query:      t.query,
		SortKey:    t.sortKey,
		Direction:  t.dir,
	}
}

// Sorted returns every row matching the query, in display order.
func (t *Table[T]) Sorted() []T {
	filtered := Search(t.rows, t.query, t.opts.SearchKeys)
	if t.sortKey == "" {
		return filtered
	}
	col, _ := t.column(t.sortKey)
	return Sort(filtered, col, t.dir)
}

func (t *Table[T]) column(key string) (Column[T], bool) {
	for _, c := range t.opts.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

// Search keeps rows where a string field under keys contains query,
// case-insensitively. Non-string values never match.
func Search[T Record](rows []T, query string, keys []string) []T {
	if strings.TrimSpace(query) == "" {
		return rows
	}
	needle := strings.ToLower(query)

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		searchKeys := keys
		if len(searchKeys) == 0 {
			searchKeys = row.FieldKeys()
		}
		for _, k := range searchKeys {
			if s, ok := row.Field(k).(string); ok && strings.Contains(strings.ToLower(s), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// Sort returns a stably sorted copy of rows ordered by col.
func Sort[T Record](rows []T, col Column[T], dir Direction) []T {
	out := make([]T, len(rows))
	copy(out, rows)

	keys := make([]any, len(out))
	for i, row := range out {
		keys[i] = sortValue(row, col)
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		c := compare(keys[idx[a]], keys[idx[b]])
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})

	sorted := make([]T, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

// Paginate slices rows for page, clamping page into [1, totalPages].
func Paginate[T any](rows []T, page, pageSize int) ([]T, int, int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	totalPages := (len(rows) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(rows) {
		start = len(rows)
	}
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], page, totalPages
}

func sortValue[T Record](row T, col Column[T]) any {
	if col.Render != nil {
		return col.Render(row)
	}
	return row.Field(col.Key)
}

// compare orders numbers (and times) numerically and everything else as
// lower-cased strings.
func compare(a, b any) int {
	na, aNum := numeric(a)
	nb, bNum := numeric(b)
	if aNum && bNum {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(stringKey(a), stringKey(b))
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case time.Time:
		return float64(n.UnixNano()), true
	default:
		return 0, false
	}
}

func stringKey(v any) string {
	if v == nil {
		return ""
	}
	return strings.ToLower(fmt.Sprint(v))
}
