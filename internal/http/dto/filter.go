package dto

import (
	"fmt"
	"time"

	"chatdash.app/api/internal/filter"
	"chatdash.app/api/internal/model"
	"chatdash.app/api/internal/service"
	"chatdash.app/api/internal/table"
)

const dateLayout = "2006-01-02"

// FilterQuery is the query-string form of filter.Filters.
type FilterQuery struct {
	DatePreset string `form:"datePreset"`
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	Status     string `form:"status"`
	Product    string `form:"product"`
	Client     string `form:"client"`
	Search     string `form:"q"`
}

// ToFilters parses dates as calendar days in loc.
func (q FilterQuery) ToFilters(loc *time.Location) (filter.Filters, error) {
	f := filter.Filters{
		DatePreset: filter.DatePreset(q.DatePreset),
		Status:     q.Status,
		Product:    q.Product,
		Client:     q.Client,
		SearchText: q.Search,
	}
	if f.Status == "" {
		f.Status = filter.StatusAll
	}
	if f.Status != filter.StatusAll && !model.Status(f.Status).IsValid() {
		return filter.Filters{}, fmt.Errorf("unknown status %q", q.Status)
	}

	var err error
	if f.StartDate, err = parseDate(q.StartDate, loc); err != nil {
		return filter.Filters{}, fmt.Errorf("startDate: %w", err)
	}
	if f.EndDate, err = parseDate(q.EndDate, loc); err != nil {
		return filter.Filters{}, fmt.Errorf("endDate: %w", err)
	}
	return f, nil
}

func parseDate(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD")
	}
	return &t, nil
}

// TableQuery is the query-string form of the table state.
type TableQuery struct {
	Search   string `form:"search"`
	Sort     string `form:"sort"`
	Dir      string `form:"dir" binding:"omitempty,oneof=asc desc"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

func (q TableQuery) ToService() service.TableQuery {
	return service.TableQuery{
		Search:   q.Search,
		Sort:     q.Sort,
		Dir:      table.ParseDirection(q.Dir),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
}

type ColumnResponse struct {
	Key      string      `json:"key"`
	Header   string      `json:"header"`
	Sortable bool        `json:"sortable"`
	Align    table.Align `json:"align,omitempty"`
	Width    string      `json:"width,omitempty"`
}

func ToColumns[T table.Record](cols []table.Column[T]) []ColumnResponse {
	out := make([]ColumnResponse, len(cols))
	for i, c := range cols {
		out[i] = ColumnResponse{Key: c.Key, Header: c.Header, Sortable: c.Sortable, Align: c.Align, Width: c.Width}
	}
	return out
}

type PageResponse[R any] struct {
	Columns    []ColumnResponse `json:"columns"`
	Rows       []R              `json:"rows"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
	Total      int              `json:"total"`
	Search     string           `json:"search,omitempty"`
	Sort       string           `json:"sort,omitempty"`
	Dir        table.Direction  `json:"dir,omitempty"`
}

// ToPageResponse maps rows with conv and attaches the column descriptors.
func ToPageResponse[T table.Record, R any](p table.Page[T], cols []table.Column[T], conv func(T) R) PageResponse[R] {
	rows := make([]R, len(p.Rows))
	for i, r := range p.Rows {
		rows[i] = conv(r)
	}
	return PageResponse[R]{
		Columns:    ToColumns(cols),
		Rows:       rows,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		Total:      p.Total,
		Search:     p.Query,
		Sort:       p.SortKey,
		Dir:        p.Direction,
	}
}
