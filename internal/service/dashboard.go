package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"chatdash.app/api/internal/analytics"
	"chatdash.app/api/internal/dashboard"
	"chatdash.app/api/internal/filter"
	"chatdash.app/api/internal/model"
	"chatdash.app/api/internal/session"
	"chatdash.app/api/internal/source"
	"chatdash.app/api/internal/table"
)

var ErrConversationNotFound = errors.New("conversation not found")

const (
	defaultProductLimit = 10
	defaultPeakHours    = 10
	defaultCompareDays  = 30
)

// TableQuery carries the interactive table state of a list request.
type TableQuery struct {
	Search   string
	Sort     string
	Dir      table.Direction
	Page     int
	PageSize int
}

type Overview struct {
	KPIs          model.KPISummary          `json:"kpis"`
	Metrics       model.ConversationMetrics `json:"metrics"`
	Status        model.StatusCounts        `json:"status"`
	ActiveFilters []string                  `json:"activeFilters"`
	Total         int                       `json:"total"`
	Filtered      int                       `json:"filtered"`
}

type HoursReport struct {
	Hours []model.HourSlot `json:"hours"`
	Peaks []model.HourSlot `json:"peaks"`
}

type Comparison struct {
	Days       int                    `json:"days"`
	Current    DateWindow             `json:"current"`
	Previous   DateWindow             `json:"previous"`
	Growth     model.Growth           `json:"growth"`
	Comparison model.PeriodComparison `json:"comparison"`
}

type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SweepReport counts what one Sweep did to the registered dashboards.
type SweepReport struct {
	Evicted   int
	Dropped   int
	Refreshed int
	Failed    int
}

// DashboardService answers analytics queries over the caller's dashboard.
// A nil session addresses the shared dashboard loaded with the service token.
type DashboardService interface {
	Refresh(ctx context.Context, sess *model.Session, force bool) (dashboard.State, error)
	State(ctx context.Context, sess *model.Session) dashboard.State
	Overview(ctx context.Context, sess *model.Session, f filter.Filters) (*Overview, error)
	Series(ctx context.Context, sess *model.Session, f filter.Filters, period analytics.Period) ([]model.PeriodBucket, error)
	Products(ctx context.Context, sess *model.Session, f filter.Filters, limit int) ([]model.ProductStats, error)
	Hours(ctx context.Context, sess *model.Session, f filter.Filters, top int) (*HoursReport, error)
	Weekdays(ctx context.Context, sess *model.Session, f filter.Filters) ([]model.DaySlot, error)
	Clients(ctx context.Context, sess *model.Session, f filter.Filters) ([]model.ClientStats, error)
	Compare(ctx context.Context, sess *model.Session, days int) (*Comparison, error)
	Conversations(ctx context.Context, sess *model.Session, f filter.Filters, q TableQuery) (table.Page[model.Conversation], error)
	Conversation(ctx context.Context, sess *model.Session, id string) (*model.Conversation, error)
	Sweep(ctx context.Context, maxIdle time.Duration, refresh bool) (SweepReport, error)
}

type dashboardService struct {
	dashboards *dashboard.Registry
	sessions   session.Store
	filters    *filter.Engine
	pageSize   int
	clock      clockwork.Clock
}

func NewDashboardService(
	dashboards *dashboard.Registry,
	sessions session.Store,
	filters *filter.Engine,
	pageSize int,
	clock clockwork.Clock,
) DashboardService {
	if pageSize <= 0 {
		pageSize = table.DefaultPageSize
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &dashboardService{
		dashboards: dashboards,
		sessions:   sessions,
		filters:    filters,
		pageSize:   pageSize,
		clock:      clock,
	}
}

// ConversationColumns is the column set of the conversation table.
var ConversationColumns = []table.Column[model.Conversation]{
	{Key: "clientName", Header: "Cliente", Sortable: true},
	{Key: "clientPhone", Header: "Teléfono", Sortable: true},
	{Key: "initialMessage", Header: "Mensaje inicial", Width: "40%"},
	{Key: "status", Header: "Estado", Sortable: true, Align: table.AlignCenter, Width: "140px",
		Render: func(c model.Conversation) string { return string(c.Status) }},
	{Key: "date", Header: "Fecha", Sortable: true, Align: table.AlignRight},
	{Key: "messageCount", Header: "Mensajes", Sortable: true, Align: table.AlignCenter},
	{Key: "duration", Header: "Duración", Sortable: true, Align: table.AlignRight},
}

var conversationSearchKeys = []string{"clientName", "clientPhone", "initialMessage"}

func (s *dashboardService) Refresh(ctx context.Context, sess *model.Session, force bool) (dashboard.State, error) {
	board := s.board(sess)
	ctx = withToken(ctx, sess)
	if force {
		ctx = source.SkipCache(ctx)
	}
	_, err := board.Refresh(ctx)
	return board.State(), err
}

func (s *dashboardService) State(_ context.Context, sess *model.Session) dashboard.State {
	return s.board(sess).State()
}

func (s *dashboardService) Overview(ctx context.Context, sess *model.Session, f filter.Filters) (*Overview, error) {
	all, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	convs := s.filters.Apply(all, f)
	kpis := analytics.CalculateKPIs(convs)

	return &Overview{
		KPIs:    kpis,
		Metrics: analytics.GetConversationMetrics(convs),
		Status: model.StatusCounts{
			Open:    kpis.OpenConversations,
			Won:     kpis.WonConversations,
			Lost:    kpis.LostConversations,
			Pending: kpis.PendingConversations,
		},
		ActiveFilters: filter.Describe(f),
		Total:         len(all),
		Filtered:      len(convs),
	}, nil
}

func (s *dashboardService) Series(ctx context.Context, sess *model.Session, f filter.Filters, period analytics.Period) ([]model.PeriodBucket, error) {
	convs, err := s.filtered(ctx, sess, f)
	if err != nil {
		return nil, err
	}
	return analytics.GroupChatsByPeriod(convs, period), nil
}

func (s *dashboardService) Products(ctx context.Context, sess *model.Session, f filter.Filters, limit int) ([]model.ProductStats, error) {
	convs, err := s.filtered(ctx, sess, f)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultProductLimit
	}
	stats := analytics.AnalyzeProductMentions(convs)
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

func (s *dashboardService) Hours(ctx context.Context, sess *model.Session, f filter.Filters, top int) (*HoursReport, error) {
	convs, err := s.filtered(ctx, sess, f)
	if err != nil {
		return nil, err
	}
	if top <= 0 {
		top = defaultPeakHours
	}
	return &HoursReport{
		Hours: analytics.AnalyzeConversationHours(convs),
		Peaks: analytics.GetPeakHours(convs, top),
	}, nil
}

func (s *dashboardService) Weekdays(ctx context.Context, sess *model.Session, f filter.Filters) ([]model.DaySlot, error) {
	convs, err := s.filtered(ctx, sess, f)
	if err != nil {
		return nil, err
	}
	return analytics.AnalyzeByDayOfWeek(convs), nil
}

func (s *dashboardService) Clients(ctx context.Context, sess *model.Session, f filter.Filters) ([]model.ClientStats, error) {
	convs, err := s.filtered(ctx, sess, f)
	if err != nil {
		return nil, err
	}
	return analytics.AnalyzeClients(convs), nil
}

// Compare contrasts the last days calendar days, today included, with the
// days immediately before them.
func (s *dashboardService) Compare(ctx context.Context, sess *model.Session, days int) (*Comparison, error) {
	all, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultCompareDays
	}

	now := s.filters.Now()
	curStart := now.AddDate(0, 0, -(days - 1))
	prevEnd := curStart.AddDate(0, 0, -1)
	prevStart := curStart.AddDate(0, 0, -days)

	current := s.filters.ByDateRange(all, &curStart, &now)
	previous := s.filters.ByDateRange(all, &prevStart, &prevEnd)

	return &Comparison{
		Days:       days,
		Current:    DateWindow{Start: dayStart(curStart), End: dayStart(now)},
		Previous:   DateWindow{Start: dayStart(prevStart), End: dayStart(prevEnd)},
		Growth:     analytics.CalculateGrowth(current, previous),
		Comparison: analytics.ComparePeriodsKPIs(current, previous),
	}, nil
}

func (s *dashboardService) Conversations(ctx context.Context, sess *model.Session, f filter.Filters, q TableQuery) (table.Page[model.Conversation], error) {
	convs, err := s.filtered(ctx, sess, f)
	if err != nil {
		return table.Page[model.Conversation]{}, err
	}
	t := table.New(convs, table.Options[model.Conversation]{
		Columns:    ConversationColumns,
		PageSize:   pageSizeOr(q.PageSize, s.pageSize),
		SearchKeys: conversationSearchKeys,
	})
	return applyTableQuery(t, q), nil
}

func (s *dashboardService) Conversation(ctx context.Context, sess *model.Session, id string) (*model.Conversation, error) {
	convs, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	for i := range convs {
		if convs[i].ID == id {
			c := convs[i]
			return &c, nil
		}
	}
	return nil, ErrConversationNotFound
}

func (s *dashboardService) filtered(ctx context.Context, sess *model.Session, f filter.Filters) ([]model.Conversation, error) {
	convs, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.filters.Apply(convs, f), nil
}

// Sweep evicts dashboards idle for longer than maxIdle and drops those whose
// session is gone or expired. With refresh set, the remaining dashboards that
// have loaded data are reloaded with their own session token, bypassing the
// cache, so the next read of that session is served fresh data.
func (s *dashboardService) Sweep(ctx context.Context, maxIdle time.Duration, refresh bool) (SweepReport, error) {
	report := SweepReport{Evicted: s.dashboards.EvictIdle(maxIdle)}
	var errs []error

	s.dashboards.Each(func(key string, board *dashboard.Dashboard) {
		var sess *model.Session
		if key != "" && s.sessions != nil {
			got, err := s.sessions.Get(ctx, key)
			switch {
			case errors.Is(err, session.ErrNotFound):
				s.dashboards.Drop(key)
				report.Dropped++
				return
			case err != nil:
				report.Failed++
				errs = append(errs, fmt.Errorf("loading session: %w", err))
				return
			case got.IsExpired(s.clock.Now()):
				s.dashboards.Drop(key)
				report.Dropped++
				return
			}
			sess = got
		}

		if !refresh || !board.Loaded() {
			return
		}
		_, err := board.Refresh(source.SkipCache(withToken(ctx, sess)))
		switch {
		case err == nil:
			report.Refreshed++
		case errors.Is(err, dashboard.ErrStale), errors.Is(err, dashboard.ErrThrottled):
		default:
			report.Failed++
			errs = append(errs, err)
		}
	})

	return report, errors.Join(errs...)
}

func (s *dashboardService) load(ctx context.Context, sess *model.Session) ([]model.Conversation, error) {
	return s.board(sess).Load(withToken(ctx, sess))
}

func (s *dashboardService) board(sess *model.Session) *dashboard.Dashboard {
	if sess == nil {
		return s.dashboards.For("")
	}
	return s.dashboards.For(sess.ID)
}

func withToken(ctx context.Context, sess *model.Session) context.Context {
	if sess == nil || sess.Token == "" {
		return ctx
	}
	return source.WithToken(ctx, sess.Token)
}

func applyTableQuery[T table.Record](t *table.Table[T], q TableQuery) table.Page[T] {
	t.SetQuery(q.Search)
	if q.Sort != "" {
		t.SetSort(q.Sort, q.Dir)
	}
	t.SetPage(q.Page)
	return t.Current()
}

func pageSizeOr(size, fallback int) int {
	if size > 0 && size <= 100 {
		return size
	}
	return fallback
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
