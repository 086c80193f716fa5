package service

import (
	"time"

	"github.com/jonboulle/clockwork"

	"chatdash.app/api/internal/dashboard"
	"chatdash.app/api/internal/filter"
	"chatdash.app/api/internal/session"
	"chatdash.app/api/internal/store"
)

type ServicesConfig struct {
	Stores        *store.Stores
	Sessions      session.Store
	Authenticator Authenticator
	Users         UserLookup
	Dashboards    *dashboard.Registry
	Cache         CacheInvalidator
	Filters       *filter.Engine
	SessionTTL    time.Duration
	PageSize      int
	Clock         clockwork.Clock
}

type Services struct {
	cfg ServicesConfig
}

func NewServices(cfg ServicesConfig) *Services {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Filters == nil {
		cfg.Filters = filter.NewEngine(cfg.Clock, nil)
	}
	return &Services{cfg: cfg}
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.cfg.Authenticator, s.cfg.Users, s.cfg.Sessions, s.cfg.Dashboards, s.cfg.SessionTTL, s.cfg.Clock, s.cfg.Cache)
}

func (s *Services) Dashboard() DashboardService {
	return NewDashboardService(s.cfg.Dashboards, s.cfg.Sessions, s.cfg.Filters, s.cfg.PageSize, s.cfg.Clock)
}

func (s *Services) Clients() ClientService {
	return NewClientService(s.cfg.Stores.Clients(), s.cfg.PageSize)
}
