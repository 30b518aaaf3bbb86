// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"
)

// Dependencies required by HTTP handlers. The handler groups each declare
// the slice they use; the service implements all of them.
type Dependencies interface {
	AuthDependencies
	EntryDependencies
	BarberDependencies
	CatalogDependencies
	ManagerDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	auth               Authenticator
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	authHandler        *AuthHandler
	entriesHandler     *EntriesHandler
	barberHandler      *BarberHandler
	leaderboardHandler *LeaderboardHandler
	catalogHandler     *CatalogHandler
	managerHandler     *ManagerHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	cfg := serverConfig{maxLimit: defaultMaxLimit, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		auth:               deps,
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		authHandler:        NewAuthHandler(deps),
		entriesHandler:     NewEntriesHandler(deps),
		barberHandler:      NewBarberHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, cfg.maxLimit, cfg.now),
		catalogHandler:     NewCatalogHandler(deps),
		managerHandler:     NewManagerHandler(deps, cfg.now),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	public := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}
	private := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(AuthMiddleware(s.auth, h), endpoint))
	}

	public("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	public("GET /metrics", "metrics", s.healthHandler.HandleMetrics)
	public("GET /stats", "stats", s.statsHandler.HandleStats)

	public("POST /api/auth/signup", "signup", s.authHandler.HandleSignUp)
	public("POST /api/auth/signin", "signin", s.authHandler.HandleSignIn)
	private("POST /api/auth/manager", "manager_gate", s.authHandler.HandleEnterManager)

	private("POST /api/entries/services", "entries_service", s.entriesHandler.HandleRecordService)
	private("POST /api/entries/sales", "entries_sale", s.entriesHandler.HandleRecordSale)
	private("DELETE /api/entries/{id}", "entries_delete", s.entriesHandler.HandleDeleteEntry)

	private("GET /api/me/dashboard", "dashboard", s.barberHandler.HandleDashboard)
	private("GET /api/me/profile", "profile", s.barberHandler.HandleGetProfile)
	private("PATCH /api/me/profile", "profile_update", s.barberHandler.HandleUpdateProfile)
	private("GET /api/me/revenue", "monthly_revenue", s.barberHandler.HandleMonthlyRevenue)

	private("GET /api/leaderboard", "leaderboard", s.leaderboardHandler.HandleGetLeaderboard)
	private("GET /api/leaderboard/{barber}", "standing", s.leaderboardHandler.HandleGetStanding)

	private("GET /api/products", "products", s.catalogHandler.HandleListProducts)
	private("POST /api/products", "product_create", s.catalogHandler.HandleCreateProduct)
	private("PATCH /api/products/{id}", "product_update", s.catalogHandler.HandleUpdateProduct)
	private("DELETE /api/products/{id}", "product_delete", s.catalogHandler.HandleDeleteProduct)
	private("GET /api/catalog/{kind}", "catalog", s.catalogHandler.HandleListCatalog)
	private("POST /api/catalog/{kind}", "catalog_create", s.catalogHandler.HandleCreateCatalogItem)
	private("DELETE /api/catalog/{kind}/{id}", "catalog_delete", s.catalogHandler.HandleDeleteCatalogItem)

	private("GET /api/manager/overview", "overview", s.managerHandler.HandleOverview)
	private("GET /api/manager/report", "report", s.managerHandler.HandleReport)
	private("GET /api/barbers", "barbers", s.managerHandler.HandleListBarbers)
	private("POST /api/barbers", "barber_create", s.managerHandler.HandleCreateBarber)
	private("PATCH /api/barbers/{id}", "barber_update", s.managerHandler.HandleUpdateBarber)
	private("GET /api/rates", "rates", s.managerHandler.HandleGetRates)
	private("PUT /api/rates", "rates_update", s.managerHandler.HandleSetRates)
}
