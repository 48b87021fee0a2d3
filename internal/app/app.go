package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"playhub/internal/alerts"
	"playhub/internal/auth"
	"playhub/internal/config"
	"playhub/internal/export"
	httpserver "playhub/internal/http"
	"playhub/internal/http/handlers"
	"playhub/internal/service"
	"playhub/internal/storage"
	"playhub/internal/storage/postgres"
	"playhub/internal/storage/redisstore"
	"playhub/internal/ws"
)

// App wires the service dependency graph.
type App struct {
	server      *httpserver.Server
	scheduler   *alerts.Scheduler
	exporter    *export.Exporter
	hub         *ws.Hub
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	var (
		store storage.Store
		db    *sql.DB
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		store = storage.NewMemory()
	default:
		sqlDB, err := postgres.NewDB(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		db = sqlDB
		store = postgres.NewStore(sqlDB)
	}

	var (
		redisClient *redis.Client
		cache       service.SessionCache
	)
	if cfg.Redis.Enabled {
		client, err := redisstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			if db != nil {
				db.Close()
			}
			return nil, err
		}
		redisClient = client
		cache = redisstore.NewStore(client, cfg.ActiveSessionTTL())
	}

	hub := ws.NewHub(logger)

	accrual := service.NewTargetAccrual(store, logger)
	evaluator := alerts.NewEvaluator(store, hub, logger)
	scheduler := alerts.NewScheduler(evaluator, cfg.AlertInterval(), logger)

	ledger := service.NewSessionLedger(store, cache, accrual, evaluator, hub, logger)
	registry := service.NewStationRegistry(store, logger)
	if cfg.Database.Driver == config.DriverMemory {
		if err := registry.SeedDefaults(context.Background()); err != nil {
			logger.Warn("failed to seed default stations", zap.Error(err))
		}
	}
	targets := service.NewTargetService(store, logger)
	dashboard := service.NewDashboard(store, logger)

	if err := targets.EnsureCurrent(context.Background(), service.TargetAmounts{
		Daily:   decimal.NewFromFloat(cfg.Targets.Daily),
		Weekly:  decimal.NewFromFloat(cfg.Targets.Weekly),
		Monthly: decimal.NewFromFloat(cfg.Targets.Monthly),
	}, time.Now()); err != nil {
		logger.Warn("failed to provision current revenue targets", zap.Error(err))
	}

	sink := export.NewSheetsSink(cfg.Sheets.APIKey, cfg.Sheets.SheetID, cfg.Sheets.BaseURL, logger)
	exporter := export.NewExporter(store, dashboard, sink, logger)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenTTL())
	hasher := auth.NewBcryptHasher(0)

	sessionsHandler := handlers.NewSessionsHandler(ledger, logger)
	adminHandler := handlers.NewAdminHandler(tokens, hasher, cfg.Auth.AdminPasswordHash, scheduler, exporter, logger)

	routes := httpserver.Routes{
		Health: handlers.NewHealthHandler(),

		ListCustomers:   handlers.NewListCustomersHandler(store),
		CreateCustomer:  handlers.NewCreateCustomerHandler(store),
		CustomerByPhone: handlers.NewCustomerByPhoneHandler(store),

		ListStations:  handlers.NewListStationsHandler(registry),
		CreateStation: handlers.NewCreateStationHandler(registry),
		UpdateStation: handlers.NewUpdateStationHandler(registry),
		DeleteStation: handlers.NewDeleteStationHandler(registry),

		CheckIn:        sessionsHandler.HandleCheckIn,
		EndSession:     sessionsHandler.HandleEnd,
		ActiveSessions: sessionsHandler.HandleActive,

		DashboardMetrics:     handlers.NewDashboardMetricsHandler(dashboard),
		DashboardRevenue:     handlers.NewDashboardRevenueHandler(dashboard),
		DashboardUtilization: handlers.NewDashboardUtilizationHandler(dashboard),

		ListAlerts:    handlers.NewListAlertsHandler(store),
		MarkAlertRead: handlers.NewMarkAlertReadHandler(store),

		ListActivities: handlers.NewListActivitiesHandler(store),

		ListTargets:  handlers.NewListTargetsHandler(targets),
		CreateTarget: handlers.NewCreateTargetHandler(targets),

		AdminLogin:    adminHandler.HandleLogin,
		RunAlertCheck: adminHandler.HandleRunAlertCheck,
		RunExport:     adminHandler.HandleRunExport,

		LiveFeed: hub.HandleWS,
	}

	router := httpserver.NewRouter(routes, auth.Middleware(tokens))
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		scheduler:   scheduler,
		exporter:    exporter,
		hub:         hub,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the background loops and the HTTP server, blocking until ctx is
// canceled.
func (a *App) Run(ctx context.Context) error {
	go a.scheduler.Run(ctx)
	go a.exporter.Run(ctx)
	go a.hub.Run(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
