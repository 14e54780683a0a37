package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/shoplist/internal/auth"
	"github.com/dukerupert/shoplist/internal/backup"
	"github.com/dukerupert/shoplist/internal/config"
	"github.com/dukerupert/shoplist/internal/handler"
	"github.com/dukerupert/shoplist/internal/middleware"
	"github.com/dukerupert/shoplist/internal/service"
	"github.com/dukerupert/shoplist/internal/store"
	ws "github.com/dukerupert/shoplist/internal/websocket"
)

type Server struct {
	svc           *service.Service
	hub           *ws.Hub
	authH         *handler.AuthHandler
	listH         *handler.ListHandler
	listItemH     *handler.ListItemHandler
	catalogH      *handler.CatalogHandler
	purchaseH     *handler.PurchaseHandler
	analyticsH    *handler.AnalyticsHandler
	healthH       *handler.HealthHandler
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	wsOrigins     []string
	logger        *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	svc := service.New(db, tokens, cfg.Env, logger.With("component", "service"))

	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.Backup.Endpoint,
			Bucket:    cfg.Backup.Bucket,
			Region:    cfg.Backup.Region,
			AccessKey: cfg.Backup.AccessKey,
			SecretKey: cfg.Backup.SecretKey,
		},
		Passphrase:    cfg.Backup.Passphrase,
		Interval:      cfg.Backup.Interval,
		RetentionDays: cfg.Backup.RetentionDays,
	}, db, store.NewBackupStore(db), logger.With("component", "backup"))

	return &Server{
		svc:           svc,
		hub:           hub,
		authH:         handler.NewAuthHandler(svc, cfg.IsProduction(), logger.With("component", "auth")),
		listH:         handler.NewListHandler(svc, hub),
		listItemH:     handler.NewListItemHandler(svc, hub),
		catalogH:      handler.NewCatalogHandler(svc, hub),
		purchaseH:     handler.NewPurchaseHandler(svc, hub),
		analyticsH:    handler.NewAnalyticsHandler(svc),
		healthH:       handler.NewHealthHandler(svc),
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		wsOrigins:     cfg.WSOrigins,
		logger:        logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /health", s.healthH.Health)
	outerMux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/logout", s.authH.Logout)

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.svc)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Account
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("DELETE /api/me", s.authH.DeleteAccount)

	// Shopping lists
	mux.HandleFunc("GET /api/lists", s.listH.List)
	mux.HandleFunc("POST /api/lists", s.listH.Create)
	mux.HandleFunc("GET /api/lists/{id}", s.listH.Get)
	mux.HandleFunc("PATCH /api/lists/{id}", s.listH.Update)
	mux.HandleFunc("DELETE /api/lists/{id}", s.listH.Delete)
	mux.HandleFunc("GET /api/lists/{id}/items", s.listH.Items)
	mux.HandleFunc("POST /api/lists/{id}/items", s.listH.AddItem)
	mux.HandleFunc("GET /api/lists/{id}/total", s.listH.Total)

	// List items
	mux.HandleFunc("PATCH /api/list-items/{id}", s.listItemH.Update)
	mux.HandleFunc("DELETE /api/list-items/{id}", s.listItemH.Delete)
	mux.HandleFunc("POST /api/list-items/batch-delete", s.listItemH.BatchDelete)
	mux.HandleFunc("POST /api/list-items/batch-store", s.listItemH.BatchSetStore)
	mux.HandleFunc("GET /api/list-items/{id}/suggested-price", s.listItemH.SuggestedPrice)
	mux.HandleFunc("GET /api/list-items/{id}/purchases", s.listItemH.Purchases)
	mux.HandleFunc("POST /api/list-items/{id}/purchases", s.listItemH.RecordPurchase)

	// Purchases
	mux.HandleFunc("GET /api/purchases", s.purchaseH.History)
	mux.HandleFunc("GET /api/purchases/recent", s.purchaseH.Recent)
	mux.HandleFunc("PATCH /api/purchases/{id}", s.purchaseH.UpdateDate)

	// Catalog
	mux.HandleFunc("GET /api/categories", s.catalogH.Categories)
	mux.HandleFunc("POST /api/categories", s.catalogH.CreateCategory)
	mux.HandleFunc("GET /api/stores", s.catalogH.Stores)
	mux.HandleFunc("POST /api/stores", s.catalogH.CreateStore)
	mux.HandleFunc("POST /api/stores/dedupe", s.catalogH.CleanDuplicateStores)
	mux.HandleFunc("GET /api/items", s.catalogH.Items)
	mux.HandleFunc("POST /api/items", s.catalogH.CreateItem)

	// Analytics
	mux.HandleFunc("GET /api/analytics/categories", s.analyticsH.Categories)
	mux.HandleFunc("GET /api/analytics/stores", s.analyticsH.Stores)
	mux.HandleFunc("GET /api/analytics/monthly", s.analyticsH.Monthly)

	// Live refresh
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.wsOrigins, s.logger.With("component", "websocket")))
}
