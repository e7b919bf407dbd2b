package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"policygen/internal/domain/account"
	"policygen/internal/domain/auth"
	"policygen/internal/domain/billing"
	"policygen/internal/domain/policy"
	"policygen/internal/platform/config"
	cryptoutil "policygen/internal/platform/crypto"
	"policygen/internal/platform/db"
	"policygen/internal/platform/email"
	"policygen/internal/platform/jobs"
	"policygen/internal/platform/metrics"
	"policygen/internal/transport/http/api"
	accounthandler "policygen/internal/transport/http/handlers/account"
	authhandler "policygen/internal/transport/http/handlers/auth"
	billinghandler "policygen/internal/transport/http/handlers/billing"
	policyhandler "policygen/internal/transport/http/handlers/policy"
	"policygen/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler

	cancel context.CancelFunc
}

// New wires the full application: database, domain services, background
// jobs and the HTTP router. Callers own the returned App and must Close it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	cryptoSvc, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	mailer := email.New(cfg)

	authStore := auth.NewStore(pool)
	accountStore := account.NewStore(pool)
	billingStore := billing.NewStore(pool)
	policyStore := policy.NewStore(pool)

	provider := billing.NewHTTPProvider(cfg.BillingAPIBase, cfg.BillingAPIKey)
	billingSvc := billing.NewService(billingStore, provider, mailer, cfg)
	policySvc := policy.NewService(policyStore, cryptoSvc)

	jobsCtx, cancel := context.WithCancel(context.Background())
	jobsSvc := jobs.New(pool, cfg)
	jobsSvc.Start(jobsCtx)

	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}
	router.Use(middleware.CredentialRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	authenticated := middleware.Authenticate(cfg.JWTSecret)

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, billingSvc, cryptoSvc, mailer, cfg)
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/refresh", authHandler.HandleRefresh)
		r.Post("/auth/request-reset", authHandler.HandleRequestReset)
		r.Post("/auth/reset", authHandler.HandleResetPassword)

		policyHandler := policyhandler.NewHandler(policySvc, billingSvc)
		r.Get("/policy/catalog", policyHandler.HandleCatalog)
		r.Post("/policy/preview", policyHandler.HandlePreview)

		billingHandler := billinghandler.NewHandler(billingSvc, cfg)
		r.Post("/billing/webhook", billingHandler.HandleWebhook)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			// After Authenticate, so the limiter buckets by user.
			r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

			r.Post("/auth/logout", authHandler.HandleLogout)
			r.Post("/auth/mfa/setup", authHandler.HandleMFASetup)
			r.Post("/auth/mfa/enable", authHandler.HandleMFAEnable)
			r.Post("/auth/mfa/disable", authHandler.HandleMFADisable)

			accountHandler := accounthandler.NewHandler(accountStore, billingSvc, cfg)
			r.Get("/user/profile", accountHandler.HandleGetProfile)
			r.Put("/user/profile", accountHandler.HandleUpdateProfile)
			r.Post("/user/upload-image", accountHandler.HandleUploadImage)
			r.Get("/user/subscription", accountHandler.HandleGetSubscription)

			r.Post("/policies", policyHandler.HandleCreate)
			r.Get("/policies", policyHandler.HandleList)
			r.Get("/policies/{policyID}", policyHandler.HandleGet)
			r.Put("/policies/{policyID}", policyHandler.HandleUpdate)
			r.Delete("/policies/{policyID}", policyHandler.HandleDelete)
			r.Get("/policies/{policyID}/export", policyHandler.HandleExport)

			r.Post("/billing/checkout", billingHandler.HandleCheckout)
			r.Post("/billing/cancel", billingHandler.HandleCancel)

			if cfg.MetricsEnabled {
				r.With(middleware.RequireAdmin).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
					api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
				})
			}
		})
	})

	uploadsDir := http.Dir(cfg.UploadDir)
	router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(uploadsDir)))

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &App{
		Config: cfg,
		DB:     pool,
		Router: router,
		cancel: cancel,
	}, nil
}

func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() {
	cfg := config.Load()

	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("policygen server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// spaHandler serves the built frontend, falling back to index.html for
// client-side routes.
type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
