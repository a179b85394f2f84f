package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/smartplanhq/api/internal/action"
	"github.com/smartplanhq/api/internal/breakdown"
	"github.com/smartplanhq/api/internal/company"
	"github.com/smartplanhq/api/internal/config"
	"github.com/smartplanhq/api/internal/dashboard"
	apihttp "github.com/smartplanhq/api/internal/http"
	httpmiddleware "github.com/smartplanhq/api/internal/http/middleware"
	"github.com/smartplanhq/api/internal/http/middleware/scope"
	"github.com/smartplanhq/api/internal/org"
	"github.com/smartplanhq/api/internal/perm"
	"github.com/smartplanhq/api/internal/plan"
	"github.com/smartplanhq/api/internal/profile"
	"github.com/smartplanhq/api/internal/provision"
	"github.com/smartplanhq/api/internal/service"
	"github.com/smartplanhq/api/internal/storage"
)

// NewRouter monta o roteador completo da API.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService) (http.Handler, error) {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.WebAuthnRPName,
		RPID:          cfg.WebAuthnRPID,
		RPOrigins:     []string{cfg.WebAuthnRPOrigin},
	})
	if err != nil {
		return nil, fmt.Errorf("webauthn: %w", err)
	}

	var store storage.Storage = storage.NoopStorage{}
	switch cfg.Storage.Provider {
	case "", "noop":
		// mantém storage padrão
	case "s3", "r2", "cloudflare-r2":
		store, err = storage.NewS3Storage(storage.S3Config{
			Endpoint:     cfg.Storage.S3Endpoint,
			Region:       cfg.Storage.S3Region,
			Bucket:       cfg.Storage.S3Bucket,
			AccessKey:    cfg.Storage.S3AccessKey,
			SecretKey:    cfg.Storage.S3SecretKey,
			PublicDomain: cfg.Storage.S3PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
	default:
		return nil, fmt.Errorf("storage: provedor %s não suportado", cfg.Storage.Provider)
	}

	evaluator := perm.NewEvaluator(perm.NewPGStore(pool))

	profileRepo := profile.NewRepository(pool)

	companyRepo := company.NewRepository(pool)
	companyService := company.NewService(companyRepo, log.Logger)
	resolver := company.NewContextResolver(companyRepo, company.NewRedisSelectionStore(redisClient))
	companyHandler := company.NewHandler(companyService, resolver)

	orgService := org.NewService(org.NewRepository(pool), log.Logger)
	orgHandler := org.NewHandler(orgService, evaluator)

	planService := plan.NewService(plan.NewRepository(pool), log.Logger)
	planHandler := plan.NewHandler(planService, evaluator)

	actionService := action.NewService(action.NewRepository(pool), log.Logger)
	actionHandler := action.NewHandler(actionService, evaluator)

	breakdownService := breakdown.NewService(breakdown.NewRepository(pool), store, log.Logger)
	breakdownHandler := breakdown.NewHandler(breakdownService, actionService, evaluator)

	dashboardService := dashboard.NewService(dashboard.NewRepository(pool), log.Logger)
	dashboardHandler := dashboard.NewHandler(dashboardService, evaluator)

	provisionService := provision.NewService(profileRepo, log.Logger)
	userHandler := provision.NewHandler(provisionService, profileRepo, evaluator)

	authHandler := apihttp.NewAuthHandler(authService, profileRepo, wa, redisClient, devCookies)

	publicLimiter := httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst)
	authLimiter := httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(publicLimiter))

		public.Get("/health", handleHealth)
		public.Get("/ready", handleReady(pool, redisClient))

		authHandler.RegisterPublicRoutes(public)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(authLimiter))

		authHandler.RegisterPrivateRoutes(private)

		private.Group(func(scoped chi.Router) {
			scoped.Use(scope.CompanyScope(profileRepo, resolver))

			company.Mount(scoped, companyHandler)
			org.Mount(scoped, orgHandler)
			plan.Mount(scoped, planHandler)
			action.Mount(scoped, actionHandler)
			breakdown.Mount(scoped, breakdownHandler)
			dashboard.Mount(scoped, dashboardHandler)
			provision.Mount(scoped, userHandler)
		})
	})

	return r, nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	apihttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(pool *pgxpool.Pool, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := pool.Ping(ctx); err != nil {
			apihttp.WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "banco indisponível", nil)
			return
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			apihttp.WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "redis indisponível", nil)
			return
		}

		apihttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
