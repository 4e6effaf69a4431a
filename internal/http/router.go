package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/accounthub/internal/auth"
	"github.com/geocoder89/accounthub/internal/cache"
	"github.com/geocoder89/accounthub/internal/config"
	"github.com/geocoder89/accounthub/internal/http/handlers"
	"github.com/geocoder89/accounthub/internal/http/middlewares"
	"github.com/geocoder89/accounthub/internal/notifications"
	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/geocoder89/accounthub/internal/redisclient"
	"github.com/geocoder89/accounthub/internal/repo/postgres"
	"github.com/geocoder89/accounthub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redisclient.Client, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(Metrics(prom))
	r.Use(otelgin.Middleware("accounthub"))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up the account stack

	usersRepo := postgres.NewUsersRepo(pool, prom)
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(),
		notifications.ProtectedNotifierConfig{},
	)

	accounts := service.NewAccounts(usersRepo, jwtManager, notifier, log, prom)

	usersHandler := handlers.NewUsersHandler(accounts, cache.New(5*time.Second), log)
	authMiddleware := middlewares.NewAuthMiddleware(jwtManager, log)

	// rate limit the credential endpoints; redis backend when configured
	var limiter middlewares.Limiter = middlewares.NewMemoryLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow())

	if rdb != nil {
		limiter = middlewares.NewRedisLimiter(rdb.Raw(), cfg.RateLimitRequests, cfg.RateLimitWindow())
	}

	limited := middlewares.RateLimit(limiter, middlewares.KeyByIP)

	// Routes

	r.GET("/", handlers.Root)
	r.POST("/signup", limited, usersHandler.Signup)
	r.POST("/login", limited, usersHandler.Login)
	r.POST("/forgot-password", limited, usersHandler.ForgotPassword)
	r.GET("/all", authMiddleware.RequireAuth(), usersHandler.GetAllUsers)
	r.GET("/:id", usersHandler.GetUserByID)
	r.PUT("/:id", usersHandler.UpdateUser)
	r.DELETE("/:id", usersHandler.DeleteUser)
	r.DELETE("/", usersHandler.DeleteAllUsers)

	return r
}
