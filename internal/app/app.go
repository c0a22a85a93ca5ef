// Package app assembles repositories, services and handlers into the HTTP router.
package app

import (
	"context"
	"net/http"
	"time"

	"adservice/internal/cache"
	"adservice/internal/config"
	"adservice/internal/domain"
	"adservice/internal/metrics"
	"adservice/internal/middleware"
	"adservice/internal/modules/ads"
	"adservice/internal/modules/auth"
	"adservice/internal/modules/impression"
	"adservice/internal/modules/live"
	"adservice/internal/modules/selection"
	"adservice/internal/pkg/jwt"
	"adservice/internal/pkg/response"
	"adservice/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const ServiceName = "ad-service"

// App owns the long-lived components that need draining on shutdown.
type App struct {
	Router   *gin.Engine
	Selector *selection.Service
	Hub      *live.Hub
	Limiter  *middleware.RateLimiter
	Metrics  *metrics.Metrics
}

type catalogStats struct {
	ads         *repository.AdRepository
	impressions *repository.ImpressionRepository
}

func (s catalogStats) CountActiveAds(ctx context.Context) (int64, error) {
	return s.ads.CountByStatus(ctx, domain.AdActive)
}

func (s catalogStats) CountImpressions(ctx context.Context) (int64, error) {
	return s.impressions.Count(ctx)
}

// New wires the service. rdb may be nil, in which case selections are not cached.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	adRepo := repository.NewAdRepository(db)
	impressionRepo := repository.NewImpressionRepository(db)
	advertiserRepo := repository.NewAdvertiserRepository(db)

	m := metrics.New(catalogStats{ads: adRepo, impressions: impressionRepo})
	hub := live.NewHub()
	tokens := jwt.New(cfg.JWTSecret, cfg.JWTTTL)

	var (
		selCache  selection.SelectionCache
		selReader impression.SelectionReader
	)
	if rdb != nil {
		store := cache.NewSelectionStore(rdb, cfg.SelectionCacheTTL)
		selCache, selReader = store, store
	}

	selector := selection.NewService(adRepo, impressionRepo, advertiserRepo, selCache, cfg.RecencyWindow)
	selector.SetPublisher(hub)
	selector.SetObserver(m)

	recorder := impression.NewService(adRepo, impressionRepo, selReader, cfg.MinWatchPercentage)
	recorder.SetPublisher(hub)
	recorder.SetObserver(m)

	media := ads.NewMediaStore(cfg.UploadDir)
	adsService := ads.NewService(adRepo, media, cfg.DefaultAdDuration, cfg.MaxUploadBytes)
	authService := auth.NewService(cfg.AdminUsername, cfg.AdminPasswordHash, tokens)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(),
		middleware.AccessLog(),
		m.Middleware(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   ServiceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	adsHandler := ads.NewHandler(adsService, media)
	adsHandler.RegisterMediaRoutes(r)

	api := r.Group("/api")
	{
		public := api.Group("")
		public.Use(limiter.Middleware())
		selection.NewHandler(selector).RegisterRoutes(public)
		impression.NewHandler(recorder).RegisterRoutes(public)
		auth.NewHandler(authService).RegisterPublicRoutes(public)

		admin := api.Group("")
		admin.Use(middleware.JWTAuth(tokens), middleware.AdminOnly())
		adsHandler.RegisterRoutes(admin)
		live.NewHandler(hub, cfg.CORSAllowedOrigins).RegisterRoutes(admin)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Resource not found")
	})

	return &App{
		Router:   r,
		Selector: selector,
		Hub:      hub,
		Limiter:  limiter,
		Metrics:  m,
	}
}

// Shutdown releases background resources after the HTTP server has stopped.
func (a *App) Shutdown() {
	a.Selector.Wait()
	a.Limiter.Stop()
	a.Hub.Close()
}
