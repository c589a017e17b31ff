package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sarthakagrawal927/reader-backend/internal/ai"
	httpapi "github.com/sarthakagrawal927/reader-backend/internal/api/http"
	"github.com/sarthakagrawal927/reader-backend/internal/api/http/middleware"
	"github.com/sarthakagrawal927/reader-backend/internal/articles"
	"github.com/sarthakagrawal927/reader-backend/internal/auth"
	"github.com/sarthakagrawal927/reader-backend/internal/boards"
	"github.com/sarthakagrawal927/reader-backend/internal/cache"
	"github.com/sarthakagrawal927/reader-backend/internal/lists"
	"github.com/sarthakagrawal927/reader-backend/internal/pdf"
	"github.com/sarthakagrawal927/reader-backend/internal/projects"
	"github.com/sarthakagrawal927/reader-backend/internal/proxy"
	"github.com/sarthakagrawal927/reader-backend/internal/reader"
	"github.com/sarthakagrawal927/reader-backend/internal/search"
	"github.com/sarthakagrawal927/reader-backend/internal/store"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Environment string
	CORSOrigins []string

	DB       store.Store
	Verifier auth.TokenVerifier
	Cache    *cache.Cache
	Search   *search.Service
	Scraper  *reader.Service
	Uploads  pdf.Uploader
	AI       *ai.Registry

	ProxyTTL     time.Duration
	ProxyMaxBody int64
	PDFMaxBytes  int64
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	if dep.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.MetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// A nil *cache.Cache must not reach the Pinger interface or the
	// probe would see a non-nil value.
	var cachePinger httpapi.Pinger
	if dep.Cache != nil {
		cachePinger = dep.Cache
	}
	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, cachePinger)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(auth.RequireUser(dep.Verifier, dep.Environment != "production"))

	articleRepo := articles.NewRepo(dep.DB)
	listRepo := lists.NewRepo(dep.DB)
	projectRepo := projects.NewRepo(dep.DB)
	boardRepo := boards.NewRepo(dep.DB)

	articles.Register(api.Group("/articles"), articleRepo, listRepo, dep.Search)
	articles.RegisterTags(api, articleRepo)
	lists.Register(api.Group("/lists"), listRepo)
	projects.Register(api.Group("/projects"), projectRepo)
	boards.Register(api.Group("/boards"), boardRepo)
	search.Register(api, dep.Search)
	ai.Register(api.Group("/ai"), dep.AI, dep.Cache)
	proxy.Register(api, dep.Cache, dep.ProxyTTL, dep.ProxyMaxBody)
	pdf.Register(api, articleRepo, dep.Uploads, dep.Search, dep.PDFMaxBytes)
	if dep.Scraper != nil {
		reader.Register(api, dep.Scraper)
	}

	return r
}
