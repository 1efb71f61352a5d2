package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/campushub/internal/config"
	"anoa.com/campushub/internal/middleware"
	"anoa.com/campushub/internal/session"
	"anoa.com/campushub/internal/web"
	"anoa.com/campushub/pkg/ratelimiter"
	"anoa.com/campushub/pkg/storage"

	accountHttp "anoa.com/campushub/internal/modules/account/delivery/http"
	accountRepo "anoa.com/campushub/internal/modules/account/repository"
	accountService "anoa.com/campushub/internal/modules/account/service"

	courseHttp "anoa.com/campushub/internal/modules/course/delivery/http"
	courseRepo "anoa.com/campushub/internal/modules/course/repository"
	courseService "anoa.com/campushub/internal/modules/course/service"

	eventHttp "anoa.com/campushub/internal/modules/event/delivery/http"
	eventRepo "anoa.com/campushub/internal/modules/event/repository"
	eventService "anoa.com/campushub/internal/modules/event/service"

	searchService "anoa.com/campushub/internal/modules/search/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	logger      zerolog.Logger
}

type handlers struct {
	auth      *accountHttp.AuthHandler
	eventWeb  *eventHttp.EventWebHandler
	eventAPI  *eventHttp.EventAPIHandler
	courseWeb *courseHttp.CourseWebHandler
	courseAPI *courseHttp.CourseAPIHandler
}

type routerConfig struct {
	logger          zerolog.Logger
	gate            *middleware.SessionGate
	metrics         *middleware.Metrics
	allowedOrigins  string
	publicRateLimit int
	csrfKey         []byte
	cookieSecure    bool
	health          func(ctx context.Context) error
}

// NewServer wires repositories, services and handlers over the given
// infrastructure. A nil redisClient disables session revocation and login
// throttling.
func NewServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	blobs, err := storage.New(ctx, storage.Options{
		Backend:   cfg.BlobBackend,
		LocalDir:  cfg.UploadDir,
		Folder:    cfg.CloudinaryUploadFolder,
		B2Account: cfg.B2AccountID,
		B2Key:     cfg.B2AppKey,
		B2Bucket:  cfg.B2Bucket,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob storage: %w", err)
	}

	var meiliClient meilisearch.ServiceManager
	if host := meiliHost(cfg.MeiliSearchHost); host != "" {
		meiliClient = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	}
	resourceIndex := searchService.NewResourceIndex(ctx, meiliClient)

	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, redisClient)
	loginLimiter := ratelimiter.New(redisClient, "login", cfg.LoginAttemptLimit, cfg.LoginAttemptWindow)

	accountRepository := accountRepo.NewAccountRepository(db)
	accountSvc := accountService.NewAccountService(accountRepository)

	eventRepository := eventRepo.NewEventRepository(db)
	eventSvc := eventService.NewEventService(eventRepository)

	courseRepository := courseRepo.NewCourseRepository(db)
	courseSvc := courseService.NewCourseService(courseRepository, blobs, resourceIndex)
	if resourceIndex.Enabled() {
		if n, err := courseSvc.ReindexResources(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to reindex course resources, search falls back to the database")
		} else {
			logger.Info().Int("count", n).Msg("course resources reindexed")
		}
	}

	h := handlers{
		auth:      accountHttp.NewAuthHandler(accountSvc, sessions, loginLimiter, cfg.CookieSecure),
		eventWeb:  eventHttp.NewEventWebHandler(eventSvc),
		eventAPI:  eventHttp.NewEventAPIHandler(eventSvc, accountSvc),
		courseWeb: courseHttp.NewCourseWebHandler(courseSvc),
		courseAPI: courseHttp.NewCourseAPIHandler(courseSvc),
	}

	if cfg.CSRFKey == "" && cfg.IsProduction() {
		logger.Warn().Msg("CSRF_KEY is not set, form routes are unprotected")
	}

	engine := newRouter(routerConfig{
		logger:          logger,
		gate:            middleware.NewSessionGate(sessions, accountSvc),
		metrics:         middleware.NewMetrics(),
		allowedOrigins:  cfg.AllowedOrigins,
		publicRateLimit: cfg.PublicRateLimit,
		csrfKey:         []byte(cfg.CSRFKey),
		cookieSecure:    cfg.CookieSecure,
		health:          pingDB(db),
	}, h)

	return &Server{
		engine:      engine,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

func newRouter(cfg routerConfig, h handlers) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(web.Templates())

	router.Use(corsMiddleware(cfg.allowedOrigins))
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.logger))
	router.Use(cfg.metrics.Middleware())
	router.Use(cfg.gate.LoadPrincipal())

	router.GET("/healthz", func(c *gin.Context) {
		if err := cfg.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", cfg.metrics.Handler())

	api := router.Group("/api")
	api.Use(middleware.NewIPRateLimiter(cfg.publicRateLimit).Middleware())
	{
		api.GET("/courses", h.courseAPI.ListCourses)
		api.GET("/courses/:id", h.courseAPI.GetCourse)
		api.GET("/courses/:id/resources", h.courseAPI.ListCourseResources)
		api.GET("/resources/search", h.courseAPI.SearchResources)
		api.GET("/resources/:id", h.courseAPI.GetResource)

		api.GET("/events", h.eventAPI.ListEvents)
		api.POST("/events", h.eventAPI.CreateEvent)
		api.GET("/events/:id", h.eventAPI.GetEvent)
		api.PUT("/events/:id", h.eventAPI.UpdateEvent)
		api.DELETE("/events/:id", h.eventAPI.DeleteEvent)
	}

	pages := router.Group("")
	pages.Use(middleware.CSRF(cfg.csrfKey, cfg.cookieSecure))
	{
		pages.GET("/", h.auth.Home)
		pages.GET("/register", h.auth.ShowRegister)
		pages.POST("/register", h.auth.Register)
		pages.GET("/login", h.auth.ShowLogin)
		pages.POST("/login", h.auth.Login)
		pages.GET("/logout", h.auth.Logout)
	}

	protected := pages.Group("")
	protected.Use(cfg.gate.RequirePrincipal())
	{
		protected.GET("/events", h.eventWeb.ListEvents)
		protected.GET("/events/create", h.eventWeb.ShowCreate)
		protected.POST("/events/create", h.eventWeb.CreateEvent)
		protected.GET("/events/:id", h.eventWeb.ViewEvent)
		protected.GET("/events/:id/edit", h.eventWeb.ShowEdit)
		protected.POST("/events/:id/edit", h.eventWeb.UpdateEvent)
		protected.POST("/events/:id/delete", h.eventWeb.DeleteEvent)

		protected.GET("/courses", h.courseWeb.ListCourses)
		protected.GET("/courses/:id", h.courseWeb.ViewCourse)
		protected.GET("/courses/:id/resources/add", h.courseWeb.ShowAddResource)
		protected.POST("/courses/:id/resources/add", h.courseWeb.AddResource)
		protected.POST("/resources/:id/delete", h.courseWeb.DeleteResource)
		protected.GET("/resources/:id/download", h.courseWeb.DownloadResource)
	}

	return router
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.logger.Info().Msg("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

func corsMiddleware(allowedOrigins string) gin.HandlerFunc {
	var origins []string
	for _, origin := range strings.Split(allowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func meiliHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}
	return host
}

func pingDB(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return sqlDB.PingContext(ctx)
	}
}
