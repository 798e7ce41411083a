package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	categorydomain "github.com/stockroomhq/stockroom/internal/category/domain"
	"github.com/stockroomhq/stockroom/internal/config"
	historydomain "github.com/stockroomhq/stockroom/internal/history/domain"
	itemdomain "github.com/stockroomhq/stockroom/internal/item/domain"
	"github.com/stockroomhq/stockroom/internal/metrics"
	projectdomain "github.com/stockroomhq/stockroom/internal/project/domain"
	"github.com/stockroomhq/stockroom/internal/ratelimit"
	userdomain "github.com/stockroomhq/stockroom/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	return NewEngine(log, m)
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	db          *gorm.DB
	genID       *snowflake.Node
	limiter     *ratelimit.Limiter
	itemSvc     itemdomain.Service
	historySvc  historydomain.Service
	projectSvc  projectdomain.Service
	categorySvc categorydomain.Service
	userSvc     userdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	GenID       *snowflake.Node
	Limiter     *ratelimit.Limiter `optional:"true"`
	ItemSvc     itemdomain.Service
	HistorySvc  historydomain.Service
	ProjectSvc  projectdomain.Service
	CategorySvc categorydomain.Service
	UserSvc     userdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		db:          p.DB,
		genID:       p.GenID,
		limiter:     p.Limiter,
		itemSvc:     p.ItemSvc,
		historySvc:  p.HistorySvc,
		projectSvc:  p.ProjectSvc,
		categorySvc: p.CategorySvc,
		userSvc:     p.UserSvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func registerRoutes(s *Server) {
	s.registerAPIRoutes()
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	items := api.Group("/items")
	{
		items.GET("", s.ListItems)
		items.POST("", s.CreateItem)
		items.GET("/:id", s.GetItemByID)
		items.PATCH("/:id", s.UpdateItemFields)
		items.GET("/:id/materials", s.GetRawBomMaterials)
		items.GET("/:id/history", s.GetItemHistory)

		mutate := items.Group("", s.RateLimitMiddleware())
		{
			mutate.POST("/:id/quantity", s.AdjustItemQuantity)
			mutate.POST("/:id/quantity/set", s.SetItemQuantity)
			mutate.POST("/:id/assemble", s.AssembleItem)
		}
	}

	projects := api.Group("/projects")
	{
		projects.GET("", s.ListProjects)
		projects.POST("", s.CreateProject)
		projects.GET("/:id", s.GetProjectByID)
		projects.DELETE("/:id", s.DeleteProject)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", s.ListCategories)
		categories.POST("", s.CreateCategory)
		categories.DELETE("/:id", s.DeleteCategory)
	}

	users := api.Group("/users")
	{
		users.GET("", s.ListUsers)
		users.POST("", s.RegisterUser)
		users.POST("/login", s.Login)
	}
}

func run(lc fx.Lifecycle, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
