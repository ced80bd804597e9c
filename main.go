package main

import (
	"fmt"
	"log"
	"os"
	"time"

	apirest "github.com/gameshelf/server/api/rest"
	"github.com/gameshelf/server/cache"
	"github.com/gameshelf/server/config"
	dbadapter "github.com/gameshelf/server/db"
	"github.com/gameshelf/server/friendship"
	"github.com/gameshelf/server/igdb"
	mw "github.com/gameshelf/server/middleware"
	"github.com/gameshelf/server/model"
	"github.com/gameshelf/server/scheduler"
	"github.com/gameshelf/server/storage"
	"github.com/gameshelf/server/storage/gormstore"
	"github.com/gameshelf/server/storage/memstore"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Security.JWTSecret == "" {
		log.Fatal("security.jwt_secret must be set")
	}

	// ---- Storage ----
	// A database failure here is tolerated: the facade starts degraded
	// and serves everything from the in-memory store instead.
	var primary storage.Store
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		logger.Warn("db open failed, continuing without a primary store", zap.Error(err))
	} else if err := model.AutoMigrate(db); err != nil {
		logger.Warn("db migrate failed, continuing without a primary store", zap.Error(err))
	} else {
		primary = gormstore.New(db)
		logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))
	}
	store := storage.NewFacade(primary, memstore.New(), logger)

	// ---- Cache ----
	c, err := cache.NewCache(cfg.Cache)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.AddTicker("storage_health", time.Minute, func() {
		if store.Degraded() {
			logger.Warn("storage degraded, serving from memory")
		}
	})

	// ---- Services ----
	friendSvc := friendship.NewService(store, logger)
	catalog := igdb.NewClient(cfg.IGDB)

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(ctx *gin.Context) {
		mode := "primary"
		if store.Degraded() {
			mode = "memory"
		}
		ctx.JSON(200, gin.H{"status": "ok", "storage": mode})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(store, c, cfg.Security)
	gameH := apirest.NewGameHandler(store, catalog)
	friendH := apirest.NewFriendHandler(store, friendSvc)
	userH := apirest.NewUserHandler(store)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/register", authH.Register)
		authG.POST("/login", authH.Login)
		authG.POST("/logout", mw.Auth(cfg.Security, c), authH.Logout)

		userG := api.Group("/user")
		userG.Use(mw.Auth(cfg.Security, c))
		userG.GET("", authH.Me)
		userG.PATCH("/profile", authH.UpdateProfile)
		userG.PATCH("/password", authH.ChangePassword)

		usersG := api.Group("/users")
		usersG.Use(mw.Auth(cfg.Security, c))
		usersG.GET("/search", userH.Search)

		gamesG := api.Group("/games")
		gamesG.Use(mw.Auth(cfg.Security, c))
		gamesG.GET("", gameH.List)
		gamesG.GET("/search", gameH.Search)
		gamesG.GET("/:id", gameH.Get)
		gamesG.POST("", gameH.Create)
		gamesG.PATCH("/:id", gameH.Update)
		gamesG.DELETE("/:id", gameH.Delete)

		catalogG := api.Group("/catalog")
		catalogG.Use(mw.Auth(cfg.Security, c))
		catalogG.GET("/search", gameH.CatalogSearch)

		friendsG := api.Group("/friends")
		friendsG.Use(mw.Auth(cfg.Security, c))
		friendsG.GET("", friendH.List)
		friendsG.GET("/pending", friendH.Pending)
		friendsG.POST("", friendH.Request)
		friendsG.PATCH("/:id/accept", friendH.Accept)
		friendsG.PATCH("/:id/reject", friendH.Reject)
		friendsG.DELETE("/:id/cancel", friendH.Cancel)
		friendsG.DELETE("/:id", friendH.Remove)
		friendsG.GET("/:id/games", friendH.Games)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
