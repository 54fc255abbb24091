package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bomwerk/bomwerk/internal/config"
	"github.com/bomwerk/bomwerk/internal/middleware"
	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/handler"
	"github.com/bomwerk/bomwerk/internal/plm/pricing"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"github.com/bomwerk/bomwerk/internal/plm/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting bomwerk service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.Organization{},
		&entity.User{},
		&entity.UserMeta{},
		&entity.PartClass{},
		&entity.Part{},
		&entity.PartRevision{},
		&entity.Assembly{},
		&entity.Subpart{},
		&entity.AssemblySubpart{},
		&entity.Manufacturer{},
		&entity.ManufacturerPart{},
		&entity.Seller{},
		&entity.SellerPart{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = initRedis(cfg.Redis)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			zapLogger.Warn("Redis unreachable, quantity cache falls back to memory", zap.Error(err))
			rdb = nil
		}
	}

	var store *service.ImportStore
	if cfg.MinIO.Enabled {
		mc, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			zapLogger.Warn("MinIO client init failed, import archiving disabled", zap.Error(err))
		} else {
			store = service.NewImportStore(mc, cfg.MinIO.Bucket, zapLogger)
			if err := store.EnsureBucket(context.Background()); err != nil {
				zapLogger.Warn("MinIO bucket setup failed", zap.Error(err))
			}
		}
	}

	var provider pricing.Provider
	if cfg.Mouser.Enabled && cfg.Mouser.APIKey != "" {
		provider = pricing.NewMouserProvider(cfg.Mouser.BaseURL, cfg.Mouser.APIKey, zapLogger)
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, service.NewQuantityCache(rdb), zapLogger)
	handlers := handler.NewHandlers(services, repos, store, provider)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// Organization and membership
		orgs := authorized.Group("/organizations")
		{
			orgs.POST("", h.Organization.Create)
			orgs.GET("/me", h.Organization.Me)
			orgs.GET("/current", h.Organization.Get)
			orgs.PUT("/current/number-scheme", middleware.RequireRole("admin"), h.Organization.ChangeNumberScheme)
			orgs.PUT("/current/members/:userId/role", middleware.RequireRole("admin"), h.Organization.SetMemberRole)
		}

		// Part classes
		classes := authorized.Group("/part-classes")
		{
			classes.GET("", h.PartClass.List)
			classes.POST("", middleware.RequireRole("admin"), h.PartClass.Create)
			classes.GET("/:id", h.PartClass.Get)
			classes.PUT("/:id", middleware.RequireRole("admin"), h.PartClass.Update)
			classes.DELETE("/:id", middleware.RequireRole("admin"), h.PartClass.Delete)
			classes.POST("/import", middleware.RequireRole("admin"), h.Import.ImportClasses)
		}

		// Parts
		parts := authorized.Group("/parts")
		{
			parts.GET("", h.Part.List)
			parts.POST("", middleware.RequireRole("admin"), h.Part.Create)
			parts.GET("/by-number", h.Part.GetByNumber)
			parts.POST("/import", middleware.RequireRole("admin"), h.Import.ImportParts)
			parts.GET("/:id", h.Part.Get)
			parts.DELETE("/:id", middleware.RequireRole("admin"), h.Part.Delete)
			parts.GET("/:id/revisions", h.Revision.History)
			parts.GET("/:id/revisions/latest", h.Revision.Latest)
			parts.GET("/:id/where-used", h.Assembly.WhereUsedPart)

			// Sourcing under a part
			parts.GET("/:id/manufacturer-parts", h.Sourcing.ListManufacturerParts)
			parts.POST("/:id/manufacturer-parts", middleware.RequireRole("admin"), h.Sourcing.AddManufacturerPart)
			parts.PUT("/:id/primary-manufacturer-part", middleware.RequireRole("admin"), h.Part.SetPrimaryManufacturerPart)
			parts.GET("/:id/seller-parts", h.Sourcing.ListSellerParts)
			parts.GET("/:id/mouser", h.Sourcing.MouserSearch)
		}

		// Manufacturer part offers
		authorized.POST("/manufacturer-parts/:mpartId/seller-parts", middleware.RequireRole("admin"), h.Sourcing.AddSellerPart)
		authorized.DELETE("/seller-parts/:sellerPartId", middleware.RequireRole("admin"), h.Sourcing.DeleteSellerPart)

		// Revisions
		revisions := authorized.Group("/revisions")
		{
			revisions.GET("/:id", h.Revision.Get)
			revisions.PUT("/:id/spec", middleware.RequireRole("admin"), h.Revision.SaveSpec)
			revisions.POST("/:id/release", middleware.RequireRole("admin"), h.Revision.Release)
			revisions.POST("/:id/revert", middleware.RequireRole("admin"), h.Revision.Revert)
			revisions.POST("/:id/fork", middleware.RequireRole("admin"), h.Revision.Fork)

			// Assembly graph
			revisions.GET("/:id/subparts", h.Assembly.ListSubparts)
			revisions.POST("/:id/subparts", middleware.RequireRole("admin"), h.Assembly.AddSubpart)
			revisions.DELETE("/:id/subparts/:subpartId", middleware.RequireRole("admin"), h.Assembly.RemoveSubpart)
			revisions.GET("/:id/bom/indented", h.Assembly.IndentedBom)
			revisions.GET("/:id/bom/flat", h.Assembly.FlatBom)
			revisions.GET("/:id/bom/rollup", h.Bom.Rollup)
			revisions.GET("/:id/where-used", h.Assembly.WhereUsed)
			revisions.POST("/:id/bom/import", middleware.RequireRole("admin"), h.Import.ImportBom)
			revisions.GET("/:id/bom/export", h.Export.Export)
		}
	}
}
