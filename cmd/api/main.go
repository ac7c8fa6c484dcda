package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/classring/classring-backend/internal/config"
	"github.com/classring/classring-backend/internal/domain"
	"github.com/classring/classring-backend/internal/handler"
	"github.com/classring/classring-backend/internal/middleware"
	"github.com/classring/classring-backend/internal/repository"
	"github.com/classring/classring-backend/internal/routes"
	"github.com/classring/classring-backend/internal/service"
	pkgcache "github.com/classring/classring-backend/pkg/cache"
	"github.com/classring/classring-backend/pkg/jwt"
	pkglogger "github.com/classring/classring-backend/pkg/logger"
	pkgredis "github.com/classring/classring-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.Init(env)
	pkglogger.Get().Info().
		Str("env", env).
		Strs("dotenv", dotenvFiles).
		Msg("starting")

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(
			&domain.School{},
			&domain.Member{},
			&domain.Thread{},
			&domain.ThreadParticipant{},
			&domain.ThreadItem{},
		); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Redis is optional: without it the inbox cache is skipped, nothing else
	var cacheSvc pkgcache.Service
	redisClient, err := pkgredis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
	if err != nil {
		pkglogger.Get().Warn().Err(err).Msg("redis unavailable, continuing without inbox cache")
	} else {
		cacheSvc = pkgcache.NewService(redisClient)
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTTL)*time.Minute)

	// Repositories
	threadRepo := repository.NewThreadRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	itemRepo := repository.NewItemRepository(db)
	memberRepo := repository.NewMemberRepository(db)

	// Services
	recipientSvc := service.NewRecipientService(memberRepo)
	threadSvc := service.NewThreadService(threadRepo, participantRepo, itemRepo, memberRepo, recipientSvc, cacheSvc)
	itemSvc := service.NewItemService(threadRepo, participantRepo, itemRepo, cacheSvc)

	// Handlers
	threadHandler := handler.NewThreadHandler(threadSvc)
	itemHandler := handler.NewItemHandler(itemSvc)
	recipientHandler := handler.NewRecipientHandler(recipientSvc)

	if env != "local" && env != "dev" && env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORS.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORS.AllowOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.Setup(router, threadHandler, itemHandler, recipientHandler, jwtManager)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	pkglogger.Get().Info().Str("addr", addr).Msg("listening")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// initDB opens the MySQL connection. TranslateError is on so unique
// index violations surface as gorm.ErrDuplicatedKey, which the thread
// resolver relies on for direct-thread race handling.
func initDB(cfg *config.Config) (*gorm.DB, error) {
	mysqlCfg, err := mysqldriver.ParseDSN(cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	logMode := gormlogger.Warn
	if cfg.App.Env == "local" || cfg.App.Env == "dev" {
		logMode = gormlogger.Info
	}
	db, err := gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logMode),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	return db, nil
}
