package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"linkbio/internal/core/auth"
	"linkbio/internal/core/cache"
	"linkbio/internal/core/config"
	"linkbio/internal/core/database"
	"linkbio/internal/core/logger"
	"linkbio/internal/core/server"
	"linkbio/internal/core/storage"
	"linkbio/internal/domain"
	"linkbio/internal/repo"
	"linkbio/internal/repo/memory"
	"linkbio/internal/service"
	"linkbio/internal/transport/http/handler"
	"linkbio/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))

	log, cleanup := newLogger(cfg)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	ready := map[string]handler.Pinger{}

	users, links := mustOpenStores(cfg, log, ready)

	var profileCache cache.Store = cache.Nop{}
	if cfg.Redis.Addr != "" {
		rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		ready["redis"] = rc
		profileCache = rc
		log.Info("profile cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.ProfileTTL()))
	}

	baseURL := "http://" + humanHost(cfg.App.HTTP.Host) + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	bucket, files := mustOpenBucket(cfg, log, baseURL)

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL(),
	}

	profiles := service.NewProfileService(users, links, profileCache, cfg.Redis.ProfileTTL(), log)
	r := router.NewAPIEngine(router.Deps{
		Log:      log,
		Auth:     service.NewAuthService(users, jwter),
		Links:    service.NewLinkService(links, profiles),
		Profiles: profiles,
		Themes:   service.NewThemeService(users, profiles),
		Avatars:  service.NewAvatarService(users, bucket, profiles, cfg.Upload.MaxAvatarBytes),
		Options: router.Options{
			Mode:           ginMode(cfg.App.Env),
			BasePath:       cfg.App.HTTP.BasePath,
			RequestTimeout: cfg.App.HTTP.RequestTimeout(),
			MaxInFlight:    int64(cfg.App.HTTP.MaxInFlight),
			MaxBodyBytes:   cfg.App.HTTP.MaxBodyBytes,
			MaxAvatarBytes: cfg.Upload.MaxAvatarBytes,
			CORSOrigins:    cfg.App.HTTP.CORSOrigins,
			Files:          files,
			Ready:          ready,
		},
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	log.Info("linkbio api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+cfg.App.HTTP.BasePath),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("linkbio api start failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("linkbio api stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	f := cfg.Log.File
	if f.Enable {
		return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
			Filename:   f.Filename,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		})
	}
	return logger.New(cfg.Log.Level, cfg.Log.JSON)
}

func mustOpenStores(cfg *config.Config, l *zap.Logger, ready map[string]handler.Pinger) (domain.UserRepository, domain.LinkRepository) {
	if cfg.DB.Driver == "memory" {
		l.Warn("using in-memory stores; data is lost on restart")
		return memory.NewUsers(), memory.NewLinks()
	}

	gormLog, err := logger.ToStdLogger(l.Named("gorm"), zapcore.InfoLevel)
	if err != nil {
		l.Fatal("gorm logger", zap.Error(err))
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		PrepareStmt:        true,
		Writer:             gormLog,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err), zap.String("dsn", database.MaskDSN(cfg.DB.DSN)))
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver), zap.String("dsn", database.MaskDSN(cfg.DB.DSN)))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(domain.Models()...); err != nil {
			l.Fatal("automigrate failed", zap.Error(err))
		}
		l.Info("automigrate done")
	}

	sqlDB, err := db.DB()
	if err != nil {
		l.Fatal("db handle", zap.Error(err))
	}
	ready["db"] = handler.PingFunc(sqlDB.PingContext)
	return repo.NewUserRepo(db), repo.NewLinkRepo(db)
}

func mustOpenBucket(cfg *config.Config, l *zap.Logger, baseURL string) (storage.Bucket, http.Handler) {
	s := cfg.Storage
	if s.Driver == "memory" {
		pub := s.PublicBaseURL
		if pub == "" {
			pub = baseURL + "/files"
		}
		mem := storage.NewMemory(pub)
		l.Warn("using in-memory blob store", zap.String("publicBaseURL", pub))
		return mem, mem
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	b, err := storage.NewS3(ctx, storage.S3Options{
		Endpoint:      s.Endpoint,
		Region:        s.Region,
		Bucket:        s.Bucket,
		AccessKey:     s.AccessKey,
		SecretKey:     s.SecretKey,
		PublicBaseURL: s.PublicBaseURL,
		UsePathStyle:  s.UsePathStyle,
	})
	if err != nil {
		l.Fatal("s3 storage", zap.Error(err))
	}
	l.Info("s3 storage ready", zap.String("bucket", s.Bucket), zap.String("endpoint", s.Endpoint))
	return b, nil
}

func humanHost(h string) string {
	if h == "" || h == "0.0.0.0" {
		return "127.0.0.1"
	}
	return h
}

func ginMode(env string) string {
	switch env {
	case "prod", "production":
		return "release"
	case "test":
		return "test"
	default:
		return "debug"
	}
}
