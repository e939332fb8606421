package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zipmap/zip-api/internal/config"
	"github.com/zipmap/zip-api/internal/domain/friend"
	"github.com/zipmap/zip-api/internal/domain/location"
	"github.com/zipmap/zip-api/internal/domain/post"
	"github.com/zipmap/zip-api/internal/domain/user"
	"github.com/zipmap/zip-api/internal/middleware"
	"github.com/zipmap/zip-api/internal/pkg/database"
	"github.com/zipmap/zip-api/internal/pkg/imaging"
	"github.com/zipmap/zip-api/internal/pkg/jwt"
	"github.com/zipmap/zip-api/internal/pkg/kakao"
	"github.com/zipmap/zip-api/internal/pkg/logger"
	"github.com/zipmap/zip-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting zip API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	fileStorage, err := storage.New(context.Background(), storage.Config{
		Driver:       cfg.StorageDriver,
		LocalDir:     cfg.UploadDir,
		LocalBaseURL: cfg.UploadBaseURL,
		S3Endpoint:   cfg.S3Endpoint,
		S3Region:     cfg.S3Region,
		S3Bucket:     cfg.S3Bucket,
		S3AccessKey:  cfg.S3AccessKey,
		S3SecretKey:  cfg.S3SecretKey,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to initialize storage")
	}

	jwtService := jwt.NewService(cfg.JWTSecret)

	kakaoClient := kakao.NewClient(kakao.Options{
		BaseURL:        cfg.KakaoBaseURL,
		APIKey:         cfg.KakaoAPIKey,
		CategoryGroups: strings.Split(cfg.KakaoCategoryGroups, ","),
		Timeout:        cfg.KakaoTimeout,
		RatePerSecond:  cfg.KakaoRatePerSecond,
	})
	if cfg.KakaoAPIKey == "" {
		log.Warn().Msg("KAKAO_API_KEY not set, place search will fail")
	}

	// ---------- Repositories ----------
	userDirectory := user.NewDirectory(db)
	friendRepo := friend.NewRepository(db)
	locationRepo := location.NewRepository(db)
	postRepo := post.NewRepository(db)

	// ---------- Services ----------
	friendService := friend.NewService(friendRepo, userDirectory)
	locationService := location.NewService(locationRepo, kakaoClient, location.NewRedisCache(redis, cfg.SearchCacheTTL))
	postService := post.NewService(postRepo, fileStorage, imaging.NewProcessor(imaging.Config{
		MaxWidth:  cfg.MaxImageWidth,
		MaxHeight: cfg.MaxImageHeight,
	}))

	// ---------- Handlers ----------
	friendHandler := friend.NewHandler(friendService)
	locationHandler := location.NewHandler(locationService)
	postHandler := post.NewHandler(postService)

	identity := middleware.Identity(jwtService)

	uploadDir := ""
	if local, ok := fileStorage.(*storage.LocalStorage); ok {
		uploadDir = local.Dir()
	}

	r := newRouter(routerConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		UploadDir:      uploadDir,
		Identity:       identity,
		Friends:        friendHandler,
		Locations:      locationHandler,
		Posts:          postHandler,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
