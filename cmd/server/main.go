package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/yuzutyaso/chatsite/config"
	chatrepository "github.com/yuzutyaso/chatsite/internal/chat/repository"
	chatsync "github.com/yuzutyaso/chatsite/internal/chat/sync"
	"github.com/yuzutyaso/chatsite/internal/feed"
	"github.com/yuzutyaso/chatsite/internal/feed/pgfeed"
	"github.com/yuzutyaso/chatsite/internal/feed/wsfeed"
	friendshiprepository "github.com/yuzutyaso/chatsite/internal/friendship/repository"
	friendshipusecase "github.com/yuzutyaso/chatsite/internal/friendship/usecase"
	"github.com/yuzutyaso/chatsite/internal/handler"
	"github.com/yuzutyaso/chatsite/internal/media"
	"github.com/yuzutyaso/chatsite/internal/profile"
	profilecache "github.com/yuzutyaso/chatsite/internal/profile/cache"
	profilerepository "github.com/yuzutyaso/chatsite/internal/profile/repository"
	profileusecase "github.com/yuzutyaso/chatsite/internal/profile/usecase"
	"github.com/yuzutyaso/chatsite/pkg/blob"
	"github.com/yuzutyaso/chatsite/pkg/logger"
)

type runnableFeed interface {
	feed.Feed
	Run(ctx context.Context) error
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env file not found, using config defaults: %v", err)
	}

	v, err := config.LoadConfig("config")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg, err := config.ParseConfig(v)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	lg, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Bun.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	// Repositories
	var profiles profile.Repository = profilerepository.NewProfileRepository(db, lg)
	if cfg.Redis.ProfileTTL > 0 {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		profiles = profilecache.NewCachingRepository(profiles, rdb,
			time.Duration(cfg.Redis.ProfileTTL)*time.Second, lg)
	}
	friendships := friendshiprepository.NewFriendshipRepository(db, lg)
	messages := chatrepository.NewMessageRepository(db, lg)

	// Change feed
	var fd runnableFeed
	switch cfg.Feed.Driver {
	case "websocket":
		fd = wsfeed.New(cfg.Feed.WSURL, lg)
	default:
		fd = pgfeed.New(db, cfg.Feed.Channel, lg)
	}
	go func() {
		if err := fd.Run(ctx); err != nil && ctx.Err() == nil {
			lg.Error("change feed stopped", "err", err)
		}
	}()

	// Usecases
	profileUC := profileusecase.NewProfileUsecase(profiles, lg)
	friendUC := friendshipusecase.NewFriendshipUsecase(friendships, profiles, lg)
	syncer := chatsync.NewSyncer(messages, profiles, fd, cfg.Chat.RetentionBound, lg)

	store, err := blob.NewFSStore(cfg.Blob.Dir, cfg.Blob.PublicURL)
	if err != nil {
		log.Fatalf("failed to init blob store: %v", err)
	}
	uploader := media.NewUploader(store, lg)

	h := handler.New(*cfg, profileUC, friendUC, syncer, messages, uploader, lg)
	router := h.SetupRouter()

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS", "PUT"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: c.Handler(router),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Error("server shutdown failed", "err", err)
		}
	}()

	lg.Info("server started", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
