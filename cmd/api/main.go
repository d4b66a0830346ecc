package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"LinkUp/internal/config"
	"LinkUp/internal/handler"
	"LinkUp/internal/pkg"
	"LinkUp/internal/repository/mysql"
	"LinkUp/internal/repository/redis"
	"LinkUp/internal/router"
	"LinkUp/internal/service"
	"LinkUp/internal/storage"
)

func main() {
	defaultPath := os.Getenv("LINKUP_CONFIG")
	if defaultPath == "" {
		defaultPath = "config/config.yaml"
	}
	cfgPath := flag.String("config", defaultPath, "path to config file")
	flag.Parse()

	if err := run(*cfgPath); err != nil {
		slog.Error("server_exit", "err", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	slog.SetDefault(pkg.NewLogger(cfg.Log, os.Stdout))
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mysql.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer mysql.Close(db)
	// 自动建表
	if err = mysql.Migrate(db); err != nil {
		return err
	}

	var sessions service.SessionStore
	var codes service.CodeStore
	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = &redis.SessionRepository{Client: rdb, TTL: cfg.JWT.RefreshTTL}
		codes = &redis.CodeRepository{Client: rdb}
	} else {
		slog.Warn("redis_disabled", "effect", "no session revocation, no password reset")
	}

	store, err := storage.NewMinIOClient(cfg.Storage)
	if err != nil {
		return err
	}
	if err = store.EnsureBucket(ctx); err != nil {
		return err
	}

	var sender service.Sender = service.LogSender
	if cfg.Kafka.Enabled {
		producer := pkg.NewKafkaProducer(cfg.Kafka)
		defer producer.Close()
		sender = service.KafkaSender(producer)
	}
	go service.NewOutboxRelayer(db, cfg.Outbox, sender).Run(ctx)

	var mailer service.Mailer
	if cfg.SMTP.Host != "" {
		mailer = pkg.NewSMTPMailer(cfg.SMTP)
	}

	tokens := pkg.NewTokenIssuer(cfg.JWT)
	access := service.NewAccessService(db)
	userSvc := service.NewUserService(db, tokens, sessions, store)

	r := router.New(router.Handlers{
		User:         handler.NewUserHandler(userSvc),
		Email:        handler.NewEmailHandler(service.NewEmailService(db, codes, mailer), userSvc),
		Creator:      handler.NewCreatorHandler(service.NewCreatorService(db, store)),
		Post:         handler.NewPostHandler(service.NewPostService(db, access, store), cfg.Server.MaxUploadMB),
		Subscription: handler.NewSubscriptionHandler(service.NewSubscriptionService(db)),
	}, service.NewAuthService(db, tokens, sessions))
	r.MaxMultipartMemory = 32 << 20

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_start", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
