package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Skotchmaster/wine_shop/internal/config"
	"github.com/Skotchmaster/wine_shop/internal/es"
	"github.com/Skotchmaster/wine_shop/internal/httpserver"
	"github.com/Skotchmaster/wine_shop/internal/models"
	"github.com/Skotchmaster/wine_shop/internal/mykafka"
	"github.com/Skotchmaster/wine_shop/internal/repo"
	"github.com/Skotchmaster/wine_shop/internal/service"
	pkgdb "github.com/Skotchmaster/wine_shop/pkg/db"
	"github.com/Skotchmaster/wine_shop/pkg/logging"
	"github.com/Skotchmaster/wine_shop/pkg/middleware/metrics"
)

type eventSink interface {
	service.EventPublisher
	Close() error
}

func main() {
	cfg := config.MustLoad(".env")

	logger := logging.New(cfg.LogLevel, cfg.LogFile).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var events eventSink = mykafka.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		events = prod
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	r := &repo.GormRepo{DB: db}
	catalog := &service.CatalogService{Repo: r, Events: events}

	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := es.NewClient(esCtx, es.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		}, logger)
		if err != nil {
			esCancel()
			log.Fatalf("es: %v", err)
		}
		idx := &es.WineIndex{ES: client, Index: cfg.ESIndex}
		if err := idx.EnsureIndex(esCtx); err != nil {
			esCancel()
			log.Fatalf("es ensure index: %v", err)
		}
		esCancel()
		catalog.Index = idx
	} else {
		logger.Warn("search_index_disabled", "reason", "ES_URL is empty, search falls back to the database")
	}

	m := metrics.New()
	e := httpserver.NewEcho(logger, m)
	httpserver.Register(e, &httpserver.Deps{
		OrderHandler:   &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: events}},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
		UserHandler: &httpserver.UserHTTP{
			Auth: &service.AuthService{
				Repo:          r,
				JWTSecret:     cfg.JWTAccessSecret,
				RefreshSecret: cfg.JWTRefreshSecret,
				Events:        events,
			},
			Users: &service.UserService{Repo: r},
		},
		CommentHandler: &httpserver.CommentHTTP{Svc: &service.CommentService{Repo: r, Events: events}},
		JWTSecret:      cfg.JWTAccessSecret,
		Metrics:        m,
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := events.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("server_stopped")
}
