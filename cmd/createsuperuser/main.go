// Command createsuperuser creates a staff account.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"github.com/Skotchmaster/wine_shop/internal/config"
	"github.com/Skotchmaster/wine_shop/internal/models"
	"github.com/Skotchmaster/wine_shop/internal/repo"
	"github.com/Skotchmaster/wine_shop/internal/service"
	"github.com/Skotchmaster/wine_shop/internal/transport"
	pkgconfig "github.com/Skotchmaster/wine_shop/pkg/config"
	pkgdb "github.com/Skotchmaster/wine_shop/pkg/db"
	"github.com/Skotchmaster/wine_shop/pkg/logging"
)

func main() {
	email := flag.String("email", "", "email address")
	password := flag.String("password", "", "password")
	first := flag.String("first", "Admin", "first name")
	last := flag.String("last", "Admin", "last name")
	flag.Parse()

	cfg := config.Load(".env")
	pkgconfig.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	if *email == "" || *password == "" {
		log.Fatal("-email and -password are required")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFile).With("service", cfg.ServiceName, "cmd", "createsuperuser")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer pkgdb.Close(db)

	if err := models.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	svc := &service.AuthService{Repo: &repo.GormRepo{DB: db}}
	user, err := svc.CreateSuperuser(ctx, transport.RegisterRequest{
		Email:     *email,
		FirstName: *first,
		LastName:  *last,
		Password:  *password,
	})
	if err != nil {
		log.Fatalf("create superuser: %v", err)
	}

	logger.Info("superuser_created", "user_id", user.ID, "email", user.Email)
}
