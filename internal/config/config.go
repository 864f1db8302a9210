package config

import (
	"log/slog"

	"github.com/joho/godotenv"

	pkgconfig "github.com/Skotchmaster/wine_shop/pkg/config"
)

// Load reads .env when present, then the process environment. Variables
// already set in the environment win over the file.
func Load(path string) pkgconfig.Config {
	if err := godotenv.Load(path); err != nil {
		slog.Info("env_file_not_found", "path", path, "reason", "using system environment variables")
	}
	return pkgconfig.Load()
}

// MustLoad is Load plus the checks every server start needs.
func MustLoad(path string) pkgconfig.Config {
	cfg := Load(path)
	pkgconfig.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	pkgconfig.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	pkgconfig.MustNonEmptyBytes(cfg.JWTRefreshSecret, "JWT_REFRESH_SECRET")
	return cfg
}
