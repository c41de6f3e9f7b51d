package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx" // registers pgx:// driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/umalmyha/customers-mvc/internal/config"
)

// Migrate applies all pending migrations from fsys to postgres database
func Migrate(fsys fs.FS, cfg config.PostgresCfg) error {
	src, err := iofs.New(fsys, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations - %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrationURL(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize migrations - %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations - %w", err)
	}
	return nil
}

func migrationURL(cfg config.PostgresCfg) string {
	u := url.URL{
		Scheme:   "pgx",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     cfg.Database,
		RawQuery: url.Values{"sslmode": []string{cfg.SslMode}}.Encode(),
	}
	return u.String()
}
