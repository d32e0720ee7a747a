package postgres

import (
	"fmt"

	"github.com/golang-migrate/migrate"
	migratepg "github.com/golang-migrate/migrate/database/postgres"
	_ "github.com/golang-migrate/migrate/source/file"
	_ "github.com/jackc/pgx/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"birthday-bot/pkg/config"
)

const driverName = "pgx"

func BuildDSN(cfg config.PostgresConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Name, cfg.Password, cfg.SSL)
}

// Migrate applies the SQL migrations from cfg.Migrations. The dm_preference
// column lives in its own migration so existing deployments pick it up
// without touching the base table.
func Migrate(db *sqlx.DB, cfg config.PostgresConfig) error {
	driver, err := migratepg.WithInstance(db.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", cfg.Migrations), cfg.Name, driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}
	logrus.Info("database migrations applied")
	return nil
}
