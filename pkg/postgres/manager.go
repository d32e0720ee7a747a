package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"birthday-bot/pkg/config"
)

// Manager owns the live *sqlx.DB handle and can replace it after a
// connection loss. Callers must fetch the handle via DB() per operation
// instead of caching it.
type Manager struct {
	mu  sync.RWMutex
	db  *sqlx.DB
	dsn string
	cfg RetryConfig
	log *logrus.Entry
}

func NewManager(ctx context.Context, pg config.PostgresConfig, cfg RetryConfig, log *logrus.Entry) (*Manager, error) {
	dsn := BuildDSN(pg)
	db, err := ConnectWithRetry(ctx, dsn, cfg, log)
	if err != nil {
		return nil, err
	}
	return &Manager{
		db:  db,
		dsn: dsn,
		cfg: cfg.normalize(),
		log: log,
	}, nil
}

func (m *Manager) DB() *sqlx.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

// Reconnect establishes a fresh connection and swaps it in, closing the
// previous handle. Safe to call concurrently with queries.
func (m *Manager) Reconnect(ctx context.Context) error {
	db, err := ConnectWithRetry(ctx, m.dsn, m.cfg, m.log)
	if err != nil {
		return err
	}

	m.mu.Lock()
	old := m.db
	m.db = db
	m.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	db := m.db
	m.db = nil
	m.mu.Unlock()
	if db != nil {
		return db.Close()
	}
	return nil
}

// MonitorAndReconnect pings the database on an interval and reconnects on
// failure. Intended to run as a background goroutine for the bot's lifetime.
func (m *Manager) MonitorAndReconnect(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			db := m.DB()
			if db == nil {
				continue
			}
			pingCtx, cancel := context.WithTimeout(ctx, m.cfg.PingTimeout)
			err := db.PingContext(pingCtx)
			cancel()
			if err != nil {
				m.log.Warnf("database ping failed: %v", err)
				if err := m.Reconnect(ctx); err != nil {
					m.log.Errorf("database reconnect failed: %v", err)
				}
			}
		}
	}
}
