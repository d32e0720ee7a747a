package postgres

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// RetryConfig controls the connect/backoff behavior. Zero values fall back
// to sane defaults via normalize.
type RetryConfig struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxElapsed  time.Duration
	MaxAttempts int
	PingTimeout time.Duration
	Jitter      float64
}

func (cfg RetryConfig) normalize() RetryConfig {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 5 * time.Second
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}
	if cfg.Jitter > 0.5 {
		cfg.Jitter = 0.5
	}
	return cfg
}

// ConnectWithRetry opens the database and pings it, retrying with
// exponential backoff and jitter until it succeeds or a limit is hit.
func ConnectWithRetry(ctx context.Context, dsn string, cfg RetryConfig, log *logrus.Entry) (*sqlx.DB, error) {
	cfg = cfg.normalize()

	start := time.Now()
	backoff := cfg.BaseDelay

	for attempt := 1; ; attempt++ {
		if cfg.MaxAttempts > 0 && attempt > cfg.MaxAttempts {
			return nil, errors.New("db connect: max attempts reached")
		}
		if cfg.MaxElapsed > 0 && time.Since(start) > cfg.MaxElapsed {
			return nil, errors.New("db connect: max elapsed time reached")
		}

		db, err := tryOpen(ctx, dsn, cfg.PingTimeout)
		if err == nil {
			if attempt > 1 {
				log.Infof("database connected after %d attempts", attempt)
			}
			return db, nil
		}
		log.Warnf("database connect attempt %d failed: %v", attempt, err)

		delay := backoff
		if cfg.Jitter > 0 {
			delay = time.Duration(float64(delay) * (1 + (rand.Float64()*2-1)*cfg.Jitter))
		}
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
		if backoff < cfg.MaxDelay {
			backoff *= 2
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func tryOpen(ctx context.Context, dsn string, pingTimeout time.Duration) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
