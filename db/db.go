package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sidhant-sriv/db-auth/config"
	"github.com/sidhant-sriv/db-auth/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrRetriesExhausted is returned by Connect when every attempt failed.
var ErrRetriesExhausted = errors.New("could not connect to database")

// Opener makes one connection attempt.
type Opener func(ctx context.Context) (*gorm.DB, error)

// NewBackoff is the startup policy: a fixed delay between attempts and
// at most retries attempts after the first one.
func NewBackoff(retries uint64, delay time.Duration) retry.Backoff {
	return retry.WithMaxRetries(retries, retry.NewConstant(delay))
}

// PostgresOpener opens the PostgreSQL database described by cfg. gorm pings
// on open, so an unreachable server fails here.
func PostgresOpener(cfg *config.Config) Opener {
	return func(ctx context.Context) (*gorm.DB, error) {
		gdb, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return gdb, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return gdb, err
		}
		// One long-lived connection unless configured otherwise.
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns)
		sqlDB.SetConnMaxLifetime(0)
		return gdb, nil
	}
}

// Connect calls open until it succeeds or backoff gives up. Each failed
// handle is closed before the next attempt.
func Connect(ctx context.Context, open Opener, backoff retry.Backoff, log *slog.Logger) (*gorm.DB, error) {
	var (
		conn    *gorm.DB
		attempt int
	)

	logged := retry.BackoffFunc(func() (time.Duration, bool) {
		next, stop := backoff.Next()
		if !stop {
			log.Info("retrying database connection", "in", next, "attempt", attempt+1)
		}
		return next, stop
	})

	err := retry.Do(ctx, logged, func(ctx context.Context) error {
		attempt++
		gdb, err := open(ctx)
		if err != nil {
			closeQuietly(gdb)
			log.Error("database connection failed", "attempt", attempt, "err", err)
			return retry.RetryableError(err)
		}
		conn = gdb
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err)
	}

	log.Info("connected to database", "attempts", attempt)
	return conn, nil
}

// Migrate creates or updates the tables this service owns.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&models.Client{}, &models.Objet{}, &models.SessionRecord{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func closeQuietly(gdb *gorm.DB) {
	if gdb == nil || gdb.ConnPool == nil {
		return
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
