package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sidhant-sriv/db-auth/db"
	"github.com/sidhant-sriv/db-auth/db/dbtest"
	"github.com/sidhant-sriv/db-auth/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingBackoff wraps a backoff and remembers every delay it handed out.
type recordingBackoff struct {
	next   retry.Backoff
	delays []time.Duration
}

func (r *recordingBackoff) Next() (time.Duration, bool) {
	d, stop := r.next.Next()
	if !stop {
		r.delays = append(r.delays, d)
	}
	return d, stop
}

func (r *recordingBackoff) total() time.Duration {
	var sum time.Duration
	for _, d := range r.delays {
		sum += d
	}
	return sum
}

// flakyOpener fails the first n calls, then opens an in-memory database.
func flakyOpener(t *testing.T, n int, calls *int) db.Opener {
	return func(ctx context.Context) (*gorm.DB, error) {
		*calls++
		if *calls <= n {
			return nil, errors.New("connection refused")
		}
		return dbtest.Open(t), nil
	}
}

func TestConnect_SucceedsAfterFailures(t *testing.T) {
	const delay = 5 * time.Millisecond
	for _, failures := range []int{0, 1, 3} {
		calls := 0
		backoff := &recordingBackoff{next: db.NewBackoff(10, delay)}

		start := time.Now()
		gdb, err := db.Connect(context.Background(), flakyOpener(t, failures, &calls), backoff, logging.Discard())
		elapsed := time.Since(start)

		require.NoError(t, err)
		require.NotNil(t, gdb)
		assert.Equal(t, failures+1, calls)
		assert.Len(t, backoff.delays, failures)
		assert.Equal(t, time.Duration(failures)*delay, backoff.total())
		assert.GreaterOrEqual(t, elapsed, time.Duration(failures)*delay)
	}
}

func TestConnect_Exhausted(t *testing.T) {
	calls := 0
	backoff := &recordingBackoff{next: db.NewBackoff(3, time.Millisecond)}

	gdb, err := db.Connect(context.Background(), flakyOpener(t, 100, &calls), backoff, logging.Discard())

	assert.Nil(t, gdb)
	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrRetriesExhausted))
	assert.Contains(t, err.Error(), "connection refused")
	// first attempt plus three retries
	assert.Equal(t, 4, calls)
	assert.Len(t, backoff.delays, 3)
}

func TestConnect_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	open := func(context.Context) (*gorm.DB, error) {
		calls++
		cancel()
		return nil, errors.New("connection refused")
	}

	_, err := db.Connect(ctx, open, db.NewBackoff(10, time.Hour), logging.Discard())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestMigrate_CreatesTables(t *testing.T) {
	gdb := dbtest.Open(t)

	for _, table := range []string{"clients", "objets", "sessions"} {
		assert.Truef(t, gdb.Migrator().HasTable(table), "missing table %s", table)
	}
}
