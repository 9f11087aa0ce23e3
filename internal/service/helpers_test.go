package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"countdowns/internal/clock"
	"countdowns/internal/repository"
)

type testRepos struct {
	events   *repository.EventRepository
	settings *repository.SettingsRepository
}

func newTestRepos(t *testing.T) testRepos {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := repository.NewDB(dsn, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return testRepos{
		events:   repository.NewEventRepository(db),
		settings: repository.NewSettingsRepository(db, clock.ModeDays),
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
