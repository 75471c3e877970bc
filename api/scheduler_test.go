package api_test

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tranvietnhattu/SMARTMONEY/api"
	"github.com/Tranvietnhattu/SMARTMONEY/cycle"
	"github.com/Tranvietnhattu/SMARTMONEY/cycle/store"
)

func TestNewScheduler_RejectsBadSpec(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	manager := cycle.NewManager(store.NewMemory(), nil, log)

	_, err := api.NewScheduler(manager, "not a cron spec", log)
	assert.Error(t, err)
}

func TestScheduler_StartRunsImmediately(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	mem := store.NewMemory()
	manager := cycle.NewManager(mem, nil, log)

	sched, err := api.NewScheduler(manager, "5 0 * * *", log)
	require.NoError(t, err)

	sched.Start()
	defer sched.Stop()

	// The startup run performed the first-run initialization.
	_, ok, err := mem.LastCycleID(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}
