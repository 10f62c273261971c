package bootstrap

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewFactory_SQLite(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "bootstrap.db")
	cfg.Retry.MaxAttempts = 3

	ctx := context.Background()
	factory, closeFn, err := NewFactory(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()

	assert.Nil(t, factory.Cache)
	assert.Nil(t, factory.Producer)
	assert.Equal(t, 3, factory.Retry.MaxAttempts)

	require.NoError(t, factory.LoadFlights(ctx, []domain.Flight{{ID: 1, DayOfMonth: 1, Carrier: "AA", FlightNumber: "1", OriginCity: "A", DestCity: "B", Duration: 60, Capacity: 1, Price: 10}}))
	f, err := factory.Flight(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "B", f.DestCity)
}

func TestNewFactory_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = "oracle"

	_, _, err := NewFactory(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "unknown database driver")
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, config.HTTPConfig{Address: "127.0.0.1:0"}, http.NotFoundHandler(), zap.NewNop())
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_ListenError(t *testing.T) {
	err := Run(context.Background(), config.HTTPConfig{Address: "127.0.0.1:-1"}, http.NotFoundHandler(), zap.NewNop())
	assert.Error(t, err)
}
