package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, 0.85, cfg.Reconcile.AutoAcceptThreshold)
	assert.Equal(t, 4, cfg.Reconcile.Workers)
	assert.Equal(t, int32(4), cfg.Reconcile.UnitCostPlaces)
	assert.Equal(t, 5*time.Second, cfg.Reconcile.MovementTimeout)
	assert.Equal(t, "file://migrations", cfg.DB.MigrationsSource())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("MATCH_AUTO_ACCEPT_THRESHOLD", "0.9")
	t.Setenv("MATCH_WORKERS", "2")
	t.Setenv("MOVEMENT_TIMEOUT", "750ms")
	t.Setenv("UNIT_COST_PLACES", "2")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 0.9, cfg.Reconcile.AutoAcceptThreshold)
	assert.Equal(t, 2, cfg.Reconcile.Workers)
	assert.Equal(t, 750*time.Millisecond, cfg.Reconcile.MovementTimeout)
	assert.Equal(t, int32(2), cfg.Reconcile.UnitCostPlaces)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("MATCH_AUTO_ACCEPT_THRESHOLD", "1.5")
	_, err = Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/stock?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

func TestLoad_ValorNoNumerico(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("MATCH_AUTO_ACCEPT_THRESHOLD", "0,9")
	t.Setenv("MATCH_WORKERS", "cuatro")
	t.Setenv("MOVEMENT_TIMEOUT", "pronto")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "MATCH_AUTO_ACCEPT_THRESHOLD")
	assert.Contains(t, err.Error(), "MATCH_WORKERS")
	assert.Contains(t, err.Error(), "MOVEMENT_TIMEOUT")
}
