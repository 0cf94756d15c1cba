package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
db_server:
  host: localhost
  port: "5432"
  user: postgres
  pass: postgres
  name: fxconvert
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.HTTPServer.Port)
	require.Equal(t, int32(10), cfg.DbServer.MaxConns)
	require.Equal(t, 1.1, cfg.Conversion.EURToUSD)
	require.Equal(t, 1.35, cfg.Conversion.SDRToUSD)
	require.Equal(t, 100.0, cfg.Defaults.Amount)
	require.Equal(t, "Vietnam", cfg.Defaults.Country)
	require.Equal(t, "Domestic currency per US Dollar", cfg.Defaults.FromIndicator)
	require.Equal(t, "US Dollar per domestic currency", cfg.Defaults.ToIndicator)
	require.Equal(t, 10, cfg.Defaults.AuditLimit)
	require.Equal(t, LockBackendLocal, cfg.Lock.Backend)
	require.Equal(t, 300, cfg.Scheduler.PivotRefreshSec)
	require.Equal(t,
		"user=postgres password=postgres host=localhost port=5432 dbname=fxconvert sslmode=disable",
		cfg.DbServer.GetConnectionStr(),
	)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
db_server:
  host: localhost
lock:
  backend: local
`)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("LOCK_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6380")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "db.internal", cfg.DbServer.Host)
	require.Equal(t, LockBackendRedis, cfg.Lock.Backend)
	require.Equal(t, "redis:6380", cfg.Redis.Addr)
}

func TestLoad_UnknownLockBackend(t *testing.T) {
	path := writeConfig(t, `
lock:
  backend: zookeeper
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "unknown lock backend")
}

func TestLoad_AuditLimitCapped(t *testing.T) {
	path := writeConfig(t, `
defaults:
  audit_limit: 500
  max_audit_limit: 50
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 50, cfg.Defaults.AuditLimit)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "error reading config file")
}
