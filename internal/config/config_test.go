package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NRPG_DB_PATH", "/tmp/x.db")
	t.Setenv("NRPG_REMOTE_URL", "")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "local", cfg.PlayerID)
	assert.Equal(t, 10*time.Second, cfg.RemoteTimeout)
	assert.False(t, cfg.AutoPush)
	assert.False(t, cfg.SyncEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NRPG_DB_PATH", "/tmp/y.db")
	t.Setenv("NRPG_REMOTE_URL", "http://localhost:8787")
	t.Setenv("NRPG_PLAYER_ID", "p1")
	t.Setenv("NRPG_AUTO_PUSH", "true")
	t.Setenv("NRPG_REMOTE_TIMEOUT", "3s")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, cfg.SyncEnabled())
	assert.True(t, cfg.AutoPush)
	assert.Equal(t, "p1", cfg.PlayerID)
	assert.Equal(t, 3*time.Second, cfg.RemoteTimeout)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NRPG_DB_PATH", "/tmp/z.db")
	t.Setenv("NRPG_REMOTE_TIMEOUT", "soon")

	_, err := Load(zerolog.Nop())
	require.Error(t, err)
}
