package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Run("EmptyPath", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9051", cfg.Control.Address)
		assert.Equal(t, 300, cfg.Graph.MaxColumn)
		assert.True(t, cfg.Accounting.Show)
	})

	t.Run("MissingFile", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.Accounting.PollInterval)
	})
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.yaml")
	data := `
control:
  address: "10.0.0.1:9151"
  request_timeout: 2s
graph:
  intervals: [1s, 15m]
  max_column: 120
accounting:
  show: false
  poll_interval: 10s
state:
  path: /var/lib/relay/state.json
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:9151", cfg.Control.Address)
	assert.Equal(t, 2*time.Second, cfg.Control.RequestTimeout)
	assert.Equal(t, []int{1, 900}, cfg.Graph.ResolutionSeconds())
	assert.Equal(t, 120, cfg.Graph.MaxColumn)
	assert.False(t, cfg.Accounting.Show)
	assert.Equal(t, "/var/lib/relay/state.json", cfg.State.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.State.LockTimeout, "unset fields keep defaults")
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"sub-second interval", "graph:\n  intervals: [500ms]\n"},
		{"zero max_column", "graph:\n  max_column: -1\n  intervals: [1s]\n"},
		{"zero poll interval", "accounting:\n  poll_interval: 0s\n"},
		{"malformed yaml", "graph: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
