// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seaccess.
//
// go-seaccess is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("minimal config gets defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "logging:\n  level: info\n"))
		require.NoError(t, err)

		assert.Equal(t, DefaultPort, cfg.Server.Port)
		assert.Equal(t, DefaultPolicyPath, cfg.Policy.Path)
		assert.Equal(t, DefaultRegistryPath, cfg.Registry.Path)
		assert.Equal(t, DefaultReadTimeout, cfg.Server.ReadTimeout)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.False(t, cfg.DebugLogging())
	})

	t.Run("full config", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9000
logging:
  level: debug
policy:
  path: /tmp/access.xml
  broker_package: com.vendor.se.broker
registry:
  path: /tmp/registry.yaml
metrics:
  enabled: true
ratelimit:
  enabled: true
  requests_per_minute: 120
  burst: 20
`))
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.True(t, cfg.DebugLogging())
		assert.Equal(t, "/tmp/access.xml", cfg.Policy.Path)
		assert.Equal(t, "com.vendor.se.broker", cfg.Policy.BrokerPackage)
		assert.True(t, cfg.RateLimit.Enabled)
		assert.Equal(t, 120, cfg.RateLimit.RequestsPerMinute)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: ["))
		assert.Error(t, err)
	})

	t.Run("invalid logging level", func(t *testing.T) {
		_, err := Load(writeConfig(t, "logging:\n  level: chatty\n"))
		assert.Error(t, err)
	})

	t.Run("invalid port", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server:\n  port: 70000\n"))
		assert.Error(t, err)
	})

	t.Run("ratelimit enabled without a rate", func(t *testing.T) {
		_, err := Load(writeConfig(t, "ratelimit:\n  enabled: true\n"))
		assert.Error(t, err)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.Policy.BrokerPackage)
}
