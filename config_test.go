// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"code.hybscloud.com/resp"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resp.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
addr = "cache.internal:6380"
password = "secret"
db = 2
connect_timeout = "250ms"
read_buffer = 4096
reconnect = false
reconnect_attempts = 7
reconnect_initial = "10ms"
reconnect_max = "1s"
`)
	cfg, err := resp.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, resp.Config{
		Addr:              "cache.internal:6380",
		Password:          "secret",
		DB:                2,
		ConnectTimeout:    250 * time.Millisecond,
		ReadBuffer:        4096,
		Reconnect:         false,
		ReconnectAttempts: 7,
		ReconnectInitial:  10 * time.Millisecond,
		ReconnectMax:      time.Second,
	}, cfg)

	c, err := resp.New(cfg.Options()...)
	require.NoError(t, err)
	require.Equal(t, 2, c.DB())
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `host = "10.0.0.5"
port = 7000
`)
	cfg, err := resp.LoadConfig(path)
	require.NoError(t, err)

	want := resp.DefaultConfig()
	want.Addr = "10.0.0.5:7000"
	require.Equal(t, want, cfg)
	require.True(t, cfg.Reconnect)
}

func TestLoadConfigRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":       `color = "blue"`,
		"addr and host":     "addr = \"a:1\"\nhost = \"b\"",
		"bad duration":      `connect_timeout = "soon"`,
		"negative db":       `db = -1`,
		"port out of range": "host = \"h\"\nport = 0",
		"bad addr":          `addr = "no-port"`,
		"small buffer":      `read_buffer = 10`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := resp.LoadConfig(writeConfig(t, body))
			require.ErrorIs(t, err, resp.ErrInvalidConfig)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := resp.LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestConfigTLSOption(t *testing.T) {
	cfg := resp.DefaultConfig()
	cfg.TLS = true
	cfg.TLSServerName = "cache.internal"
	_, err := resp.New(cfg.Options()...)
	require.NoError(t, err)
}
