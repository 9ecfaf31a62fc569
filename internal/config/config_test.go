package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Clear any env vars
	os.Unsetenv("CRASHMON_CRASHER_PATH")
	os.Unsetenv("CRASHMON_SOCKET_DIR")
	os.Unsetenv("CRASHMON_LOG_LEVEL")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "crasher", cfg.CrasherPath)
	assert.Equal(t, os.TempDir(), cfg.SocketDir)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.ReportEnabled)
	assert.Contains(t, cfg.ReportFile, ".crashmon/report.log")
}

func TestLoadConfig_EnvVarOverride(t *testing.T) {
	os.Setenv("CRASHMON_CRASHER_PATH", "/opt/fixtures/crasher")
	os.Setenv("CRASHMON_LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("CRASHMON_CRASHER_PATH")
		os.Unsetenv("CRASHMON_LOG_LEVEL")
	}()

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/opt/fixtures/crasher", cfg.CrasherPath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{
			name:     "expand tilde",
			input:    "~/.crashmon/config",
			contains: ".crashmon/config",
		},
		{
			name:     "absolute path unchanged",
			input:    "/etc/crashmon/config",
			contains: "/etc/crashmon/config",
		},
		{
			name:     "empty path",
			input:    "",
			contains: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if tt.input == "" {
				assert.Equal(t, tt.contains, result)
			} else {
				assert.Contains(t, result, tt.contains)
			}
		})
	}
}
