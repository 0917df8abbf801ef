package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Data: DataConfig{
			BasePath: "/some/path",
		},
		Catalog: CatalogConfig{
			DefaultPageSize: 5,
			MaxPageSize:     100,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	err := validTestConfig().Validate()
	assert.NoError(t, err)
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validTestConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},  // case insensitive
		{"trace", false}, // not supported
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validTestConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validTestConfig()
	cfg.Data.BasePath = ""

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidate_PageSizes(t *testing.T) {
	cfg := validTestConfig()
	cfg.Catalog.DefaultPageSize = 0
	assert.Error(t, cfg.Validate())

	cfg = validTestConfig()
	cfg.Catalog.MaxPageSize = 3 // smaller than default
	assert.Error(t, cfg.Validate())
}

func TestExpandPath_Tilde(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := expandPath("~/bookden/data", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "bookden", "data"), expanded)
}

func TestExpandPath_EmptyUsesDefault(t *testing.T) {
	expanded, err := expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", expanded)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("BOOKDEN_TEST_KEY", "from-env")

	// Flag wins over env.
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "BOOKDEN_TEST_KEY", "default"))
	// Env wins over default.
	assert.Equal(t, "from-env", getConfigValue("", "BOOKDEN_TEST_KEY", "default"))
	// Default when nothing else set.
	assert.Equal(t, "default", getConfigValue("", "BOOKDEN_TEST_UNSET", "default"))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment\nBOOKDEN_ENVFILE_KEY=hello\nQUOTED=\"world\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Setenv("BOOKDEN_ENVFILE_KEY", "")
	os.Unsetenv("BOOKDEN_ENVFILE_KEY")
	t.Setenv("QUOTED", "")
	os.Unsetenv("QUOTED")

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", os.Getenv("BOOKDEN_ENVFILE_KEY"))
	assert.Equal(t, "world", os.Getenv("QUOTED"))
}
