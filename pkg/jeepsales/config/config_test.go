package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "jeepsales.db", cfg.Database.DSN)
	assert.True(t, cfg.Database.Migrate)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempConfig(t, "jeepsales.yaml", `
server:
  address: ":9090"
  read_timeout: 2s
database:
  driver: pgx
  dsn: postgres://file/jeeps
log:
  format: json
`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load(viper.New(), path)
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Server.Address)
		assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
		assert.Equal(t, "pgx", cfg.Database.Driver)
		assert.Equal(t, "postgres://file/jeeps", cfg.Database.DSN)
		assert.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("JEEPSALES_DATABASE_DSN", "postgres://env/jeeps")
		t.Setenv("JEEPSALES_DATABASE_MIGRATE", "false")

		cfg, err := Load(viper.New(), path)
		require.NoError(t, err)
		assert.Equal(t, "postgres://env/jeeps", cfg.Database.DSN)
		assert.False(t, cfg.Database.Migrate)
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("JEEPSALES_SERVER_ADDRESS", ":7070")

		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.String("address", ":8080", "")
		require.NoError(t, fs.Parse([]string{"--address", "127.0.0.1:6060"}))

		v := viper.New()
		require.NoError(t, v.BindPFlag("server.address", fs.Lookup("address")))

		cfg, err := Load(v, path)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:6060", cfg.Server.Address)
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("JEEPSALES_DATABASE_DRIVER", "mysql")
		_, err := Load(viper.New(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `database.driver "mysql"`)
	})
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Address: ":8080"},
		Database: DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
	require.NoError(t, cfg.Validate())

	cfg.Server.Address = ""
	cfg.Database.DSN = ""
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.address is empty")
	assert.Contains(t, err.Error(), "database.dsn is empty")
	assert.Contains(t, err.Error(), `log.format "xml"`)
}
