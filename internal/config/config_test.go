package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			assert.Equal(t, 8080, cfg.Server.Port)
			assert.Equal(t, DriverPostgres, cfg.Database.Driver)
			assert.Equal(t, "s3cret", cfg.Database.Password)
			assert.Equal(t, "warden_data", cfg.Database.Database)
			assert.True(t, cfg.Database.AutoMigrate)
			assert.Equal(t, "warden:batch:", cfg.Redis.KeyPrefix)
			assert.Equal(t, 2, cfg.Redis.DB)
			assert.True(t, cfg.RabbitMQ.Enabled)
			assert.Equal(t, "ingest_events", cfg.RabbitMQ.Exchange.Name)
			assert.Equal(t, 250, cfg.Queue.Capacity)
			assert.Equal(t, 2, cfg.Worker.Concurrency)
			assert.Equal(t, 30*time.Minute, cfg.Staging.TTL)
			assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
			assert.Equal(t, "ingest-service", cfg.App.Name)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("testdata/minimal.yaml")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, 100, cfg.Queue.Capacity)
	assert.Equal(t, 1, cfg.Worker.Concurrency)
	assert.Equal(t, time.Hour, cfg.Staging.TTL)
	assert.Zero(t, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func validConfig() *Config {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "warden_data",
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errString string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:      "invalid server port - too low",
			mutate:    func(c *Config) { c.Server.Port = -1 },
			errString: "invalid server port",
		},
		{
			name:      "invalid server port - too high",
			mutate:    func(c *Config) { c.Server.Port = 70000 },
			errString: "invalid server port",
		},
		{
			name:      "unsupported driver",
			mutate:    func(c *Config) { c.Database.Driver = "mysql" },
			errString: "unsupported database driver",
		},
		{
			name:      "missing database host",
			mutate:    func(c *Config) { c.Database.Host = "" },
			errString: "database host is required",
		},
		{
			name:      "invalid database port",
			mutate:    func(c *Config) { c.Database.Port = 0 },
			errString: "invalid database port",
		},
		{
			name:      "missing database name",
			mutate:    func(c *Config) { c.Database.Database = "" },
			errString: "database name is required",
		},
		{
			name: "sqlite needs only a path",
			mutate: func(c *Config) {
				c.Database = DatabaseConfig{Driver: DriverSQLite, Database: "warden.db"}
			},
		},
		{
			name:      "sqlite without path",
			mutate:    func(c *Config) { c.Database = DatabaseConfig{Driver: DriverSQLite} },
			errString: "database path is required",
		},
		{
			name:      "missing redis addr",
			mutate:    func(c *Config) { c.Redis.Addr = "" },
			errString: "redis addr is required",
		},
		{
			name:   "rabbitmq disabled skips its checks",
			mutate: func(c *Config) { c.RabbitMQ.Enabled = false },
		},
		{
			name:      "rabbitmq enabled without host",
			mutate:    func(c *Config) { c.RabbitMQ.Enabled = true },
			errString: "rabbitmq host is required",
		},
		{
			name: "rabbitmq enabled without exchange",
			mutate: func(c *Config) {
				c.RabbitMQ.Enabled = true
				c.RabbitMQ.Host = "localhost"
				c.RabbitMQ.Port = 5672
			},
			errString: "rabbitmq exchange name is required",
		},
		{
			name:      "negative queue capacity",
			mutate:    func(c *Config) { c.Queue.Capacity = -1 },
			errString: "queue capacity",
		},
		{
			name:      "negative worker concurrency",
			mutate:    func(c *Config) { c.Worker.Concurrency = -2 },
			errString: "worker concurrency",
		},
		{
			name:      "negative job timeout",
			mutate:    func(c *Config) { c.Worker.JobTimeout = -time.Second },
			errString: "job_timeout",
		},
		{
			name:      "negative staging ttl",
			mutate:    func(c *Config) { c.Staging.TTL = -time.Minute },
			errString: "staging ttl",
		},
		{
			name:      "rate limit without burst",
			mutate:    func(c *Config) { c.RateLimit.RequestsPerSecond = 3 },
			errString: "ratelimit burst",
		},
		{
			name:      "negative rate",
			mutate:    func(c *Config) { c.RateLimit.RequestsPerSecond = -1 },
			errString: "requests_per_second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errString != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoad_ValidateIntegration(t *testing.T) {
	t.Run("load and validate valid config", func(t *testing.T) {
		cfg, err := Load("testdata/valid_config.yaml")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		err = cfg.Validate()
		require.NoError(t, err)
	})

	t.Run("load config with invalid port", func(t *testing.T) {
		cfg, err := Load("testdata/invalid_port.yaml")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid server port")
	})

	t.Run("load config with missing database", func(t *testing.T) {
		cfg, err := Load("testdata/missing_database.yaml")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database name is required")
	})
}
