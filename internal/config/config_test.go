package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(append([]string{"--env-file", ""}, args...)))
	return fs
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sampleYAML = `
poll_interval: 10s
log_level: debug
chargers:
  - name: garage
    host: 192.168.1.40
    username: admin
    password: secret
  - host: 192.168.1.41
http:
  addr: ":9090"
mqtt:
  enabled: true
  broker: tcp://broker:1883
store:
  enabled: true
  driver: pgx
  dsn: postgres://localhost/voltie
`

func TestLoad_FromFile(t *testing.T) {
	path := writeFile(t, "voltie.yaml", sampleYAML)

	cfg, err := Load(newFlags(t, "--config", path))
	require.NoError(t, err)

	require.Len(t, cfg.Chargers, 2)
	assert.Equal(t, Charger{Name: "garage", Host: "192.168.1.40", Username: "admin", Password: "secret"}, cfg.Chargers[0])
	assert.Equal(t, "192_168_1_41", cfg.Chargers[1].Name)

	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.SetupRetry)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.HTTP.Enabled)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, "homeassistant", cfg.MQTT.DiscoveryPrefix)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)

	opts := cfg.EngineOptions()
	assert.Equal(t, 10*time.Second, opts.PollInterval)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "voltie.yaml", "host: from-file\npoll_interval: 10s\nlog_level: warn\n")
	t.Setenv("VOLTIE_POLL_INTERVAL", "7s")
	t.Setenv("VOLTIE_LOG_LEVEL", "error")
	t.Setenv("VOLTIE_HTTP_ADDR", ":7000")

	cfg, err := Load(newFlags(t, "--config", path, "--log-level", "debug"))
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Chargers[0].Host)
	assert.Equal(t, 7*time.Second, cfg.PollInterval, "env beats file")
	assert.Equal(t, "debug", cfg.LogLevel, "flag beats env")
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
}

func TestLoad_SingleChargerFromFlags(t *testing.T) {
	cfg, err := Load(newFlags(t, "--host", "charger.local", "--username", "admin", "--password", "pw"))
	require.NoError(t, err)

	require.Len(t, cfg.Chargers, 1)
	assert.Equal(t, Charger{Name: "charger_local", Host: "charger.local", Username: "admin", Password: "pw"}, cfg.Chargers[0])
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
}

func TestLoad_DotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "VOLTIE_HOST=dotenv-host\nVOLTIE_NAME=driveway\n")
	t.Cleanup(func() {
		_ = os.Unsetenv("VOLTIE_HOST")
		_ = os.Unsetenv("VOLTIE_NAME")
	})

	cfg, err := Load(newFlags(t, "--env-file", envFile))
	require.NoError(t, err)
	require.Len(t, cfg.Chargers, 1)
	assert.Equal(t, "driveway", cfg.Chargers[0].Name)
	assert.Equal(t, "dotenv-host", cfg.Chargers[0].Host)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	_, err := Load(newFlags(t, "--env-file", filepath.Join(t.TempDir(), "missing.env"), "--host", "h"))
	assert.NoError(t, err)
}

func TestLoad_BadConfigFile(t *testing.T) {
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Chargers:     []Charger{{Name: "a", Host: "h"}},
			PollInterval: time.Second,
			SetupRetry:   time.Second,
			Store:        Store{Driver: DriverSQLite, DSN: "x.db"},
		}
	}
	require.NoError(t, valid().Validate())

	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"no chargers", func(c *Config) { c.Chargers = nil }, "no chargers"},
		{"missing host", func(c *Config) { c.Chargers[0].Host = "" }, "host is required"},
		{"duplicate", func(c *Config) { c.Chargers = append(c.Chargers, Charger{Name: "a", Host: "h2"}) }, "duplicate name"},
		{"interval", func(c *Config) { c.PollInterval = 0 }, "poll_interval"},
		{"retry", func(c *Config) { c.SetupRetry = -time.Second }, "setup_retry"},
		{"driver", func(c *Config) { c.Store.Enabled = true; c.Store.Driver = "mysql" }, "unknown driver"},
		{"dsn", func(c *Config) { c.Store.Enabled = true; c.Store.DSN = "" }, "store.dsn"},
		{"broker", func(c *Config) { c.MQTT.Enabled = true }, "mqtt.broker"},
		{"topic wildcard", func(c *Config) { c.Chargers[0].Name = "garage/#" }, "may only contain"},
		{"topic plus", func(c *Config) { c.Chargers[0].Name = "a+b" }, "may only contain"},
		{"space", func(c *Config) { c.Chargers[0].Name = "my charger" }, "may only contain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidate_AcceptsDerivedNames(t *testing.T) {
	c := &Config{
		Chargers:     []Charger{{Name: "Garage-1", Host: "h"}, {Host: "http://Charger.local:8080"}},
		PollInterval: time.Second,
		SetupRetry:   time.Second,
	}
	c.normalize()
	assert.NoError(t, c.Validate())
}

func TestDefaultName(t *testing.T) {
	assert.Equal(t, "192_168_1_40", DefaultName("192.168.1.40"))
	assert.Equal(t, "charger_local_8080", DefaultName("http://Charger.local:8080"))
}
