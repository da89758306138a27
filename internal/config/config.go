package config

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dm/voltie-go/internal/engine"
)

const envPrefix = "VOLTIE"

// Store drivers accepted by the history recorder.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

type Charger struct {
	Name     string `mapstructure:"name"`
	Host     string `mapstructure:"host"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type HTTP struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type MQTT struct {
	Enabled         bool   `mapstructure:"enabled"`
	Broker          string `mapstructure:"broker"`
	ClientID        string `mapstructure:"client_id"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	DiscoveryPrefix string `mapstructure:"discovery_prefix"`
	TopicPrefix     string `mapstructure:"topic_prefix"`
}

type Store struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
}

type Config struct {
	Chargers []Charger `mapstructure:"chargers"`

	// single-charger shorthand, folded into Chargers by Load
	Name     string `mapstructure:"name"`
	Host     string `mapstructure:"host"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	PollInterval time.Duration `mapstructure:"poll_interval"`
	SetupRetry   time.Duration `mapstructure:"setup_retry"`
	LogLevel     string        `mapstructure:"log_level"`
	LogFormat    string        `mapstructure:"log_format"`

	HTTP  HTTP  `mapstructure:"http"`
	MQTT  MQTT  `mapstructure:"mqtt"`
	Store Store `mapstructure:"store"`
}

// EngineOptions returns the timing options for every charger instance.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		PollInterval: c.PollInterval,
		SetupRetry:   c.SetupRetry,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "")
	v.SetDefault("host", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("poll_interval", engine.DefaultPollInterval)
	v.SetDefault("setup_retry", engine.DefaultSetupRetry)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "auto")

	v.SetDefault("http.enabled", true)
	v.SetDefault("http.addr", ":8080")

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "voltie-go")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.discovery_prefix", "homeassistant")
	v.SetDefault("mqtt.topic_prefix", "voltie")

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.dsn", "voltie.db")
}

// flag name -> config key
var flagKeys = map[string]string{
	"host":          "host",
	"username":      "username",
	"password":      "password",
	"name":          "name",
	"poll-interval": "poll_interval",
	"setup-retry":   "setup_retry",
	"log-level":     "log_level",
	"log-format":    "log_format",
	"http-addr":     "http.addr",
	"mqtt":          "mqtt.enabled",
	"mqtt-broker":   "mqtt.broker",
	"store":         "store.enabled",
	"store-driver":  "store.driver",
	"store-dsn":     "store.dsn",
}

// RegisterFlags adds the configuration flags to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", "", "path to config file (yaml, toml or json)")
	flags.String("env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("host", "", "charger host for a single-charger setup")
	flags.String("username", "", "charger username")
	flags.String("password", "", "charger password")
	flags.String("name", "", "charger name (defaults to the host)")
	flags.Duration("poll-interval", engine.DefaultPollInterval, "refresh interval")
	flags.Duration("setup-retry", engine.DefaultSetupRetry, "delay between setup attempts")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "auto", "log format (auto, console, json)")
	flags.String("http-addr", ":8080", "HTTP API listen address")
	flags.Bool("mqtt", false, "enable the MQTT bridge")
	flags.String("mqtt-broker", "tcp://localhost:1883", "MQTT broker URL")
	flags.Bool("store", false, "enable the reading history store")
	flags.String("store-driver", DriverSQLite, "history store driver (sqlite3, pgx)")
	flags.String("store-dsn", "voltie.db", "history store DSN")
}

// Load reads configuration with precedence flags > environment > config file >
// defaults. flags must have been populated by RegisterFlags and parsed.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if envFile, _ := flags.GetString("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("voltie")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/voltie")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize folds the single-charger shorthand into Chargers and fills in
// missing names.
func (c *Config) normalize() {
	if len(c.Chargers) == 0 && c.Host != "" {
		c.Chargers = []Charger{{
			Name:     c.Name,
			Host:     c.Host,
			Username: c.Username,
			Password: c.Password,
		}}
	}
	for i := range c.Chargers {
		ch := &c.Chargers[i]
		ch.Host = strings.TrimSpace(ch.Host)
		if ch.Name == "" {
			ch.Name = DefaultName(ch.Host)
		}
	}
}

// validName matches names usable in MQTT topics and entity ids.
var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// DefaultName derives an identifier-safe charger name from its host.
func DefaultName(host string) string {
	host = strings.TrimPrefix(host, "http://")
	var b strings.Builder
	for _, r := range strings.ToLower(host) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Chargers) == 0 {
		errs = append(errs, errors.New("no chargers configured"))
	}
	seen := make(map[string]bool, len(c.Chargers))
	for i, ch := range c.Chargers {
		if ch.Host == "" {
			errs = append(errs, fmt.Errorf("chargers[%d]: host is required", i))
		}
		if !validName.MatchString(ch.Name) {
			errs = append(errs, fmt.Errorf("chargers[%d]: name %q may only contain letters, digits, '_' and '-'", i, ch.Name))
		}
		if seen[ch.Name] {
			errs = append(errs, fmt.Errorf("chargers[%d]: duplicate name %q", i, ch.Name))
		}
		seen[ch.Name] = true
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval))
	}
	if c.SetupRetry <= 0 {
		errs = append(errs, fmt.Errorf("setup_retry must be positive, got %s", c.SetupRetry))
	}
	if c.Store.Enabled {
		switch c.Store.Driver {
		case DriverSQLite, DriverPostgres:
		default:
			errs = append(errs, fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver))
		}
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required when the store is enabled"))
		}
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required when mqtt is enabled"))
	}
	return errors.Join(errs...)
}
