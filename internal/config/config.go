package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/a8m/envsubst"
	"gopkg.in/yaml.v3"

	"github.com/h44z/wg-portal-routeros/internal"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

// Config is the main configuration struct.
type Config struct {
	Core struct {
		// Router is the initial router connection. It is only used to seed an empty settings store.
		Router RouterSeed `yaml:"router"`
		// UseRelay routes all router requests through the relay endpoint. Direct access is the fallback.
		UseRelay bool `yaml:"use_relay"`
		// RelayUrl is the URL of the relay endpoint. Empty means the relay endpoint of this server.
		RelayUrl string `yaml:"relay_url"`
		// RelayToken is a shared bearer token. If set, the relay endpoint rejects requests without it.
		RelayToken string `yaml:"relay_token"`
		// RelayRestrictTarget limits the relay endpoint to the host of the stored router connection.
		RelayRestrictTarget bool `yaml:"relay_restrict_target"`
		// WireGuardDefaults is used to seed the WireGuard defaults of an empty settings store.
		WireGuardDefaults WireGuardDefaultsSeed `yaml:"wireguard_defaults"`
	} `yaml:"core"`

	Advanced struct {
		LogLevel    string `yaml:"log_level"`
		LogPretty   bool   `yaml:"log_pretty"`
		LogJson     bool   `yaml:"log_json"`
		RouterDebug bool   `yaml:"router_debug"`
		// RequestTimeout limits a single router call. 0 disables the limit.
		RequestTimeout time.Duration `yaml:"request_timeout"`
		ApiBasePath    string        `yaml:"api_base_path"`
		UserAgent      string        `yaml:"user_agent"`
		VerifyTls      bool          `yaml:"verify_tls"`
		// PageOrigin is the origin the direct transport acts on behalf of, e.g. "https://portal.example.com".
		PageOrigin         string `yaml:"page_origin"`
		EnforceCors        bool   `yaml:"enforce_cors"`
		NotificationBuffer int    `yaml:"notification_buffer"`
		PingOnUnreachable  bool   `yaml:"ping_on_unreachable"`
		PingUnprivileged   bool   `yaml:"ping_unprivileged"`
	} `yaml:"advanced"`

	Metrics struct {
		Enabled          bool   `yaml:"enabled"`
		ListeningAddress string `yaml:"listening_address"`
	} `yaml:"metrics"`

	Database DatabaseConfig `yaml:"database"`

	Web WebConfig `yaml:"web"`
}

// RouterSeed mirrors domain.RouterConfig with YAML tags.
type RouterSeed struct {
	Address  string `yaml:"address"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	UseHttps bool   `yaml:"use_https"`
}

func (r RouterSeed) ToDomain() domain.RouterConfig {
	return domain.RouterConfig{
		Address:  r.Address,
		Port:     r.Port,
		Username: r.Username,
		Password: r.Password,
		UseHttps: r.UseHttps,
	}
}

// WireGuardDefaultsSeed mirrors domain.WireGuardDefaults with YAML tags.
type WireGuardDefaultsSeed struct {
	Endpoint       string `yaml:"endpoint"`
	Port           string `yaml:"port"`
	AllowedIpRange string `yaml:"allowed_ip_range"`
	Dns            string `yaml:"dns"`
}

func (w WireGuardDefaultsSeed) ToDomain() domain.WireGuardDefaults {
	return domain.WireGuardDefaults{
		Endpoint:       w.Endpoint,
		Port:           w.Port,
		AllowedIpRange: w.AllowedIpRange,
		Dns:            w.Dns,
	}
}

// LogStartupValues logs the most important configuration values.
func (c *Config) LogStartupValues() {
	slog.Info("Configuration loaded!", "logLevel", c.Advanced.LogLevel)

	slog.Debug("Config Features",
		"useRelay", c.Core.UseRelay,
		"relayUrl", c.RelayEndpoint(),
		"pageOrigin", c.Advanced.PageOrigin,
		"enforceCors", c.Advanced.EnforceCors,
		"requestTimeout", c.Advanced.RequestTimeout,
		"metricsEnabled", c.Metrics.Enabled,
	)

	slog.Debug("Config Settings",
		"databaseType", c.Database.Type,
		"listeningAddress", c.Web.ListeningAddress,
		"apiBasePath", c.Advanced.ApiBasePath,
	)
}

// RelayEndpoint returns the configured relay URL or the local relay endpoint.
func (c *Config) RelayEndpoint() string {
	if c.Core.RelayUrl != "" {
		return c.Core.RelayUrl
	}
	return c.Web.LocalUrl() + "/api/v1/relay"
}

func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Core.UseRelay = true
	cfg.Core.RelayRestrictTarget = true
	cfg.Core.WireGuardDefaults = WireGuardDefaultsSeed{
		Port:           "51820",
		AllowedIpRange: "10.8.0.0/24",
		Dns:            "1.1.1.1",
	}

	cfg.Advanced.LogLevel = "info"
	cfg.Advanced.RequestTimeout = 0
	cfg.Advanced.ApiBasePath = "/rest"
	cfg.Advanced.UserAgent = "wg-portal-routeros/" + internal.Version
	cfg.Advanced.VerifyTls = true
	cfg.Advanced.EnforceCors = true
	cfg.Advanced.NotificationBuffer = 50

	cfg.Metrics.ListeningAddress = ":8787"

	cfg.Database = DatabaseConfig{
		Type: DatabaseSQLite,
		DSN:  "data/sqlite.db",
	}

	cfg.Web = WebConfig{
		RequestLogging:   false,
		ListeningAddress: ":8888",
	}

	return cfg
}

// GetConfig returns the configuration from the config file.
// Environment variable substitution is supported.
func GetConfig() (*Config, error) {
	cfg := defaultConfig()

	// override config values from YAML file

	cfgFileName := "config/config.yaml"
	cfgFileNameFallback := "config/config.yml"
	if envCfgFileName := os.Getenv("WG_PORTAL_CONFIG"); envCfgFileName != "" {
		cfgFileName = envCfgFileName
		cfgFileNameFallback = envCfgFileName
	}

	if _, err := os.Stat(cfgFileName); err != nil {
		cfgFileName = cfgFileNameFallback
	}

	if err := loadConfigFile(cfg, cfgFileName); err != nil {
		return nil, fmt.Errorf("failed to load config from yaml: %w", err)
	}

	cfg.Web.Sanitize()
	cfg.Advanced.ApiBasePath = "/" + strings.Trim(cfg.Advanced.ApiBasePath, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for errors that cannot be fixed by defaults.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case DatabaseSQLite, DatabaseMySQL, DatabasePostgres, DatabaseMsSQL:
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Advanced.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	if c.Advanced.PageOrigin != "" &&
		!strings.HasPrefix(c.Advanced.PageOrigin, "http://") && !strings.HasPrefix(c.Advanced.PageOrigin, "https://") {
		return fmt.Errorf("page_origin %q must start with http:// or https://", c.Advanced.PageOrigin)
	}
	if c.Advanced.NotificationBuffer <= 0 {
		c.Advanced.NotificationBuffer = 50
	}
	return nil
}

func loadConfigFile(cfg any, filename string) error {
	data, err := envsubst.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Config file not found, using default values", "filename", filename)
			return nil
		}
		return fmt.Errorf("envsubst error: %v", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("yaml error: %v", err)
	}

	return nil
}
