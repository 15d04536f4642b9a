package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	// Public address handed out by the address command
	Address string `mapstructure:"address"`

	Panel  PanelConfig  `mapstructure:"panel"`
	Query  QueryConfig  `mapstructure:"query"`
	Notify NotifyConfig `mapstructure:"notify"`
	Paths  PathsConfig  `mapstructure:"paths"`

	// Cooldown between start attempts
	Cooldown time.Duration `mapstructure:"cooldown"`
}

// PanelConfig holds the hosting-panel automation settings. The three
// selector fields are the only coupling to the panel's markup and are
// expected to break when the site changes its markup.
type PanelConfig struct {
	URL                string        `mapstructure:"url"`
	ServerSelector     string        `mapstructure:"server_selector"`
	StartSelector      string        `mapstructure:"start_selector"`
	ChallengeSelectors []string      `mapstructure:"challenge_selectors"`
	NavTimeout         time.Duration `mapstructure:"nav_timeout"`
	Settle             time.Duration `mapstructure:"settle"`
}

// QueryConfig holds the game-server status query settings
type QueryConfig struct {
	Host    string        `mapstructure:"host"`
	Port    uint16        `mapstructure:"port"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

// NotifyConfig holds the status polling settings
type NotifyConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// PathsConfig holds file locations for persisted state and logs
type PathsConfig struct {
	Session   string `mapstructure:"session"`
	Registry  string `mapstructure:"registry"`
	DetailLog string `mapstructure:"detail_log"`
	ErrorLog  string `mapstructure:"error_log"`
}

// Default returns a Config with default values
func Default() *Config {
	home, _ := os.UserHomeDir()
	stateDir := filepath.Join(home, ".craftkeeper")
	return &Config{
		Format:  "text",
		Quiet:   false,
		Verbose: false,
		Panel: PanelConfig{
			ServerSelector:     ".server-body",
			StartSelector:      "#start",
			ChallengeSelectors: []string{"#challenge-form", "iframe[src*='challenge']", ".cf-turnstile"},
			NavTimeout:         15 * time.Second,
			Settle:             50 * time.Second,
		},
		Query: QueryConfig{
			Port:    25565,
			Timeout: 3 * time.Second,
			Retries: 1,
		},
		Notify: NotifyConfig{
			Interval: 5 * time.Minute,
		},
		Paths: PathsConfig{
			Session:   filepath.Join(stateDir, "session.json"),
			Registry:  filepath.Join(stateDir, "subscribers.json"),
			DetailLog: filepath.Join(stateDir, "detail.log"),
			ErrorLog:  filepath.Join(stateDir, "error.log"),
		},
		Cooldown: 3 * time.Minute,
	}
}

// findConfigFile returns the first config file on the search path:
// system-wide, user config directory, home directory (as a dotfile),
// then the current directory. The home entry uses a different base
// name, which is why this walks explicit candidates instead of
// viper's single-name search.
func findConfigFile() string {
	var candidates []string
	add := func(dir, name string) {
		for _, ext := range []string{"yaml", "yml"} {
			candidates = append(candidates, filepath.Join(dir, name+"."+ext))
		}
	}
	add("/etc/craftkeeper", "craftkeeper")
	if configDir, err := os.UserConfigDir(); err == nil {
		add(filepath.Join(configDir, "craftkeeper"), "craftkeeper")
	}
	if home, err := os.UserHomeDir(); err == nil {
		add(home, ".craftkeeper")
	}
	add(".", "craftkeeper")

	for _, p := range candidates {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := viper.New()

	// Environment variables
	v.SetEnvPrefix("CRAFTKEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Bind specific environment variables
	v.BindEnv("format", "CRAFTKEEPER_FORMAT")
	v.BindEnv("quiet", "CRAFTKEEPER_QUIET")
	v.BindEnv("verbose", "CRAFTKEEPER_VERBOSE")
	v.BindEnv("address", "CRAFTKEEPER_ADDRESS")
	v.BindEnv("panel.url", "CRAFTKEEPER_PANEL_URL")
	v.BindEnv("query.host", "CRAFTKEEPER_QUERY_HOST")
	v.BindEnv("query.port", "CRAFTKEEPER_QUERY_PORT")

	// Set defaults
	cfg := Default()
	v.SetDefault("format", cfg.Format)
	v.SetDefault("quiet", cfg.Quiet)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("panel.server_selector", cfg.Panel.ServerSelector)
	v.SetDefault("panel.start_selector", cfg.Panel.StartSelector)
	v.SetDefault("panel.challenge_selectors", cfg.Panel.ChallengeSelectors)
	v.SetDefault("panel.nav_timeout", cfg.Panel.NavTimeout)
	v.SetDefault("panel.settle", cfg.Panel.Settle)
	v.SetDefault("query.port", cfg.Query.Port)
	v.SetDefault("query.timeout", cfg.Query.Timeout)
	v.SetDefault("query.retries", cfg.Query.Retries)
	v.SetDefault("notify.interval", cfg.Notify.Interval)
	v.SetDefault("paths.session", cfg.Paths.Session)
	v.SetDefault("paths.registry", cfg.Paths.Registry)
	v.SetDefault("paths.detail_log", cfg.Paths.DetailLog)
	v.SetDefault("paths.error_log", cfg.Paths.ErrorLog)
	v.SetDefault("cooldown", cfg.Cooldown)

	// Read the first config file on the search path, if any
	if path := findConfigFile(); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	// Unmarshal into struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigFile returns the path of the config file Load would use, or
// the empty string when only defaults apply. It walks the same search
// path as Load.
func ConfigFile() string {
	return findConfigFile()
}
