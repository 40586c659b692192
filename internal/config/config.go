package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ALTERED_SCRIBE_FETCH_TOKEN.
const EnvPrefix = "ALTERED_SCRIBE"

// Config represents the application configuration
type Config struct {
	Paths    PathsConfig    `mapstructure:"paths" toml:"paths"`
	Fetch    FetchConfig    `mapstructure:"fetch" toml:"fetch"`
	CSV      CSVConfig      `mapstructure:"csv" toml:"csv"`
	Download DownloadConfig `mapstructure:"download" toml:"download"`
	Log      LogConfig      `mapstructure:"log" toml:"log"`
}

type PathsConfig struct {
	Results string `mapstructure:"results" toml:"results"`
	Temp    string `mapstructure:"temp" toml:"temp"`
	Images  string `mapstructure:"images" toml:"images"`
	Assets  string `mapstructure:"assets" toml:"assets"`
}

type FetchConfig struct {
	Languages             []string `mapstructure:"languages" toml:"languages"`
	BaseURL               string   `mapstructure:"base_url" toml:"base_url"`
	ItemsPerPage          int      `mapstructure:"items_per_page" toml:"items_per_page"`
	Token                 string   `mapstructure:"token" toml:"token"`
	IncludePromos         bool     `mapstructure:"include_promos" toml:"include_promos"`
	IncludeUniques        bool     `mapstructure:"include_uniques" toml:"include_uniques"`
	IncludeSpecialEdition bool     `mapstructure:"include_ks" toml:"include_ks"`
	IncludeFoil           bool     `mapstructure:"include_foil" toml:"include_foil"`
	ForceUniqueKS         bool     `mapstructure:"force_unique_ks" toml:"force_unique_ks"`
	Strict                bool     `mapstructure:"strict" toml:"strict"`
	DumpTemp              bool     `mapstructure:"dump_temp" toml:"dump_temp"`
	RetryAttempts         int      `mapstructure:"retry_attempts" toml:"retry_attempts"`
	RetryDelay            string   `mapstructure:"retry_delay" toml:"retry_delay"`
}

type CSVConfig struct {
	MainLanguage     string   `mapstructure:"main_language" toml:"main_language"`
	NameLanguages    []string `mapstructure:"name_languages" toml:"name_languages"`
	AbilityLanguages []string `mapstructure:"ability_languages" toml:"ability_languages"`
	GroupSubtypes    bool     `mapstructure:"group_subtypes" toml:"group_subtypes"`
	WebAssets        bool     `mapstructure:"web_assets" toml:"web_assets"`
}

type DownloadConfig struct {
	Languages         []string `mapstructure:"languages" toml:"languages"`
	Images            bool     `mapstructure:"images" toml:"images"`
	Assets            bool     `mapstructure:"assets" toml:"assets"`
	CollectorNumbers  bool     `mapstructure:"collector_numbers" toml:"collector_numbers"`
	Force             bool     `mapstructure:"force" toml:"force"`
	RequestsPerSecond float64  `mapstructure:"requests_per_second" toml:"requests_per_second"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Results: "results",
			Temp:    "temp",
			Images:  "images",
			Assets:  "assets",
		},
		Fetch: FetchConfig{
			Languages:     []string{"en", "fr", "es", "it", "de"},
			BaseURL:       "https://api.altered.gg/cards",
			ItemsPerPage:  36,
			RetryAttempts: 5,
			RetryDelay:    "1s",
		},
		CSV: CSVConfig{
			MainLanguage:     "en",
			NameLanguages:    []string{"en", "fr"},
			AbilityLanguages: []string{"en", "fr"},
		},
		Download: DownloadConfig{
			Languages: []string{"en"},
			Images:    true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "altered-scribe", "config.toml")
}

// setDefaults registers every key of Default with v so that env overrides
// and Unmarshal see the full key set.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("paths.results", d.Paths.Results)
	v.SetDefault("paths.temp", d.Paths.Temp)
	v.SetDefault("paths.images", d.Paths.Images)
	v.SetDefault("paths.assets", d.Paths.Assets)

	v.SetDefault("fetch.languages", d.Fetch.Languages)
	v.SetDefault("fetch.base_url", d.Fetch.BaseURL)
	v.SetDefault("fetch.items_per_page", d.Fetch.ItemsPerPage)
	v.SetDefault("fetch.token", d.Fetch.Token)
	v.SetDefault("fetch.include_promos", d.Fetch.IncludePromos)
	v.SetDefault("fetch.include_uniques", d.Fetch.IncludeUniques)
	v.SetDefault("fetch.include_ks", d.Fetch.IncludeSpecialEdition)
	v.SetDefault("fetch.include_foil", d.Fetch.IncludeFoil)
	v.SetDefault("fetch.force_unique_ks", d.Fetch.ForceUniqueKS)
	v.SetDefault("fetch.strict", d.Fetch.Strict)
	v.SetDefault("fetch.dump_temp", d.Fetch.DumpTemp)
	v.SetDefault("fetch.retry_attempts", d.Fetch.RetryAttempts)
	v.SetDefault("fetch.retry_delay", d.Fetch.RetryDelay)

	v.SetDefault("csv.main_language", d.CSV.MainLanguage)
	v.SetDefault("csv.name_languages", d.CSV.NameLanguages)
	v.SetDefault("csv.ability_languages", d.CSV.AbilityLanguages)
	v.SetDefault("csv.group_subtypes", d.CSV.GroupSubtypes)
	v.SetDefault("csv.web_assets", d.CSV.WebAssets)

	v.SetDefault("download.languages", d.Download.Languages)
	v.SetDefault("download.images", d.Download.Images)
	v.SetDefault("download.assets", d.Download.Assets)
	v.SetDefault("download.collector_numbers", d.Download.CollectorNumbers)
	v.SetDefault("download.force", d.Download.Force)
	v.SetDefault("download.requests_per_second", d.Download.RequestsPerSecond)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load builds the configuration from defaults, the TOML file at path (or the
// XDG location when path is empty), ALTERED_SCRIBE_* variables and the given
// flags, in increasing priority. flags maps config keys to flags; a flag only
// wins when it was set on the command line. A missing file is not an error
// unless path was given explicitly.
func Load(path string, flags map[string]*pflag.Flag) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigFile(GetConfigFilePath())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("config: bind flag %s: %w", flag.Name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path == "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Delay parses RetryDelay.
func (f FetchConfig) Delay() (time.Duration, error) {
	d, err := time.ParseDuration(f.RetryDelay)
	if err != nil {
		return 0, fmt.Errorf("fetch.retry_delay: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("fetch.retry_delay must be positive, got %s", d)
	}
	return d, nil
}

// Validate rejects settings no command can work with.
func (c *Config) Validate() error {
	if len(c.Fetch.Languages) == 0 {
		return errors.New("fetch.languages must not be empty")
	}
	if c.Fetch.ItemsPerPage <= 0 {
		return fmt.Errorf("fetch.items_per_page must be positive, got %d", c.Fetch.ItemsPerPage)
	}
	if c.Fetch.RetryAttempts <= 0 {
		return fmt.Errorf("fetch.retry_attempts must be positive, got %d", c.Fetch.RetryAttempts)
	}
	if _, err := c.Fetch.Delay(); err != nil {
		return err
	}
	if c.CSV.MainLanguage == "" {
		return errors.New("csv.main_language must be set")
	}
	if c.Download.RequestsPerSecond < 0 {
		return fmt.Errorf("download.requests_per_second must not be negative, got %v", c.Download.RequestsPerSecond)
	}
	return nil
}

// WriteDefault writes the default configuration to path, creating its
// directory. An existing file is left alone unless overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config: %s already exists", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %v", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %v", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(Default()); err != nil {
		return fmt.Errorf("error encoding config: %v", err)
	}
	return file.Close()
}
