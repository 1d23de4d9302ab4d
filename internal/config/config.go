package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

const (
	DefaultBaseURL          = "http://localhost:5000"
	DefaultMaxTitleLength   = 100
	DefaultMaxContentLength = 2000
)

type Configuration struct {
	// BaseURL is the address of the REST backend. Every resource path is resolved against it.
	BaseURL *url.URL
	// Timeout bounds each request made to the backend.
	Timeout time.Duration
	// SessionDriver selects where the session record is persisted: "file", "sqlite" or "memory".
	SessionDriver string
	// SessionDir is the directory used by the file driver.
	SessionDir string
	// SessionDbUrl is the path to the database file used by the sqlite driver.
	SessionDbUrl     string
	MigrationsFolder string
	MaxTitleLength   int
	MaxContentLength int
	// Debug, if true, lowers the log level to debug.
	Debug bool
}

type fileConfig struct {
	API struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"api"`
	Session struct {
		Driver     string `mapstructure:"driver"`
		Dir        string `mapstructure:"dir"`
		DbUrl      string `mapstructure:"db_url"`
		Migrations string `mapstructure:"migrations"`
	} `mapstructure:"session"`
	Form struct {
		MaxTitleLength   int `mapstructure:"max_title_length"`
		MaxContentLength int `mapstructure:"max_content_length"`
	} `mapstructure:"form"`
	Debug bool `mapstructure:"debug"`
}

// ReadConfig loads .env, then the goblog config file, then GOBLOG_ environment variables, each layer
// overriding the previous one.
func ReadConfig() (Configuration, error) {
	_ = godotenv.Load()
	return Read(viper.New())
}

// Read builds the configuration from v, adding the default search paths and environment bindings.
func Read(v *viper.Viper) (cfg Configuration, err error) {
	dir := defaultDir()

	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("session.driver", DriverFile)
	v.SetDefault("session.dir", dir)
	v.SetDefault("session.migrations", "./migrations")
	v.SetDefault("form.max_title_length", DefaultMaxTitleLength)
	v.SetDefault("form.max_content_length", DefaultMaxContentLength)
	v.SetDefault("debug", false)

	v.SetConfigName("goblog")
	v.AddConfigPath(".")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("goblog")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		err = nil
	}

	var fc fileConfig
	if err = v.Unmarshal(&fc); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}

	base, err := url.Parse(strings.TrimSpace(fc.API.BaseURL))
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return cfg, fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", fc.API.BaseURL)
	}

	cfg = Configuration{
		BaseURL:          base,
		Timeout:          fc.API.Timeout,
		SessionDriver:    strings.ToLower(strings.TrimSpace(fc.Session.Driver)),
		SessionDir:       fc.Session.Dir,
		SessionDbUrl:     fc.Session.DbUrl,
		MigrationsFolder: fc.Session.Migrations,
		MaxTitleLength:   fc.Form.MaxTitleLength,
		MaxContentLength: fc.Form.MaxContentLength,
		Debug:            fc.Debug,
	}
	if cfg.SessionDbUrl == "" {
		cfg.SessionDbUrl = filepath.Join(cfg.SessionDir, "session.db")
	}

	return cfg, cfg.Validate()
}

func (c Configuration) Validate() error {
	var errs []error
	switch c.SessionDriver {
	case DriverFile, DriverSQLite, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown session.driver %q", c.SessionDriver))
	}
	if c.SessionDriver == DriverFile && c.SessionDir == "" {
		errs = append(errs, errors.New("session.dir must not be empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be > 0"))
	}
	if c.MaxTitleLength <= 0 {
		errs = append(errs, errors.New("form.max_title_length must be > 0"))
	}
	if c.MaxContentLength <= 0 {
		errs = append(errs, errors.New("form.max_content_length must be > 0"))
	}
	return errors.Join(errs...)
}

func defaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "goblog")
}
