package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aussiebroadwan/coursedesk/pkg/coursesdk"
)

// EnvPrefix namespaces every environment variable, e.g. COURSEDESK_LOG_LEVEL.
const EnvPrefix = "COURSEDESK"

type Config struct {
	APIBaseURL        string        // Directory Store base URL (default: http://localhost:3000/api/v1)
	APITimeout        time.Duration // Per-request timeout (default: 10s)
	RequestsPerSecond int           // Outgoing request budget, 0 disables limiting (default: 20)
	Burst             int           // Outgoing burst allowance (default: 20)
	ScanConcurrency   int           // Parallel per-user fetches in the candidate scan (default: 8)
	AutoCloseDelay    time.Duration // Success display time before the session closes (default: 1.5s)
	PerPage           int           // Catalog page size (default: 6)
	Debounce          time.Duration // Catalog title filter quiet period (default: 300ms)
	Env               string        // Environment (dev, staging, prod) (default: dev)
	LogLevel          string        // Log level (debug, info, warn, error) (default: info)
	LogFormat         string        // Log format (json, text) (default: text)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", coursesdk.DefaultBaseURL)
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.requests_per_second", 20)
	v.SetDefault("api.burst", 20)
	v.SetDefault("api.scan_concurrency", 8)
	v.SetDefault("workflow.auto_close_delay", 1500*time.Millisecond)
	v.SetDefault("catalog.per_page", 6)
	v.SetDefault("catalog.debounce", 300*time.Millisecond)
	v.SetDefault("env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads configuration from, in rising precedence: defaults, a
// config file, a .env file and the environment. file names an explicit
// config file; when empty, coursedesk.yaml is looked up in the working
// directory and $HOME/.config/coursedesk, and its absence is not an error.
func LoadConfig(file string) (Config, error) {
	loadDotEnv(".env")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api.base_url", EnvPrefix+"_API_BASE_URL", "API_BASE_URL")

	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	} else {
		v.SetConfigName("coursedesk")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "coursedesk"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := Config{
		APIBaseURL:        v.GetString("api.base_url"),
		APITimeout:        v.GetDuration("api.timeout"),
		RequestsPerSecond: v.GetInt("api.requests_per_second"),
		Burst:             v.GetInt("api.burst"),
		ScanConcurrency:   v.GetInt("api.scan_concurrency"),
		AutoCloseDelay:    v.GetDuration("workflow.auto_close_delay"),
		PerPage:           v.GetInt("catalog.per_page"),
		Debounce:          v.GetDuration("catalog.debounce"),
		Env:               v.GetString("env"),
		LogLevel:          v.GetString("log.level"),
		LogFormat:         v.GetString("log.format"),
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the rest of the application cannot work with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.APIBaseURL) == "" {
		errs = append(errs, errors.New("api.base_url must not be empty"))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("api.requests_per_second must not be negative"))
	}
	if c.ScanConcurrency <= 0 {
		errs = append(errs, errors.New("api.scan_concurrency must be positive"))
	}
	if c.PerPage <= 0 {
		errs = append(errs, errors.New("catalog.per_page must be positive"))
	}
	return errors.Join(errs...)
}

// loadDotEnv exports the variables of a dotenv file that are not already
// set in the environment. A missing file is ignored.
func loadDotEnv(path string) {
	dot := viper.New()
	dot.SetConfigFile(path)
	dot.SetConfigType("env")
	if err := dot.ReadInConfig(); err != nil {
		return
	}
	for _, key := range dot.AllKeys() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); !exists {
			_ = os.Setenv(name, dot.GetString(key))
		}
	}
}
