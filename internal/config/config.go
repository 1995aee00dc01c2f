package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
)

type Config struct {
	Addr           string        `toml:"addr"`      // API bind address, e.g., "127.0.0.1:8080" or ":8080" (Docker)
	LogDir         string        `toml:"log_dir"`   // logs directory; the CLI only logs when set
	LogLevel       string        `toml:"log_level"` // debug, info, warn, error
	PublicAPIKeys  []string      `toml:"public_api_keys"`
	AdminAPIKeys   []string      `toml:"admin_api_keys"`
	AllowedOrigins []string      `toml:"allowed_origins"` // empty means any origin
	PublicRPM      int           `toml:"public_rpm"`
	PublicBurst    int           `toml:"public_burst"`
	AdminRPM       int           `toml:"admin_rpm"`
	AdminBurst     int           `toml:"admin_burst"`
	ProbeTimeout   time.Duration `toml:"-"` // default timeout for API probes without one
	ProbeTimeoutMS int           `toml:"probe_timeout_ms"`
	HistorySize    int           `toml:"history_size"` // API results kept in memory
}

func defaults() Config {
	return Config{
		Addr:           "127.0.0.1:8080",
		LogLevel:       "info",
		PublicRPM:      120,
		PublicBurst:    60,
		AdminRPM:       60,
		AdminBurst:     30,
		ProbeTimeoutMS: 5000,
		HistorySize:    100,
	}
}

// FromEnv reads the environment on top of the defaults. When CONFIG_FILE
// names a TOML file it is applied first, so env always wins.
func FromEnv() (Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	cfg.ProbeTimeout = time.Duration(cfg.ProbeTimeoutMS) * time.Millisecond
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config file %s: unknown keys %v", path, undecoded)
	}
	return nil
}

func (c *Config) applyEnv() {
	// Bind address
	if v := os.Getenv("ADDR"); v != "" {
		c.Addr = v
	}

	// Logs
	if v := os.Getenv("LOG_DIR"); v != "" {
		c.LogDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	// Auth and CORS
	if v := os.Getenv("PUBLIC_API_KEYS"); v != "" {
		c.PublicAPIKeys = splitList(v)
	}
	if v := os.Getenv("ADMIN_API_KEYS"); v != "" {
		c.AdminAPIKeys = splitList(v)
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}

	// Rate limits
	envInt("PUBLIC_RPM", &c.PublicRPM)
	envInt("PUBLIC_BURST", &c.PublicBurst)
	envInt("ADMIN_RPM", &c.AdminRPM)
	envInt("ADMIN_BURST", &c.AdminBurst)

	// Probing
	envInt("PROBE_TIMEOUT_MS", &c.ProbeTimeoutMS)
	envInt("HISTORY_SIZE", &c.HistorySize)
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var err error
	if c.Addr == "" {
		err = multierr.Append(err, fmt.Errorf("addr must not be empty"))
	}
	if c.ProbeTimeoutMS < 0 {
		err = multierr.Append(err, fmt.Errorf("probe_timeout_ms must be >= 0, got %d", c.ProbeTimeoutMS))
	}
	if c.HistorySize < 1 {
		err = multierr.Append(err, fmt.Errorf("history_size must be >= 1, got %d", c.HistorySize))
	}
	for name, v := range map[string]int{
		"public_rpm": c.PublicRPM, "public_burst": c.PublicBurst,
		"admin_rpm": c.AdminRPM, "admin_burst": c.AdminBurst,
	} {
		if v < 0 {
			err = multierr.Append(err, fmt.Errorf("%s must be >= 0, got %d", name, v))
		}
	}
	return err
}

// envInt overwrites *dst when name holds an integer; junk is ignored.
func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
