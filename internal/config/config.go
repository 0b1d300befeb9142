package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jask/smartsavernet/internal/prefs"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Policy   PolicyConfig
	Server   ServerConfig
	Session  SessionConfig
	Agents   AgentsConfig
	Log      LogConfig
	Seed     SeedConfig
	Prefs    PrefsConfig
	Trace    TraceConfig
}

// DatabaseConfig selects the transaction store. An empty driver disables persistence.
type DatabaseConfig struct {
	Driver string
	Path   string
	DSN    string
}

// PolicyConfig points at the coaching policy file.
type PolicyConfig struct {
	Path string
}

// ServerConfig holds web settings.
type ServerConfig struct {
	Address         string
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SessionConfig selects where session state lives.
type SessionConfig struct {
	Driver string
	Redis  RedisConfig
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// AgentsConfig lists the agents enabled by default.
type AgentsConfig struct {
	Enabled []string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// SeedConfig drives mock data generation.
type SeedConfig struct {
	UserID string `mapstructure:"user_id"`
	Days   int
}

// TraceConfig selects where orchestrator spans go.
type TraceConfig struct {
	Enabled     bool
	Protocol    string
	Endpoint    string
	Insecure    bool
	Headers     map[string]string
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// PrefsConfig locates the TUI preference file.
type PrefsConfig struct {
	Path string
}

// Load reads configuration from file and env. Env var overrides use prefix SMARTSAVER_.
func Load() (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	// default values
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "smartsavernet", "smartsavernet.db"))
	v.SetDefault("database.dsn", "")
	v.SetDefault("policy.path", filepath.Join("configs", "policy.yaml"))
	v.SetDefault("server.address", "127.0.0.1:8501")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("session.driver", "memory")
	v.SetDefault("session.redis.address", "127.0.0.1:6379")
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("session.redis.prefix", "smartsaver:session:")
	v.SetDefault("session.redis.ttl", 24*time.Hour)
	v.SetDefault("agents.enabled", []string{"budget", "savings", "debt", "goal", "alerts", "advice"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("seed.user_id", "demo")
	v.SetDefault("seed.days", 90)
	v.SetDefault("prefs.path", defaultPrefsPath(home))
	v.SetDefault("trace.enabled", false)
	v.SetDefault("trace.protocol", "grpc")
	v.SetDefault("trace.endpoint", "localhost:4317")
	v.SetDefault("trace.insecure", true)
	v.SetDefault("trace.service_name", "smartsavernet")
	v.SetDefault("trace.sample_ratio", 1.0)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SMARTSAVER_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "smartsavernet"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SMARTSAVER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// A missing default file is fine; an explicit or broken one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Agents.Enabled = splitList(c.Agents.Enabled)
	return c, nil
}

func defaultPrefsPath(home string) string {
	if p, err := prefs.DefaultPath(); err == nil {
		return p
	}
	return filepath.Join(home, ".config", "smartsavernet", "prefs.toml")
}

// splitList accepts both TOML arrays and the comma separated form env vars arrive in.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
