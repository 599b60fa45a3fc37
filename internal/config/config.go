package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
)

// Config holds the omnisearch server configuration.
type Config struct {
	Providers map[string]ProviderConfig `yaml:"providers"`
	Storage   StorageConfig             `yaml:"storage"`
	Ops       OpsConfig                 `yaml:"ops"`
	Logging   LoggingConfig             `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// OpsConfig holds the optional operational HTTP endpoint settings.
type OpsConfig struct {
	Port int `yaml:"port"` // 0 = disabled
}

// ProviderConfig holds one search provider's settings. A provider is
// registered only when its API key is present.
type ProviderConfig struct {
	APIKey     string      `yaml:"api_key"`
	BaseURL    string      `yaml:"base_url"`
	TimeoutSec int         `yaml:"timeout_sec"`
	Quota      QuotaConfig `yaml:"quota"`
}

// QuotaConfig holds a provider's free-tier allowance.
type QuotaConfig struct {
	Limit        int64   `yaml:"limit"`
	Reset        string  `yaml:"reset"` // monthly, lifetime, paid
	CostPerQuery float64 `yaml:"cost_per_query"`
}

// StorageConfig holds usage counter storage settings. Redis addrs present
// selects the Redis backend; otherwise counters go to a local JSON file.
type StorageConfig struct {
	RedisAddrs       []string `yaml:"redis_addrs"`
	RedisPassword    string   `yaml:"redis_password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	FilePath         string   `yaml:"file_path"` // empty = per-user default location
	Profile          string   `yaml:"profile"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// defaultQuotas is the built-in free-tier table, overridable per provider in YAML.
var defaultQuotas = map[string]QuotaConfig{
	domain.ProviderTavily:     {Limit: 1000, Reset: "monthly"},
	domain.ProviderBrave:      {Limit: 2000, Reset: "monthly"},
	domain.ProviderKagi:       {Limit: 100, Reset: "monthly"},
	domain.ProviderExa:        {Limit: 1000, Reset: "lifetime"},
	domain.ProviderSerpAPI:    {Limit: 250, Reset: "monthly"},
	domain.ProviderPerplexity: {Reset: "paid", CostPerQuery: 0.006},
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	for name, p := range c.Providers {
		if p.TimeoutSec <= 0 {
			p.TimeoutSec = 10
		}
		if def, ok := defaultQuotas[name]; ok {
			if p.Quota.Reset == "" {
				p.Quota.Reset = def.Reset
			}
			if p.Quota.Limit <= 0 {
				p.Quota.Limit = def.Limit
			}
			if p.Quota.CostPerQuery <= 0 {
				p.Quota.CostPerQuery = def.CostPerQuery
			}
		}
		c.Providers[name] = p
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "omnisearch:usage:"
	}
	if c.Storage.Profile == "" {
		c.Storage.Profile = "default"
	}
	if c.Storage.ReadinessTimeout <= 0 {
		c.Storage.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	for name, p := range c.Providers {
		switch domain.ResetType(p.Quota.Reset) {
		case domain.ResetMonthly, domain.ResetLifetime:
			if p.Quota.Limit <= 0 {
				return fmt.Errorf("providers.%s.quota.limit must be positive, got %d", name, p.Quota.Limit)
			}
		case domain.ResetPaid:
			// no free tier, limit not used
		default:
			return fmt.Errorf(
				"providers.%s.quota.reset must be \"monthly\", \"lifetime\" or \"paid\", got %q",
				name, p.Quota.Reset,
			)
		}
	}
	if c.Ops.Port < 0 || c.Ops.Port > 65535 {
		return fmt.Errorf("ops.port must be between 0 and 65535, got %d", c.Ops.Port)
	}
	return nil
}

// Policies returns the per-provider quota table in domain form.
func (c *Config) Policies() map[string]domain.QuotaPolicy {
	out := make(map[string]domain.QuotaPolicy, len(c.Providers))
	for name, p := range c.Providers {
		out[name] = domain.QuotaPolicy{
			Limit:        p.Quota.Limit,
			Reset:        domain.ResetType(p.Quota.Reset),
			CostPerQuery: p.Quota.CostPerQuery,
		}
	}
	return out
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
