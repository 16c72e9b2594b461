// Package config loads and saves the reportagent settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/analysis"
)

// EnvPrefix prefixes every environment override, e.g. REPORTAGENT_MODEL.
const EnvPrefix = "REPORTAGENT"

// Global configuration structure.
type Global struct {
	Provider    string  `mapstructure:"provider" yaml:"provider" validate:"oneof=openai openrouter ollama"`
	Model       string  `mapstructure:"model" yaml:"model" validate:"required"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens" validate:"gte=1"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec" validate:"gte=1"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts" validate:"gte=1"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms" validate:"gte=0"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms" validate:"gtefield=RetryBaseDelayMs"`

	// Local runtime (Ollama)
	OllamaHost       string `mapstructure:"ollama_host" yaml:"ollama_host" validate:"url"`
	OllamaTimeoutSec int    `mapstructure:"ollama_timeout_sec" yaml:"ollama_timeout_sec" validate:"gte=1"`

	LogLevel   string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat  string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
	ReportsDir string `mapstructure:"reports_dir" yaml:"reports_dir"`

	Analysis analysis.Thresholds `mapstructure:"analysis" yaml:"analysis"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints, including the analysis thresholds.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Dir returns ~/.reportagent.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".reportagent"), nil
}

func defaults(v *viper.Viper) {
	v.SetDefault("provider", "openai")
	v.SetDefault("model", "gpt-3.5-turbo")
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("max_tokens", 300)
	v.SetDefault("temperature", 0.7)
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("ollama_host", "http://127.0.0.1:11434")
	v.SetDefault("ollama_timeout_sec", 60)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("reports_dir", "")
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file (cfgFile or ~/.reportagent/config.yaml) > defaults.
// An explicit cfgFile must exist.
func Load(cfgFile string) (*Global, error) {
	return load(cfgFile, true, false)
}

// LoadFile loads the config file over the defaults without consulting the
// environment, so the result can be saved back. A missing file yields the
// defaults.
func LoadFile(cfgFile string) (*Global, error) {
	return load(cfgFile, false, true)
}

func load(cfgFile string, withEnv, allowMissing bool) (*Global, error) {
	v := viper.New()
	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		// Provider keys are commonly exported under their vendor names.
		_ = v.BindEnv("api_key", EnvPrefix+"_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY")
	}
	defaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			if !(allowMissing && errors.Is(err, fs.ErrNotExist)) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return decode(v)
}

// decode unmarshals v over the default thresholds so a partial analysis
// section keeps the remaining defaults.
func decode(v *viper.Viper) (*Global, error) {
	c := Global{Analysis: analysis.DefaultThresholds()}
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Provider = normalizeProvider(c.Provider)
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.ReportsDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.ReportsDir = filepath.Join(dir, "reports")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func normalizeProvider(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "local", "ollama":
		return "ollama"
	case "open-router", "openrouter":
		return "openrouter"
	}
	return strings.ToLower(strings.TrimSpace(p))
}

// Set returns a copy of c with key (dotted for nested, e.g.
// analysis.max_actions) set from its string form. Unknown keys and values
// that fail validation are errors.
func Set(c *Global, key, val string) (*Global, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if !v.IsSet(key) {
		return nil, fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(Keys(c), ", "))
	}
	v.Set(key, val)
	out, err := decode(v)
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", key, err)
	}
	return out, nil
}

// Keys lists every settable key in dotted form.
func Keys(c *Global) []string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil
	}
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(b)); err != nil {
		return nil
	}
	keys := v.AllKeys()
	sort.Strings(keys)
	return keys
}

// Save writes the configuration as YAML to cfgFile, or to
// ~/.reportagent/config.yaml when cfgFile is empty.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Default returns the configuration with every default applied and no file
// or environment consulted.
func Default() (*Global, error) {
	v := viper.New()
	defaults(v)
	return decode(v)
}
