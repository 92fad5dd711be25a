package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/flexattrs/pkg/flex"
)

const (
	DefaultConfigPath = "/etc/flex"
	ConfigFileName    = "flex.yml"
	DefaultLogLevel   = "info"
)

// ValidLogLevels is the list of accepted log_level values
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// FlexConfig holds the settings of flexctl and of applications that
// enable flex attributes from configuration.
type FlexConfig struct {
	// DatabaseURL is the connection URL of the owner database
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// LogLevel is the minimum level logged
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogJSON switches logs to JSON output
	LogJSON bool `yaml:"log_json" json:"log_json"`

	// Models maps owner model names to their flex options
	Models map[string]flex.Options `yaml:"models" json:"models"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *FlexConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *FlexConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

func newDefault() *FlexConfig {
	return &FlexConfig{
		LogLevel: DefaultLogLevel,
		Models:   map[string]flex.Options{},
		sources:  make(map[string]string),
	}
}

// Load loads configuration from a .env file, the config file and the
// environment. Environment variables take precedence over file values.
func Load() (*FlexConfig, error) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	config := newDefault()
	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("FLEX_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig FlexConfig
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", config.configFilePath)
		}
		config.applyFileConfig(&fileConfig)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{"database_url", "log_level", "log_json", "models"}
}

func (c *FlexConfig) applyFileConfig(file *FlexConfig) {
	if file.DatabaseURL != "" {
		c.DatabaseURL = file.DatabaseURL
		c.sources["database_url"] = "file"
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
		c.sources["log_level"] = "file"
	}
	if file.LogJSON {
		c.LogJSON = true
		c.sources["log_json"] = "file"
	}
	if len(file.Models) > 0 {
		c.Models = file.Models
		c.sources["models"] = "file"
	}
}

func (c *FlexConfig) applyEnvConfig() error {
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.DatabaseURL = val
		c.sources["database_url"] = "environment"
	}
	if val := os.Getenv("FLEX_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
		c.sources["log_level"] = "environment"
	}
	if val := os.Getenv("FLEX_LOG_JSON"); val != "" {
		b, err := cast.ToBoolE(val)
		if err != nil {
			return errors.Wrapf(err, "invalid FLEX_LOG_JSON %q", val)
		}
		c.LogJSON = b
		c.sources["log_json"] = "environment"
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *FlexConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *FlexConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// Model returns the flex options configured for a model name.
func (c *FlexConfig) Model(name string) (flex.Options, bool) {
	opts, ok := c.Models[name]
	return opts, ok
}

// ModelNames returns the configured model names in sorted order.
func (c *FlexConfig) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate validates the configuration
func (c *FlexConfig) Validate() error {
	valid := false
	for _, level := range ValidLogLevels {
		if c.LogLevel == level {
			valid = true
			break
		}
	}
	if !valid {
		return errors.Newf("invalid log_level value: %s", c.LogLevel)
	}

	for _, name := range c.ModelNames() {
		if strings.TrimSpace(name) == "" {
			return errors.New("model names must not be empty")
		}
		opts := c.Models[name]
		if opts.ForeignKeyType != "" && strings.ContainsAny(opts.ForeignKeyType, ";'\"") {
			return errors.Newf("invalid foreign_key_type for %s: %s", name, opts.ForeignKeyType)
		}
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *FlexConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "database_url", Value: redactURL(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "log_json", Value: strconv.FormatBool(c.LogJSON), Source: c.Source("log_json")},
		{Name: "models", Value: strings.Join(c.ModelNames(), ","), Source: c.Source("models")},
	}
}

// FormatText returns a text representation of the configuration
func (c *FlexConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-20s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-20s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-20s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *FlexConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
		"models":      c.Models,
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// redactURL hides the password of a connection URL.
func redactURL(raw string) string {
	at := strings.LastIndex(raw, "@")
	scheme := strings.Index(raw, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return raw
	}
	userinfo := raw[scheme+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		return raw[:scheme+3] + userinfo[:colon] + ":xxxxx" + raw[at:]
	}
	return raw
}
