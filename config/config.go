package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/mailfs/internal/util"
	"gopkg.in/yaml.v3"
)

// CLI style verbosity levels accepted by [ConfigOverride.LogLvl].
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Backend kinds understood by the backends registry.
const (
	PosixBackend   = "posix"
	WindowsBackend = "windows"
	MemoryBackend  = "memory"
)

// Default configuration values. See [Config] for field descriptions.
const (
	DefaultLogLvl     = util.InfoLevel
	DefaultBackend    = PosixBackend
	DefaultRoot       = "."
	DefaultCreateRoot = false
)

// Config contains runtime configuration values for the access layer.
type Config struct {
	LogLvl     util.LogLevel // Internal log level (Default info)
	Backend    string        // Backend kind: posix, windows or memory (Default posix)
	Root       string        // Host directory local backends are rooted at (Default ".")
	CreateRoot bool          // Create Root, with parents, if it is missing (Default false)
	// Properties holds service property values keyed by their fully qualified
	// name, e.g. "transport.smtp.server.address". See [Config.ServiceValues].
	Properties map[string]string
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	LogLvl     *int    `yaml:"verbose,omitempty" json:"verbose,omitempty"` // 1 (error) to 5 (trace)
	Backend    *string `yaml:"backend,omitempty" json:"backend,omitempty"`
	Root       *string `yaml:"root,omitempty" json:"root,omitempty"`
	CreateRoot *bool   `yaml:"create_root,omitempty" json:"create_root,omitempty"`
	// Properties are merged key by key.
	Properties map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLvl:     DefaultLogLvl,
		Backend:    DefaultBackend,
		Root:       DefaultRoot,
		CreateRoot: DefaultCreateRoot,
		Properties: map[string]string{},
	}
}

// NewConfig creates a default Config with override applied. A nil override
// yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// VerbosityToLogLevel maps verbosity 1..5 onto util log levels, clamping out
// of range values.
func VerbosityToLogLevel(verbose int) util.LogLevel {
	verbose = min(max(verbose, ErrorVerbose), TraceVerbose)
	logLvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return logLvls[verbose-1]
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = VerbosityToLogLevel(*override.LogLvl)
	}
	if override.Backend != nil {
		c.Backend = *override.Backend
	}
	if override.Root != nil {
		c.Root = *override.Root
	}
	if override.CreateRoot != nil {
		c.CreateRoot = *override.CreateRoot
	}
	if len(override.Properties) > 0 {
		if c.Properties == nil {
			c.Properties = make(map[string]string, len(override.Properties))
		}
		maps.Copy(c.Properties, override.Properties)
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
