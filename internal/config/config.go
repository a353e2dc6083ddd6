package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/ingestor/internal/utils"
)

// EnvPrefix is prepended to every environment override, e.g.
// INGESTOR_GENERAL_IMPORT_DIRECTORY.
const EnvPrefix = "INGESTOR"

// Global configuration structure.
type Global struct {
	Logging Logging `mapstructure:"logging"`
	General General `mapstructure:"general"`

	// Not serialized: file the values were read from, if any.
	source string
}

// Logging holds the logging section.
type Logging struct {
	LogLevel string `mapstructure:"log_level"`
}

// General holds the general section.
type General struct {
	ImportDirectory string        `mapstructure:"import_directory"`
	ScanInterval    time.Duration `mapstructure:"scan_interval"`
	LockFile        string        `mapstructure:"lock_file"`
}

// fileLayout is the on-disk YAML shape written by Save.
type fileLayout struct {
	Logging struct {
		LogLevel string `yaml:"log_level"`
	} `yaml:"logging"`
	General struct {
		ImportDirectory string `yaml:"import_directory"`
		ScanInterval    string `yaml:"scan_interval"`
		LockFile        string `yaml:"lock_file,omitempty"`
	} `yaml:"general"`
}

// requiredItem is a setting that must be present. A non-empty allowed list
// also restricts its value.
type requiredItem struct {
	key     string
	allowed []string
}

var requiredItems = []requiredItem{
	{key: "logging.log_level", allowed: []string{"DEBUG", "INFO"}},
	{key: "general.import_directory"},
}

// ErrMissing is wrapped by Validate when a required setting is empty.
var ErrMissing = errors.New("missing required configuration item")

// ErrNotAllowed is wrapped by Validate when a setting has an unsupported value.
var ErrNotAllowed = errors.New("configuration value not allowed")

// Defaults returns the configuration used when nothing is set.
func Defaults() *Global {
	return &Global{
		Logging: Logging{LogLevel: "INFO"},
		General: General{ScanInterval: 30 * time.Second},
	}
}

// Source returns the config file the values were read from, or "" when
// only environment variables and defaults were used.
func (c *Global) Source() string { return c.source }

// Get returns the string form of a dotted key such as "general.import_directory".
func (c *Global) Get(key string) (string, bool) {
	switch key {
	case "logging.log_level":
		return c.Logging.LogLevel, true
	case "general.import_directory":
		return c.General.ImportDirectory, true
	case "general.scan_interval":
		return c.General.ScanInterval.String(), true
	case "general.lock_file":
		return c.General.LockFile, true
	}
	return "", false
}

// Set assigns a dotted key from its string form.
func (c *Global) Set(key, val string) error {
	switch key {
	case "logging.log_level":
		c.Logging.LogLevel = strings.ToUpper(strings.TrimSpace(val))
	case "general.import_directory":
		c.General.ImportDirectory = val
	case "general.scan_interval":
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration for general.scan_interval: %w", err)
		}
		c.General.ScanInterval = d
	case "general.lock_file":
		c.General.LockFile = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Validate enforces required items, their allowed values and the scan
// interval bound.
func (c *Global) Validate() error {
	for _, item := range requiredItems {
		if err := c.checkItem(item); err != nil {
			return err
		}
	}
	return c.CheckValue("general.scan_interval")
}

// CheckValue validates a single dotted key.
func (c *Global) CheckValue(key string) error {
	for _, item := range requiredItems {
		if item.key == key {
			return c.checkItem(item)
		}
	}
	if key == "general.scan_interval" && c.General.ScanInterval <= 0 {
		return fmt.Errorf("%w: 'general.scan_interval' must be positive, got %s", ErrNotAllowed, c.General.ScanInterval)
	}
	return nil
}

func (c *Global) checkItem(item requiredItem) error {
	val, _ := c.Get(item.key)
	if strings.TrimSpace(val) == "" {
		return fmt.Errorf("%w '%s' (set it in the config file or %s)", ErrMissing, item.key, envName(item.key))
	}
	if len(item.allowed) == 0 {
		return nil
	}
	for _, a := range item.allowed {
		if val == a {
			return nil
		}
	}
	return fmt.Errorf("%w: '%s' is '%s', expected one of %s", ErrNotAllowed, item.key, val, strings.Join(item.allowed, ", "))
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// DefaultPath returns ~/.ingestor/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".ingestor", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.ingestor/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	var out fileLayout
	out.Logging.LogLevel = c.Logging.LogLevel
	out.General.ImportDirectory = c.General.ImportDirectory
	out.General.ScanInterval = c.General.ScanInterval.String()
	out.General.LockFile = c.General.LockFile
	b, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.WriteFileAtomic(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from env, file, and defaults.
// Precedence: env > config file > defaults. An explicit cfgFile must exist;
// the default location is optional. Load does not validate; callers that
// need a usable configuration call Validate.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key needs one so AutomaticEnv is consulted on Unmarshal.
	v.SetDefault("logging.log_level", "INFO")
	v.SetDefault("general.import_directory", "")
	v.SetDefault("general.scan_interval", "30s")
	v.SetDefault("general.lock_file", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".ingestor"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Logging.LogLevel = strings.ToUpper(strings.TrimSpace(c.Logging.LogLevel))
	c.source = v.ConfigFileUsed()
	return &c, nil
}
