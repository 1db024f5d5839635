package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"fsbridge/pkg/bridge"
	"fsbridge/pkg/errors"
)

// Config holds all configuration for the file bridge CLI
type Config struct {
	FileMode  os.FileMode // create mode for files
	DirMode   os.FileMode // create mode for directories
	ChunkSize int         // read buffer size in bytes

	// Logging options
	LogFile    string
	LogLevel   string // 0..5 or names
	LogConsole bool   // mirror logs to stderr
	LogTag     string // component tag on bridge entries
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		FileMode:   0666,
		DirMode:    0777,
		ChunkSize:  4096,
		LogFile:    "logs/fsbridge.log",
		LogLevel:   "info",
		LogConsole: false,
		LogTag:     "FileUtilsNative",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.FileMode&^os.ModePerm != 0 {
		return errors.ConfigErrorf("file-mode %o has bits outside 0777", uint32(c.FileMode))
	}
	if c.DirMode&^os.ModePerm != 0 {
		return errors.ConfigErrorf("dir-mode %o has bits outside 0777", uint32(c.DirMode))
	}
	if c.ChunkSize <= 0 {
		return errors.ConfigErrorf("chunk-size must be greater than 0, got %d", c.ChunkSize)
	}
	if c.LogFile == "" {
		return errors.ConfigError("log-file is required")
	}
	return nil
}

// ParseMode parses an octal permission string such as "0644" or "755"
func ParseMode(s string) (os.FileMode, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0O")
	if s == "" {
		return 0, fmt.Errorf("empty mode")
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid octal mode %q: %w", s, err)
	}
	return os.FileMode(v), nil
}

func modeOr(s string, def os.FileMode) (os.FileMode, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return ParseMode(s)
}

// LoadConfig loads configuration from various sources
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	// Load from config file if specified
	cfgFile := viper.GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if _, err := bridge.New().Stat(cfgFile); errors.IsNotFound(err) {
			if err := writeDummyConfig(cfgFile); err != nil {
				return nil, fmt.Errorf("failed to create dummy config at %s: %w", cfgFile, err)
			}
			return nil, fmt.Errorf("dummy config created at %s; edit and re-run", cfgFile)
		}
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Set up environment variable binding
	viper.SetEnvPrefix("fsbridge")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	var err error
	if cfg.FileMode, err = modeOr(viper.GetString("file-mode"), cfg.FileMode); err != nil {
		return nil, fmt.Errorf("file-mode: %w", err)
	}
	if cfg.DirMode, err = modeOr(viper.GetString("dir-mode"), cfg.DirMode); err != nil {
		return nil, fmt.Errorf("dir-mode: %w", err)
	}
	if n := viper.GetInt("chunk-size"); n != 0 {
		cfg.ChunkSize = n
	}
	if s := viper.GetString("log-file"); s != "" {
		cfg.LogFile = s
	}
	if s := viper.GetString("log-level"); s != "" {
		cfg.LogLevel = s
	}
	cfg.LogConsole = viper.GetBool("log-console")
	if s := viper.GetString("log-tag"); s != "" {
		cfg.LogTag = s
	}

	return cfg, nil
}

const dummyYAML = `# fsbridge configuration (default values)

# Permissions for newly created entries (octal, before umask)
file-mode: "0666"                         # Files created by write/append
dir-mode: "0777"                          # Directories created by mkdirs

# Reads
chunk-size: 4096                          # Read buffer size in bytes

# Logging
log-file: "logs/fsbridge.log"             # Rotated JSON logs path
log-level: "2"                            # 0 trace, 1 debug, 2 info, 3 warn, 4 error
log-console: false                        # Mirror log entries to stderr
log-tag: "FileUtilsNative"                # Component tag on bridge log entries
`

const dummyJSON = `{
  "file-mode": "0666",
  "dir-mode": "0777",
  "chunk-size": 4096,
  "log-file": "logs/fsbridge.log",
  "log-level": "2",
  "log-console": false,
  "log-tag": "FileUtilsNative"
}
`

// writeDummyConfig creates a dummy configuration file
func writeDummyConfig(path string) error {
	dummy := dummyYAML
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		dummy = dummyJSON
	}
	b := bridge.New(bridge.WithFileMode(0644), bridge.WithDirMode(0755))
	if dir := filepath.Dir(path); dir != "." {
		if err := b.EnsureDirectory(dir); err != nil {
			return err
		}
	}
	return b.Write(path, []byte(dummy))
}
