package runtime

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/dukt/errors"
)

// Builtin names accepted in Config.Builtins.
const (
	BuiltinPrint = "print"
	BuiltinCBOR  = "cbor"
)

// Config controls a Runtime. It can be loaded from TOML:
//
//	timeout        = "5s"
//	max_call_stack = 512
//	log_level      = "debug"
//	builtins       = ["print", "cbor"]
//	preload        = ["lib/util.js"]
type Config struct {
	// LogLevel enables zap logging at the given level. Empty disables it.
	LogLevel string `toml:"log_level"`

	// Builtins lists the builtins to install. Nil installs all of them.
	Builtins []string `toml:"builtins"`

	// Preload lists script files evaluated when the runtime starts.
	Preload []string `toml:"preload"`

	// Timeout bounds each evaluation. 0 means no limit.
	Timeout time.Duration `toml:"timeout"`

	// MaxCallStack bounds script call depth. 0 keeps the engine default.
	MaxCallStack int `toml:"max_call_stack"`
}

func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig reads a TOML config file. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}
	cfg, err := ParseConfig(string(data))
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.Path = append([]string{path}, e.Path...)
		}
		return nil, err
	}
	return cfg, nil
}

// ParseConfig decodes TOML text into a Config.
func ParseConfig(text string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return nil, errors.ParseFailed(errors.PhaseConfig, "config", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("unknown keys: %s", strings.Join(keys, ", ")).
			Build()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "timeout cannot be negative")
	}
	if c.MaxCallStack < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "max_call_stack cannot be negative")
	}
	for _, b := range c.Builtins {
		if b != BuiltinPrint && b != BuiltinCBOR {
			return errors.NotFound(errors.PhaseConfig, "builtin", b)
		}
	}
	if c.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
			return errors.ParseFailed(errors.PhaseConfig, "log_level", err)
		}
	}
	return nil
}

// builtinEnabled reports whether name should be installed.
func (c *Config) builtinEnabled(name string) bool {
	if c.Builtins == nil {
		return true
	}
	for _, b := range c.Builtins {
		if b == name {
			return true
		}
	}
	return false
}

// NewLogger builds the logger described by LogLevel: a no-op logger when
// empty, a development logger at that level otherwise.
func (c *Config) NewLogger() (*zap.Logger, error) {
	if c.LogLevel == "" {
		return zap.NewNop(), nil
	}
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.ParseFailed(errors.PhaseConfig, "log_level", err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
