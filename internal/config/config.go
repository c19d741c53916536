package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Backend names accepted by Display.WindowBackend and Display.IdleBackend.
const (
	BackendAuto   = "auto"
	BackendX11    = "x11"
	BackendMutter = "mutter"
)

// Config holds all application configuration
type Config struct {
	Sampler SamplerConfig `mapstructure:"sampler"`
	Display DisplayConfig `mapstructure:"display"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Daemon  DaemonConfig  `mapstructure:"daemon"`
}

// SamplerConfig holds sampling behavior configuration
type SamplerConfig struct {
	Rate       float64       `mapstructure:"rate"`        // Samples per second
	StartDelay time.Duration `mapstructure:"start_delay"` // Wait before the first sample; plain numbers are seconds
	SelfCheck  bool          `mapstructure:"self_check"`  // Probe once at startup and warn about missing data
}

// DisplayConfig selects the window system backends
type DisplayConfig struct {
	Name          string `mapstructure:"name"` // X display, empty means $DISPLAY
	WindowBackend string `mapstructure:"window_backend"`
	IdleBackend   string `mapstructure:"idle_backend"`
}

// StorageConfig holds output locations
type StorageConfig struct {
	LogDir        string `mapstructure:"log_dir"`
	DatabasePath  string `mapstructure:"database_path"` // Empty means <log_dir>/worklog.db
	MirrorSamples bool   `mapstructure:"mirror_samples"`
}

// LoggingConfig holds diagnostic logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // auto, console or json
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	Address string `mapstructure:"address"` // Empty disables the endpoint
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `mapstructure:"pid_file"` // Path to PID file for daemon management
}

// DefaultLogDir returns ~/.workmuch
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".workmuch")
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Sampler: SamplerConfig{
			Rate:       1.0,
			StartDelay: 0,
			SelfCheck:  true,
		},
		Display: DisplayConfig{
			WindowBackend: BackendAuto,
			IdleBackend:   BackendAuto,
		},
		Storage: StorageConfig{
			LogDir: DefaultLogDir(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/worklog-%d.pid", os.Getuid()),
		},
	}
}

// Load reads an optional YAML config file and WORKLOG_ environment
// overrides on top of the defaults. An empty path skips the file.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("WORKLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsDurationHook(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// secondsDurationHook decodes durations from unitless numbers as seconds
// ("30", 30, 1.5) and from Go duration strings ("2s", "1m30s").
func secondsDurationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType || from == durationType {
			return data, nil
		}
		switch from.Kind() {
		case reflect.String:
			str := strings.TrimSpace(data.(string))
			if secs, err := strconv.ParseFloat(str, 64); err == nil {
				return secondsToDuration(secs), nil
			}
			d, err := time.ParseDuration(str)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid duration %q", str)
			}
			return d, nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return secondsToDuration(float64(reflect.ValueOf(data).Int())), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return secondsToDuration(float64(reflect.ValueOf(data).Uint())), nil
		case reflect.Float32, reflect.Float64:
			return secondsToDuration(reflect.ValueOf(data).Float()), nil
		}
		return data, nil
	}
}

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("sampler.rate", d.Sampler.Rate)
	v.SetDefault("sampler.start_delay", d.Sampler.StartDelay)
	v.SetDefault("sampler.self_check", d.Sampler.SelfCheck)

	v.SetDefault("display.name", d.Display.Name)
	v.SetDefault("display.window_backend", d.Display.WindowBackend)
	v.SetDefault("display.idle_backend", d.Display.IdleBackend)

	v.SetDefault("storage.log_dir", d.Storage.LogDir)
	v.SetDefault("storage.database_path", d.Storage.DatabasePath)
	v.SetDefault("storage.mirror_samples", d.Storage.MirrorSamples)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("metrics.address", d.Metrics.Address)

	v.SetDefault("daemon.pid_file", d.Daemon.PIDFile)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validateRate(c.Sampler.Rate); err != nil {
		return err
	}
	if c.Sampler.StartDelay < 0 {
		return fmt.Errorf("start delay cannot be negative, got %v", c.Sampler.StartDelay)
	}

	for name, b := range map[string]string{
		"window backend": c.Display.WindowBackend,
		"idle backend":   c.Display.IdleBackend,
	} {
		switch b {
		case BackendAuto, BackendX11, BackendMutter:
		default:
			return fmt.Errorf("unknown %s %q", name, b)
		}
	}

	if c.Storage.LogDir == "" {
		return fmt.Errorf("log directory cannot be empty")
	}

	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

func validateRate(rate float64) error {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("rate must be a positive number, got %v", rate)
	}
	return nil
}

// SetRate sets the sampling rate with validation
func (c *Config) SetRate(rate float64) error {
	if err := validateRate(rate); err != nil {
		return err
	}
	c.Sampler.Rate = rate
	return nil
}

// SetStartDelaySeconds sets the start delay from a number of seconds
func (c *Config) SetStartDelaySeconds(seconds float64) error {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Errorf("start delay must be a non-negative number of seconds, got %v", seconds)
	}
	c.Sampler.StartDelay = secondsToDuration(seconds)
	return nil
}

// GetDatabasePath returns the SQLite path, defaulting into the log directory
func (c *Config) GetDatabasePath() string {
	if c.Storage.DatabasePath != "" {
		return c.Storage.DatabasePath
	}
	return filepath.Join(c.Storage.LogDir, "worklog.db")
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Sampler:
    Rate: %v/s
    Start Delay: %v
    Self Check: %v
  Display:
    Name: %s
    Window Backend: %s
    Idle Backend: %s
  Storage:
    Log Dir: %s
    Database: %s
    Mirror Samples: %v
  Logging:
    Level: %s
    Format: %s
  Metrics:
    Address: %s
  Daemon:
    PID File: %s`,
		c.Sampler.Rate,
		c.Sampler.StartDelay,
		c.Sampler.SelfCheck,
		c.Display.Name,
		c.Display.WindowBackend,
		c.Display.IdleBackend,
		c.Storage.LogDir,
		c.GetDatabasePath(),
		c.Storage.MirrorSamples,
		c.Logging.Level,
		c.Logging.Format,
		c.Metrics.Address,
		c.Daemon.PIDFile,
	)
}
