package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"saw/internal/logging"
	"saw/internal/watcher"
)

var ErrMissingRequired = errors.New("both --it and --do are required")

// RunConfig is the resolved configuration of one saw session.
type RunConfig struct {
	Path         string
	Command      string
	Clear        bool
	Verbose      bool
	Restart      bool
	Events       watcher.KindSet
	Debounce     time.Duration
	PollInterval time.Duration
	Shell        bool
	TTY          bool
	KillGrace    time.Duration
	LogFile      string
	LogFormat    logging.Format
	MetricsFile  string
}

// NewViper binds flags and SAW_* environment variables. Flags set on the
// command line win over the environment, which wins over flag defaults.
func NewViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}
	return v, nil
}

// Load reads and validates a RunConfig. A missing path or command wins over
// invalid values: the config is returned with defaults in place of the
// invalid values together with ErrMissingRequired.
func Load(v *viper.Viper) (RunConfig, error) {
	if v == nil {
		return RunConfig{}, errors.New("configuration source is nil")
	}
	cfg := RunConfig{
		Path:        strings.TrimSpace(v.GetString(KeyPath)),
		Command:     strings.TrimSpace(v.GetString(KeyCommand)),
		Clear:       v.GetBool(KeyClear),
		Verbose:     v.GetBool(KeyVerbose),
		Restart:     v.GetBool(KeyRestart),
		Shell:       !v.GetBool(KeyNoShell),
		TTY:         v.GetBool(KeyTTY),
		LogFile:     strings.TrimSpace(v.GetString(KeyLogFile)),
		MetricsFile: strings.TrimSpace(v.GetString(KeyMetricsFile)),
	}

	err := resolveValues(v, &cfg)
	if cfg.Path == "" || cfg.Command == "" {
		return cfg, ErrMissingRequired
	}
	if err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// resolveValues fills the validated fields of cfg. Invalid values keep their
// defaults; the first problem is returned.
func resolveValues(v *viper.Viper, cfg *RunConfig) error {
	var errs []error
	var err error
	if cfg.Debounce, err = duration(v, KeyDebounce, DefaultDebounce, false); err != nil {
		cfg.Debounce = DefaultDebounce
		errs = append(errs, err)
	}
	if cfg.PollInterval, err = duration(v, KeyPollInterval, DefaultPollInterval, false); err != nil {
		cfg.PollInterval = DefaultPollInterval
		errs = append(errs, err)
	}
	if cfg.KillGrace, err = duration(v, KeyKillGrace, DefaultKillGrace, true); err != nil {
		cfg.KillGrace = DefaultKillGrace
		errs = append(errs, err)
	}

	cfg.Events = watcher.DefaultKinds
	if kinds := v.GetString(KeyOn); strings.TrimSpace(kinds) != "" {
		parsed, err := watcher.ParseKinds(kinds)
		if err != nil {
			errs = append(errs, fmt.Errorf("--%s: %w", KeyOn, err))
		} else {
			cfg.Events = parsed
		}
	}

	cfg.LogFormat = logging.FormatText
	if format, ok := logging.ParseFormat(v.GetString(KeyLogFormat)); ok {
		cfg.LogFormat = format
	} else {
		errs = append(errs, fmt.Errorf("--%s: unknown format %q", KeyLogFormat, v.GetString(KeyLogFormat)))
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func duration(v *viper.Viper, key string, fallback time.Duration, allowZero bool) (time.Duration, error) {
	if !v.IsSet(key) {
		return fallback, nil
	}
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", key, err)
	}
	if value < 0 || (value == 0 && !allowZero) {
		return 0, fmt.Errorf("--%s: must be positive, got %s", key, value)
	}
	return value, nil
}

type yamlConfig struct {
	Path         string `yaml:"it"`
	Command      string `yaml:"do"`
	Clear        bool   `yaml:"clear"`
	Verbose      bool   `yaml:"verbose"`
	Restart      bool   `yaml:"restart"`
	On           string `yaml:"on"`
	Debounce     string `yaml:"debounce"`
	PollInterval string `yaml:"poll-interval"`
	Shell        bool   `yaml:"shell"`
	TTY          bool   `yaml:"tty"`
	KillGrace    string `yaml:"kill-grace"`
	LogFile      string `yaml:"log-file,omitempty"`
	LogFormat    string `yaml:"log-format"`
	MetricsFile  string `yaml:"metrics-file,omitempty"`
}

// WriteYAML renders the configuration for --print-config.
func (c RunConfig) WriteYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(yamlConfig{
		Path:         c.Path,
		Command:      c.Command,
		Clear:        c.Clear,
		Verbose:      c.Verbose,
		Restart:      c.Restart,
		On:           c.Events.String(),
		Debounce:     c.Debounce.String(),
		PollInterval: c.PollInterval.String(),
		Shell:        c.Shell,
		TTY:          c.TTY,
		KillGrace:    c.KillGrace.String(),
		LogFile:      c.LogFile,
		LogFormat:    string(c.LogFormat),
		MetricsFile:  c.MetricsFile,
	}); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return encoder.Close()
}
