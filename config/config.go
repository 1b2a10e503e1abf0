// Package config provides configuration management for the ledger-parser tool.
// It loads settings from an optional YAML file, a .env file and LEDGER_*
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/robinvdvleuten/ledger-parser/formatter"
	"github.com/robinvdvleuten/ledger-parser/ledger"
)

// DefaultFile is read when no configuration file is given and it exists in
// the working directory.
const DefaultFile = ".ledger-parser.yaml"

// DefaultEnvFile is read for environment overrides when it exists.
const DefaultEnvFile = ".env"

// Config represents the application configuration.
type Config struct {
	Format    FormatConfig    `yaml:"format"`
	Tolerance ToleranceConfig `yaml:"tolerance"`
}

// FormatConfig represents the serializer settings.
type FormatConfig struct {
	Indent                  string `yaml:"indent"`
	LineEnding              string `yaml:"line_ending"` // "lf" or "crlf"
	TransactionDateFormat   string `yaml:"transaction_date_format"`
	CommodityDateFormat     string `yaml:"commodity_date_format"`
	SameLinePostingComments bool   `yaml:"same_line_posting_comments"`
}

// ToleranceConfig represents how closely transactions must balance.
// Quantities are decimal strings so no precision is lost on the way in.
type ToleranceConfig struct {
	Default     string            `yaml:"default"`
	Multiplier  string            `yaml:"multiplier"`
	Commodities map[string]string `yaml:"commodities"`
}

// Option configures how the configuration is loaded.
type Option func(*loader)

type loader struct {
	logger  *zap.Logger
	envFile string
	lookup  func(string) (string, bool)
}

// WithLogger sets the logger used to report which sources were read.
func WithLogger(logger *zap.Logger) Option {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithEnvFile reads overrides from the given .env file instead of DefaultEnvFile.
// Unlike the default file, it must exist.
func WithEnvFile(path string) Option {
	return func(l *loader) {
		l.envFile = path
	}
}

// WithLookupEnv replaces os.LookupEnv for reading environment variables.
func WithLookupEnv(lookup func(string) (string, bool)) Option {
	return func(l *loader) {
		l.lookup = lookup
	}
}

// Load loads the configuration. An empty path reads DefaultFile when it
// exists; any other path must exist. Variables from the process environment
// take precedence over those in the .env file.
func Load(path string, opts ...Option) (*Config, error) {
	l := &loader{
		logger: zap.NewNop(),
		lookup: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(l)
	}

	cfg := &Config{}

	if err := l.readFile(path, cfg); err != nil {
		return nil, err
	}

	env, err := l.readEnvFile()
	if err != nil {
		return nil, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := l.lookup(key); ok {
			return v, true
		}
		v, ok := env[key]
		return v, ok
	}

	if err := cfg.applyEnv(lookup, l.logger); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (l *loader) readFile(path string, cfg *Config) error {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	l.logger.Debug("loaded config file", zap.String("path", path))
	return nil
}

func (l *loader) readEnvFile() (map[string]string, error) {
	path := l.envFile
	if path == "" {
		path = DefaultEnvFile
	}

	env, err := godotenv.Read(path)
	if err != nil {
		if l.envFile == "" && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	l.logger.Debug("loaded env file", zap.String("path", path), zap.Int("variables", len(env)))
	return env, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool), logger *zap.Logger) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"LEDGER_INDENT", &c.Format.Indent},
		{"LEDGER_LINE_ENDING", &c.Format.LineEnding},
		{"LEDGER_TRANSACTION_DATE_FORMAT", &c.Format.TransactionDateFormat},
		{"LEDGER_COMMODITY_DATE_FORMAT", &c.Format.CommodityDateFormat},
		{"LEDGER_TOLERANCE_DEFAULT", &c.Tolerance.Default},
		{"LEDGER_TOLERANCE_MULTIPLIER", &c.Tolerance.Multiplier},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
			logger.Debug("applied environment override", zap.String("key", s.key))
		}
	}

	// Environment variables cannot hold a tab as easily as YAML can.
	c.Format.Indent = strings.ReplaceAll(c.Format.Indent, `\t`, "\t")

	if v, ok := lookup("LEDGER_SAME_LINE_POSTING_COMMENTS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean value for LEDGER_SAME_LINE_POSTING_COMMENTS: %s", v)
		}
		c.Format.SameLinePostingComments = b
		logger.Debug("applied environment override", zap.String("key", "LEDGER_SAME_LINE_POSTING_COMMENTS"))
	}

	return nil
}

// Validate checks every value that the formatter or the ledger would
// otherwise silently replace by a default.
func (c *Config) Validate() error {
	var problems []string

	if strings.Trim(c.Format.Indent, " \t") != "" {
		problems = append(problems, fmt.Sprintf("format.indent must only contain spaces and tabs, got %q", c.Format.Indent))
	}
	if _, err := c.Format.lineEnding(); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := c.Tolerance.Build(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (f FormatConfig) lineEnding() (string, error) {
	switch strings.ToLower(f.LineEnding) {
	case "":
		return "", nil
	case "lf":
		return "\n", nil
	case "crlf":
		return "\r\n", nil
	default:
		return "", fmt.Errorf("format.line_ending must be lf or crlf, got %q", f.LineEnding)
	}
}

// Options turns the settings into formatter options. Unset values are left
// to the formatter's defaults.
func (f FormatConfig) Options() []formatter.Option {
	var opts []formatter.Option
	if f.Indent != "" {
		opts = append(opts, formatter.WithIndent(f.Indent))
	}
	if eol, err := f.lineEnding(); err == nil && eol != "" {
		opts = append(opts, formatter.WithLineEnding(eol))
	}
	if f.TransactionDateFormat != "" {
		opts = append(opts, formatter.WithTransactionDateFormat(f.TransactionDateFormat))
	}
	if f.CommodityDateFormat != "" {
		opts = append(opts, formatter.WithCommodityDateFormat(f.CommodityDateFormat))
	}
	if f.SameLinePostingComments {
		opts = append(opts, formatter.WithSameLinePostingComments(true))
	}
	return opts
}

// Build returns the ledger tolerance configuration.
func (t ToleranceConfig) Build() (*ledger.ToleranceConfig, error) {
	cfg := ledger.NewToleranceConfig()

	if t.Default != "" {
		d, err := decimal.NewFromString(t.Default)
		if err != nil {
			return nil, fmt.Errorf("tolerance.default: invalid decimal %q", t.Default)
		}
		if err := cfg.SetDefault("*", d); err != nil {
			return nil, fmt.Errorf("tolerance.default: %w", err)
		}
	}

	if t.Multiplier != "" {
		m, err := decimal.NewFromString(t.Multiplier)
		if err != nil {
			return nil, fmt.Errorf("tolerance.multiplier: invalid decimal %q", t.Multiplier)
		}
		if err := cfg.SetMultiplier(m); err != nil {
			return nil, fmt.Errorf("tolerance.multiplier: %w", err)
		}
	}

	for commodity, value := range t.Commodities {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("tolerance.commodities.%s: invalid decimal %q", commodity, value)
		}
		if err := cfg.SetDefault(commodity, d); err != nil {
			return nil, fmt.Errorf("tolerance.commodities.%s: %w", commodity, err)
		}
	}

	return cfg, nil
}
