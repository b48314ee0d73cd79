package contract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/metricsagg/schema"
)

// Default values for configuration.
const (
	DefaultRootPath  = "."
	DefaultPrecision = -1
	MaxPrecision     = 17
	StdoutFile       = "-"
)

// Config holds the runtime configuration for a summarize run.
// This struct remains the "final, validated" config.
type Config struct {
	RootPath   string            `validate:"required,dir"`
	Output     schema.OutputMode `validate:"required,oneof=csv json text parquet"`
	OutputFile string            // Empty means stdout
	Precision  int               `validate:"min=-1,max=17"` // -1 = shortest round-trip form
	Excludes   []string
	KeepGoing  bool
	Verbose    bool
	Width      int `validate:"min=0"` // Terminal width override (0 = auto-detect)

	HistoryBackend   schema.DatabaseBackend `validate:"required,oneof=sqlite mysql postgresql none"`
	HistoryDBConnect string                 // Please use env var as this is plaintext

	UseColors bool // Enable colored status lines
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RootPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Root             string `mapstructure:"root"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Exclude          string `mapstructure:"exclude"`
	KeepGoing        bool   `mapstructure:"keep-going"`
	Verbose          bool   `mapstructure:"verbose"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	return &clone
}

// HistoryEnabled reports whether summarize runs should be recorded.
func (c *Config) HistoryEnabled() bool {
	return c.HistoryBackend != "" && c.HistoryBackend != schema.NoneBackend
}

// Params returns the settings that shape a run's output, for run history.
func (c *Config) Params() map[string]any {
	return map[string]any{
		"output":     string(c.Output),
		"precision":  c.Precision,
		"excludes":   c.Excludes,
		"keep_going": c.KeepGoing,
	}
}

// ProcessAndValidate populates cfg from input and validates the result.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := resolveRootPath(cfg, input); err != nil {
		return err
	}
	if err := resolveOutputFile(cfg, input); err != nil {
		return err
	}
	if err := validateHistoryConfig(cfg, input); err != nil {
		return err
	}
	return validateStruct(cfg)
}

// ProcessHistoryConfig populates only the history settings of cfg. History
// subcommands do not need a root directory or an output format.
func ProcessHistoryConfig(cfg *Config, input *ConfigRawInput) error {
	return validateHistoryConfig(cfg, input)
}

// RevalidateRoot re-applies the root and exclude settings on a cloned config.
// Empty arguments keep the values already in cfg.
func RevalidateRoot(cfg *Config, rootPath, exclude string) error {
	if rootPath != "" {
		if err := resolveRootPath(cfg, &ConfigRawInput{RootPathStr: rootPath}); err != nil {
			return err
		}
	}
	if exclude != "" {
		cfg.Excludes = parseExcludes(exclude)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return errors.New("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return errors.New("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return errors.New("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return errors.New("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.KeepGoing = input.KeepGoing
	cfg.Verbose = input.Verbose
	cfg.Width = input.Width
	cfg.Precision = input.Precision

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.CSVOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be csv, json, text, parquet", input.Output)
	}

	cfg.Excludes = parseExcludes(input.Exclude)
	return nil
}

// parseExcludes splits a comma-separated pattern list, dropping blanks.
func parseExcludes(s string) []string {
	var excludes []string
	for p := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			excludes = append(excludes, trimmed)
		}
	}
	return excludes
}

// resolveRootPath picks the root directory from the positional argument,
// then the root setting, then the current directory.
func resolveRootPath(cfg *Config, input *ConfigRawInput) error {
	root := input.RootPathStr
	if root == "" {
		root = input.Root
	}
	if root == "" {
		root = DefaultRootPath
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("root directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path %s is not a directory", root)
	}
	cfg.RootPath = filepath.Clean(abs)
	return nil
}

// resolveOutputFile derives the destination from --output-file and the output format.
func resolveOutputFile(cfg *Config, input *ConfigRawInput) error {
	switch input.OutputFile {
	case StdoutFile:
		cfg.OutputFile = ""
	case "":
		if cfg.Output == schema.TextOut {
			cfg.OutputFile = ""
		} else {
			cfg.OutputFile = schema.DefaultOutputBase + cfg.Output.Extension()
		}
	default:
		if info, err := os.Stat(input.OutputFile); err == nil && info.IsDir() {
			return fmt.Errorf("output file %s is a directory", input.OutputFile)
		}
		cfg.OutputFile = input.OutputFile
	}
	return nil
}

// validateHistoryConfig validates the run history backend configuration.
func validateHistoryConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// validateStruct runs the struct tag rules over the final config.
func validateStruct(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config field %s: failed %q rule (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}
