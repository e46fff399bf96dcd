package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/judge"
)

// EnvPrefix is the prefix of every fieldeval environment variable.
const EnvPrefix = "FIELDEVAL"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose  bool
	Quiet    bool
	NoColor  bool
	Format   string
	LogLevel string // from --log-level only

	// Config file
	ConfigFile string

	Judge      JudgeConfig
	Reconcile  ReconcileConfig
	Prediction PredictionConfig
	Paths      PathsConfig

	StorePath  string // empty disables run history
	ServerAddr string

	// Logging configuration
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// JudgeConfig configures the semantic judge.
type JudgeConfig struct {
	Enabled  bool
	Backend  string
	Model    string
	APIKey   string
	Project  string
	Location string
	Rate     float64
	Burst    int
	Timeout  time.Duration
}

// ReconcileConfig configures the reconciliation driver.
type ReconcileConfig struct {
	Concurrency   int
	TogglePrefix  string
	IgnoredFields []string // replaces the default set when non-empty
	MatchLabels   []string
}

// PredictionConfig configures the prediction and upload services.
type PredictionConfig struct {
	Endpoint       string
	LocalEndpoint  string
	UploadEndpoint string
	Bucket         string
	UploadPrefix   string
	Token          string
	Timeout        time.Duration
}

// PathsConfig locates the pipeline's inputs and outputs.
type PathsConfig struct {
	Instances   string
	AccountsCSV string
	TenantInfo  string
	Output      string
	TimingLog   string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables (FIELDEVAL_JUDGE_MODEL, ...)
//  3. .env files
//  4. Config file (~/.fieldeval.yaml or ./.fieldeval.yaml)
//  5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if err := v.BindEnv("judge.api_key", EnvPrefix+"_JUDGE_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, errors.NewConfigError("env", "binding judge.api_key", err)
	}
	if err := v.BindEnv("judge.project", EnvPrefix+"_JUDGE_PROJECT", "GOOGLE_CLOUD_PROJECT"); err != nil {
		return nil, errors.NewConfigError("env", "binding judge.project", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".fieldeval")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit file must exist; the search locations are optional.
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "reading config file", err)
		}
	}

	config := &Config{
		Verbose:    v.GetBool("verbose"),
		Quiet:      v.GetBool("quiet"),
		NoColor:    v.GetBool("no_color"),
		Format:     v.GetString("format"),
		ConfigFile: v.ConfigFileUsed(),

		Judge: JudgeConfig{
			Enabled:  v.GetBool("judge.enabled"),
			Backend:  v.GetString("judge.backend"),
			Model:    v.GetString("judge.model"),
			APIKey:   v.GetString("judge.api_key"),
			Project:  v.GetString("judge.project"),
			Location: v.GetString("judge.location"),
			Rate:     v.GetFloat64("judge.rate"),
			Burst:    v.GetInt("judge.burst"),
			Timeout:  v.GetDuration("judge.timeout"),
		},
		Reconcile: ReconcileConfig{
			Concurrency:   v.GetInt("reconcile.concurrency"),
			TogglePrefix:  v.GetString("reconcile.toggle_prefix"),
			IgnoredFields: v.GetStringSlice("reconcile.ignored_fields"),
			MatchLabels:   v.GetStringSlice("reconcile.match_labels"),
		},
		Prediction: PredictionConfig{
			Endpoint:       v.GetString("prediction.endpoint"),
			LocalEndpoint:  v.GetString("prediction.local_endpoint"),
			UploadEndpoint: v.GetString("prediction.upload_endpoint"),
			Bucket:         v.GetString("prediction.bucket"),
			UploadPrefix:   v.GetString("prediction.upload_prefix"),
			Token:          v.GetString("prediction.token"),
			Timeout:        v.GetDuration("prediction.timeout"),
		},
		Paths: PathsConfig{
			Instances:   v.GetString("paths.instances"),
			AccountsCSV: v.GetString("paths.accounts_csv"),
			TenantInfo:  v.GetString("paths.tenant_info"),
			Output:      v.GetString("paths.output"),
			TimingLog:   v.GetString("paths.timing_log"),
		},
		StorePath:  expandHome(v.GetString("store.path")),
		ServerAddr: v.GetString("server.addr"),

		// Logging configuration
		EnvLogLevel: getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if _, ok := judge.ParseBackend(config.Judge.Backend); !ok {
		return nil, errors.NewValidationError("judge.backend", config.Judge.Backend, "must be gemini or vertex")
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("judge.enabled", false)
	v.SetDefault("judge.backend", constants.DefaultJudgeBackend)
	v.SetDefault("judge.model", constants.DefaultJudgeModel)
	v.SetDefault("judge.location", constants.DefaultJudgeLocation)
	v.SetDefault("judge.rate", constants.DefaultJudgeRPS)
	v.SetDefault("judge.burst", constants.DefaultJudgeBurst)
	v.SetDefault("judge.timeout", constants.JudgeTimeout)

	v.SetDefault("reconcile.concurrency", constants.DefaultConcurrency)
	v.SetDefault("reconcile.toggle_prefix", constants.TogglePrefix)

	v.SetDefault("prediction.timeout", constants.DefaultHTTPTimeout)

	v.SetDefault("paths.instances", constants.DefaultDataDir)
	v.SetDefault("paths.accounts_csv", filepath.Join(constants.DefaultDataDir, constants.AccountsFile))
	v.SetDefault("paths.tenant_info", filepath.Join(constants.DefaultDataDir, constants.TenantInfoDir))
	v.SetDefault("paths.output", constants.DefaultOutputDir)
	v.SetDefault("paths.timing_log", filepath.Join(constants.DefaultOutputDir, constants.TimingLogFile))

	v.SetDefault("store.path", constants.DefaultHistoryDB)
	v.SetDefault("server.addr", ":8080")
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		// godotenv never overrides variables that are already set, so the
		// more specific file loads first.
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
