// Package constants holds values shared across fieldeval: timeouts, limits,
// file permissions, reconciliation defaults and report naming.
package constants

import "time"

// Timeouts
const (
	// DefaultHTTPTimeout bounds a single call to the prediction or upload service.
	DefaultHTTPTimeout = 120 * time.Second

	// JudgeTimeout bounds a single semantic judge call.
	JudgeTimeout = 30 * time.Second

	// RunTimeout bounds a whole pipeline run across all accounts.
	RunTimeout = 2 * time.Hour

	// ShutdownTimeout is how long the HTTP server waits for in-flight requests.
	ShutdownTimeout = 10 * time.Second

	// RetryBackoff is the base backoff between retries.
	RetryBackoff = 1 * time.Second
)

// File permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// Limits
const (
	// MaxRetries is the number of attempts made against remote services.
	MaxRetries = 3

	// DefaultConcurrency is the number of fields classified in parallel.
	DefaultConcurrency = 1

	// MaxConcurrency caps the configurable field concurrency.
	MaxConcurrency = 64

	// MaxRequestBytes caps the reconcile API request body (16 MB).
	MaxRequestBytes = 16 << 20

	// DefaultHistoryLimit is the number of past runs listed by default.
	DefaultHistoryLimit = 20
)

// Rate limiting
const (
	// DefaultJudgeRPS is the sustained rate of judge calls per second.
	DefaultJudgeRPS = 5.0

	// DefaultJudgeBurst is the token bucket burst for judge calls.
	DefaultJudgeBurst = 5

	// DefaultPredictRPS is the sustained rate of prediction calls per second.
	DefaultPredictRPS = 1.0
)

// Cache
const (
	// JudgeMemoTTL is how long a judge verdict is memoised within a run.
	JudgeMemoTTL = 30 * time.Minute

	// JudgeMemoCleanup is how often expired verdicts are purged.
	JudgeMemoCleanup = 10 * time.Minute
)

// Reconciliation defaults
const (
	// TogglePrefix marks toggle-style fields whose mapping carries a hidden flag.
	TogglePrefix = "toggle-"

	// HiddenKey is the key inside a toggle mapping that flags the field as hidden.
	HiddenKey = "hidden"

	// EmbeddedListKey is the reference key holding the embedded key/value list.
	EmbeddedListKey = "filetransferfields"

	// DeletedKey is the reference metadata key that is never a field.
	DeletedKey = "deleted"

	// SuggestionsKey is the candidate key whose mapping is merged into the top level.
	SuggestionsKey = "suggestions"

	// NoneSentinel is the literal candidate rendering treated as absent.
	NoneSentinel = "none"
)

// Judge defaults
const (
	DefaultJudgeModel    = "gemini-1.5-flash"
	DefaultJudgeBackend  = "gemini"
	DefaultJudgeLocation = "us-central1"
)

// Paths and file names
const (
	DefaultConfigPath    = "~/.fieldeval/config.yaml"
	DefaultDataDir       = "data"
	DefaultOutputDir     = "output"
	DefaultHistoryDB     = "~/.fieldeval/history.db"
	InstancesFile        = "instances.json"
	AccountsFile         = "accounts_to_run.csv"
	TenantInfoDir        = "Tenet_info"
	GroundTruthFile      = "ground_truth.json"
	PredictionFile       = "iter1.json"
	TimingLogFile        = "prediction_timing.csv"
	ConsolidatedReport   = "consolidated_report.csv"
	CoverageReportPrefix = "coverage_report_"
	SummaryFile          = "summary.md"
)

// Formats
const (
	TimeFormatLog      = "2006-01-02 15:04:05"
	TimeFormatFilename = "20060102-150405"
)
