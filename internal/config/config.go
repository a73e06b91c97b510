package config

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Build-time variables injected via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Config holds all shell configuration loaded from environment variables.
type Config struct {
	// Debug enables verbose logging.
	Debug bool

	// DataDir is the root directory for persistent shell data.
	DataDir string

	// LogDir is the directory for log files.
	LogDir string

	// SettingsPath points at the settings resource. Empty means the embedded default.
	SettingsPath string

	// ListenAddr is the address the HTTP surface binds to.
	ListenAddr string

	// APIToken, when set, is required in the X-Shell-Token header of the records API.
	APIToken string

	// RemoteConfigURL is the base URL of the remote key/value document store.
	RemoteConfigURL string

	// RemoteConfigPath selects a sub-node of the document; empty reads the root.
	RemoteConfigPath string

	// RemoteConfigAuth is an optional access token appended as the auth query parameter.
	RemoteConfigAuth string

	// MessagingURL is the push-token exchange endpoint.
	MessagingURL string

	// InstallationsURL is the installation-id service endpoint.
	InstallationsURL string

	// PlatformAPIKey authenticates requests to the installation service.
	PlatformAPIKey string

	// AppID identifies the application to the platform services.
	AppID string

	// BundleID is reported in the identity payload when set.
	BundleID string

	// AttributionToken is reported in the identity payload when set.
	AttributionToken string

	// AdvertisingID is reported in the identity payload when set.
	AdvertisingID string

	// PushCredential is the device push credential delivered by the platform.
	PushCredential []byte

	// PushSandbox marks the push credential as issued by the sandbox environment.
	PushSandbox bool

	// PollInterval and PollBudget bound how long bootstrap waits for its inputs.
	PollInterval time.Duration
	PollBudget   int

	// HTTPRetryMax is the retry count of the outbound HTTP clients.
	HTTPRetryMax int
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:      "/var/lib/farmkeep",
		LogDir:       "/var/log/farmkeep",
		ListenAddr:   "127.0.0.1:8080",
		MessagingURL: "https://iid.googleapis.com/iid/v1:batchImport",
		PollInterval: time.Second,
		PollBudget:   20,
	}
}

// BootstrapBudget is the total time bootstrap may wait for its inputs.
func (c *Config) BootstrapBudget() time.Duration {
	return time.Duration(c.PollBudget) * c.PollInterval
}

// Load reads configuration from environment variables, applying defaults
// for anything not explicitly set. A .env file in the working directory is
// honoured when present. Returns an error if values are malformed.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := DefaultConfig()

	cfg.Debug = os.Getenv("FARMKEEP_DEBUG") == "true"

	if v := os.Getenv("FARMKEEP_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("FARMKEEP_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}

	if v := os.Getenv("FARMKEEP_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}

	if v := os.Getenv("FARMKEEP_MESSAGING_URL"); v != "" {
		cfg.MessagingURL = v
	}

	cfg.APIToken = os.Getenv("FARMKEEP_API_TOKEN")
	cfg.SettingsPath = strings.TrimSpace(os.Getenv("FARMKEEP_SETTINGS"))
	cfg.RemoteConfigURL = strings.TrimRight(strings.TrimSpace(os.Getenv("FARMKEEP_REMOTE_CONFIG_URL")), "/")
	cfg.RemoteConfigPath = strings.Trim(os.Getenv("FARMKEEP_REMOTE_CONFIG_PATH"), "/")
	cfg.RemoteConfigAuth = os.Getenv("FARMKEEP_REMOTE_CONFIG_AUTH")
	cfg.InstallationsURL = strings.TrimSpace(os.Getenv("FARMKEEP_INSTALLATIONS_URL"))
	cfg.PlatformAPIKey = os.Getenv("FARMKEEP_PLATFORM_API_KEY")
	cfg.AppID = os.Getenv("FARMKEEP_APP_ID")
	cfg.BundleID = os.Getenv("FARMKEEP_BUNDLE_ID")
	cfg.AttributionToken = os.Getenv("FARMKEEP_ATTRIBUTION_TOKEN")
	cfg.AdvertisingID = os.Getenv("FARMKEEP_ADVERTISING_ID")
	cfg.PushSandbox = os.Getenv("FARMKEEP_PUSH_SANDBOX") == "true"

	if v := strings.TrimSpace(os.Getenv("FARMKEEP_PUSH_CREDENTIAL")); v != "" {
		cred, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("FARMKEEP_PUSH_CREDENTIAL must be hex encoded: %w", err)
		}
		cfg.PushCredential = cred
	}

	if v := os.Getenv("FARMKEEP_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("FARMKEEP_POLL_INTERVAL must be a positive duration, got %q", v)
		}
		cfg.PollInterval = d
	}

	if v := os.Getenv("FARMKEEP_POLL_BUDGET"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("FARMKEEP_POLL_BUDGET must be a positive integer, got %q", v)
		}
		cfg.PollBudget = n
	}

	if v := os.Getenv("FARMKEEP_HTTP_RETRY_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("FARMKEEP_HTTP_RETRY_MAX must be a non-negative integer, got %q", v)
		}
		cfg.HTTPRetryMax = n
	}

	return cfg, nil
}

// NewLogger creates a structured logger that writes to both stdout and a log file.
func NewLogger(cfg *Config, name string) (*slog.Logger, error) {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	logPath := filepath.Join(cfg.LogDir, name+".log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", logPath, err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(io.MultiWriter(os.Stdout, file), &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}
