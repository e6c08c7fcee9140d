package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ketchdev/ketch/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envAddr            = "KETCH_ADDR"
	envRemotesFile     = "KETCH_REMOTES_FILE"
	envWidth           = "KETCH_WIDTH"
	envHeight          = "KETCH_HEIGHT"
	envShowFooter      = "KETCH_FOOTER"
	envVerbose         = "KETCH_VERBOSE"
	envTrace           = "KETCH_TRACE"
	envLogFile         = "KETCH_LOG_FILE"
	envPollInterval    = "KETCH_POLL_INTERVAL"
	envHideBanner      = "KETCH_HIDE_BANNER"
	envIgnoreDuplicate = "KETCH_IGNORE_DUPLICATE_REMOTE"
	envAutoSave        = "KETCH_AUTO_SAVE"
)

const defaultPollInterval = 500 * time.Millisecond

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("ketch", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	addr := fs.String("addr", envOrDefault(env, envAddr, "http://localhost:5572"), "base URL of the rclone rc endpoint")
	remotesFile := fs.String("remotes-file", envOrDefault(env, envRemotesFile, ""), "path to the remotes file (defaults to ~/.config/ketch/remotes.json)")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, 0), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, true), "show the footer hint row")
	verbose := fs.Bool("verbose", envOrBool(env, envVerbose, false), "print success messages for actions")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")
	pollInterval := fs.Duration("poll-interval", envOrDuration(env, envPollInterval, defaultPollInterval), "interval between job status polls")
	hideBanner := fs.Bool("hide-banner", envOrBool(env, envHideBanner, false), "skip the startup banner")
	ignoreDuplicate := fs.Bool("ignore-duplicate-remote", envOrBool(env, envIgnoreDuplicate, false), "skip engine remotes whose name already exists in the remotes file")
	autoSave := fs.Bool("auto-save", envOrBool(env, envAutoSave, false), "write the remotes file after the startup merge")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}
	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}
	if *pollInterval <= 0 {
		return Config{}, fmt.Errorf("poll-interval must be positive (got %s)", *pollInterval)
	}

	cfg := Config{
		App: app.Config{
			Addr:                  *addr,
			RemotesFile:           *remotesFile,
			Width:                 *width,
			Height:                *height,
			ShowFooter:            *footer,
			Verbose:               *verbose,
			HideBanner:            *hideBanner,
			PollInterval:          *pollInterval,
			IgnoreDuplicateRemote: *ignoreDuplicate,
			AutoSave:              *autoSave,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"addr":                  *addr,
			"remotesFile":           *remotesFile,
			"width":                 strconv.Itoa(*width),
			"height":                strconv.Itoa(*height),
			"footer":                strconv.FormatBool(*footer),
			"verbose":               strconv.FormatBool(*verbose),
			"trace":                 strconv.FormatBool(*trace),
			"logFile":               *logFile,
			"pollInterval":          pollInterval.String(),
			"hideBanner":            strconv.FormatBool(*hideBanner),
			"ignoreDuplicateRemote": strconv.FormatBool(*ignoreDuplicate),
			"autoSave":              strconv.FormatBool(*autoSave),
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.App.Addr) == "" {
		return fmt.Errorf("addr must not be empty")
	}
	return nil
}
