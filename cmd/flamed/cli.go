package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flamed/internal/config"
	"flamed/internal/llm"
)

// Defaults for settings neither the config file nor flags provide.
const (
	defaultAddr           = ":8080"
	defaultModelsDir      = "./models"
	defaultMaxWaitSeconds = 30
)

var version = "0.1.0"

// options collects the persistent flags.
type options struct {
	configPath string
	cfg        config.Config
	corsCSV    string
}

// buildRootCmdWith constructs the Cobra command tree.
func buildRootCmdWith(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "flamed",
		Short:         "Text generation server for local models",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", os.Getenv("FLAMED_CONFIG"), "Config file (.yaml, .json, .toml)")
	pf.StringVar(&opts.cfg.ModelsDir, "models-dir", envStr("FLAMED_MODELS_DIR", ""), "Directory with model descriptors (default ./models)")
	pf.StringVar(&opts.cfg.DefaultModel, "default-model", "", "Model id used when a request names none (default: first model)")
	pf.StringVar(&opts.cfg.LogLevel, "log-level", envStr("FLAMED_LOG_LEVEL", ""), "Log level: debug|info|warn|error")
	pf.IntVar(&opts.cfg.MaxBestOf, "max-best-of", 0, "Maximum best_of per request")
	pf.IntVar(&opts.cfg.MaxStopSequences, "max-stop-sequences", 0, "Maximum stop sequences per request")
	pf.IntVar(&opts.cfg.MaxInputLength, "max-input-length", 0, "Maximum prompt tokens")
	pf.IntVar(&opts.cfg.MaxTotalTokens, "max-total-tokens", 0, "Maximum prompt plus new tokens")

	root.AddCommand(newServeCmd(opts), newGenerateCmd(opts), newModelsCmd(opts))
	return root
}

// resolveConfig loads the config file, if any, and lets explicitly set flags
// override it.
func resolveConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg := config.Config{}
	if opts.configPath != "" {
		c, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	flags := opts.cfg
	// Flags that picked up an environment default count as set.
	set := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && (f.Changed || f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false")
	}
	if set("addr") {
		cfg.Addr = flags.Addr
	}
	if set("models-dir") {
		cfg.ModelsDir = flags.ModelsDir
	}
	if set("default-model") {
		cfg.DefaultModel = flags.DefaultModel
	}
	if set("log-level") {
		cfg.LogLevel = flags.LogLevel
	}
	if set("max-concurrent-requests") {
		cfg.MaxConcurrentRequests = flags.MaxConcurrentRequests
	}
	if set("max-queue-depth") {
		cfg.MaxQueueDepth = flags.MaxQueueDepth
	}
	if set("max-wait-seconds") {
		cfg.MaxWaitSeconds = flags.MaxWaitSeconds
	}
	if set("max-best-of") {
		cfg.MaxBestOf = flags.MaxBestOf
	}
	if set("max-stop-sequences") {
		cfg.MaxStopSequences = flags.MaxStopSequences
	}
	if set("max-input-length") {
		cfg.MaxInputLength = flags.MaxInputLength
	}
	if set("max-total-tokens") {
		cfg.MaxTotalTokens = flags.MaxTotalTokens
	}
	if set("max-body-bytes") {
		cfg.MaxBodyBytes = flags.MaxBodyBytes
	}
	if set("request-timeout-seconds") {
		cfg.RequestTimeoutSeconds = flags.RequestTimeoutSeconds
	}
	if set("cors") {
		cfg.CORSEnabled = flags.CORSEnabled
	}
	if set("cors-origins") {
		cfg.CORSAllowedOrigins = splitCSV(opts.corsCSV)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *config.Config) {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = defaultModelsDir
	}
	if cfg.MaxWaitSeconds <= 0 {
		cfg.MaxWaitSeconds = defaultMaxWaitSeconds
	}
	def := llm.DefaultLimits()
	if cfg.MaxBestOf <= 0 {
		cfg.MaxBestOf = def.MaxBestOf
	}
	if cfg.MaxStopSequences <= 0 {
		cfg.MaxStopSequences = def.MaxStopSequences
	}
	if cfg.MaxInputLength <= 0 {
		cfg.MaxInputLength = def.MaxInputLength
	}
	if cfg.MaxTotalTokens <= 0 {
		cfg.MaxTotalTokens = def.MaxTotalTokens
	}
}

func limitsOf(cfg config.Config) llm.Limits {
	return llm.Limits{
		MaxBestOf:        cfg.MaxBestOf,
		MaxStopSequences: cfg.MaxStopSequences,
		MaxInputLength:   cfg.MaxInputLength,
		MaxTotalTokens:   cfg.MaxTotalTokens,
	}
}
