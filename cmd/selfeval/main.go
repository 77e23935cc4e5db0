package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MatusOllah/slogcolor"
	"github.com/fwojciec/selfeval"
	"github.com/fwojciec/selfeval/bellman"
	"github.com/fwojciec/selfeval/fs"
	"github.com/fwojciec/selfeval/gemini"
	"github.com/fwojciec/selfeval/jsonl"
	"github.com/fwojciec/selfeval/lipgloss"
	"github.com/fwojciec/selfeval/openai"
	"github.com/fwojciec/selfeval/prometheus"
	"github.com/fwojciec/selfeval/sqlite"
	"github.com/fwojciec/selfeval/yaml"
	"github.com/modfin/clix"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
)

// Credentials holds completion backend credentials.
type Credentials struct {
	OpenAIKey      string `cli:"openai-key"`
	OpenAIBaseURL  string `cli:"openai-base-url"`
	GeminiKey      string `cli:"gemini-key"`
	BellmanURL     string `cli:"bellman-url"`
	BellmanKeyName string `cli:"bellman-key-name"`
	BellmanKey     string `cli:"bellman-key"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		slog.Default().Error("selfeval failed", "err", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "selfeval",
		Usage: "validate LLM output by asking another LLM whether it responds to its prompt",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a YAML config file",
				Sources: cli.EnvVars("SELFEVAL_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "provider",
				Usage:   "completion provider: openai, gemini or bellman",
				Value:   yaml.ProviderOpenAI,
				Sources: cli.EnvVars("SELFEVAL_PROVIDER"),
			},
			&cli.StringFlag{
				Name:    "model",
				Usage:   "evaluator model (bellman expects Provider/name)",
				Sources: cli.EnvVars("SELFEVAL_MODEL"),
			},
			&cli.StringFlag{
				Name:  "validator",
				Usage: "registered validator name",
				Value: selfeval.ResponsivenessCheckName,
			},
			&cli.BoolFlag{
				Name:    "unsure-is-pass",
				Usage:   "pass when the evaluator is unsure",
				Sources: cli.EnvVars("SELFEVAL_UNSURE_IS_PASS"),
			},
			&cli.StringFlag{
				Name:    "openai-key",
				Sources: cli.EnvVars("OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "openai-base-url",
				Sources: cli.EnvVars("OPENAI_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "gemini-key",
				Sources: cli.EnvVars("GEMINI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "bellman-url",
				Sources: cli.EnvVars("SELFEVAL_BELLMAN_URL"),
			},
			&cli.StringFlag{
				Name:    "bellman-key",
				Sources: cli.EnvVars("SELFEVAL_BELLMAN_KEY"),
			},
			&cli.StringFlag{
				Name:    "bellman-key-name",
				Value:   "selfeval",
				Sources: cli.EnvVars("SELFEVAL_BELLMAN_KEY_NAME"),
			},
			&cli.StringFlag{
				Name:    "cache-dir",
				Usage:   "cache evaluator replies in this directory",
				Sources: cli.EnvVars("SELFEVAL_CACHE_DIR"),
			},
			&cli.BoolFlag{
				Name:  "cache",
				Usage: "cache evaluator replies in the default cache directory",
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "record checks in this SQLite database",
				Sources: cli.EnvVars("SELFEVAL_DB"),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "deadline for each evaluator call (0 disables)",
				Sources: cli.EnvVars("SELFEVAL_TIMEOUT"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Sources: cli.EnvVars("SELFEVAL_VERBOSE"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			opts := *slogcolor.DefaultOptions
			opts.Level = slog.LevelInfo
			if cmd.Bool("verbose") {
				opts.Level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slogcolor.NewHandler(os.Stderr, &opts)))
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "validate a single output",
				ArgsUsage: "[text|-]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prompt",
						Usage: "the original prompt given to the LLM",
					},
					&cli.StringFlag{
						Name:  "question",
						Usage: "a yes/no question about the output (overrides --prompt)",
					},
				},
				Action: runCheck,
			},
			{
				Name:      "batch",
				Usage:     "validate JSONL cases and write JSONL results to stdout",
				ArgsUsage: "<cases.jsonl|->",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "number of parallel workers (1 = sequential)",
						Value: DefaultWorkers,
					},
					&cli.StringFlag{
						Name:  "metrics-file",
						Usage: "write Prometheus metrics to this textfile after the batch",
					},
				},
				Action: runBatch,
			},
			{
				Name:  "history",
				Usage: "list recorded checks",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "maximum number of checks to list (0 = all)",
						Value: 20,
					},
				},
				Action: runHistory,
			},
			{
				Name:  "validators",
				Usage: "list registered validators",
				Action: func(_ context.Context, cmd *cli.Command) error {
					registry, err := newRegistry()
					if err != nil {
						return err
					}
					for _, name := range registry.Names() {
						fmt.Fprintln(cmd.Root().Writer, name)
					}
					return nil
				},
			},
		},
	}
}

// newRegistry registers the built-in validators.
func newRegistry() (*selfeval.Registry, error) {
	registry := selfeval.NewRegistry()
	if err := selfeval.RegisterDefaults(registry, selfeval.WithLogger(slog.Default())); err != nil {
		return nil, err
	}
	return registry, nil
}

// loadConfig merges the config file with explicitly set flags.
func loadConfig(cmd *cli.Command) (yaml.FileConfig, error) {
	var cfg yaml.FileConfig
	if path := cmd.String("config"); path != "" {
		loaded, err := yaml.LoadConfig(path)
		if err != nil {
			return yaml.FileConfig{}, err
		}
		cfg = loaded
	}

	if cmd.IsSet("provider") || cfg.Provider == "" {
		cfg.Provider = cmd.String("provider")
	}
	if cmd.IsSet("model") {
		cfg.Model = cmd.String("model")
	}
	if cmd.IsSet("unsure-is-pass") {
		cfg.UnsureIsPass = cmd.Bool("unsure-is-pass")
	}
	if cmd.IsSet("cache-dir") {
		cfg.CacheDir = cmd.String("cache-dir")
	} else if cmd.Bool("cache") && cfg.CacheDir == "" {
		cfg.CacheDir = fs.DefaultCacheDir()
	}
	if cmd.IsSet("db") {
		cfg.DB = cmd.String("db")
	}

	yaml.Normalize(&cfg)
	if err := yaml.Validate(cfg); err != nil {
		return yaml.FileConfig{}, err
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel(cfg.Provider)
	}
	return cfg, nil
}

func defaultModel(provider string) string {
	switch provider {
	case yaml.ProviderGemini:
		return gemini.DefaultModel
	case yaml.ProviderBellman:
		return bellman.DefaultModel
	default:
		return openai.DefaultModel
	}
}

// newCompleter builds the completion backend for provider.
func newCompleter(ctx context.Context, provider string, creds Credentials) (selfeval.Completer, error) {
	switch provider {
	case yaml.ProviderOpenAI:
		client, err := openai.NewClient(openai.Config{APIKey: creds.OpenAIKey, BaseURL: creds.OpenAIBaseURL})
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return openai.NewCompleter(client, openai.WithLogger(slog.Default())), nil
	case yaml.ProviderGemini:
		if creds.GeminiKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable required")
		}
		client, err := gemini.NewClient(ctx, creds.GeminiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return gemini.NewCompleter(client), nil
	case yaml.ProviderBellman:
		client, err := bellman.NewClient(creds.BellmanURL, creds.BellmanKeyName, creds.BellmanKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create bellman client: %w", err)
		}
		return bellman.NewCompleter(bellman.FromGen(client)), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", provider)
	}
}

// setup builds the validator described by flags and config. The returned
// close function releases the history store, if any.
func setup(ctx context.Context, cmd *cli.Command) (selfeval.Validator, func() error, error) {
	noop := func() error { return nil }

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, noop, err
	}
	slog.Default().Debug("config", "provider", cfg.Provider, "model", cfg.Model, "unsure_is_pass", cfg.UnsureIsPass)

	completer, err := newCompleter(ctx, cfg.Provider, clix.ParseCommand[Credentials](cmd))
	if err != nil {
		return nil, noop, err
	}
	if cfg.CacheDir != "" {
		slog.Default().Debug("caching evaluator replies", "dir", cfg.CacheDir)
		completer = fs.NewCompleter(completer, cfg.CacheDir, fs.WithLogger(slog.Default()))
	}

	registry, err := newRegistry()
	if err != nil {
		return nil, noop, err
	}
	validator, err := registry.New(cmd.String("validator"), completer, cfg.Config)
	if err != nil {
		return nil, noop, err
	}

	if cfg.DB == "" {
		return validator, noop, nil
	}
	store, err := sqlite.Open(ctx, cfg.DB)
	if err != nil {
		return nil, noop, err
	}
	return sqlite.NewValidator(validator, store, cfg.Model, slog.Default()), store.Close, nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	value, err := readValue(cmd.Args().First(), os.Stdin)
	if err != nil {
		return err
	}

	md := selfeval.Metadata{}
	if q := cmd.String("question"); q != "" {
		md[selfeval.KeyValidationQuestion] = q
	}
	if p := cmd.String("prompt"); p != "" {
		md[selfeval.KeyOriginalPrompt] = p
	}

	validator, closeStore, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	app := &App{
		Validator: validator,
		Reporter:  lipgloss.NewReporter(nil),
		Output:    cmd.Root().Writer,
		Timeout:   cmd.Duration("timeout"),
	}
	_, err = app.Check(ctx, value, md)
	return err
}

// readValue returns arg, or stdin when arg is "-" or empty and stdin is a pipe.
func readValue(arg string, stdin *os.File) (string, error) {
	if arg != "" && arg != "-" {
		return arg, nil
	}
	if arg == "" {
		stat, err := stdin.Stat()
		if err != nil {
			return "", fmt.Errorf("error checking stdin: %w", err)
		}
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			return "", ErrNoInput
		}
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func runBatch(ctx context.Context, cmd *cli.Command) error {
	inputPath := cmd.Args().First()
	if inputPath == "" {
		return errors.New("usage: selfeval batch [--workers N] <cases.jsonl|->")
	}

	cases, err := jsonl.NewLoader().Load(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load cases: %w", err)
	}
	if len(cases) == 0 {
		return fmt.Errorf("no cases found in %s", inputPath)
	}

	validator, closeStore, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	metricsFile := cmd.String("metrics-file")
	registry := prom.NewRegistry()
	if metricsFile != "" {
		validator, err = prometheus.NewValidator(validator, registry)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	runner := &BatchRunner{
		Output:    cmd.Root().Writer,
		Cases:     cases,
		Validator: validator,
		Workers:   int(cmd.Int("workers")),
		Timeout:   cmd.Duration("timeout"),
	}
	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if err := lipgloss.NewReporter(nil).Summary(cmd.Root().ErrWriter, summary.Passed, summary.Failed, summary.Errored); err != nil {
		return err
	}

	if metricsFile != "" {
		if err := prometheus.WriteTextfile(metricsFile, registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

func runHistory(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DB == "" {
		return errors.New("no database configured: set --db or SELFEVAL_DB")
	}

	store, err := sqlite.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	return writeHistory(cmd.Root().Writer, records)
}

func writeHistory(w io.Writer, records []selfeval.CheckRecord) error {
	for _, rec := range records {
		status := "FAIL"
		if rec.Passed {
			status = "PASS"
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%q\n",
			rec.ID,
			rec.CheckedAt.Format("2006-01-02T15:04:05Z07:00"),
			status,
			rec.Verdict,
			rec.Model,
			rec.Candidate,
		); err != nil {
			return err
		}
	}
	return nil
}
