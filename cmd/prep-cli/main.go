package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paveg/prep"
	"github.com/paveg/prep/internal/config"
	"github.com/paveg/prep/internal/logger"
	"github.com/paveg/prep/internal/version"
)

func customUsage(fs *flag.FlagSet) func() {
	return func() {
		w := fs.Output()
		fmt.Fprintf(w, "prep data cleaning CLI (version %s)\n\n", version.Version)
		fmt.Fprintf(w, "Usage: prep-cli [options] <input.csv | ->\n\n")
		fmt.Fprintf(w, "Steps run in this order: impute, dedupe, redundant, normalize, model.\n\n")
		fmt.Fprintf(w, "Options:\n")
		fs.PrintDefaults()
	}
}

// options holds parsed flags. Cleaning settings left unset on the command
// line come from the config file and PREP_* variables.
type options struct {
	input     string
	output    string
	format    string
	impute    bool
	dedupe    bool
	subset    string
	redundant bool
	normalize bool
	model     bool
	noSplit   bool
	scale     bool
	report    bool
	metrics   bool
	cfgFile   string
	envFile   string
	version   bool
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "prep-cli: %v\n", err)
		os.Exit(1)
	}
}

//nolint:funlen // flag wiring reads best in one place
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("prep-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = customUsage(fs)

	var opts options
	cfg := config.NewConfig()

	fs.BoolVar(&opts.version, "v", false, "Print version and exit")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit") // alias
	fs.StringVar(&opts.output, "o", "", "Write the cleaned data to this file (default: stdout)")
	fs.StringVar(&opts.format, "format", "", "Output format: csv, json or jsonl (default: from the -o extension, else csv)")
	fs.BoolVar(&opts.impute, "impute", false, "Fill missing values")
	fs.StringVar(&cfg.ImputeStrategy, "strategy", cfg.ImputeStrategy, "Imputation strategy: mean, median or mode")
	fs.StringVar(&cfg.TargetColumn, "target", cfg.TargetColumn, "Column skipped by numeric imputation")
	fs.BoolVar(&opts.dedupe, "dedupe", false, "Remove duplicate rows")
	fs.StringVar(&opts.subset, "subset", "", "Comma-separated columns compared by -dedupe (default: all)")
	fs.BoolVar(&opts.redundant, "redundant", false, "Drop highly correlated numeric columns")
	fs.Float64Var(&cfg.CorrelationThreshold, "threshold", cfg.CorrelationThreshold, "Correlation cutoff for -redundant")
	fs.BoolVar(&opts.normalize, "normalize", false, "Rescale numeric columns")
	fs.StringVar(&cfg.NormalizeMethod, "method", cfg.NormalizeMethod, "Normalization method: minmax or standard")
	fs.BoolVar(&opts.model, "model", false, "Fit the demonstration model on the cleaned data and print its accuracy")
	fs.BoolVar(&opts.noSplit, "no-split", false, "Fit and score the model on every row")
	fs.BoolVar(&opts.scale, "scale", false, "Min-max scale model features")
	fs.BoolVar(&opts.report, "report", false, "Print the classification report")
	fs.Float64Var(&cfg.TestSize, "test-size", cfg.TestSize, "Fraction of rows held out for testing")
	fs.Uint64Var(&cfg.RandomSeed, "seed", cfg.RandomSeed, "Seed for the train/test split")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	fs.BoolVar(&opts.metrics, "metrics", false, "Print per-step metrics to stderr")
	fs.StringVar(&opts.cfgFile, "config", "", "Load settings from a JSON or YAML file")
	fs.StringVar(&opts.envFile, "env-file", "", "Load PREP_* variables from this file before reading the environment")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.version {
		fmt.Fprint(stdout, version.Info().String())
		return nil
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one input file")
	}
	opts.input = fs.Arg(0)

	cfg, err := resolveConfig(fs, cfg, opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logger.New(
		logger.WithLevel(level),
		logger.WithFormat(logger.Format(strings.ToLower(cfg.LogFormat))),
		logger.WithOutput(stderr),
	)
	prep.SetLogger(log)
	defer prep.SetLogger(nil)

	if opts.metrics || cfg.MetricsCollection {
		prep.EnableMetrics()
		defer func() {
			prep.DisableMetrics()
			if err := prep.WriteMetricsReport(stderr); err != nil {
				log.Warn("writing metrics report", logger.Error(err))
			}
		}()
	}

	df, err := readInput(opts.input, stdin)
	if err != nil {
		return err
	}
	defer df.Release()
	log.Info("loaded data", "input", opts.input, logger.Rows(df.Len()), logger.Columns(df.Columns()))

	cleaned, err := clean(df, cfg, opts, log)
	if err != nil {
		return err
	}
	defer cleaned.Release()

	if opts.model {
		modelOpts := []prep.ModelOption{
			prep.WithOutput(stdout),
			prep.WithSplit(!opts.noSplit),
			prep.WithScaling(opts.scale),
			prep.WithReport(opts.report),
			prep.WithTestSize(cfg.TestSize),
			prep.WithSeed(cfg.RandomSeed),
			prep.WithSolver(cfg.RegularizationC, cfg.MaxIterations, cfg.Tolerance),
		}
		if err := prep.SimpleModel(cleaned, modelOpts...); err != nil {
			return fmt.Errorf("model: %w", err)
		}
		if opts.output == "" {
			return nil
		}
	}

	return writeOutput(cleaned, opts, stdout)
}

// resolveConfig layers the config file, then PREP_* variables, then the
// flags that were set explicitly.
func resolveConfig(fs *flag.FlagSet, fromFlags config.Config, opts options) (config.Config, error) {
	cfg := config.NewConfig()
	if opts.cfgFile != "" {
		loaded, err := config.LoadFromFile(opts.cfgFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if opts.envFile != "" {
		if err := config.LoadDotEnv(opts.envFile); err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.ApplyEnv(cfg)
	if err != nil {
		return config.Config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strategy":
			cfg.ImputeStrategy = fromFlags.ImputeStrategy
		case "target":
			cfg.TargetColumn = fromFlags.TargetColumn
		case "threshold":
			cfg.CorrelationThreshold = fromFlags.CorrelationThreshold
		case "method":
			cfg.NormalizeMethod = fromFlags.NormalizeMethod
		case "test-size":
			cfg.TestSize = fromFlags.TestSize
		case "seed":
			cfg.RandomSeed = fromFlags.RandomSeed
		case "log-level":
			cfg.LogLevel = fromFlags.LogLevel
		case "log-format":
			cfg.LogFormat = fromFlags.LogFormat
		}
	})
	return cfg, nil
}

func readInput(path string, stdin io.Reader) (*prep.DataFrame, error) {
	if path == "-" {
		return prep.ReadCSV(stdin)
	}
	return prep.ReadCSVFile(path)
}

// clean runs the requested steps in order, releasing each intermediate frame.
func clean(df *prep.DataFrame, cfg config.Config, opts options, log *slog.Logger) (*prep.DataFrame, error) {
	current := df.Select(df.Columns()...)

	step := func(name string, fn func(*prep.DataFrame) (*prep.DataFrame, error)) error {
		start := time.Now()
		next, err := fn(current)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		log.Info("step complete", logger.Op(name), logger.Rows(next.Len()), "columns", next.Width(),
			logger.Duration(time.Since(start)))
		current.Release()
		current = next
		return nil
	}

	var steps []func() error
	if opts.impute {
		steps = append(steps, func() error {
			return step("impute", func(d *prep.DataFrame) (*prep.DataFrame, error) {
				return prep.ImputeMissingValues(d, prep.ImputeStrategy(strings.ToLower(cfg.ImputeStrategy)), prep.WithTarget(cfg.TargetColumn))
			})
		})
	}
	if opts.dedupe {
		steps = append(steps, func() error {
			return step("dedupe", func(d *prep.DataFrame) (*prep.DataFrame, error) {
				return prep.RemoveDuplicates(d, splitList(opts.subset)...)
			})
		})
	}
	if opts.redundant {
		steps = append(steps, func() error {
			return step("redundant", func(d *prep.DataFrame) (*prep.DataFrame, error) {
				return prep.RemoveRedundantFeatures(d, cfg.CorrelationThreshold)
			})
		})
	}
	if opts.normalize {
		steps = append(steps, func() error {
			return step("normalize", func(d *prep.DataFrame) (*prep.DataFrame, error) {
				return prep.NormalizeData(d, prep.NormalizeMethod(strings.ToLower(cfg.NormalizeMethod)))
			})
		})
	}

	for _, s := range steps {
		if err := s(); err != nil {
			current.Release()
			return nil, err
		}
	}
	return current, nil
}

func writeOutput(df *prep.DataFrame, opts options, stdout io.Writer) error {
	format := opts.format
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.output)) {
		case ".json":
			format = "json"
		case ".jsonl", ".ndjson":
			format = "jsonl"
		default:
			format = "csv"
		}
	}

	w := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", opts.output, err)
		}
		defer f.Close()
		w = f
	}

	switch strings.ToLower(format) {
	case "csv":
		return prep.WriteCSV(w, df)
	case "json":
		return prep.WriteJSON(w, df, false)
	case "jsonl":
		return prep.WriteJSON(w, df, true)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
