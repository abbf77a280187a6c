// Command m2perf summarizes a CPU pipeline trace log.
//
// Usage:
//
//	go run ./cmd/m2perf [flags] <logfile>
//
// Flags:
//
//	-clock    Clock frequency in GHz (default: 1.0)
//	-config   Path to an analyzer configuration JSON file
//	-v        Verbose output (debug logging to stderr)
//
// Example:
//
//	# Report a trace captured at 3.5 GHz
//	go run ./cmd/m2perf pipeline.log --clock 3.5
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/m2perf/config"
	"github.com/sarchlab/m2perf/metrics"
	"github.com/sarchlab/m2perf/report"
	"github.com/sarchlab/m2perf/trace"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	clock      float64
	clockSet   bool
	configPath string
	verbose    bool
	logPath    string
}

// parseArgs accepts flags both before and after the positional log path.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("m2perf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Float64Var(&opts.clock, "clock", config.DefaultClockGHz, "Clock frequency in GHz")
	fs.StringVar(&opts.configPath, "config", "", "Path to analyzer configuration JSON file")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: m2perf [options] <logfile>\n")
		_, _ = fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "clock" {
			opts.clockSet = true
		}
	})

	switch len(positional) {
	case 0:
		fs.Usage()
		return nil, errors.New("missing log file argument")
	case 1:
		opts.logPath = positional[0]
	default:
		fs.Usage()
		return nil, fmt.Errorf("unexpected arguments: %v", positional[1:])
	}

	return opts, nil
}

func newLogger(stderr io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: time.RFC3339Nano,
		FullTimestamp:   true,
	})

	if verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.Debug("Debug logging is enabled")
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	return logger
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if opts.clockSet || opts.configPath == "" {
		cfg.ClockGHz = opts.clock
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger := newLogger(stderr, opts.verbose)

	cfg, err := loadConfig(opts)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	parserOpts := []trace.ParserOption{}
	if opts.verbose {
		parserOpts = append(parserOpts, trace.WithLogger(logger))
	}

	agg, err := trace.ParseFile(opts.logPath, parserOpts...)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error reading trace: %v\n", err)
		return 1
	}

	logger.WithFields(logrus.Fields{
		"path":    opts.logPath,
		"lines":   agg.Lines,
		"ignored": agg.Ignored,
		"clock":   cfg.ClockGHz,
	}).Debug("Parsed trace")

	m, err := metrics.Compute(agg, cfg.Clock())
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error computing metrics: %v\n", err)
		return 1
	}

	if err := report.NewRenderer(stdout).Render(agg, m); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error writing report: %v\n", err)
		return 1
	}

	return 0
}
