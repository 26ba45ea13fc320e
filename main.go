package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wildfunctions/derivada/pkg/engine"
	"github.com/wildfunctions/derivada/pkg/journal"
	"github.com/wildfunctions/derivada/pkg/telemetry"
)

// version is stamped into trace resources.
var version = "dev"

// errFailed is returned when at least one derivation failed; the details
// have already been written to stdout.
var errFailed = errors.New("derivation failed")

var (
	configPath string
	cfg        = engine.DefaultConfig()
	logger     *slog.Logger

	shutdownTracing = func(context.Context) error { return nil }

	rootCmd = &cobra.Command{
		Use:           "derivada",
		Short:         "Symbolic derivatives by rule rewriting",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			return initTracing(cmd.Context())
		},
	}

	deriveCmd = &cobra.Command{
		Use:     "derive <expression>",
		Short:   "Differentiate one expression",
		Example: "  derivada derive 'sen(x^2)'\n  derivada derive --var t 'ln(t)' --format json",
		Args:    cobra.ExactArgs(1),
		RunE:    runDerive,
	}

	batchCmd = &cobra.Command{
		Use:   "batch [file]",
		Short: "Differentiate one expression per line (\"expr\" or \"expr ; var\"), from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBatch,
	}

	replCmd = &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive query loop",
		RunE:  runREPL,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE:  runServe,
	}

	rulesCmd = &cobra.Command{
		Use:   "rules",
		Short: "List the derivative rules",
		RunE:  runRules,
	}

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show recent derivations from the journal",
		RunE:  runHistory,
	}

	historyLimit int
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file")
	pf.StringVar(&cfg.Variable, "var", cfg.Variable, "differentiation variable")
	pf.StringVar(&cfg.Format, "format", cfg.Format, "output format ("+strings.Join(engine.Formats(), ", ")+")")
	pf.IntVar(&cfg.MaxDepth, "maxdepth", cfg.MaxDepth, "max input tree depth (0 = unlimited)")
	pf.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of parallel workers")
	pf.BoolVar(&cfg.Trace, "trace", cfg.Trace, "log every rule that fires (needs --log-level debug)")
	pf.StringVar(&cfg.Journal, "journal", cfg.Journal, "journal file for derivation history")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&cfg.TraceExporter, "trace-exporter", cfg.TraceExporter, "OpenTelemetry span exporter (none, stdout, otlp)")
	pf.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "OTLP gRPC endpoint")

	serveCmd.Flags().StringVar(&cfg.Listen, "listen", cfg.Listen, "HTTP listen address")
	serveCmd.Flags().Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "API requests per second (0 = unlimited)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of entries to show (0 = all)")

	rootCmd.AddCommand(deriveCmd, batchCmd, replCmd, serveCmd, rulesCmd, historyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if serr := shutdownTracing(context.Background()); serr != nil {
		fmt.Fprintf(os.Stderr, "warning: flushing spans: %v\n", serr)
	}
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// loadConfig applies the config file, if any, underneath flags given on the
// command line, then sets up logging.
func loadConfig(cmd *cobra.Command) error {
	if configPath != "" {
		fileCfg, err := engine.LoadConfig(configPath)
		if err != nil {
			return err
		}
		overrideFromFlags(cmd, &fileCfg)
		cfg = fileCfg
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := engine.ParseLevel(cfg.LogLevel)
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func overrideFromFlags(cmd *cobra.Command, dst *engine.Config) {
	flags := cmd.Flags()
	if flags.Changed("var") {
		dst.Variable = cfg.Variable
	}
	if flags.Changed("format") {
		dst.Format = cfg.Format
	}
	if flags.Changed("maxdepth") {
		dst.MaxDepth = cfg.MaxDepth
	}
	if flags.Changed("workers") {
		dst.Workers = cfg.Workers
	}
	if flags.Changed("trace") {
		dst.Trace = cfg.Trace
	}
	if flags.Changed("journal") {
		dst.Journal = cfg.Journal
	}
	if flags.Changed("log-level") {
		dst.LogLevel = cfg.LogLevel
	}
	if flags.Changed("listen") {
		dst.Listen = cfg.Listen
	}
	if flags.Changed("rate-limit") {
		dst.RateLimit = cfg.RateLimit
	}
	if flags.Changed("trace-exporter") {
		dst.TraceExporter = cfg.TraceExporter
	}
	if flags.Changed("otlp-endpoint") {
		dst.OTLPEndpoint = cfg.OTLPEndpoint
	}
}

// initTracing installs the span exporter. Stdout spans go to stderr so they
// never mix with command output.
func initTracing(ctx context.Context) error {
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "derivada",
		Version:     version,
		Exporter:    cfg.TraceExporter,
		Endpoint:    cfg.OTLPEndpoint,
		Writer:      os.Stderr,
	})
	if err != nil {
		return err
	}
	shutdownTracing = shutdown
	return nil
}

// newEngine builds the engine and, when configured, opens the journal. The
// returned cleanup func closes the journal.
func newEngine() (*engine.Engine, *journal.Journal, func(), error) {
	e, err := engine.New(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Journal == "" {
		return e, nil, func() {}, nil
	}
	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return nil, nil, nil, err
	}
	e.WithRecorder(j)
	return e, j, func() {
		if err := j.Close(); err != nil {
			logger.Warn("failed to close journal", slog.String("error", err.Error()))
		}
	}, nil
}

func runDerive(cmd *cobra.Command, args []string) error {
	e, _, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	res := e.Derive(cmd.Context(), engine.Request{Input: args[0]})
	report := engine.Summarize([]engine.Result{res})
	if err := engine.Write(cmd.OutOrStdout(), cfg.Format, report); err != nil {
		return err
	}
	if !res.OK() {
		return errFailed
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	reqs, err := readBatch(in)
	if err != nil {
		return err
	}

	e, _, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("running batch", slog.Int("requests", len(reqs)), slog.Int("workers", cfg.Workers))
	report := engine.Summarize(e.DeriveBatch(cmd.Context(), reqs))
	if err := engine.Write(cmd.OutOrStdout(), cfg.Format, report); err != nil {
		return err
	}
	if report.Failed > 0 {
		return errFailed
	}
	return nil
}

// readBatch reads one request per line. Blank lines and lines starting with
// '%' are skipped. "expr ; var" overrides the variable for that line.
func readBatch(r io.Reader) ([]engine.Request, error) {
	var reqs []engine.Request
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		req := engine.Request{Input: line}
		if i := strings.LastIndex(line, ";"); i >= 0 {
			req.Input = strings.TrimSpace(line[:i])
			req.Variable = strings.TrimSpace(line[i+1:])
		}
		reqs = append(reqs, req)
	}
	return reqs, sc.Err()
}

func runRules(cmd *cobra.Command, args []string) error {
	writeRules(cmd.OutOrStdout())
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.Journal == "" {
		return errors.New("no journal configured (use --journal or the journal config key)")
	}
	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(historyLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, e := range entries {
		status := e.Output
		if e.Error != "" {
			status = "no (" + e.Error + ")"
		}
		fmt.Fprintf(out, "%s  %s  d/d%s %s = %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.ID, e.Variable, e.Input, status)
	}
	return nil
}
