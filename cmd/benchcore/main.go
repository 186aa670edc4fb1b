// benchcore is the agent benchmarking and risk analytics engine for the
// MoltApp trading marketplace. The simulate command runs synthetic
// rounds through every engine; serve exposes the ops surface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/moltapp/benchcore/internal/config"
	opshttp "github.com/moltapp/benchcore/internal/interfaces/http"
	"github.com/moltapp/benchcore/internal/metrics"
	"github.com/moltapp/benchcore/internal/sim"
)

const (
	appName = "benchcore"
	version = "v1.4.0"
)

var (
	configPath string
	logLevel   = levelFlag(zerolog.InfoLevel)
)

// levelFlag lets pflag parse zerolog levels directly.
type levelFlag zerolog.Level

func (l *levelFlag) String() string { return zerolog.Level(*l).String() }
func (l *levelFlag) Type() string   { return "level" }
func (l *levelFlag) Set(v string) error {
	parsed, err := zerolog.ParseLevel(v)
	if err != nil {
		return fmt.Errorf("unknown log level %q", v)
	}
	*l = levelFlag(parsed)
	return nil
}

var _ pflag.Value = (*levelFlag)(nil)

func main() {
	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Agent benchmarking and risk analytics engine",
		Version: version,
		Long: `benchcore reduces MoltApp trading rounds into consensus and quality
analytics, rates agents with ELO and Glicko-2, extracts and resolves
trade impact forecasts, analyzes portfolio risk, and watches the
benchmark itself for regressions.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogging()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to benchcore.yaml (defaults apply when empty)")
	rootCmd.PersistentFlags().Var(&logLevel, "log-level", "Log level (trace|debug|info|warn|error)")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run synthetic benchmark rounds through every engine",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().Int("rounds", 0, "Override configured round count")
	simulateCmd.Flags().Int64("seed", 0, "Override configured random seed")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ops surface (/health, /alerts, /risk/summary, /metrics)",
		RunE:  runServe,
	}
	serveCmd.Flags().String("addr", "", "Override configured listen address")

	rootCmd.AddCommand(simulateCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// setupLogging picks console output on a TTY, JSON otherwise.
func setupLogging() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.Level(logLevel))
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("rounds") {
		cfg.Sim.Rounds, _ = cmd.Flags().GetInt("rounds")
	}
	if cmd.Flags().Changed("seed") {
		cfg.Sim.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	s := sim.New(cfg, reg)

	res, err := s.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	printResult(res)
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if cmd.Flags().Changed("addr") {
		addr, _ = cmd.Flags().GetString("addr")
	}

	reg := metrics.NewRegistry()
	s := sim.New(cfg, reg)

	// Warm the engines so the ops surface has data to show.
	if _, err := s.Run(cmd.Context()); err != nil {
		return fmt.Errorf("warmup simulation: %w", err)
	}
	detector, analyzer := s.Engines()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := opshttp.NewServer(addr, detector, analyzer, reg)
	return server.Run(ctx)
}

func printResult(res *sim.Result) {
	fmt.Printf("\n%s leaderboard after %d rounds\n", appName, res.RoundsRun)
	fmt.Printf("%-4s %-22s %-6s %-8s %-6s %-6s %s\n", "#", "agent", "elo", "avg", "win%", "grade", "trend")
	for _, e := range res.Leaderboard {
		fmt.Printf("%-4d %-22s %-6d %-8.3f %-6.1f %-6s %s\n",
			e.Rank, e.Name, e.Elo, e.AvgComposite, e.WinRate*100, e.Grade, e.Trend)
	}

	fmt.Printf("\nbenchmark health: %s (overall %.2f, %d alerts, coherence %s)\n",
		res.Health.Status, res.Health.Overall, res.Health.AlertCount, res.Health.CoherenceTrend)
	fmt.Printf("risk: %d analyses, avg score %.1f, %d critical\n",
		res.RiskSummary.TotalAnalyses, res.RiskSummary.AvgRiskScore, res.RiskSummary.CriticalAlerts)
	fmt.Printf("forecasts: %d registered, %d agents profiled\n", res.Forecasts, len(res.Profiles))
}
