// Package main provides the CLI entrypoint for splits.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/splits/internal/clock"
	"github.com/verte-zerg/splits/internal/config"
	"github.com/verte-zerg/splits/internal/model"
	"github.com/verte-zerg/splits/internal/stats"
	"github.com/verte-zerg/splits/internal/statsui"
	"github.com/verte-zerg/splits/internal/store"
	"github.com/verte-zerg/splits/internal/timefmt"
	"github.com/verte-zerg/splits/internal/tracker"
	"github.com/verte-zerg/splits/internal/tui"
)

const (
	defaultIntervalMs    = 10
	defaultHistoryWindow = 5
	watchIntervalMs      = 250
)

var (
	dbPath     string
	intervalMs int

	resetHard bool
	initForce bool

	historyLast   int
	historyWindow int

	exportFormat string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "splits",
		Short:         "Terminal split timer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTimerCmd,
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "path to the SQLite database")
	rootCmd.Flags().IntVar(&intervalMs, "interval-ms", defaultIntervalMs, "timer refresh interval in milliseconds")

	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newSaveCmd())
	rootCmd.AddCommand(newDiscardCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newSegmentCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// session bundles what a command needs to run tracker operations.
type session struct {
	store   *store.Store
	tracker *tracker.Tracker
	config  config.FileConfig
}

func (s *session) close() {
	if cerr := s.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func openSession(cmd *cobra.Command) (*session, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Store.Path)
	seed, err := fileCfg.Seed()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return &session{
		store:   st,
		tracker: tracker.New(st, clock.System{}, seed),
		config:  fileCfg,
	}, nil
}

func runTimerCmd(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	interval := msDuration(intervalMs)
	if !cmd.Flags().Changed("interval-ms") {
		fileInterval, err := s.config.Interval()
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if fileInterval > 0 {
			interval = fileInterval
		}
	}
	if interval <= 0 {
		return fmt.Errorf("--interval-ms must be > 0")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sampler := clock.NewSampler(clock.System{}, interval)
	defer sampler.Stop()
	updates := s.store.Watch(ctx, tracker.KeyStack, msDuration(watchIntervalMs))

	m, err := tui.NewModel(ctx, s.tracker, sampler, updates)
	if err != nil {
		return fmt.Errorf("failed to load stack: %w", err)
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current attempt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			stack, err := s.tracker.Stack(cmd.Context())
			if err != nil {
				return err
			}
			if err := printStatus(cmd, stack, s.tracker.Now()); err != nil {
				return err
			}
			if !model.IsRunningStack(stack) {
				return nil
			}
			last, ok, err := s.tracker.LastAdvance(cmd.Context())
			if err != nil || !ok {
				return err
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Last split at %s\n", timefmt.FormatClock(last)); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}
}

func printStatus(cmd *cobra.Command, stack model.Stack, now int64) error {
	if model.IsEmptyStack(stack) {
		logErrln("No segments configured. Run: splits init, or: splits segment add <name>")
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "State: %s  Elapsed: %s\n", stack.State(), timefmt.Format(stats.AttemptElapsed(stack, now))); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSplitTable(out, stack, now); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	h := model.HistoryOf(stack)
	parts := []string{
		"PB " + timefmt.Optional(h.PersonalBest),
		fmt.Sprintf("Attempts %d", h.Attempts),
		"SoB " + timefmt.Format(stats.TheoreticalBest(stack)),
	}
	if h.Attempts > 0 {
		parts = append(parts, "AVG "+timefmt.Format(stats.RoundMs(h.Average)))
	}
	if eta, ok := stats.ProjectedFinish(stack, now); ok {
		parts = append(parts, "ETA "+timefmt.FormatClock(eta))
	}
	if running, ok := stack.(model.RunningStack); ok {
		if pace, ok := stats.EstimatedPace(running, now); ok {
			parts = append(parts, "Pace "+timefmt.Format(pace))
		}
	}
	if _, err := fmt.Fprintln(out, strings.Join(parts, "  ")); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// stackCmd builds a command that runs one tracker operation and prints the
// resulting stack.
func stackCmd(use, short string, op func(context.Context, *tracker.Tracker) (model.Stack, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			stack, err := op(cmd.Context(), s.tracker)
			if err != nil {
				return err
			}
			return printStatus(cmd, stack, s.tracker.Now())
		},
	}
}

func newNextCmd() *cobra.Command {
	return stackCmd("next", "Start, split or finish the attempt", func(ctx context.Context, t *tracker.Tracker) (model.Stack, error) {
		return t.Advance(ctx)
	})
}

func newResetCmd() *cobra.Command {
	cmd := stackCmd("reset", "Return every segment to the queue", func(ctx context.Context, t *tracker.Tracker) (model.Stack, error) {
		if resetHard {
			return t.FullReset(ctx)
		}
		return t.Reset(ctx)
	})
	cmd.Flags().BoolVar(&resetHard, "hard", false, "also forget segment personal bests")
	return cmd
}

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Record the completed attempt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			stack, attempt, err := s.tracker.Save(cmd.Context())
			if err != nil {
				return err
			}
			h := model.HistoryOf(stack)
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Saved attempt #%d: %s (PB %s, average %s over %d)\n",
				attempt.ID, timefmt.Format(attempt.TotalMs), timefmt.Optional(h.PersonalBest),
				timefmt.Format(stats.RoundMs(h.Average)), h.Attempts); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}
}

func newDiscardCmd() *cobra.Command {
	return stackCmd("discard", "Drop the completed attempt without recording it", func(ctx context.Context, t *tracker.Tracker) (model.Stack, error) {
		return t.Discard(ctx)
	})
}

func newClearCmd() *cobra.Command {
	return stackCmd("clear", "Remove every segment and all history", func(ctx context.Context, t *tracker.Tracker) (model.Stack, error) {
		return t.Clear(ctx)
	})
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config and seed the stack from it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.DefaultConfigPath()
			created, err := ensureConfigFile(path, initForce)
			if err != nil {
				return err
			}
			if created {
				logErrf("Wrote %s\n", path)
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			stack, err := s.tracker.Reseed(cmd.Context())
			if err != nil {
				return err
			}
			return printStatus(cmd, stack, s.tracker.Now())
		},
	}
	cmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Summarize saved attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			report, err := stats.BuildReport(cmd.Context(), s.store, model.HistoryConfig{Last: historyLast, Window: historyWindow})
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}
			out := cmd.OutOrStdout()
			if err := stats.RenderSummary(out, report); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			if len(report.Attempts) == 0 {
				return nil
			}
			if _, err := fmt.Fprintln(out); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			if err := stats.PlotTotals(out, "Attempt totals", report.Totals, report.Trend, 0, 0, stats.ShouldUseColor(out)); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			if _, err := fmt.Fprintln(out); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			if err := stats.RenderSegmentTable(out, report); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			if weak := stats.WeakestSegments(report.Segments, 3); len(weak) > 0 {
				if _, err := fmt.Fprintf(out, "\nMost time lost: %s\n", strings.Join(weak, ", ")); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window")
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse saved attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			m := statsui.NewModel(s.store, model.HistoryConfig{Last: historyLast, Window: historyWindow})
			program := tea.NewProgram(m, tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("failed to run stats TUI: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the stored stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			stack, err := s.tracker.Stack(cmd.Context())
			if err != nil {
				return err
			}
			data, err := encodeStack(stack, exportFormat)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&exportFormat, "format", "json", "output format (json or yaml)")
	return cmd
}

func encodeStack(stack model.Stack, format string) ([]byte, error) {
	record := model.ToRecord(stack)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(record)
	default:
		return nil, fmt.Errorf("unknown --format %q (want json or yaml)", format)
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if _, err := ensureConfigFile(path, false); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the starter config when path is missing or force
// is set. It reports whether it wrote the file.
func ensureConfigFile(path string, force bool) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		} else if !os.IsNotExist(err) {
			return false, fmt.Errorf("failed to stat config: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
