// Package main provides the CLI entrypoint for recitar.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/recitar-dev/recitar/internal/config"
	"github.com/recitar-dev/recitar/internal/constant"
	"github.com/recitar-dev/recitar/internal/historyui"
	"github.com/recitar-dev/recitar/internal/model"
	"github.com/recitar-dev/recitar/internal/recognizer"
	"github.com/recitar-dev/recitar/internal/session"
	"github.com/recitar-dev/recitar/internal/stats"
	"github.com/recitar-dev/recitar/internal/store"
	"github.com/recitar-dev/recitar/internal/tui"
)

const (
	defaultConstant       = "pi"
	defaultPauseThreshold = 2.0
	defaultWrongLimit     = 10
	defaultCurveWindow    = 20
)

var (
	drillConstant       string
	drillPauseThreshold float64
	drillWrongLimit     int
	drillFrom           string

	historyConstant string

	statsConstant    string
	statsLast        int
	statsCurveWindow int
	statsWeakWindow  int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "recitar",
		Short:         "TUI trainer for reciting digits of mathematical constants",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDrillCmd,
	}

	rootCmd.Flags().StringVar(&drillConstant, "constant", defaultConstant, "constant to drill (pi, phi, e)")
	rootCmd.Flags().Float64Var(&drillPauseThreshold, "pause-threshold", defaultPauseThreshold, "seconds of silence counted as a pause")
	rootCmd.Flags().IntVar(&drillWrongLimit, "wrong-limit", defaultWrongLimit, "wrong digits before the session auto-ends")
	rootCmd.Flags().StringVar(&drillFrom, "from", "", "read digits from a file or '-' for stdin (e.g. piped speech-to-text output)")

	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConstantsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runDrillCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "constant", &drillConstant, fileCfg.Drill.Constant)
	applyFloatConfig(cmd, "pause-threshold", &drillPauseThreshold, fileCfg.Drill.PauseThreshold)
	applyIntConfig(cmd, "wrong-limit", &drillWrongLimit, fileCfg.Drill.WrongLimit)

	cfg := model.DrillConfig{
		Constant:       drillConstant,
		PauseThreshold: time.Duration(drillPauseThreshold * float64(time.Second)),
		WrongLimit:     drillWrongLimit,
	}
	if err := validateDrillConfig(cfg); err != nil {
		return err
	}

	seq, err := constant.Lookup(cfg.Constant)
	if err != nil {
		return err
	}
	cfg.Constant = seq.Code()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctrl := session.New(seq, cfg, st)
	drillModel := tui.NewModel(cfg, ctrl, st)
	program := tea.NewProgram(drillModel, tea.WithAltScreen())

	if drillFrom != "" {
		stream, cancel, err := startDigitSource(drillFrom)
		if err != nil {
			return err
		}
		defer cancel()
		go func() {
			for ev := range stream.Events() {
				program.Send(tui.DigitMsg{Symbol: ev.Symbol, At: ev.At})
			}
		}()
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// startDigitSource wires an external digit feed into a stream. The
// returned cancel stops the reader and tears the stream down so late
// events are dropped rather than delivered.
func startDigitSource(from string) (*recognizer.Stream, func(), error) {
	var reader *os.File
	if from == "-" {
		reader = os.Stdin
	} else {
		f, err := os.Open(from)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open digit source: %w", err)
		}
		reader = f
	}

	stream := recognizer.NewStream(64)
	ctx, cancelCtx := context.WithCancel(context.Background())
	src := recognizer.NewReaderSource(reader)
	go func() {
		if err := src.Run(ctx, stream); err != nil && ctx.Err() == nil {
			logErrf("digit source stopped: %v\n", err)
		}
		stream.Stop()
	}()
	cancel := func() {
		stream.Stop()
		cancelCtx()
		if reader != os.Stdin {
			if cerr := reader.Close(); cerr != nil {
				// Best-effort close.
				_ = cerr
			}
		}
	}
	return stream, cancel, nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse saved sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyConstant, "constant", "", "constant filter (default: all)")
	return cmd
}

func runHistoryCmd(_ *cobra.Command, _ []string) error {
	if historyConstant != "" {
		seq, err := constant.Lookup(historyConstant)
		if err != nil {
			return err
		}
		historyConstant = seq.Code()
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	program := tea.NewProgram(historyui.NewModel(st, historyConstant), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsConstant, "constant", "", "constant filter (default: all)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsWeakWindow, "weak-window", 0, "sessions to aggregate for weak digits (default: all listed)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsConstant != "" {
		seq, err := constant.Lookup(statsConstant)
		if err != nil {
			return err
		}
		statsConstant = seq.Code()
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	cfg := model.StatsConfig{
		Constant:    statsConstant,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		WeakWindow:  statsWeakWindow,
	}
	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Sessions); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if err := stats.RenderCurves(out, report.Sessions, cfg.CurveWindow, 0); err != nil {
		return fmt.Errorf("failed to render curves: %w", err)
	}
	if err := stats.RenderWeakDigits(out, report.WeakDigits); err != nil {
		return fmt.Errorf("failed to render weak digits: %w", err)
	}
	return nil
}

func newConstantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "constants",
		Short: "List available constants",
		Args:  cobra.NoArgs,
		RunE:  runConstantsCmd,
	}
}

func runConstantsCmd(cmd *cobra.Command, _ []string) error {
	for _, code := range constant.Codes() {
		seq, err := constant.Lookup(code)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-4s %s  (%d digits)\n", code, seq.Glyph(), seq.Len()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
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
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
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

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# recitar configuration
# Uncomment a value to enable it. CLI flags override config values.

[drill]
# constant = %q          # Constant to drill (pi, phi, e)
# pause-threshold = %.1f # Seconds of silence counted as a pause
# wrong-limit = %d       # Wrong digits before the session auto-ends
`,
		defaultConstant,
		defaultPauseThreshold,
		defaultWrongLimit,
	)
}

func validateDrillConfig(cfg model.DrillConfig) error {
	if cfg.PauseThreshold <= 0 {
		return fmt.Errorf("--pause-threshold must be > 0")
	}
	if cfg.WrongLimit <= 0 {
		return fmt.Errorf("--wrong-limit must be > 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
