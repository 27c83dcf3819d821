package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/constants"
	"github.com/kapu/name-bender-go/internal/domain"
	"github.com/kapu/name-bender-go/internal/service/availability"
	"github.com/kapu/name-bender-go/internal/util"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	availableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	takenStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type options struct {
	tlds      []string
	batchSize int
	dohURL    string
	logLevel  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "checkall <name>",
		Short: "Check a name across every known TLD",
		Long: `Sweep one name across the TLD universe in batches and print which
domains are free. The name is normalized first ("Bottom Up" checks bottomup).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.tlds, "tlds", nil, "comma-separated TLDs to check instead of the full universe")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", constants.SweepConfig.BatchSize, "checks per batch")
	cmd.Flags().StringVar(&opts.dohURL, "doh-url", constants.APIConfig.DoHBaseURL, "DNS-over-HTTPS JSON endpoint")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	return cmd
}

func run(ctx context.Context, out io.Writer, rawName string, opts *options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	name := util.NormalizeName(rawName)
	if name == "" {
		return fmt.Errorf("name %q is empty after normalization", rawName)
	}

	logger, err := util.NewLogger(opts.logLevel, "console", "")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	tlds, err := parseTLDs(opts.tlds)
	if err != nil {
		return err
	}

	sweeper := availability.NewSweeper(availability.NewDoHOracle(opts.dohURL, logger), tlds, opts.batchSize, nil, logger)

	total := len(tlds)
	if total == 0 {
		total = len(domain.AllTLDs())
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][bold]Checking %s...[reset]", name)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(out)
		}),
	)

	result := sweeper.Run(ctx, name, func(p domain.SweepProgress) {
		if setErr := bar.Set(p.Checked); setErr != nil {
			logger.Debug("Failed to update progress bar", zap.Error(setErr))
		}
	})
	if result.Cancelled {
		_, _ = fmt.Fprintln(out)
		return fmt.Errorf("sweep interrupted after %d of %d checks", sweeper.State().Checked, total)
	}

	printResult(out, result)
	return nil
}

func parseTLDs(raw []string) ([]string, error) {
	tlds := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, ".") {
			t = "." + t
		}
		if !domain.IsKnownTLD(t) {
			return nil, fmt.Errorf("unsupported TLD %q", t)
		}
		tlds = append(tlds, t)
	}
	return tlds, nil
}

func printResult(out io.Writer, result domain.SweepResult) {
	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Available (%d of %d)", len(result.Available), result.Total)))
	if len(result.Available) == 0 {
		_, _ = fmt.Fprintln(out, takenStyle.Render("  none"))
	}
	for _, r := range result.Available {
		_, _ = fmt.Fprintln(out, availableStyle.Render("  "+result.Name+r.TLD))
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Taken (%d)", len(result.Taken))))
	parts := make([]string, 0, len(result.Taken))
	for _, r := range result.Taken {
		parts = append(parts, r.TLD)
	}
	if len(parts) > 0 {
		_, _ = fmt.Fprintln(out, takenStyle.Width(72).Render("  "+strings.Join(parts, " ")))
	}
}
