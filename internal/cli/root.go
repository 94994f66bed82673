package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/gratitude-api/internal/submission"
	"github.com/noah-isme/gratitude-api/pkg/config"
	"github.com/noah-isme/gratitude-api/pkg/logger"
)

type submitter interface {
	Submit(ctx context.Context, input map[string]interface{}) (*submission.Result, error)
}

// app carries state shared by subcommands. client is built lazily from
// config unless already set.
type app struct {
	primary   string
	secondary string
	timeout   time.Duration

	client submitter
	logger *zap.Logger
}

// NewRootCommand builds the lettersctl command tree.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(&app{}, version)
}

func newRootCommand(a *app, version string) *cobra.Command {
	root := &cobra.Command{
		Use:               "lettersctl",
		Short:             "Submit thank-you letters to the gratitude API",
		Version:           version,
		PersistentPreRunE: a.prepare,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	root.PersistentFlags().StringVar(&a.primary, "primary", "", "Primary letters endpoint (default SUBMIT_PRIMARY_URL)")
	root.PersistentFlags().StringVar(&a.secondary, "secondary", "", "Secondary letters endpoint (default SUBMIT_SECONDARY_URL)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "Per-attempt timeout (default SUBMIT_TIMEOUT)")

	root.AddCommand(newSubmitCommand(a))
	root.AddCommand(newCompareCommand())
	return root
}

func (a *app) prepare(cmd *cobra.Command, args []string) error {
	if a.client != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.primary != "" {
		cfg.Submission.PrimaryURL = a.primary
	}
	if a.secondary != "" {
		cfg.Submission.SecondaryURL = a.secondary
	}
	if a.timeout > 0 {
		cfg.Submission.Timeout = a.timeout
	}

	log, err := logger.NewCLI(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.logger = log
	a.client = submission.NewClient(cfg.Submission, submission.WithLogger(log))
	return nil
}

// Execute runs lettersctl with os.Args. SIGINT and SIGTERM cancel the
// command context so bulk runs stop and report what was sent.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCommand(a, version).ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
