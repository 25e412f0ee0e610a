package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/config"
	"github.com/pawsitivecheck/syncconsole/internal/coordinator"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
	"github.com/pawsitivecheck/syncconsole/internal/entrypoint"
)

// SyncCommand runs one sync job in the foreground and prints its notification.
type SyncCommand struct {
	Job     string
	BaseURL string
	Token   string
	Verbose bool

	cfg    *config.Config
	out    io.Writer
	logger *zap.Logger
}

func NewSyncCommand(cfg *config.Config) *SyncCommand {
	return &SyncCommand{cfg: cfg, out: os.Stdout, logger: zap.NewNop()}
}

func (cmd *SyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)

	fs.StringVar(&cmd.Job, "job", "", "Job to run: "+jobNames()+" (required)")
	fs.StringVar(&cmd.BaseURL, "api-url", cmd.cfg.AdminAPI.BaseURL, "Admin API base URL")
	fs.StringVar(&cmd.Token, "token", cmd.cfg.AdminAPI.Token, "Admin API bearer token")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Log progress to stderr")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync -job <name> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Run one synchronization job and wait for it to finish.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s sync -job recalls\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync -job all -api-url https://pawsitivecheck.example\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Job == "" {
		fs.Usage()
		return fmt.Errorf("job is required")
	}
	if _, err := entities.ParseSyncJobID(cmd.Job); err != nil {
		return err
	}
	return nil
}

// Run executes the job. A failed job is reported as an error after its
// notification has been printed.
func (cmd *SyncCommand) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return cmd.run(ctx)
}

func (cmd *SyncCommand) run(ctx context.Context) error {
	job, err := entities.ParseSyncJobID(cmd.Job)
	if err != nil {
		return err
	}

	cfg := *cmd.cfg
	cfg.AdminAPI.BaseURL = cmd.BaseURL
	cfg.AdminAPI.Token = cmd.Token
	cfg.Metrics.Enabled = false

	logger := cmd.logger
	if cmd.Verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}

	core, err := entrypoint.NewCore(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer core.Close(context.Background())

	out, err := core.Coordinators.For(coordinator.GlobalKey).Run(ctx, job, entities.SyncTriggerCLI)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.out, "%s: %s\n", out.Toast.Title, out.Toast.Message)
	for _, detail := range out.Toast.Details {
		fmt.Fprintf(cmd.out, "  - %s\n", detail)
	}
	if out.Result != nil && out.Result.SyncedCount != nil {
		fmt.Fprintf(cmd.out, "Synced: %d\n", *out.Result.SyncedCount)
	}
	fmt.Fprintf(cmd.out, "Duration: %s\n", out.Duration().Round(time.Millisecond))

	if !out.Succeeded() {
		return fmt.Errorf("sync %s failed: %w", job, out.Err)
	}
	return nil
}

func jobNames() string {
	names := make([]string, 0, len(entities.AllSyncJobs))
	for _, id := range entities.AllSyncJobs {
		names = append(names, id.String())
	}
	return strings.Join(names, ", ")
}
