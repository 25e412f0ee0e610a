package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/config"
	"github.com/pawsitivecheck/syncconsole/internal/database"
	"github.com/pawsitivecheck/syncconsole/internal/database/syncruns"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

// HistoryCommand prints recently settled runs.
type HistoryCommand struct {
	Job          string
	Limit        int
	DatabasePath string

	out io.Writer
}

func NewHistoryCommand(cfg *config.Config) *HistoryCommand {
	return &HistoryCommand{DatabasePath: cfg.Database.Path, out: os.Stdout}
}

func (cmd *HistoryCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)

	fs.StringVar(&cmd.Job, "job", "", "Only show runs of this job")
	fs.IntVar(&cmd.Limit, "limit", 20, "Number of runs to show")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the database file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Job != "" {
		if _, err := entities.ParseSyncJobID(cmd.Job); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *HistoryCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath, zap.NewNop())
	if err != nil {
		return err
	}
	defer db.Close()

	filter := syncruns.Filter{Job: entities.SyncJobID(cmd.Job), Limit: cmd.Limit}
	runs, total, err := syncruns.NewRepository(db.DB).List(context.Background(), filter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FINISHED\tJOB\tTRIGGER\tSTATUS\tDURATION\tMESSAGE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			run.FinishedAt.Local().Format(time.DateTime),
			run.Job,
			run.Trigger,
			run.Status,
			(time.Duration(run.DurationMs) * time.Millisecond).String(),
			run.Message)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "\n%d of %d runs\n", len(runs), total)
	return nil
}
