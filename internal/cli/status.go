package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pawsitivecheck/syncconsole/internal/adminapi"
	"github.com/pawsitivecheck/syncconsole/internal/config"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

// StatusCommand prints the upstream sync status snapshot.
type StatusCommand struct {
	BaseURL string
	Token   string
	JSON    bool
	Timeout time.Duration

	out io.Writer
}

func NewStatusCommand(cfg *config.Config) *StatusCommand {
	return &StatusCommand{
		BaseURL: cfg.AdminAPI.BaseURL,
		Token:   cfg.AdminAPI.Token,
		Timeout: cfg.AdminAPI.RequestTimeout,
		out:     os.Stdout,
	}
}

func (cmd *StatusCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)

	fs.StringVar(&cmd.BaseURL, "api-url", cmd.BaseURL, "Admin API base URL")
	fs.StringVar(&cmd.Token, "token", cmd.Token, "Admin API bearer token")
	fs.BoolVar(&cmd.JSON, "json", false, "Print the raw JSON snapshot")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s status [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show record counts and last sync times reported by the admin API.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *StatusCommand) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return cmd.run(ctx)
}

func (cmd *StatusCommand) run(ctx context.Context) error {
	client := adminapi.NewClient(cmd.BaseURL,
		adminapi.WithToken(cmd.Token),
		adminapi.WithStatusTimeout(cmd.Timeout),
	)

	status, err := client.Status(ctx)
	if err != nil {
		return err
	}

	if cmd.JSON {
		enc := json.NewEncoder(cmd.out)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	w := tabwriter.NewWriter(cmd.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tCOUNT\tLAST SYNC")
	printCategory(w, "products", status.Database.Products)
	printCategory(w, "recalls", status.Database.Recalls)
	printCategory(w, "ingredients", status.Database.Ingredients)
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "\nHealth: %s (checked %s)\n", status.Health, status.LastChecked)
	return nil
}

func printCategory(w io.Writer, name string, c entities.CategoryStatus) {
	last := "never"
	if c.LastSync != nil {
		last = *c.LastSync
	}
	fmt.Fprintf(w, "%s\t%d\t%s\n", name, c.Count, last)
}
