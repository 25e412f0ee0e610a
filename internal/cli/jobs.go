package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pawsitivecheck/syncconsole/internal/coordinator"
)

// JobsCommand lists the available sync jobs.
type JobsCommand struct {
	out io.Writer
}

func NewJobsCommand() *JobsCommand {
	return &JobsCommand{out: os.Stdout}
}

func (cmd *JobsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("jobs", flag.ContinueOnError)
	return fs.Parse(args)
}

func (cmd *JobsCommand) Run() error {
	w := tabwriter.NewWriter(cmd.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tLABEL\tENDPOINT")
	for _, spec := range coordinator.Specs() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", spec.ID, spec.Label, spec.Endpoint)
	}
	return w.Flush()
}
