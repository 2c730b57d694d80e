package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bit2swaz/cache-janitor/internal/janitor"
	"github.com/bit2swaz/cache-janitor/internal/logging"
)

func newPlanCommand(opts *rootOptions) *cobra.Command {
	var removalsOnly bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what a pass would do without removing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			logger, closeLog := logging.Open(cfg.Log, cmd.ErrOrStderr())
			defer closeLog()

			j, err := newJanitor(cfg, logger)
			if err != nil {
				return err
			}

			decisions, err := j.Plan(cmd.Context())
			if err != nil {
				logFailure(cmd.ErrOrStderr(), "PLAN FAILED.", err)
				if errors.Is(err, janitor.ErrDirectoryUnavailable) {
					return newExitError(exitUnavailable, err)
				}
				return newExitError(exitFailure, err)
			}

			if removalsOnly {
				kept := decisions[:0]
				for _, d := range decisions {
					if d.Disposition.Removes() {
						kept = append(kept, d)
					}
				}
				decisions = kept
			}

			printPlan(cmd.OutOrStdout(), decisions, time.Now())
			return nil
		},
	}

	cmd.Flags().BoolVar(&removalsOnly, "removals", false, "only list entries a pass would remove")
	return cmd
}

func printPlan(out io.Writer, decisions []janitor.Decision, now time.Time) {
	sort.Slice(decisions, func(i, k int) bool {
		return decisions[i].Entry.Name < decisions[k].Entry.Name
	})

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTRY\tKIND\tSIZE\tLAST ACCESS\tAGE\tDISPOSITION")
	for _, d := range decisions {
		e := d.Entry
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s ago\t%s\t%s\n",
			e.Name,
			e.Kind,
			humanSize(e.Size),
			humanDuration(now.Sub(e.LastAccess)),
			humanDuration(now.Sub(e.Created)),
			dispositionStyle(d.Disposition).Sprint(d.Disposition),
		)
	}
	tw.Flush()

	fmt.Fprintf(out, "%s %s\n", prefix(), infoStyle.Sprintf("%d entries", len(decisions)))
}
