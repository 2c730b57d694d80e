package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bit2swaz/cache-janitor/internal/janitor"
	"github.com/bit2swaz/cache-janitor/internal/logging"
)

func newSweepCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a single cleanup pass over the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			logger, closeLog := logging.Open(cfg.Log, cmd.ErrOrStderr())
			defer func() {
				if err := closeLog(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", prefix(), warnStyle.Sprint(err))
				}
			}()

			j, err := newJanitor(cfg, logger)
			if err != nil {
				return err
			}

			report, err := j.Run(cmd.Context())
			if err != nil {
				logger.WithError(err).WithField("cache_dir", cfg.CacheDir).Error("Cache cleanup pass aborted")
				logFailure(cmd.ErrOrStderr(), "PASS FAILED.", err)
				if errors.Is(err, janitor.ErrDirectoryUnavailable) {
					return newExitError(exitUnavailable, err)
				}
				return newExitError(exitFailure, err)
			}

			logPassReport(cmd.OutOrStdout(), cfg.CacheDir, report, cfg.DryRun)
			return nil
		},
	}
	return cmd
}
