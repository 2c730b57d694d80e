package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bit2swaz/cache-janitor/internal/config"
	"github.com/bit2swaz/cache-janitor/internal/janitor"
)

type rootOptions struct {
	v          *viper.Viper
	configPath string
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{v: config.New()}

	root := &cobra.Command{
		Use:           "cache-janitor",
		Short:         "Remove expired and abandoned entries from a result cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ./janitor.yaml or /etc/cache-janitor/janitor.yaml)")
	flags.String("cache-dir", "", "cache directory to clean")
	flags.String("service-config", "", "web service JSON config; the cache is <result_store>/browse-cache")
	flags.String("working-suffix", janitor.DefaultWorkingSuffix, "name suffix of in-progress writes")
	flags.Duration("expire-after", janitor.DefaultExpireAfter, "remove entries not accessed for this long")
	flags.Duration("empty-grace", janitor.DefaultEmptyGrace, "remove empty working files older than this")
	flags.Duration("unfinished-grace", janitor.DefaultUnfinishedGrace, "remove non-empty working files older than this")
	flags.StringSlice("exclude", nil, "glob patterns of names to leave alone")
	flags.Bool("dry-run", false, "log decisions without removing anything")
	flags.String("log-file", "", "append the audit log to this file instead of stderr")
	flags.String("log-format", "json", "log format: json or text")
	flags.String("log-level", "info", "log level")

	bindFlags(opts.v, flags, map[string]string{
		"cache_dir":        "cache-dir",
		"service_config":   "service-config",
		"working_suffix":   "working-suffix",
		"expire_after":     "expire-after",
		"empty_grace":      "empty-grace",
		"unfinished_grace": "unfinished-grace",
		"exclude":          "exclude",
		"dry_run":          "dry-run",
		"log.file":         "log-file",
		"log.format":       "log-format",
		"log.level":        "log-level",
	})

	root.AddCommand(newSweepCommand(opts))
	root.AddCommand(newWatchCommand(opts))
	root.AddCommand(newPlanCommand(opts))

	return root
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		// BindPFlag only fails for an unknown flag name.
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.v, o.configPath)
	if err != nil {
		logFailure(cmd.ErrOrStderr(), "CONFIG ERROR.", err)
		return nil, newExitError(exitFailure, err)
	}
	return cfg, nil
}

func newJanitor(cfg *config.Config, logger logrus.FieldLogger) (*janitor.Janitor, error) {
	return janitor.New(janitor.Options{
		Dir:           cfg.CacheDir,
		Thresholds:    cfg.Thresholds(),
		WorkingSuffix: cfg.WorkingSuffix,
		Exclude:       cfg.Exclude,
		DryRun:        cfg.DryRun,
		Logger:        logger,
	})
}
