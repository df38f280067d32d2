package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyforge/internal/config"
	"github.com/abhisek/studyforge/internal/store"
)

// globalOptions holds the persistent flags and the configuration loaded
// from them before any subcommand runs.
type globalOptions struct {
	dbPath     string
	configFile string
	learner    string
	debug      bool

	cfg    *config.Config
	logger *slog.Logger
}

// Execute runs the root command.
func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "studyforge",
		Short:         "Spaced repetition and progression engine",
		Long:          "studyforge schedules quiz reviews with SM-2 and tracks XP, levels, daily streaks and topic mastery.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = setupLogger(cmd.ErrOrStderr(), cfg.Log, opts.debug)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dbPath, "db", "", "Path to SQLite database file (overrides "+store.DBPathEnv+" env var)")
	flags.StringVar(&opts.configFile, "config", "", "Config file path (default ./studyforge.yaml or ~/.config/studyforge/studyforge.yaml)")
	flags.StringVar(&opts.learner, "learner", "", "Learner ID (default from config)")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newServeCommand(opts),
		newRegisterCommand(opts),
		newRecordCommand(opts),
		newHintCommand(opts),
		newCompleteCommand(opts),
		newStatsCommand(opts),
		newReviewCommand(opts),
		newDifficultyCommand(opts),
		newLeaderboardCommand(opts),
		newHistoryCommand(opts),
		newResetCommand(opts),
		newVersionCommand(),
	)
	return rootCmd
}

// learnerID returns the --learner flag or the configured default learner.
func (o *globalOptions) learnerID() string {
	if o.learner != "" {
		return o.learner
	}
	return o.cfg.Engine.DefaultLearner
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path (STUDYFORGE_DB or database.path), then the
// default XDG path.
func (o *globalOptions) resolveDBPath() (string, error) {
	if o.dbPath != "" {
		return o.dbPath, store.EnsureDir(o.dbPath)
	}
	if p := o.cfg.Database.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// warnf prints a non-fatal problem to stderr.
func warnf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
}
