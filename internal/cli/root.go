package cli

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada-tasks/internal/api"
	"github.com/Makepad-fr/tada-tasks/internal/board"
	"github.com/Makepad-fr/tada-tasks/internal/config"
	"github.com/Makepad-fr/tada-tasks/internal/logging"
	"github.com/Makepad-fr/tada-tasks/internal/model"
	"github.com/Makepad-fr/tada-tasks/internal/tui"
	"github.com/Makepad-fr/tada-tasks/internal/ui"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tada",
		Short: "tada - tasks with due dates, from your terminal",
		Long: `tada is a client for a task service. Without a subcommand it opens an
interactive list where you can add tasks and mark them done.`,
		Args:          usageArgs(cobra.NoArgs),
		RunE:          runInteractive,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default ~/.tada/config.yaml)")
	pf.String("api", "", "task service base URL")
	pf.Duration("timeout", 0, "per-request timeout")
	pf.String("locale", "", "locale for due date labels, e.g. ja-JP")
	pf.String("theme", "", "classic | neon | mono")
	pf.String("log-level", "", "log level")
	pf.String("log-file", "", "write logs to this file")
	pf.Bool("color", false, "force colour output")
	pf.Bool("no-color", false, "disable colour output")

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Open the interactive list",
			Args:  usageArgs(cobra.NoArgs),
			RunE:  runInteractive,
		},
		newListCmd(),
		newAddCmd(),
		newDoneCmd(),
		newServeCmd(),
	)
	return root
}

// env is what every client command needs, built from config and flags.
type env struct {
	cfg    *config.Config
	log    *logrus.Logger
	board  *board.Board
	locale model.Locale
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	force, _ := cmd.Flags().GetBool("color")
	disable, _ := cmd.Flags().GetBool("no-color")
	ui.SetColorForcing(force, disable)
	ui.SetTheme(cfg.Theme)
	return cfg, nil
}

// setup builds the client stack. Logs go to the configured file or nowhere,
// so they never interleave with terminal output.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Output: io.Discard})
	client, err := api.New(cfg.APIURL, api.WithTimeout(cfg.Timeout), api.WithLogger(log))
	if err != nil {
		return nil, usageError{err}
	}
	return &env{
		cfg:    cfg,
		log:    log,
		board:  board.New(client, log),
		locale: model.ParseLocale(cfg.Locale),
	}, nil
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	return tui.Run(cmd.Context(), e.board, tui.Options{
		Locale: e.locale,
		Theme:  ui.Current(),
	})
}
