package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"MovieCatalog/internal/app"
	"MovieCatalog/internal/config"
	"MovieCatalog/internal/domain"
	"MovieCatalog/internal/logging"
)

const (
	flagNew        = "new"
	flagList       = "list-movies"
	flagUpdateSeen = "update-seen"
	flagChoose     = "choose-movie"
	flagConfig     = "config"
	flagLogLevel   = "log-level"
)

var actionFlags = []string{flagNew, flagList, flagUpdateSeen, flagChoose}

type options struct {
	rebuild    bool
	list       string
	updateSeen string
	choose     string
	configPath string
	logLevel   string
}

// NewRootCommand builds the moviecatalog command. Exactly one action flag is
// expected; anything else prints usage and succeeds.
func NewRootCommand(streams app.Streams) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "moviecatalog (--new | --list-movies STATUS | --update-seen NAME | --choose-movie STATUS)",
		Short:         "moviecatalog keeps a local catalog of popular IMDb movies and helps pick one to watch.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts, streams)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.rebuild, flagNew, false, "Scrape the chart and rebuild the catalog.")
	flags.StringVar(&opts.list, flagList, "", "List movies: all, seen or not-seen.")
	flags.StringVar(&opts.updateSeen, flagUpdateSeen, "", "Mark the named movie as seen today.")
	flags.StringVar(&opts.choose, flagChoose, "", "Pick a random movie to watch from all, seen or not-seen.")
	flags.StringVar(&opts.configPath, flagConfig, "", "Path to a YAML config file.")
	flags.StringVar(&opts.logLevel, flagLogLevel, "", "Log level: debug, info, warn or error.")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintln(c.ErrOrStderr(), err)
		return c.Usage()
	})

	if streams.Out != nil {
		cmd.SetOut(streams.Out)
	}
	if streams.In != nil {
		cmd.SetIn(streams.In)
	}
	return cmd
}

func run(cmd *cobra.Command, args []string, opts *options, streams app.Streams) error {
	actions := 0
	for _, name := range actionFlags {
		if cmd.Flags().Changed(name) {
			actions++
		}
	}
	if actions != 1 || len(args) > 0 {
		return cmd.Usage()
	}

	cfg := config.Load(opts.configPath)
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	application := app.New(cfg, logging.New(cfg.Logging.Level), streams)
	ctx := cmd.Context()

	switch {
	case cmd.Flags().Changed(flagNew):
		if !opts.rebuild {
			return cmd.Usage()
		}
		return application.Rebuild(ctx)

	case cmd.Flags().Changed(flagList):
		status, err := domain.ParseStatusFilter(opts.list)
		if err != nil {
			return usageFor(cmd, err)
		}
		return application.List(ctx, status)

	case cmd.Flags().Changed(flagUpdateSeen):
		if opts.updateSeen == "" {
			return cmd.Usage()
		}
		return application.UpdateSeen(ctx, opts.updateSeen)

	default:
		status, err := domain.ParseStatusFilter(opts.choose)
		if err != nil {
			return usageFor(cmd, err)
		}
		return application.Choose(ctx, status)
	}
}

func usageFor(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err)
	return cmd.Usage()
}

// ExecuteContext runs the CLI and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	cmd := NewRootCommand(app.Streams{In: os.Stdin, Out: os.Stdout})
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
