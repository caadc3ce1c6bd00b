package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mmcdole/swingset/internal/adapter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// annotationNoStorage marks commands that run without opening storage
const annotationNoStorage = "swingset/no-storage"

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	configDir string
	driver    string
	dataPath  string

	// set by PersistentPreRunE, closed by execute
	app *app
}

// execute runs the command line in args and releases storage afterwards,
// including when the command failed.
func execute(args []string, stdout, stderr io.Writer) error {
	opts := &rootOptions{}
	root := newRootCmd(opts)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if opts.app != nil {
		if closeErr := opts.app.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		opts.app = nil
	}
	return err
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "swingset",
		Short: "Keep track of the playgrounds you have visited",
		Long: `swingset records playgrounds with a rating, notes and photos, and lists
them sorted by name, rating, date added or distance from home.

Run without arguments in a terminal to start the interactive browser.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoStorage] != "" {
				return nil
			}
			return opts.setup(cmd.Context(), cmd.CommandPath())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				return runTUI(cmd.Context(), opts.app)
			}
			return runList(cmd, opts.app, listFlags{})
		},
	}

	root.PersistentFlags().StringVar(&opts.configDir, "config", "", "config directory (default "+adapter.DefaultConfigPath()+")")
	root.PersistentFlags().StringVar(&opts.driver, "driver", "", "storage driver override: bolt, sqlite or memory")
	root.PersistentFlags().StringVar(&opts.dataPath, "data", "", "storage path override")

	root.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newRmCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *rootOptions) configDirOrDefault() string {
	if o.configDir == "" {
		return adapter.DefaultConfigPath()
	}
	return o.configDir
}

// setup loads config, configures logging and opens the store
func (o *rootOptions) setup(ctx context.Context, command string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := adapter.LoadConfigFrom(o.configDirOrDefault())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if o.driver != "" {
		cfg.Storage.Driver = o.driver
	}
	if o.dataPath != "" {
		cfg.Storage.Path = o.dataPath
	}

	// Fall back to null logger if file logging fails
	logger := adapter.NullLogger()
	var logCloser io.Closer
	if l, closer, err := adapter.SetupLogger(&cfg.Logging, Version); err == nil {
		logger, logCloser = l, closer
	}
	slog.SetDefault(logger)
	logger.Info("starting swingset", "command", command)

	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		if logCloser != nil {
			logCloser.Close()
		}
		return err
	}
	if logCloser != nil {
		a.closers = append([]io.Closer{logCloser}, a.closers...)
	}
	o.app = a
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoStorage: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "swingset %s\n", Version)
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:         "init",
		Short:       "Write a config file with the current settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoStorage: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.configDirOrDefault()
			cfg, err := adapter.LoadConfigFrom(dir)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := adapter.SaveConfigTo(dir, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", filepath.Join(dir, "config.yaml"))
			return nil
		},
	})
	return cmd
}
