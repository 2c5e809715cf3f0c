package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"toggl-assistant/internal/app"
	"toggl-assistant/internal/config"
)

// cli carries what every command needs. It is built once per process.
type cli struct {
	out        io.Writer
	configPath string
	verbose    bool

	log *slog.Logger
	cfg config.Config
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "toggl-assistant",
		Short:         "Start and stop Toggl time entries from the terminal",
		Long:          `toggl-assistant starts and stops Toggl Track time entries against an allow-list of projects, and can mirror entries into MySQL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default is ~/.toggl-assistant/.env)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		c.startCmd(),
		c.stopCmd(),
		c.currentCmd(),
		c.projectsCmd(),
		c.membersCmd(),
		c.configCmd(),
		c.syncCmd(),
		c.serveCmd(),
	)
	return root
}

func (c *cli) init() error {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	c.log = slog.New(handler)
	slog.SetDefault(c.log)

	if c.configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		c.configPath = p
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg = cfg
	c.log.Debug("config loaded", slog.String("path", c.configPath))
	return nil
}

// newApp builds the app from the loaded config.
func (c *cli) newApp() (*app.App, error) {
	a, err := app.New(c.log, c.cfg, app.NewMetrics())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration, run `toggl-assistant config --setup`: %w", err)
	}
	return a, nil
}
