package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"toggl-assistant/internal/app"
	"toggl-assistant/internal/config"
	"toggl-assistant/internal/domain"
	"toggl-assistant/internal/form"
	"toggl-assistant/internal/usecase"
)

func (c *cli) startCmd() *cobra.Command {
	var preset domain.StartInput
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a time entry on one of the configured projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.cfg.Validate(); err != nil {
				c.log.Info("configuration incomplete, running setup", slog.String("reason", err.Error()))
				if _, err := c.configure(ctx, true); err != nil {
					return err
				}
			}
			a, err := c.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			entry, err := a.Start(ctx, form.NewStartForm(), preset)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Started %q (entry %d)\n", entry.DescriptionOr(""), entry.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&preset.ProjectName, "project", "p", "", "project name; skips the form together with --description")
	cmd.Flags().StringVarP(&preset.Description, "description", "d", "", "entry description")
	return cmd
}

func (c *cli) stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running time entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			entry, err := a.Stop(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Stopped %q after %s\n", entry.DescriptionOr(""), entry.Elapsed(time.Now()).Round(time.Second))
			return nil
		},
	}
}

func (c *cli) currentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the running time entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			entry, ok, err := a.Current(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(c.out, "No running time entry.")
				return nil
			}
			fmt.Fprintf(c.out, "%q running for %s (entry %d, since %s)\n",
				entry.DescriptionOr(""),
				entry.Elapsed(time.Now()).Round(time.Second),
				entry.ID,
				entry.Start.Local().Format(time.Kitchen),
			)
			return nil
		},
	}
}

func (c *cli) projectsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List workspace projects on the allow-list",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			projects, err := a.Projects(cmd.Context(), all)
			if err != nil {
				return err
			}
			t := newTable("ID", "NAME", "ACTIVE", "COLOR")
			for _, p := range projects {
				t.Row(strconv.FormatInt(p.ID, 10), p.Name, strconv.FormatBool(p.Active), p.Color)
			}
			fmt.Fprintln(c.out, t.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include inactive and non allow-listed projects")
	return cmd
}

func (c *cli) membersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "members",
		Short: "List project memberships in the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			members, err := a.Members(cmd.Context())
			if err != nil {
				return err
			}
			t := newTable("ID", "PROJECT", "USER", "MANAGER")
			for _, m := range members {
				t.Row(
					strconv.FormatInt(m.ID, 10),
					strconv.FormatInt(m.ProjectID, 10),
					strconv.FormatInt(m.UserID, 10),
					strconv.FormatBool(m.Manager),
				)
			}
			fmt.Fprintln(c.out, t.String())
			return nil
		},
	}
}

func (c *cli) configCmd() *cobra.Command {
	var setup bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Edit workspace, API key and project allow-list",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.configure(cmd.Context(), setup); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Configuration saved to %s\n", c.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&setup, "setup", false, "skip fetching project names")
	return cmd
}

// configure runs the config form and keeps the saved result for later use in
// the same process.
func (c *cli) configure(ctx context.Context, setup bool) (config.Config, error) {
	uc := &usecase.ConfigUseCase{
		Log:       c.log,
		Form:      form.NewConfigForm(),
		Store:     config.FileStore{Path: c.configPath},
		NewClient: app.ClientFactory(nil),
	}
	cfg, err := uc.Run(ctx, c.cfg, setup)
	if err != nil {
		return config.Config{}, err
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *cli) syncCmd() *cobra.Command {
	var (
		from, to string
		once     bool
		schedule string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror time entries and projects into MySQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if !once {
				return a.Schedule(cmd.Context(), schedule)
			}

			// Parse time window flags (accept RFC3339 or date-only YYYY-MM-DD)
			toTime, err := app.ParseEnd(to, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			fromTime, err := app.ParseStart(from, toTime.Add(-24*time.Hour))
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			if err := a.RunOnce(cmd.Context(), fromTime, toTime); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			c.log.Info("sync completed", slog.Time("from", fromTime), slog.Time("to", toTime))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "RFC3339 or YYYY-MM-DD start (default: to - 24h)")
	cmd.Flags().StringVar(&to, "to", "", "RFC3339 or YYYY-MM-DD end, date-only is inclusive (default: now)")
	cmd.Flags().BoolVar(&once, "once", false, "run a single sync and exit")
	cmd.Flags().StringVar(&schedule, "schedule", app.DefaultSchedule, "cron expression evaluated in SYNC_TZ")
	cmd.MarkFlagsMutuallyExclusive("once", "schedule")
	return cmd
}

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose current/stop/sync over a local HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.HTTP.Addr
			}
			a, err := c.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			srv := a.HTTPServer(addr)
			errc := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				return err
			case <-cmd.Context().Done():
			}
			c.log.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR)")
	return cmd
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...)
}
