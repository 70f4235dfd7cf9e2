package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/peekguard/pkg/client"
	"github.com/platinummonkey/peekguard/pkg/dashboard"
	"github.com/platinummonkey/peekguard/pkg/eventlog"
)

func newLogsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Print the security log, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, cmd.ErrOrStderr(), func(ctx context.Context, c *client.Client) error {
				info, err := c.Session(ctx)
				if err != nil {
					return err
				}
				events, err := c.Logs(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printSession(out, info)
				printRows(out, dashboard.Render(events))
				return nil
			})
		},
	}
}

func newWatchCommand(opts *options) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the security log and refresh it until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, cmd.ErrOrStderr(), func(ctx context.Context, c *client.Client) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				out := cmd.OutOrStdout()
				panel := dashboard.NewPanel(c, nil,
					dashboard.WithLogger(opts.logger(cmd)),
					dashboard.WithUnauthenticated(func(err error) bool {
						return errors.Is(err, client.ErrUnauthenticated)
					}),
				)
				panel.OnUpdate(func(v dashboard.View) {
					fmt.Fprintf(out, "\n[%s] %s\n", v.UpdatedAt.Local().Format("15:04:05"), v.State)
					if v.State == dashboard.StateUnauthenticated {
						stop()
						return
					}
					printRows(out, v.Rows)
					if v.Message != "" && v.State != dashboard.StateEmpty {
						fmt.Fprintln(out, v.Message)
					}
				})

				if err := panel.Run(ctx, interval); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				if panel.View().State == dashboard.StateUnauthenticated {
					return client.ErrUnauthenticated
				}
				return nil
			})
		},
	}
	cmd.Flags().DurationVarP(&interval, "interval", "i", 30*time.Second, "refresh interval")
	return cmd
}

func newExportCommand(opts *options) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the security log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := eventlog.ParseExportFormat(format)
			if err != nil {
				return err
			}
			return opts.withSession(cmd, cmd.ErrOrStderr(), func(ctx context.Context, c *client.Client) error {
				data, err := c.Export(ctx, f)
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(output, data, 0o600); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", len(data), output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(eventlog.ExportFormatJSON), "json, csv or ndjson")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func printSession(w io.Writer, info *client.SessionInfo) {
	if info == nil || !info.Authenticated {
		return
	}
	fmt.Fprintf(w, "User:    %s\n", info.Username)
	fmt.Fprintf(w, "Browser: %s\n", dashboard.BrowserName(info.UserAgent))
	if info.ExpiresAt != nil {
		fmt.Fprintf(w, "Expires: %s\n", info.ExpiresAt.Local().Format(time.RFC1123))
	}
	fmt.Fprintln(w)
}

func printRows(w io.Writer, rows []dashboard.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, dashboard.EmptyMessage)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tEVENT\tDETAILS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Clock(), r.Kind, r.Details)
	}
	tw.Flush()
}
