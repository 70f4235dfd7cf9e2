package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/peekguard/pkg/client"
	"github.com/platinummonkey/peekguard/pkg/notice"
	"github.com/platinummonkey/peekguard/pkg/observability"
)

const defaultServer = "http://localhost:3000"

// LogoutFailedMessage is shown when the session could not be ended
const LogoutFailedMessage = "Logout failed"

// ErrLoginCancelled is returned when the user quits the keypad without logging in
var ErrLoginCancelled = errors.New("login cancelled")

type options struct {
	server   string
	username string
	verbose  bool

	// rng drives keypad layouts; nil uses a crypto-seeded source
	rng *rand.Rand
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	return newRootCommand(&options{})
}

func newRootCommand(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "peekguard-cli",
		Short:         "Terminal client for the peekguard login demo",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	server := os.Getenv("PEEKGUARD_SERVER")
	if server == "" {
		server = defaultServer
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.server, "server", "s", server, "peekguard server URL")
	flags.StringVarP(&opts.username, "username", "u", "", "username to log in as (prompted when empty)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newKeypadCommand(opts))
	root.AddCommand(newLogsCommand(opts))
	root.AddCommand(newWatchCommand(opts))
	root.AddCommand(newExportCommand(opts))
	root.AddCommand(newConfigCommand(opts))

	return root
}

func (o *options) logger(cmd *cobra.Command) *observability.Logger {
	level := observability.WarnLevel
	if o.verbose {
		level = observability.DebugLevel
	}
	return observability.NewLogger(level, cmd.ErrOrStderr())
}

func (o *options) client(cmd *cobra.Command) (*client.Client, error) {
	return client.New(o.server, client.WithLogger(o.logger(cmd)))
}

// withSession logs in through the keypad, runs fn and logs out again. The
// keypad and its prompts are written to prompts.
func (o *options) withSession(cmd *cobra.Command, prompts io.Writer, fn func(ctx context.Context, c *client.Client) error) error {
	c, err := o.client(cmd)
	if err != nil {
		return err
	}

	if err := o.keypadLogin(cmd, c, prompts); err != nil {
		return err
	}
	defer o.logout(cmd, c)

	return fn(cmd.Context(), c)
}

func (o *options) logout(cmd *cobra.Command, c *client.Client) {
	// ctx may already be cancelled by watch
	if err := c.Logout(context.WithoutCancel(cmd.Context())); err != nil {
		o.logger(cmd).WithError(err).Warn("Logout failed")
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", notice.LevelError, LogoutFailedMessage)
	}
}
