package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/peekguard/pkg/client"
	"github.com/platinummonkey/peekguard/pkg/config"
	"github.com/platinummonkey/peekguard/pkg/dashboard"
	"github.com/platinummonkey/peekguard/pkg/loginpage"
	"github.com/platinummonkey/peekguard/pkg/notice"
)

const keypadColumns = 8

const keypadHelp = `Enter key numbers separated by spaces. Commands:
  submit (or an empty line)  log in
  clear                      empty the password
  quit                       give up
Typed characters other than key numbers are ignored.`

func newKeypadCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "keypad",
		Short: "Log in by picking keys on a randomized keypad",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeypad(cmd, opts)
		},
	}
}

func runKeypad(cmd *cobra.Command, opts *options) error {
	out := cmd.OutOrStdout()
	err := opts.withSession(cmd, out, func(ctx context.Context, c *client.Client) error {
		return showDashboard(ctx, out, c)
	})
	if errors.Is(err, ErrLoginCancelled) {
		return nil
	}
	return err
}

// keypadLogin reads key numbers until c holds a session. Physical keystrokes
// never reach the password.
func (o *options) keypadLogin(cmd *cobra.Command, c *client.Client, out io.Writer) error {
	ctx := cmd.Context()
	logger := o.logger(cmd)
	in := bufio.NewScanner(cmd.InOrStdin())

	tuning := config.DefaultTuning()
	if remote, err := c.ClientConfig(ctx); err != nil {
		logger.WithError(err).Warn("Using default tuning")
	} else {
		tuning = remote.Tuning(tuning)
	}

	emitter := client.NewEmitter(c, 4, logger)
	defer emitter.Close(context.WithoutCancel(ctx))

	page := loginpage.New(loginpage.Deps{
		Tuning:  tuning,
		Auth:    c,
		Emitter: emitter,
		Rand:    o.rng,
		Logger:  logger,
	})
	page.Notices.OnChange(func(n notice.Notice, shown bool) {
		if shown {
			fmt.Fprintf(out, "[%s] %s\n", n.Level, n.Message)
		}
	})
	page.Start(ctx)
	defer page.Close()

	username := o.username
	if username == "" {
		fmt.Fprint(out, "Username: ")
		if !in.Scan() {
			return io.ErrUnexpectedEOF
		}
		username = in.Text()
	}
	page.SetUsername(username)

	fmt.Fprintln(out, keypadHelp)
	for {
		fmt.Fprintf(out, "\n%sPassword: %s\n> ", page.Keypad.Layout().Format(keypadColumns), page.Mask.Rendered())
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return err
			}
			return io.ErrUnexpectedEOF
		}

		line := strings.TrimSpace(in.Text())
		switch line {
		case "quit":
			return ErrLoginCancelled
		case "clear":
			page.Keypad.Clear()
			continue
		case "", "submit":
			err := page.Submit(ctx)
			if err == nil {
				return nil
			}
			if errors.Is(err, loginpage.ErrUsernameRequired) {
				return err
			}
			continue
		}

		for _, field := range strings.Fields(line) {
			index, err := strconv.Atoi(field)
			if err != nil {
				page.Keypad.HandleKeystroke(field)
				fmt.Fprintf(out, "ignored %q: use key numbers\n", field)
				continue
			}
			if _, err := page.Keypad.ActivateAt(index); err != nil {
				fmt.Fprintln(out, err)
			}
		}
	}
}

// showDashboard prints the session and its log
func showDashboard(ctx context.Context, out io.Writer, c *client.Client) error {
	info, err := c.Session(ctx)
	if err != nil {
		return err
	}
	events, err := c.Logs(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	printSession(out, info)
	if info.ExpiresAt != nil {
		fmt.Fprintf(out, "Session time left: %s\n\n", dashboard.FormatDuration(time.Until(*info.ExpiresAt)))
	}
	printRows(out, dashboard.Render(events))
	return nil
}
