package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"aliados/internal/auth"
	"aliados/internal/engine"
	"aliados/internal/handlers"
)

type askOptions struct {
	user     string
	password string
	stats    bool
	partner  string
}

var askOpts askOptions

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question from the command line",
	Long: `Logs in with --user and answers the question the same way the chat does.
With --stats, prints the quick activity totals instead; admins may pick a
partner with --partner.`,
	Example: `  aliados ask --user CLARO "how did we do in march 2025?"
  aliados ask --user admin --stats --partner NEXA`,
	Args: func(cmd *cobra.Command, args []string) error {
		if askOpts.stats {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		opts := askOpts
		if opts.password == "" {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			opts.password, err = readLine(cmd.InOrStdin())
			if err != nil {
				return err
			}
		}
		return runAsk(cmd.Context(), cmd.OutOrStdout(), rt.engine, rt.authn, opts, strings.Join(args, " "))
	},
}

func init() {
	askCmd.Flags().StringVarP(&askOpts.user, "user", "u", "", "Username to ask as")
	askCmd.Flags().StringVarP(&askOpts.password, "password", "p", "", "Password (read from stdin when omitted)")
	askCmd.Flags().BoolVar(&askOpts.stats, "stats", false, "Print quick activity totals")
	askCmd.Flags().StringVar(&askOpts.partner, "partner", "", "Partner for --stats (admins only)")
	askCmd.MarkFlagRequired("user")
}

func runAsk(ctx context.Context, out io.Writer, e *engine.Engine, authn handlers.Authenticator, opts askOptions, question string) error {
	id, err := authn.Login(ctx, opts.user, opts.password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return errors.New("invalid username or password")
	}
	if err != nil {
		return err
	}

	if opts.stats {
		_, text, err := e.QuickStats(id, opts.partner)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, text)
		return nil
	}

	fmt.Fprintln(out, e.Respond(ctx, question, id))
	return nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
