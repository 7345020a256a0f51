package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ayrahq/ayra/internal/db"
	"github.com/ayrahq/ayra/internal/demochat"
	"github.com/ayrahq/ayra/internal/events"
	"github.com/ayrahq/ayra/internal/logging"
	"github.com/ayrahq/ayra/internal/rpcd"
)

var askRemote string

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&askRemote, "remote", "", "ask an ayra daemon at host:port")
}

// askResult is the --json shape of an answer.
type askResult struct {
	Question string `json:"question"`
	Reply    string `json:"reply"`
}

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask the demo assistant a question",
	Long: `Ask the scripted demo assistant a question.

Questions about on-call staff, pharmacy stock and logistics ETAs get a
canned answer. Anything else gets the generic reply.`,
	Example: `  ayra ask who is on call in neurosurgery
  ayra ask "check pharmacy stock" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return errors.New("question is required")
		}

		ctx := context.Background()
		var (
			reply string
			err   error
		)
		if askRemote != "" {
			reply, err = askDaemon(ctx, askRemote, question)
		} else {
			reply, err = askLocal(ctx, question)
		}
		if err != nil {
			return err
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, askResult{Question: question, Reply: reply})
		}
		fmt.Printf("%s %s\n", colorize("You:", colorGreen), question)
		fmt.Printf("%s %s\n", colorize("Ayra:", colorCyan), reply)
		return nil
	},
}

func askLocal(ctx context.Context, question string) (string, error) {
	log := logging.Component("demo")
	conv := demochat.NewConversation(
		demochat.WithReplyDelay(currentConfig().Demo.ReplyDelay),
		demochat.WithLogger(log),
	)
	reply, err := conv.Ask(ctx, question)
	if err != nil {
		return "", err
	}

	if database, err := openDatabase(); err == nil {
		defer database.Close()
		if err := events.LogDemoAsked(ctx, db.NewEventRepository(database), uuid.New().String(), question, reply.Content); err != nil {
			log.Warn().Err(err).Msg("failed to record demo event")
		}
	}
	return reply.Content, nil
}

func askDaemon(ctx context.Context, addr, question string) (string, error) {
	conn, err := dialRemote(addr)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	resp, err := rpcd.NewClient(conn).Ask(ctx, &rpcd.AskRequest{Question: question})
	if err != nil {
		return "", remoteError(addr, err)
	}
	return resp.Reply, nil
}
