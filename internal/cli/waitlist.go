package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayrahq/ayra/internal/db"
	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/waitlist"
)

var waitlistSource string

func init() {
	rootCmd.AddCommand(waitlistCmd)
	waitlistCmd.AddCommand(waitlistJoinCmd)
	waitlistCmd.AddCommand(waitlistListCmd)

	waitlistJoinCmd.Flags().StringVar(&waitlistSource, "source", "cli", "where the signup came from")
}

var waitlistCmd = &cobra.Command{
	Use:   "waitlist",
	Short: "Manage early-access signups",
}

type joinResult struct {
	Signup  *models.Signup `json:"signup"`
	Created bool           `json:"created"`
}

var waitlistJoinCmd = &cobra.Command{
	Use:   "join <email>",
	Short: "Add an email to the waitlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWaitlist(func(ctx context.Context, svc *waitlist.Service) error {
			signup, created, err := svc.Join(ctx, args[0], waitlistSource)
			if err != nil {
				if errors.Is(err, waitlist.ErrEmailRequired) {
					return &PreflightError{Message: err.Error(), Hint: "Pass an email, e.g. ayra waitlist join you@clinic.org"}
				}
				return err
			}

			if IsJSONOutput() || IsJSONLOutput() {
				return WriteOutput(os.Stdout, joinResult{Signup: signup, Created: created})
			}
			if !created {
				fmt.Printf("%s is already on the waitlist (since %s)\n", signup.Email, signup.CreatedAt.Local().Format(time.DateOnly))
				return nil
			}
			fmt.Printf("%s Added %s to the waitlist\n", colorize("OK", colorGreen), signup.Email)
			return nil
		})
	},
}

var waitlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List waitlist signups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWaitlist(func(ctx context.Context, svc *waitlist.Service) error {
			signups, err := svc.List(ctx)
			if err != nil {
				return err
			}
			if IsJSONOutput() || IsJSONLOutput() {
				if signups == nil {
					signups = []*models.Signup{}
				}
				return WriteOutput(os.Stdout, signups)
			}
			if len(signups) == 0 {
				fmt.Println("No signups yet.")
				return nil
			}

			rows := make([][]string, 0, len(signups))
			for _, s := range signups {
				source := s.Source
				if source == "" {
					source = "-"
				}
				rows = append(rows, []string{s.Email, source, s.CreatedAt.Local().Format(time.DateTime)})
			}
			if err := writeTable(os.Stdout, []string{"EMAIL", "SOURCE", "JOINED"}, rows); err != nil {
				return err
			}

			count, err := svc.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("\n%d signup(s)\n", count)
			return nil
		})
	},
}

func withWaitlist(fn func(context.Context, *waitlist.Service) error) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	svc := waitlist.NewService(db.NewSignupRepository(database), db.NewEventRepository(database))
	return fn(context.Background(), svc)
}
