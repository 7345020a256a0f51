package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayrahq/ayra/internal/db"
	"github.com/ayrahq/ayra/internal/models"
)

var (
	eventsType    string
	eventsEntity  string
	eventsSince   time.Duration
	eventsLimit   int
	eventsCursor  string
	eventsSummary bool
)

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().StringVar(&eventsType, "type", "", "filter by event type (e.g. playback.completed)")
	eventsCmd.Flags().StringVar(&eventsEntity, "entity", "", "filter by entity ID (session, demo or email)")
	eventsCmd.Flags().DurationVar(&eventsSince, "since", 0, "only events newer than this (e.g. 1h)")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 50, "maximum events to show")
	eventsCmd.Flags().StringVar(&eventsCursor, "cursor", "", "continue after this event ID")
	eventsCmd.Flags().BoolVar(&eventsSummary, "summary", false, "show counts per event type")
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the event history",
	Long:  "Show playback, demo, waitlist and theme events recorded in the database, oldest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		repo := db.NewEventRepository(database)
		ctx := context.Background()

		if eventsSummary {
			return printEventSummary(ctx, repo)
		}

		query := db.EventQuery{Cursor: eventsCursor, Limit: eventsLimit}
		if eventsType != "" {
			eventType := models.EventType(eventsType)
			query.Type = &eventType
		}
		if eventsEntity != "" {
			query.EntityID = &eventsEntity
		}
		if eventsSince > 0 {
			since := time.Now().Add(-eventsSince)
			query.Since = &since
		}

		page, err := repo.Query(ctx, query)
		if err != nil {
			return err
		}

		if IsJSONLOutput() {
			return WriteOutput(os.Stdout, page.Events)
		}
		if IsJSONOutput() {
			return WriteOutput(os.Stdout, map[string]any{
				"events":      nonNilEvents(page.Events),
				"next_cursor": page.NextCursor,
			})
		}

		if len(page.Events) == 0 {
			fmt.Println("No events.")
			return nil
		}
		rows := make([][]string, 0, len(page.Events))
		for _, ev := range page.Events {
			rows = append(rows, []string{
				ev.Timestamp.Local().Format(time.DateTime),
				string(ev.Type),
				string(ev.EntityType),
				ev.EntityID,
				string(ev.Payload),
			})
		}
		if err := writeTable(os.Stdout, []string{"TIME", "TYPE", "ENTITY", "ID", "PAYLOAD"}, rows); err != nil {
			return err
		}
		if page.NextCursor != "" {
			fmt.Printf("\nMore: ayra events --cursor %s\n", page.NextCursor)
		}
		return nil
	},
}

func printEventSummary(ctx context.Context, repo *db.EventRepository) error {
	counts, err := repo.CountByType(ctx)
	if err != nil {
		return err
	}
	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(os.Stdout, counts)
	}

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)

	rows := make([][]string, 0, len(types))
	for _, t := range types {
		rows = append(rows, []string{t, fmt.Sprintf("%d", counts[models.EventType(t)])})
	}
	return writeTable(os.Stdout, []string{"TYPE", "COUNT"}, rows)
}

func nonNilEvents(list []*models.Event) []*models.Event {
	if list == nil {
		return []*models.Event{}
	}
	return list
}
