package cmd

import (
	"context"
	"fmt"

	"github.com/mpolasek/faceshot/internal/config"
	"github.com/mpolasek/faceshot/internal/faceshot"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List your events",
	Long: `List the events owned by the authenticated organizer, newest first.
The order comes from the server and is shown as-is.`,
	RunE: runEvents,
}

var eventsCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new event",
	Long: `Create a new event. The server assigns the shareable event code.

Example:
  faceshot events create "John & Jane's Wedding" --date 2026-09-12
  faceshot events create "Company Offsite" --description "Team week in the mountains"`,
	Args: cobra.ExactArgs(1),
	RunE: runEventsCreate,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsCreateCmd)

	eventsCreateCmd.Flags().String("description", "", "Optional event description")
	eventsCreateCmd.Flags().String("date", "", "Optional event date (YYYY-MM-DD)")
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	events, err := client.GetEvents(context.Background())
	if err != nil {
		return fmt.Errorf("could not load events: %w", err)
	}

	if len(events) == 0 {
		fmt.Println("No events yet. Create your first one with: faceshot events create <title>")
		return nil
	}

	for _, event := range events {
		printEvent(cfg, event)
	}
	return nil
}

func printEvent(cfg *config.Config, event faceshot.Event) {
	code := event.EventCode
	if link := cfg.API.AttendLink(event.EventCode); link != "" {
		code = link
	}
	fmt.Printf("%-10s  %-12s  %4d photos  %s\n", code, event.Status, event.TotalPhotos, event.Title)
	if event.Description != "" {
		fmt.Printf("            %s\n", event.Description)
	}
}

func runEventsCreate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	draft := faceshot.EventDraft{
		Title:       args[0],
		Description: mustGetString(cmd, "description"),
		Date:        mustGetString(cmd, "date"),
	}

	event, err := client.CreateEvent(context.Background(), draft)
	if err != nil {
		return fmt.Errorf("could not create event: %w", err)
	}

	fmt.Printf("Created event %q\n", event.Title)
	fmt.Printf("  ID:   %s\n", event.ID)
	fmt.Printf("  Code: %s\n", event.EventCode)
	if link := cfg.API.AttendLink(event.EventCode); link != "" {
		fmt.Printf("  Link: %s\n", link)
	}
	return nil
}
