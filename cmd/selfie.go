package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mpolasek/faceshot/internal/capture"
	"github.com/mpolasek/faceshot/internal/config"
	"github.com/mpolasek/faceshot/internal/faceshot"
	"github.com/mpolasek/faceshot/internal/session"
	"github.com/spf13/cobra"
)

// searchTimeout bounds the wait for the search service to resolve.
const searchTimeout = 60 * time.Second

var selfieCmd = &cobra.Command{
	Use:   "selfie <event-id>",
	Short: "Capture a selfie and search an event's photos",
	Long: `Capture one frame from the configured device, submit it against an
event's photo pool and print the matching photo references.

Example:
  faceshot selfie 1a2b3c4d
  faceshot selfie 1a2b3c4d --save ./snapshots`,
	Args: cobra.ExactArgs(1),
	RunE: runSelfie,
}

func init() {
	rootCmd.AddCommand(selfieCmd)
	selfieCmd.Flags().String("save", "", "Directory to save the captured frame to")
}

// eventTitle looks the event up in the organizer's collection for nicer
// output and snapshot names. Falls back to the raw ID.
func eventTitle(ctx context.Context, client *faceshot.FaceShot, eventID string) string {
	events, err := client.GetEvents(ctx)
	if err != nil {
		return eventID
	}
	for _, event := range events {
		if event.ID == eventID {
			return event.Title
		}
	}
	return eventID
}

func runSelfie(cmd *cobra.Command, args []string) error {
	eventID := args[0]
	saveDir := mustGetString(cmd, "save")

	cfg := config.Load()
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	device, err := newDevice(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	title := eventTitle(ctx, client, eventID)

	if err := device.StartFeed(ctx); err != nil {
		return fmt.Errorf("could not start camera feed: %w", err)
	}
	defer device.StopFeed()

	sess, err := session.New(eventID, device, client)
	if err != nil {
		return err
	}
	defer sess.Close()

	outcomes := sess.AddListener()
	defer sess.RemoveListener(outcomes)

	fmt.Printf("Capturing selfie for %q...\n", title)
	if err := sess.Capture(ctx); err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	if saveDir != "" {
		if err := saveFrame(sess.Frame(), saveDir, title); err != nil {
			return err
		}
	}

	fmt.Println("Searching...")
	if err := sess.Search(ctx); err != nil {
		return fmt.Errorf("search failed to start: %w", err)
	}

	select {
	case <-time.After(searchTimeout):
		return fmt.Errorf("search timed out after %s", searchTimeout)
	case outcome := <-outcomes:
		return printOutcome(outcome)
	}
}

func saveFrame(frame *capture.Frame, dir, title string) error {
	if frame == nil {
		return fmt.Errorf("no frame to save")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("could not create save directory: %w", err)
	}
	path := filepath.Join(dir, capture.SnapshotFileName(title, time.Now()))
	if err := os.WriteFile(path, frame.Data, 0600); err != nil {
		return fmt.Errorf("could not save frame: %w", err)
	}
	fmt.Printf("Saved snapshot to %s\n", path)
	return nil
}

func printOutcome(outcome session.Outcome) error {
	switch outcome.Kind {
	case session.OutcomeFound:
		fmt.Printf("Found %d photo(s):\n", len(outcome.Results))
		for _, ref := range outcome.Results {
			fmt.Printf("  %s  %s\n", ref.PhotoID, ref.URL)
		}
		return nil
	case session.OutcomeEmpty:
		fmt.Println("No photos found. Try a different selfie.")
		return nil
	default:
		return fmt.Errorf("search failed: %s", outcome.Reason)
	}
}
