package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mpolasek/faceshot/internal/config"
	"github.com/mpolasek/faceshot/internal/session"
	"github.com/mpolasek/faceshot/internal/web"
	"github.com/mpolasek/faceshot/internal/workspace"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the station web server",
	Long: `Start the FaceShot station server. It exposes a local REST API for kiosk
frontends: the organizer's event workspace and attendee capture sessions
driving the configured camera device.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		if p, err := strconv.Atoi(envPort); err == nil && p > 0 {
			port = p
		} else {
			fmt.Printf("Ignoring invalid WEB_PORT %q, using port %d\n", envPort, port)
		}
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	device, err := newDevice(cfg)
	if err != nil {
		return err
	}

	stationName := cfg.Station.Name
	if stationName == "" {
		stationName = client.User().Name
	}

	ws := workspace.New(workspace.Identity{Name: stationName, Token: cfg.API.Token}, client)
	manager := session.NewManager(device, client)

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, manager, ws)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting FaceShot station on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
