package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "faceshot",
	Short: "A station tool for FaceShot event photo sharing",
	Long: `FaceShot Station connects a capture device (webcam or photo booth) to a
FaceShot server. Attendees take a selfie and get back their photos from an
event's pool; organizers manage events and upload photos from the terminal.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
