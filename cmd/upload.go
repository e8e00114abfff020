package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mpolasek/faceshot/internal/config"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <event-id> <folder-path> [folder-path...]",
	Short: "Upload photos to an event",
	Long: `Upload photos from one or more folders to an event's pool. The server
ingests and indexes them for selfie search.

By default, only files in the specified folders are uploaded (non-recursive).
Use -r to search recursively in subdirectories.

Example:
  faceshot upload 1a2b3c4d /path/to/photos
  faceshot upload -r 1a2b3c4d /path/to/photos`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolP("recursive", "r", false, "Search for photos recursively in subdirectories")
}

// isUploadable checks if a file has a supported image extension.
func isUploadable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".heic", ".heif", ".webp":
		return true
	}
	return false
}

// collectPhotos gathers image files from a folder.
func collectPhotos(folderPath string, recursive bool) ([]string, error) {
	info, err := os.Stat(folderPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access folder %s: %w", folderPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", folderPath)
	}

	var filePaths []string
	if recursive {
		err := filepath.WalkDir(folderPath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isUploadable(d.Name()) {
				filePaths = append(filePaths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("cannot walk folder %s: %w", folderPath, err)
		}
		return filePaths, nil
	}

	entries, err := os.ReadDir(folderPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read folder %s: %w", folderPath, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isUploadable(entry.Name()) {
			continue
		}
		filePaths = append(filePaths, filepath.Join(folderPath, entry.Name()))
	}
	return filePaths, nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	eventID := args[0]
	folderPaths := args[1:]
	recursive := mustGetBool(cmd, "recursive")

	cfg := config.Load()
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	var filePaths []string
	for _, folderPath := range folderPaths {
		files, err := collectPhotos(folderPath, recursive)
		if err != nil {
			return err
		}
		filePaths = append(filePaths, files...)
	}

	if len(filePaths) == 0 {
		fmt.Println("No image files found in the specified folders.")
		return nil
	}

	fmt.Printf("Uploading %d photo(s) to event %s\n", len(filePaths), eventID)

	bar := progressbar.Default(int64(len(filePaths)))
	uploaded, err := client.UploadPhotos(context.Background(), eventID, filePaths, func(done int) {
		_ = bar.Add(1)
	})
	if err != nil {
		return fmt.Errorf("upload stopped after %d file(s): %w", uploaded, err)
	}

	fmt.Printf("Uploaded %d photo(s). The server will index them shortly.\n", uploaded)
	return nil
}
