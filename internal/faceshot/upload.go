package faceshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// uploadResult is the per-file response from the photo ingestion endpoint.
type uploadResult struct {
	PhotoID string `json:"photo_id"`
}

// addFileToMultipart opens a file and writes it to the multipart writer.
func addFileToMultipart(writer *multipart.Writer, filePath string) error {
	file, err := os.Open(filePath) //nolint:gosec // user-provided file path for upload
	if err != nil {
		return fmt.Errorf("could not open file %s: %w", filePath, err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("could not create form file: %w", err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("could not copy file data: %w", err)
	}
	return nil
}

// UploadPhotos uploads event photos for server-side ingestion and indexing.
// Files are sent one request at a time so the progress callback can advance
// per photo. Returns the number of files uploaded; on error, uploads already
// accepted by the server stay accepted.
func (fs *FaceShot) UploadPhotos(ctx context.Context, eventID string, filePaths []string, progress func(done int)) (int, error) {
	if eventID == "" {
		return 0, errors.New("event ID is required")
	}
	if len(filePaths) == 0 {
		return 0, errors.New("no files to upload")
	}

	for i, filePath := range filePaths {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)

		if err := addFileToMultipart(writer, filePath); err != nil {
			return i, err
		}
		if err := writer.Close(); err != nil {
			return i, fmt.Errorf("could not close writer: %w", err)
		}

		endpoint := fmt.Sprintf("events/%s/photos", eventID)
		if _, err := doPostMultipart[uploadResult](ctx, fs, endpoint, writer.FormDataContentType(), &body); err != nil {
			return i, fmt.Errorf("uploading %s: %w", filepath.Base(filePath), err)
		}

		if progress != nil {
			progress(i + 1)
		}
	}

	return len(filePaths), nil
}
