package faceshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
)

// selfieFileName is the filename sent with the multipart image part. The
// server only cares about the bytes; the name is cosmetic.
const selfieFileName = "selfie.jpg"

// SearchSelfie submits one captured frame against an event's photo pool and
// returns the matching photo references. An empty slice is a valid outcome,
// distinct from an error. Exactly one request is sent per call; the client
// never retries on its own - retry is a user decision.
func (fs *FaceShot) SearchSelfie(ctx context.Context, eventID string, image []byte, mimeType string) ([]MatchRef, error) {
	if eventID == "" {
		return nil, errors.New("event ID is required")
	}
	if len(image) == 0 {
		return nil, errors.New("image is empty")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, selfieFileName))
	if mimeType != "" {
		header.Set("Content-Type", mimeType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("could not create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("could not write image data: %w", err)
	}

	if err := writer.WriteField("event_id", eventID); err != nil {
		return nil, fmt.Errorf("could not write event_id field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("could not close writer: %w", err)
	}

	result, err := doPostMultipart[[]MatchRef](ctx, fs, "search/selfie", writer.FormDataContentType(), &body)
	if err != nil {
		return nil, err
	}
	return *result, nil
}
