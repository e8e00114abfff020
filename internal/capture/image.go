package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// jpegQuality is the encode quality for normalized frames. Matching quality
// matters more than pixel fidelity for the search service.
const jpegQuality = 85

// NormalizeFrame decodes raw image data, downscales it so neither edge
// exceeds maxEdge (keeping aspect ratio) and re-encodes it as JPEG. Frames
// already within bounds are still re-encoded for a consistent format.
func NormalizeFrame(data []byte, maxEdge int) (*Frame, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxEdge || height > maxEdge {
		var newWidth, newHeight int
		if width > height {
			newWidth = maxEdge
			newHeight = int(float64(height) * float64(maxEdge) / float64(width))
		} else {
			newHeight = maxEdge
			newWidth = int(float64(width) * float64(maxEdge) / float64(height))
		}

		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &Frame{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}
