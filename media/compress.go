// Package media relays message attachments to durable storage - images are
// recompressed to bounded JPEGs and uploaded to Google Drive or Google Cloud
// Storage, producing a public URL for the ledger's IMAGE formula.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"time"

	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	maxWidth    = 1920
	maxHeight   = 1920
	quality     = 85
	maxBytes    = 500 * 1024
	minQuality  = 60
	maxAttempts = 3
)

// Compress decodes an image, flattens any transparency onto a white
// background, downscales it so that neither dimension exceeds 1920px and
// re-encodes it as JPEG at quality 85. If the result is still over 500KB it
// re-encodes at progressively lower quality (steps of 10, floor 60, at most
// 3 retries) and returns the best effort even if the budget is never met.
func Compress(data []byte) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("error decoding image (%v)", err)
	}

	slog.Debug("decoded image",
		"format", format,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy(),
		"size", len(data))

	img = flatten(img)

	if bounds := img.Bounds(); bounds.Dx() > maxWidth || bounds.Dy() > maxHeight {
		img = downscale(img)
	}

	var buffer bytes.Buffer
	q := quality

	if err := jpeg.Encode(&buffer, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, "", fmt.Errorf("error encoding image (%v)", err)
	}

	for attempts := 0; buffer.Len() > maxBytes && q > minQuality && attempts < maxAttempts; attempts++ {
		q -= 10
		buffer.Reset()

		if err := jpeg.Encode(&buffer, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, "", fmt.Errorf("error encoding image (%v)", err)
		}

		slog.Debug("recompressed image", "quality", q, "size", buffer.Len())
	}

	slog.Info("compressed image", "before", len(data), "after", buffer.Len(), "quality", q)

	return buffer.Bytes(), "image/jpeg", nil
}

// Filename assembles the storage object name for an uploaded image from the
// localised message time and the LINE message ID.
func Filename(timestamp time.Time, messageID string) string {
	return fmt.Sprintf("linebot_%s_%s.jpg", timestamp.Format("20060102_150405"), messageID)
}

// flatten composites the image over an opaque white background. JPEG has no
// alpha channel, so transparent and palette images are alpha-blended first.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()

	flattened := image.NewRGBA(bounds)
	draw.Draw(flattened, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(flattened, bounds, img, bounds.Min, draw.Over)

	return flattened
}

func downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	scale := float64(maxWidth) / float64(width)
	if s := float64(maxHeight) / float64(height); s < scale {
		scale = s
	}

	scaled := image.NewRGBA(image.Rect(0, 0, int(float64(width)*scale), int(float64(height)*scale)))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, xdraw.Src, nil)

	return scaled
}
