package scan

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Decode reads the QR code in img.
func Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("prepare image: %w", err)
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("decode qr: %w", err)
	}
	return result.GetText(), nil
}

// DecodeFile opens a PNG or JPEG photo of a pass and reads its code.
func DecodeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", path, err)
	}
	return Decode(img)
}

// ImageSource treats each image file as one camera frame.
type ImageSource struct {
	paths []string
}

// NewImageSource reads frames from paths in order.
func NewImageSource(paths ...string) *ImageSource {
	return &ImageSource{paths: paths}
}

// Stream decodes frames lazily; undecodable frames become error events.
func (s *ImageSource) Stream(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for _, path := range s.paths {
			if ctx.Err() != nil {
				return
			}
			text, err := DecodeFile(path)
			if !send(ctx, out, Event{Text: text, Err: err}) {
				return
			}
		}
	}()
	return out
}
