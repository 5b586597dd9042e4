package pass

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// DefaultSize is the rendered edge length in pixels.
	DefaultSize   = 300
	dataURLPrefix = "data:image/png;base64,"
)

// ErrNotDataURL reports an image payload that is not a base64 PNG data URL.
var ErrNotDataURL = errors.New("qr image is not a png data url")

// Render encodes code as a PNG QR image of size x size pixels.
func Render(code string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(code, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render visitor code: %w", err)
	}
	return png, nil
}

// DataURL wraps PNG bytes for direct use as an image source.
func DataURL(png []byte) string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png)
}

// DecodeDataURL returns the PNG bytes held in a data URL produced by DataURL.
func DecodeDataURL(url string) ([]byte, error) {
	if !strings.HasPrefix(url, dataURLPrefix) {
		return nil, ErrNotDataURL
	}
	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, dataURLPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDataURL, err)
	}
	return png, nil
}
