package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // formats accepted for upload
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrInvalidFileType is returned for uploads that are not images.
var ErrInvalidFileType = errors.New("invalid file type")

// ValidateImage reports the image format of data, or ErrInvalidFileType.
// The content must both sniff as an image and carry a decodable header.
func ValidateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidFileType)
	}
	ctype := http.DetectContentType(data)
	if !strings.HasPrefix(ctype, "image/") {
		return "", fmt.Errorf("%w: %s", ErrInvalidFileType, ctype)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidFileType, ctype, err)
	}
	return format, nil
}
