package editor

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"slices"

	"github.com/kavyapath/kavyapath-web/internal/common"
)

var inlineImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// DataURL encodes an uploaded image for inline insertion. The content type
// is sniffed from the bytes; maxSize of 0 disables the size check.
func DataURL(data []byte, maxSize int64) (string, error) {
	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", fmt.Errorf("%w: %d bytes", common.ErrImageTooLarge, len(data))
	}
	mime := http.DetectContentType(data)
	if !slices.Contains(inlineImageTypes, mime) {
		return "", fmt.Errorf("%w: %s", common.ErrUnsupportedImage, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
