package model

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"cv-creator/internal/apperr"
)

// MaxPhotoBytes caps an uploaded portrait.
const MaxPhotoBytes = 2 << 20

// PhotoFromUpload converts raw image bytes into a data URI. The declared
// content type is only a hint; the bytes are sniffed and must be an image.
func PhotoFromUpload(declared string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty photo", apperr.ErrMalformedInput)
	}
	if len(data) > MaxPhotoBytes {
		return "", fmt.Errorf("%w: photo is %d bytes, limit is %d", apperr.ErrRefused, len(data), MaxPhotoBytes)
	}
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		if declared != "" && strings.HasPrefix(declared, "image/svg") {
			// svg sniffs as text/xml; refuse it anyway since it can carry script
			return "", fmt.Errorf("%w: svg photos are not accepted", apperr.ErrMalformedInput)
		}
		return "", fmt.Errorf("%w: photo must be an image, got %s", apperr.ErrMalformedInput, ct)
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// IsImageDataURI reports whether s looks like a data URI from PhotoFromUpload.
func IsImageDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image/") && strings.Contains(s, ";base64,")
}
