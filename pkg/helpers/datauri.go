package helpers

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidDataURI = errors.New("invalid image data uri")

// DataURI is a decoded `data:<mime>;base64,<payload>` string.
type DataURI struct {
	ContentType string
	Data        []byte
}

var imageExt = map[string]string{
	"image/jpeg":    ".jpg",
	"image/jpg":     ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// ParseImageDataURI decodes a base64 image data URI as sent by the
// frontend for avatars and product images.
func ParseImageDataURI(s string) (*DataURI, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return nil, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrInvalidDataURI
	}
	ct, enc, ok := strings.Cut(meta, ";")
	if !ok || !strings.EqualFold(enc, "base64") {
		return nil, ErrInvalidDataURI
	}
	ct = strings.ToLower(ct)
	if _, known := imageExt[ct]; !known {
		return nil, ErrInvalidDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidDataURI
	}
	return &DataURI{ContentType: ct, Data: data}, nil
}

// IsImageDataURI reports whether s parses as an image data URI.
func IsImageDataURI(s string) bool {
	_, err := ParseImageDataURI(s)
	return err == nil
}

// Ext returns the file extension for the content type.
func (d *DataURI) Ext() string {
	return imageExt[d.ContentType]
}
