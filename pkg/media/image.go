// Package media holds the avatar image rules shared by the API and the client.
package media

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// AllowedImageTypes is the canonical avatar allow-list. image/webp is not
// accepted.
var AllowedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
}

// File is an uploaded avatar held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// NormalizeType lowercases a Content-Type and strips its parameters.
func NormalizeType(contentType string) string {
	ct := strings.TrimSpace(contentType)
	if ct == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return strings.ToLower(mt)
	}
	return strings.ToLower(ct)
}

func IsSupportedImage(contentType string) bool {
	ct := NormalizeType(contentType)
	if ct == "" {
		return false
	}
	for _, a := range AllowedImageTypes {
		if ct == a {
			return true
		}
	}
	return false
}

// Sniff detects the content type from the bytes themselves.
func Sniff(data []byte) string {
	return NormalizeType(mimetype.Detect(data).String())
}

// ExtensionFor picks the object-key extension: the file's own extension when it
// looks sane, otherwise one derived from the content type.
func ExtensionFor(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if validExt(ext) {
		return ext
	}
	switch NormalizeType(contentType) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

var (
	ErrNoFile      = errors.New("media: no file")
	ErrTooLarge    = errors.New("media: file too large")
	ErrUnsupported = errors.New("media: unsupported image type")
)

// Validate checks f against the avatar rules: non-empty, at most max bytes
// (max <= 0 disables the limit), declared and sniffed types both allowed.
func Validate(f File, max int64) error {
	if len(f.Data) == 0 {
		return ErrNoFile
	}
	if max > 0 && int64(len(f.Data)) > max {
		return ErrTooLarge
	}
	if !IsSupportedImage(f.ContentType) || !IsSupportedImage(Sniff(f.Data)) {
		return ErrUnsupported
	}
	return nil
}
