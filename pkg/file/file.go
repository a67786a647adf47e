package file

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Object describes a stored document.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	URL         string
}

// Storage keeps exported documents under slash-separated keys.
type Storage interface {
	// Put stores data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) (*Object, error)
	// Exists reports whether key is stored.
	Exists(ctx context.Context, key string) bool
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL for key.
	URL(key string) string
}

// Key joins sanitized segments into an object key.
//
//	file.Key("owner-1", "intern-7", "offer-letter-anu-priya.pdf")
//	// "owner-1/intern-7/offer-letter-anu-priya.pdf"
func Key(segments ...string) string {
	clean := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = SanitizeFilename(s); s != "unnamed" {
			clean = append(clean, s)
		}
	}
	return strings.Join(clean, "/")
}

// SanitizeFilename drops any directory components and NUL bytes.
// Returns "unnamed" for empty or special directory references.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = strings.ReplaceAll(filename, "\x00", "")
	filename = path.Base(filename)

	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		return "unnamed"
	}
	return filename
}

func validateKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %s", ErrInvalidKey, key)
		}
	}
	return key, nil
}
