// Package media handles message attachments and profile photos on the
// client side: kind detection, display metadata and preview lifecycle.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Kind tags an attachment as an image or a generic file.
type Kind string

const (
	KindImage Kind = "image"
	KindFile  Kind = "file"
)

// MaxPhotoBytes is the upload ceiling for profile photos.
const MaxPhotoBytes = 5 * 1024 * 1024

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// Attachment describes a file staged for sending with a message.
type Attachment struct {
	ID        string
	Path      string
	Kind      Kind
	Name      string
	SizeLabel string

	preview *Preview
}

// FromFile builds an Attachment from a local path. The file must exist.
func FromFile(path string) (*Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat attachment: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("attachment %q is a directory", path)
	}

	kind := KindFile
	if IsImagePath(path) {
		kind = KindImage
	}

	return &Attachment{
		ID:        uuid.New().String(),
		Path:      path,
		Kind:      kind,
		Name:      filepath.Base(path),
		SizeLabel: HumanSize(info.Size()),
	}, nil
}

// IsImagePath reports whether path looks like an image by extension.
func IsImagePath(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// HumanSize renders a byte count the way the composer displays it.
func HumanSize(n int64) string {
	switch {
	case n >= 1024*1024*1024:
		return fmt.Sprintf("%.1f GB", float64(n)/(1024*1024*1024))
	case n >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// ValidatePhoto enforces the profile photo constraints: must be an
// image and at most MaxPhotoBytes.
func ValidatePhoto(path string) error {
	if !IsImagePath(path) {
		return fmt.Errorf("please select an image file")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat photo: %w", err)
	}
	if info.Size() > MaxPhotoBytes {
		return fmt.Errorf("image must be less than 5MB")
	}
	return nil
}
