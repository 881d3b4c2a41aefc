package media

import (
	"fmt"
	"io"
	"os"
)

// Preview is a materialized copy of an image attachment used for
// rendering. It owns a temp file that must be released when the
// preview is replaced or its owner is discarded, so handles are not
// leaked across the session.
type Preview struct {
	Path string
}

// EnsurePreview materializes a preview for image attachments. Non-image
// attachments have no preview and return nil.
func (a *Attachment) EnsurePreview() (*Preview, error) {
	if a.Kind != KindImage {
		return nil, nil
	}
	if a.preview != nil {
		return a.preview, nil
	}

	src, err := os.Open(a.Path)
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	defer func() { _ = src.Close() }()

	tmp, err := os.CreateTemp("", "mingle-preview-*"+a.Name)
	if err != nil {
		return nil, fmt.Errorf("create preview: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("copy preview: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, err
	}

	a.preview = &Preview{Path: tmp.Name()}
	return a.preview, nil
}

// ReleasePreview removes the materialized preview, if any. Idempotent.
func (a *Attachment) ReleasePreview() {
	if a.preview == nil {
		return
	}
	_ = os.Remove(a.preview.Path)
	a.preview = nil
}
