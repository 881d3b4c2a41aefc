package media

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, make([]byte, size), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromFile(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		wantKind Kind
	}{
		{"png is image", "photo.png", KindImage},
		{"jpeg is image", "photo.JPEG", KindImage},
		{"pdf is file", "resume.pdf", KindFile},
		{"no extension is file", "notes", KindFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, 10)
			a, err := FromFile(path)
			if err != nil {
				t.Fatalf("FromFile() error = %v", err)
			}
			if a.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", a.Kind, tt.wantKind)
			}
			if a.Name != filepath.Base(path) {
				t.Errorf("Name = %q, want %q", a.Name, filepath.Base(path))
			}
			if a.ID == "" {
				t.Error("ID is empty")
			}
		})
	}
}

func TestFromFileMissing(t *testing.T) {
	if _, err := FromFile("/nonexistent/file.png"); err == nil {
		t.Error("FromFile() expected error for missing file")
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
		{int64(1536) * 1024 * 1024, "1.5 GB"},
	}
	for _, tt := range tests {
		if got := HumanSize(tt.n); got != tt.want {
			t.Errorf("HumanSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestValidatePhoto(t *testing.T) {
	small := writeFile(t, "ok.png", 100)
	if err := ValidatePhoto(small); err != nil {
		t.Errorf("ValidatePhoto(small image) error = %v", err)
	}

	notImage := writeFile(t, "doc.pdf", 100)
	if err := ValidatePhoto(notImage); err == nil {
		t.Error("ValidatePhoto(pdf) should fail")
	}

	big := writeFile(t, "big.png", MaxPhotoBytes+1)
	if err := ValidatePhoto(big); err == nil {
		t.Error("ValidatePhoto(>5MB) should fail")
	}
}

func TestPreviewLifecycle(t *testing.T) {
	path := writeFile(t, "photo.png", 64)
	a, err := FromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	p, err := a.EnsurePreview()
	if err != nil {
		t.Fatalf("EnsurePreview() error = %v", err)
	}
	if p == nil {
		t.Fatal("EnsurePreview() returned nil for image")
	}
	if _, err := os.Stat(p.Path); err != nil {
		t.Fatalf("preview file missing: %v", err)
	}

	// Second call reuses the same preview.
	p2, err := a.EnsurePreview()
	if err != nil {
		t.Fatal(err)
	}
	if p2.Path != p.Path {
		t.Errorf("second EnsurePreview() = %q, want %q", p2.Path, p.Path)
	}

	a.ReleasePreview()
	if _, err := os.Stat(p.Path); !os.IsNotExist(err) {
		t.Errorf("preview file still exists after release: %v", err)
	}
	// Idempotent.
	a.ReleasePreview()
}

func TestNoPreviewForFiles(t *testing.T) {
	path := writeFile(t, "doc.txt", 64)
	a, err := FromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	p, err := a.EnsurePreview()
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Errorf("EnsurePreview() = %v, want nil for non-image", p)
	}
}
