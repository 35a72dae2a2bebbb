package compression

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	commonerrors "github.com/deploymenttheory/go-interactor/internal/common/errors"
)

func TestStreamRoundTrip(t *testing.T) {
	formats := []string{FormatGZIP, FormatBZIP2, FormatXZ}
	content := []byte("organized steps share one context\n")

	for _, format := range formats {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "input.txt")
			archive := filepath.Join(dir, "input.archive")
			out := filepath.Join(dir, "output.txt")

			if err := os.WriteFile(src, content, 0644); err != nil {
				t.Fatal(err)
			}
			if err := Compress(format, src, archive); err != nil {
				t.Fatalf("Compress(%s) failed: %v", format, err)
			}

			detected, err := DetectArchiveFormat(archive)
			if err != nil {
				t.Fatalf("DetectArchiveFormat failed: %v", err)
			}
			if detected != format {
				t.Errorf("detected %q, want %q", detected, format)
			}

			if err := Extract(FormatAuto, archive, out); err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			got, err := os.ReadFile(out)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != string(content) {
				t.Errorf("extracted %q, want %q", got, content)
			}
		})
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	for _, format := range []string{FormatZIP, FormatTAR} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			srcDir := filepath.Join(dir, "app")
			if err := os.MkdirAll(filepath.Join(srcDir, "bin"), 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(srcDir, "bin", "run"), []byte("#!/bin/sh\n"), 0755); err != nil {
				t.Fatal(err)
			}

			archive := filepath.Join(dir, "app."+format)
			if err := Compress(format, srcDir, archive); err != nil {
				t.Fatalf("Compress failed: %v", err)
			}

			dst := filepath.Join(dir, "out")
			if err := Extract(format, archive, dst); err != nil {
				t.Fatalf("Extract failed: %v", err)
			}

			got, err := os.ReadFile(filepath.Join(dst, "app", "bin", "run"))
			if err != nil {
				t.Fatalf("extracted file missing: %v", err)
			}
			if string(got) != "#!/bin/sh\n" {
				t.Errorf("content = %q", got)
			}
		})
	}
}

func TestUnsupportedFormat(t *testing.T) {
	err := Compress("rar", "a", "b")
	if !errors.Is(err, commonerrors.ErrUnsupportedCompression) {
		t.Errorf("err = %v, want ErrUnsupportedCompression", err)
	}
}

func TestSafeJoinRejectsTraversal(t *testing.T) {
	if _, err := safeJoin("/tmp/out", "../etc/passwd"); !errors.Is(err, commonerrors.ErrUnsafeArchivePath) {
		t.Errorf("err = %v, want ErrUnsafeArchivePath", err)
	}
	if _, err := safeJoin("/tmp/out", "app/bin/run"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
