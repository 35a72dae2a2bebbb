package compression

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/deploymenttheory/go-interactor/internal/common/fsutil"
)

// CompressZIP creates a ZIP archive from a given source directory or file
func CompressZIP(src, dst string) (err error) {
	zipFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create zip file: %w", err)
	}
	defer fsutil.CloseWith(zipFile, &err)

	zipWriter := zip.NewWriter(zipFile)

	err = filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(filepath.Dir(src), path)
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		zipEntry, err := zipWriter.Create(filepath.ToSlash(relPath))
		if err != nil {
			return err
		}
		_, err = io.Copy(zipEntry, file)
		return err
	})
	if err != nil {
		zipWriter.Close()
		return err
	}

	return zipWriter.Close()
}

// ExtractZIP extracts a ZIP archive to the given destination
func ExtractZIP(src, dst string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		fpath, err := safeJoin(dst, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, 0755); err != nil {
				return err
			}
			continue
		}

		if err := extractZIPEntry(f, fpath); err != nil {
			return err
		}
	}

	return nil
}

func extractZIPEntry(f *zip.File, fpath string) (err error) {
	if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
		return err
	}

	outFile, err := os.Create(fpath)
	if err != nil {
		return err
	}
	defer fsutil.CloseWith(outFile, &err)

	zippedFile, err := f.Open()
	if err != nil {
		return err
	}
	defer zippedFile.Close()

	_, err = io.Copy(outFile, zippedFile)
	return err
}
