package compression

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"

	"github.com/deploymenttheory/go-interactor/internal/common/fsutil"
)

// CompressTAR creates a TAR archive from the given source directory or file
func CompressTAR(src, dst string) (err error) {
	outFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer fsutil.CloseWith(outFile, &err)

	tw := tar.NewWriter(outFile)

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

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(relPath)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		_, err = io.Copy(tw, file)
		return err
	})
	if err != nil {
		tw.Close()
		return err
	}

	return tw.Close()
}

// ExtractTAR extracts a TAR archive to the given destination
func ExtractTAR(src, dst string) error {
	file, err := os.Open(src)
	if err != nil {
		return err
	}
	defer file.Close()

	tr := tar.NewReader(file)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		fpath, err := safeJoin(dst, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(fpath, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := extractTAREntry(tr, fpath); err != nil {
				return err
			}
		}
	}

	return nil
}

func extractTAREntry(r io.Reader, fpath string) (err error) {
	if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
		return err
	}

	outFile, err := os.Create(fpath)
	if err != nil {
		return err
	}
	defer fsutil.CloseWith(outFile, &err)

	_, err = io.Copy(outFile, r)
	return err
}
