package compression

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	errors "github.com/deploymenttheory/go-interactor/internal/common/errors"
	"github.com/deploymenttheory/go-interactor/internal/common/fsutil"
)

// Supported formats
const (
	FormatZIP   = "zip"
	FormatTAR   = "tar"
	FormatGZIP  = "gzip"
	FormatBZIP2 = "bzip2"
	FormatXZ    = "xz"
	FormatAuto  = "auto"
)

// magic numbers checked in this order; tar's marker sits at offset 257
var magicNumbers = []struct {
	format string
	offset int
	magic  []byte
}{
	{FormatZIP, 0, []byte{0x50, 0x4B, 0x03, 0x04}},
	{FormatGZIP, 0, []byte{0x1F, 0x8B}},
	{FormatBZIP2, 0, []byte{0x42, 0x5A, 0x68}},
	{FormatXZ, 0, []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}},
	{FormatTAR, 257, []byte("ustar")},
}

// DetectArchiveFormat determines the archive format using magic numbers and file extension
func DetectArchiveFormat(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	header := make([]byte, 262)
	n, err := io.ReadFull(file, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	header = header[:n]

	for _, m := range magicNumbers {
		if len(header) >= m.offset+len(m.magic) && bytes.Equal(header[m.offset:m.offset+len(m.magic)], m.magic) {
			return m.format, nil
		}
	}

	// Fallback to extension-based detection
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".zip":
		return FormatZIP, nil
	case ".tar":
		return FormatTAR, nil
	case ".gz", ".tgz":
		return FormatGZIP, nil
	case ".bz2", ".tbz2":
		return FormatBZIP2, nil
	case ".xz", ".txz":
		return FormatXZ, nil
	default:
		return "", fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, filename)
	}
}

// Compress writes src to dst in the given format
func Compress(format, src, dst string) error {
	switch format {
	case FormatZIP:
		return CompressZIP(src, dst)
	case FormatTAR:
		return CompressTAR(src, dst)
	case FormatGZIP:
		return CompressGZIP(src, dst)
	case FormatBZIP2:
		return CompressBZIP2(src, dst)
	case FormatXZ:
		return CompressXZ(src, dst)
	default:
		return fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, format)
	}
}

// Extract unpacks src into dst. FormatAuto detects the format from the file.
func Extract(format, src, dst string) error {
	if format == FormatAuto || format == "" {
		detected, err := DetectArchiveFormat(src)
		if err != nil {
			return fmt.Errorf("%w: %v", errors.ErrInvalidArchive, err)
		}
		format = detected
	}

	switch format {
	case FormatZIP:
		return ExtractZIP(src, dst)
	case FormatTAR:
		return ExtractTAR(src, dst)
	case FormatGZIP:
		return ExtractGZIP(src, dst)
	case FormatBZIP2:
		return ExtractBZIP2(src, dst)
	case FormatXZ:
		return ExtractXZ(src, dst)
	default:
		return fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, format)
	}
}

// compressStream copies the file at src through the writer returned by wrap into dst
func compressStream(src, dst string, wrap func(io.Writer) (io.WriteCloser, error)) (err error) {
	inputFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer inputFile.Close()

	outputFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer fsutil.CloseWith(outputFile, &err)

	w, err := wrap(outputFile)
	if err != nil {
		return err
	}

	if _, err := io.Copy(w, inputFile); err != nil {
		w.Close()
		return fmt.Errorf("%w: %v", errors.ErrCompressionFailed, err)
	}

	return w.Close()
}

// extractStream copies the file at src through the reader returned by wrap into dst
func extractStream(src, dst string, wrap func(io.Reader) (io.Reader, error)) (err error) {
	inputFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer inputFile.Close()

	r, err := wrap(inputFile)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidArchive, err)
	}

	outputFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer fsutil.CloseWith(outputFile, &err)

	if _, err := io.Copy(outputFile, r); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrExtractionFailed, err)
	}

	return nil
}

// safeJoin joins name onto dst and rejects entries that would land outside dst
func safeJoin(dst, name string) (string, error) {
	target := filepath.Join(dst, name)
	rel, err := filepath.Rel(dst, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errors.ErrUnsafeArchivePath, name)
	}
	return target, nil
}
