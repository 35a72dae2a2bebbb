package compression

import (
	"compress/gzip"
	"io"
)

// CompressGZIP compresses a file using GZIP format
func CompressGZIP(src, dst string) error {
	return compressStream(src, dst, func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriter(w), nil
	})
}

// ExtractGZIP decompresses a GZIP file
func ExtractGZIP(src, dst string) error {
	return extractStream(src, dst, func(r io.Reader) (io.Reader, error) {
		return gzip.NewReader(r)
	})
}
