package compression

import (
	"io"

	"github.com/dsnet/compress/bzip2"
)

// CompressBZIP2 compresses a file using BZIP2 format
func CompressBZIP2(src, dst string) error {
	return compressStream(src, dst, func(w io.Writer) (io.WriteCloser, error) {
		return bzip2.NewWriter(w, nil)
	})
}

// ExtractBZIP2 decompresses a BZIP2 file
func ExtractBZIP2(src, dst string) error {
	return extractStream(src, dst, func(r io.Reader) (io.Reader, error) {
		return bzip2.NewReader(r, nil)
	})
}
