package compression

import (
	"io"

	"github.com/ulikunitz/xz"
)

// CompressXZ compresses a file using XZ format
func CompressXZ(src, dst string) error {
	return compressStream(src, dst, func(w io.Writer) (io.WriteCloser, error) {
		return xz.NewWriter(w)
	})
}

// ExtractXZ decompresses an XZ file
func ExtractXZ(src, dst string) error {
	return extractStream(src, dst, func(r io.Reader) (io.Reader, error) {
		return xz.NewReader(r)
	})
}
