package health

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Extensions lists the accepted file name suffixes for raw sample exports.
var Extensions = []string{".json", ".json.gz", ".json.zst", ".json.br"}

// HasExtension reports whether path ends in one of Extensions.
func HasExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

type wrappedReader struct {
	r     io.Reader
	close func() error
}

func (w *wrappedReader) Read(p []byte) (int, error) { return w.r.Read(p) }
func (w *wrappedReader) Close() error               { return w.close() }

// decompress wraps f with a decoder picked from the file extension.
// Uncompressed files are returned as is. Closing the result closes f.
func decompress(path string, f io.ReadCloser) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		r, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &wrappedReader{r: r, close: func() error {
			r.Close()
			return f.Close()
		}}, nil
	case ".zst":
		d, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &wrappedReader{r: d, close: func() error {
			d.Close()
			return f.Close()
		}}, nil
	case ".br":
		return &wrappedReader{r: brotli.NewReader(f), close: f.Close}, nil
	}
	return f, nil
}
