package rinex

import (
	"io"
	"os"
	"strings"

	"github.com/mholt/archiver/v3"
)

// OpenFile opens path for reading, transparently gunzipping when the name
// ends in ".gz" (spec.md §6.1: "decoder must handle gzip transparently
// when the extension is present"). The teacher's own cmd/rnxgo reaches
// for archiver.DecompressFile to do this on disk; here the same library
// is used in streaming form so any caller of the core decoders gets it,
// not just a command-line front end.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return f, nil
	}
	return gunzipReader(f)
}

// gunzipReader wraps r with archiver's streaming gzip decompressor,
// closing the underlying file when the returned reader is closed.
func gunzipReader(f *os.File) (io.ReadCloser, error) {
	pr, pw := io.Pipe()
	gz := archiver.NewGz()
	go func() {
		err := gz.Decompress(f, pw)
		pw.CloseWithError(err)
		f.Close()
	}()
	return pr, nil
}
