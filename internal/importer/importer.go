// Package importer reads browsing-history export files into records.
//
// Files may be plain JSON or JSONC (comments and trailing commas), and may
// be gzip- or zstd-compressed. Compression is detected from the leading
// magic bytes, not the file name.
package importer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/tidwall/jsonc"

	"github.com/runnerr0/recall/internal/history"
	"github.com/runnerr0/recall/internal/wire"
)

// MaxImportBytes caps the decompressed size of an import file.
const MaxImportBytes = 256 << 20

// ErrTooLarge is returned when an import exceeds the size cap.
var ErrTooLarge = errors.New("import file too large")

// Compression identifies how an import file was encoded.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Result describes an import.
type Result struct {
	Records     []history.Record
	Compression Compression
	Bytes       int
}

// ReadFile reads and decodes the history file at path.
func ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	res, err := Read(f, MaxImportBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Read decodes a history document from r, decompressing it first when
// needed. At most limit decompressed bytes are accepted.
func Read(r io.Reader, limit int64) (*Result, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var body io.Reader = br
	compression := CompressionNone

	switch {
	case bytes.HasPrefix(header, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		body, compression = zr, CompressionGzip
	case bytes.HasPrefix(header, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		body, compression = zr, CompressionZstd
	}

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s data: %w", compression, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}

	records, err := wire.DecodeDocument(jsonc.ToJSON(data))
	if err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}

	return &Result{Records: records, Compression: compression, Bytes: len(data)}, nil
}
