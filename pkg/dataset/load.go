package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"volumeslices/internal/logging"
	"volumeslices/internal/models"
)

// Compression identifies the outer encoding of a volume file
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	}
	return "none"
}

// ParseCompression accepts "none", "gzip"/"gz" and "zstd"/"zst".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	}
	return 0, fmt.Errorf("unsupported compression: %s", s)
}

// DetectCompression inspects the leading magic bytes of a stream.
func DetectCompression(prefix []byte) Compression {
	switch {
	case bytes.HasPrefix(prefix, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(prefix, gzipMagic):
		return CompressionGzip
	}
	return CompressionNone
}

// Load opens a volume file, transparently decompressing zstd or gzip files.
func Load(path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	ds, comp, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	logging.Logger().Info("dataset loaded",
		"path", path,
		"compression", comp.String(),
		"resolution", fmt.Sprintf("%dx%dx%d", ds.ResolutionX, ds.ResolutionY, ds.ResolutionZ),
		"extent", fmt.Sprintf("%gx%gx%g", ds.ExtentX, ds.ExtentY, ds.ExtentZ),
		"checksum", fmt.Sprintf("%016x", ds.Checksum))
	return ds, nil
}

// Read decodes a volume from r, detecting the outer compression first.
func Read(r io.Reader) (*models.Dataset, Compression, error) {
	br := bufio.NewReader(r)
	prefix, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, CompressionNone, fmt.Errorf("error reading dataset: %w", err)
	}

	comp := DetectCompression(prefix)
	var src io.Reader = br
	switch comp {
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, comp, fmt.Errorf("error opening gzip stream: %w", err)
		}
		defer zr.Close()
		src = zr
	case CompressionZstd:
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, comp, fmt.Errorf("error opening zstd stream: %w", err)
		}
		defer dec.Close()
		src = dec
	}

	ds, err := Decode(src)
	return ds, comp, err
}

// Write encodes ds to w wrapped in the requested compression.
func Write(w io.Writer, ds *models.Dataset, comp Compression) error {
	switch comp {
	case CompressionNone:
		return Encode(w, ds)
	case CompressionGzip:
		zw := gzip.NewWriter(w)
		if err := Encode(zw, ds); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	case CompressionZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		if err := Encode(enc, ds); err != nil {
			enc.Close()
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported compression: %d", comp)
}

// Save writes ds to path, creating or truncating the file.
func Save(path string, ds *models.Dataset, comp Compression) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating dataset file: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := Write(bw, ds, comp); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("error writing dataset file: %w", err)
	}
	return f.Close()
}
