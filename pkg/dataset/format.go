// Package dataset reads and writes scalar volume files: a 28-byte big-endian
// header (three uint32 grid resolutions, a uint32 border size and three float32
// extents) followed by X*Y*Z unsigned byte samples, Z outermost.
package dataset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/cespare/xxhash/v2"

	"volumeslices/internal/models"
)

// HeaderSize is the byte length of the fixed file header.
const HeaderSize = 7 * 4

// MaxSamples bounds X*Y*Z so a corrupt header cannot request an absurd allocation.
const MaxSamples = 1 << 32

// initialReserve caps the up-front sample buffer; the rest grows as bytes
// actually arrive, so a short file fails before the claimed size is allocated.
const initialReserve = 1 << 20

var (
	// ErrTruncated is returned when the file ends inside the header or the samples.
	ErrTruncated = errors.New("dataset file truncated")
	// ErrTooLarge is returned when the header resolution exceeds MaxSamples.
	ErrTooLarge = errors.New("dataset resolution too large")
)

var hostLittleEndian = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// Swap32 reverses the byte order of v.
func Swap32(v uint32) uint32 {
	return bits.ReverseBytes32(v)
}

// SwapFloat32 reverses the byte order of f's IEEE-754 representation.
func SwapFloat32(f float32) float32 {
	return math.Float32frombits(Swap32(math.Float32bits(f)))
}

// bigEndianToHost32 converts a field read in host order from big-endian storage.
func bigEndianToHost32(raw uint32) uint32 {
	if hostLittleEndian {
		return Swap32(raw)
	}
	return raw
}

func bigEndianToHostFloat32(raw float32) float32 {
	if hostLittleEndian {
		return SwapFloat32(raw)
	}
	return raw
}

// Header is the decoded fixed-size file header in host byte order.
type Header struct {
	ResolutionX, ResolutionY, ResolutionZ uint32
	BorderSize                            uint32
	ExtentX, ExtentY, ExtentZ             float32
}

// SampleCount returns X*Y*Z as a 64-bit count.
func (h Header) SampleCount() uint64 {
	return uint64(h.ResolutionX) * uint64(h.ResolutionY) * uint64(h.ResolutionZ)
}

// parseHeader reads the raw fields in host order and swaps them from big-endian.
func parseHeader(b [HeaderSize]byte) Header {
	field := func(i int) uint32 {
		return binary.NativeEndian.Uint32(b[i*4 : i*4+4])
	}
	return Header{
		ResolutionX: bigEndianToHost32(field(0)),
		ResolutionY: bigEndianToHost32(field(1)),
		ResolutionZ: bigEndianToHost32(field(2)),
		BorderSize:  bigEndianToHost32(field(3)),
		ExtentX:     bigEndianToHostFloat32(math.Float32frombits(field(4))),
		ExtentY:     bigEndianToHostFloat32(math.Float32frombits(field(5))),
		ExtentZ:     bigEndianToHostFloat32(math.Float32frombits(field(6))),
	}
}

// ReadHeader decodes only the header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var b [HeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Header{}, truncated("header", err)
	}
	return parseHeader(b), nil
}

// Decode reads an uncompressed volume from r. The returned dataset satisfies
// len(Data) == X*Y*Z and carries the xxhash64 checksum of its samples.
func Decode(r io.Reader) (*models.Dataset, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	count := h.SampleCount()
	if count > MaxSamples {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrTooLarge, h.ResolutionX, h.ResolutionY, h.ResolutionZ)
	}

	var buf bytes.Buffer
	buf.Grow(int(min(count, initialReserve)))
	if _, err := io.CopyN(&buf, r, int64(count)); err != nil {
		return nil, truncated("samples", err)
	}
	data := buf.Bytes()

	return &models.Dataset{
		ResolutionX: h.ResolutionX,
		ResolutionY: h.ResolutionY,
		ResolutionZ: h.ResolutionZ,
		BorderSize:  h.BorderSize,
		ExtentX:     h.ExtentX,
		ExtentY:     h.ExtentY,
		ExtentZ:     h.ExtentZ,
		Data:        data,
		Checksum:    xxhash.Sum64(data),
	}, nil
}

// Encode writes ds to w in the uncompressed volume format.
func Encode(w io.Writer, ds *models.Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}

	var b [HeaderSize]byte
	binary.BigEndian.PutUint32(b[0:], ds.ResolutionX)
	binary.BigEndian.PutUint32(b[4:], ds.ResolutionY)
	binary.BigEndian.PutUint32(b[8:], ds.ResolutionZ)
	binary.BigEndian.PutUint32(b[12:], ds.BorderSize)
	binary.BigEndian.PutUint32(b[16:], math.Float32bits(ds.ExtentX))
	binary.BigEndian.PutUint32(b[20:], math.Float32bits(ds.ExtentY))
	binary.BigEndian.PutUint32(b[24:], math.Float32bits(ds.ExtentZ))

	if _, err := w.Write(b[:]); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	if _, err := w.Write(ds.Data); err != nil {
		return fmt.Errorf("error writing samples: %w", err)
	}
	return nil
}

func truncated(part string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s", ErrTruncated, part)
	}
	return fmt.Errorf("error reading %s: %w", part, err)
}
