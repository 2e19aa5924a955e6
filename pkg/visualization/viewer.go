// Package visualization writes the slice stacks of a dataset to disk as image
// sequences, one file per slice, using the same texel layout the GPU stacks use.
package visualization

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"volumeslices/internal/logging"
	"volumeslices/internal/models"
	"volumeslices/pkg/slicestack"
)

// Format is an image file format for exported slices
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatTIFF Format = "tiff"
	FormatBMP  Format = "bmp"
)

// ParseFormat accepts png, jpeg (or jpg), tiff and bmp.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	case "bmp":
		return FormatBMP, nil
	}
	return "", fmt.Errorf("unknown image format %q (must be png, jpeg, tiff or bmp)", s)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// Viewer extracts 2D slices from a dataset and writes them as images.
type Viewer struct {
	ds      *models.Dataset
	format  Format
	quality int
}

// NewViewer creates a slice exporter for ds. quality only applies to JPEG.
func NewViewer(ds *models.Dataset, format Format, quality int) (*Viewer, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if quality < 1 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	return &Viewer{ds: ds, format: format, quality: quality}, nil
}

// ExtractSlice extracts slice index of the axis stack as a grayscale image.
// Image columns and rows follow the slice texture layout.
func (v *Viewer) ExtractSlice(axis models.Axis, index int) (*image.Gray, error) {
	texels, err := slicestack.ExtractSlice(v.ds, axis, index)
	if err != nil {
		return nil, err
	}

	width, height, _ := slicestack.SliceDimensions(axis,
		int(v.ds.ResolutionX), int(v.ds.ResolutionY), int(v.ds.ResolutionZ))
	return &image.Gray{
		Pix:    texels,
		Stride: width,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}

// Encode writes img to w in the viewer's format.
func (v *Viewer) Encode(w io.Writer, img image.Image) error {
	switch v.format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: v.quality})
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatBMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unknown image format %q", v.format)
}

// SaveSlice saves an extracted slice to filename
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := v.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	return file.Close()
}

// SliceFilename is the name of slice index of axis inside an export directory.
func (v *Viewer) SliceFilename(axis models.Axis, index int) string {
	return fmt.Sprintf("slice_%s_%03d%s", axis, index, v.format.Extension())
}

// SaveSliceSequence extracts and saves every slice along axis, returning the
// number of files written.
func (v *Viewer) SaveSliceSequence(axis models.Axis, outputDir string) (int, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, err
	}

	_, _, count := slicestack.SliceDimensions(axis,
		int(v.ds.ResolutionX), int(v.ds.ResolutionY), int(v.ds.ResolutionZ))
	for index := 0; index < count; index++ {
		img, err := v.ExtractSlice(axis, index)
		if err != nil {
			return index, err
		}

		filename := filepath.Join(outputDir, v.SliceFilename(axis, index))
		if err := v.SaveSlice(img, filename); err != nil {
			return index, err
		}
	}

	logging.Logger().Debug("slice sequence saved", "axis", axis.String(), "slices", count, "dir", outputDir)
	return count, nil
}

// SaveAllStacks writes the X, Y and Z sequences into outputDir.
func (v *Viewer) SaveAllStacks(outputDir string) (int, error) {
	total := 0
	for _, axis := range models.Axes {
		n, err := v.SaveSliceSequence(axis, outputDir)
		total += n
		if err != nil {
			return total, fmt.Errorf("failed to export %s stack: %w", axis, err)
		}
	}

	logging.Logger().Info("slice stacks exported", "dir", outputDir, "files", total, "format", string(v.format))
	return total, nil
}
