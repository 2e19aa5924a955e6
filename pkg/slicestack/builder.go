// Package slicestack implements object-aligned 2D texture slicing: the volume
// is cut into three stacks of textures, one per principal axis, and each frame
// the stack most aligned with the view is drawn back to front.
package slicestack

import (
	"fmt"

	"volumeslices/internal/logging"
	"volumeslices/internal/models"
	"volumeslices/pkg/graphics"
)

// VolumeSlice is one texture of a stack.
type VolumeSlice struct {
	Texture graphics.TextureHandle
}

// SliceStack holds the slices along one axis, index 0 at the lowest coordinate.
type SliceStack struct {
	Axis   models.Axis
	Width  int
	Height int
	Slices []VolumeSlice
}

// Len returns the number of slices.
func (s *SliceStack) Len() int { return len(s.Slices) }

// Stacks are the three slice stacks built from one dataset.
type Stacks [3]SliceStack

// Stack returns the stack for axis.
func (s *Stacks) Stack(axis models.Axis) *SliceStack {
	return &s[axis]
}

// SliceCount is the total number of slices across all stacks.
func (s *Stacks) SliceCount() int {
	return s[0].Len() + s[1].Len() + s[2].Len()
}

// Release deletes every slice texture and empties the stacks.
func (s *Stacks) Release(gfx graphics.Backend) {
	for i := range s {
		for _, slice := range s[i].Slices {
			gfx.DeleteTexture2D(slice.Texture)
		}
		s[i].Slices = nil
	}
}

// SliceDimensions returns the texel size of one slice and the number of slices
// along axis for a resX x resY x resZ grid.
func SliceDimensions(axis models.Axis, resX, resY, resZ int) (width, height, count int) {
	switch axis {
	case models.AxisX:
		return resZ, resY, resX
	case models.AxisY:
		return resX, resZ, resY
	default:
		return resX, resY, resZ
	}
}

// SourceIndex maps a texel (column, row) of slice depth along axis back to the
// flat dataset index (z*Y + y)*X + x.
//
//	X stack: x=depth,  y=row,   z=column
//	Y stack: x=column, y=depth, z=row
//	Z stack: x=column, y=row,   z=depth
func SourceIndex(axis models.Axis, column, row, depth, resX, resY int) int {
	var x, y, z int
	switch axis {
	case models.AxisX:
		x, y, z = depth, row, column
	case models.AxisY:
		x, y, z = column, depth, row
	default:
		x, y, z = column, row, depth
	}
	return (z*resY+y)*resX + x
}

// ExtractSlice copies slice index of the axis stack into a tightly packed
// width*height buffer, rows first.
func ExtractSlice(ds *models.Dataset, axis models.Axis, index int) ([]byte, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	resX, resY, resZ := int(ds.ResolutionX), int(ds.ResolutionY), int(ds.ResolutionZ)
	width, height, count := SliceDimensions(axis, resX, resY, resZ)
	if index < 0 || index >= count {
		return nil, fmt.Errorf("slice %d out of range for %s axis with %d slices", index, axis, count)
	}

	texels := make([]byte, width*height)
	for row := 0; row < height; row++ {
		for column := 0; column < width; column++ {
			texels[row*width+column] = ds.Data[SourceIndex(axis, column, row, index, resX, resY)]
		}
	}
	return texels, nil
}

// sliceTextureSpec is the upload format of every slice: one unsigned byte
// channel, no row padding, no interpolation, black outside the slice.
func sliceTextureSpec(width, height int) graphics.TextureSpec {
	return graphics.TextureSpec{
		Width:        width,
		Height:       height,
		Format:       graphics.Grayscale,
		RowAlignment: 1,
		Filter:       graphics.Nearest,
		Wrap:         graphics.ClampToBorder,
		BorderColor:  [4]float32{0, 0, 0, 0},
	}
}

// BuildStacks uploads the X, Y and Z slice stacks of ds. The dataset is
// validated before anything is created; if an upload fails, the textures
// created so far are deleted and the error returned.
func BuildStacks(gfx graphics.Backend, ds *models.Dataset) (Stacks, error) {
	var stacks Stacks
	if err := ds.Validate(); err != nil {
		return stacks, fmt.Errorf("refusing to build slice stacks: %w", err)
	}

	resX, resY, resZ := int(ds.ResolutionX), int(ds.ResolutionY), int(ds.ResolutionZ)
	for _, axis := range models.Axes {
		width, height, count := SliceDimensions(axis, resX, resY, resZ)
		stack := SliceStack{
			Axis:   axis,
			Width:  width,
			Height: height,
			Slices: make([]VolumeSlice, 0, count),
		}
		stacks[axis] = stack

		for index := 0; index < count; index++ {
			texels, err := ExtractSlice(ds, axis, index)
			if err != nil {
				stacks.Release(gfx)
				return Stacks{}, err
			}
			tex, err := gfx.CreateTexture2D(sliceTextureSpec(width, height), texels)
			if err == nil && tex == 0 {
				err = graphics.ErrResourceAllocation
			}
			if err != nil {
				stacks.Release(gfx)
				return Stacks{}, fmt.Errorf("failed to create %s slice %d texture: %w", axis, index, err)
			}
			stacks[axis].Slices = append(stacks[axis].Slices, VolumeSlice{Texture: tex})
		}

		logging.Logger().Debug("slice stack built", "axis", axis.String(), "slices", count, "width", width, "height", height)
	}
	return stacks, nil
}
