package models

import (
	"errors"
	"testing"
	"unsafe"
)

func TestDatasetValidate(t *testing.T) {
	ds := &Dataset{ResolutionX: 2, ResolutionY: 3, ResolutionZ: 4, Data: make([]byte, 24)}
	if err := ds.Validate(); err != nil {
		t.Errorf("Expected a valid dataset, got %v", err)
	}

	ds.Data = ds.Data[:23]
	if err := ds.Validate(); !errors.Is(err, ErrDatasetSize) {
		t.Errorf("Expected ErrDatasetSize, got %v", err)
	}

	var missing *Dataset
	if err := missing.Validate(); !errors.Is(err, ErrDatasetSize) {
		t.Errorf("Expected ErrDatasetSize for nil, got %v", err)
	}
}

func TestParseAxis(t *testing.T) {
	for _, axis := range Axes {
		got, err := ParseAxis(axis.String())
		if err != nil || got != axis {
			t.Errorf("ParseAxis(%q) = %v, %v", axis.String(), got, err)
		}
	}
	if _, err := ParseAxis("w"); err == nil {
		t.Error("Expected error for invalid axis, got nil")
	}
}

func TestViewCaseString(t *testing.T) {
	if s := (ViewCase{Axis: AxisY, Direction: Negative}).String(); s != "-y" {
		t.Errorf("Expected -y, got %s", s)
	}
	if s := (ViewCase{Axis: AxisX, Direction: Positive}).String(); s != "+x" {
		t.Errorf("Expected +x, got %s", s)
	}
}

func TestVertexLayout(t *testing.T) {
	var v Vertex
	if got := int(unsafe.Sizeof(v)); got != VertexStride {
		t.Errorf("Expected vertex size %d, got %d", VertexStride, got)
	}
	if got := int(unsafe.Offsetof(v.TexCoord)); got != TexCoordOffset {
		t.Errorf("Expected texcoord offset %d, got %d", TexCoordOffset, got)
	}
}
