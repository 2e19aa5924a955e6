package dataset

import (
	"gonum.org/v1/gonum/stat"

	"volumeslices/internal/models"
)

// Summary describes the intensity distribution of a dataset
type Summary struct {
	Min, Max     uint8
	Mean, StdDev float64
	Median       float64
	// Occupancy is the fraction of samples that are non-zero.
	Occupancy float64
}

// Histogram counts the occurrences of each byte value.
func Histogram(data []byte) [256]float64 {
	var h [256]float64
	for _, v := range data {
		h[v]++
	}
	return h
}

// Summarize computes intensity statistics from the sample histogram, so the
// cost is one pass over the samples regardless of their count.
func Summarize(ds *models.Dataset) Summary {
	if ds == nil || len(ds.Data) == 0 {
		return Summary{}
	}

	hist := Histogram(ds.Data)
	values := make([]float64, 256)
	for i := range values {
		values[i] = float64(i)
	}

	var s Summary
	s.Mean, s.StdDev = stat.MeanStdDev(values, hist[:])
	s.Median = stat.Quantile(0.5, stat.Empirical, values, hist[:])

	for i := 0; i < 256; i++ {
		if hist[i] > 0 {
			s.Min = uint8(i)
			break
		}
	}
	for i := 255; i >= 0; i-- {
		if hist[i] > 0 {
			s.Max = uint8(i)
			break
		}
	}
	s.Occupancy = 1 - hist[0]/float64(len(ds.Data))
	return s
}
