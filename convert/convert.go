// Package convert maps raw 24-bit channel codes to microvolts.
package convert

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/bemasher/eegacq/decode"
)

const (
	// Offset recenters unsigned codes around zero, half the 24-bit range.
	Offset = 1 << 23

	// Scale is the sensor's transfer function in microvolts per code:
	// 5,000,000 / 2^24.
	Scale = 5e6 / (1 << 24)
)

// Code converts a single raw channel value to microvolts.
func Code(v uint32) float64 {
	return (float64(v) - Offset) * Scale
}

// Microvolts converts every decoded value, preserving the [frames x channels]
// shape. Returns an empty matrix if codes holds no frames.
func Microvolts(codes decode.Codes) *mat.Dense {
	if codes.Rows == 0 || codes.Cols == 0 {
		return &mat.Dense{}
	}

	data := make([]float64, len(codes.Data))
	for idx, v := range codes.Data {
		data[idx] = float64(v)
	}

	floats.AddConst(-Offset, data)
	floats.Scale(Scale, data)

	return mat.NewDense(codes.Rows, codes.Cols, data)
}
