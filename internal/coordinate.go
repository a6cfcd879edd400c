package internal

import (
	"fmt"
	"math"
)

// coordinateScale rounds to 4 decimal places, roughly 11 m at the equator.
const coordinateScale = 10000

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// IsZero reports whether c is (0,0), which cameras write when they have no fix.
func (c Coordinate) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

// Rounded returns c with both components passed through Round4.
func (c Coordinate) Rounded() Coordinate {
	return Coordinate{
		Latitude:  Round4(c.Latitude),
		Longitude: Round4(c.Longitude),
	}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.4f,%.4f)", c.Latitude, c.Longitude)
}

// Round4 rounds x to 4 decimal places, halves away from zero.
// The half is judged on the binary value of x*10000, so a literal such as
// 0.00005 is not guaranteed to round up.
func Round4(x float64) float64 {
	return math.Round(x*coordinateScale) / coordinateScale
}
