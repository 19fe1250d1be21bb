// Package raster provides the in-memory grid data model used by the filter
// engine, along with reading and writing of grids in the ESRI ASCII grid
// format. A grid is a dense 2D array of float64 samples with an explicit
// nodata sentinel marking absent measurements.
package raster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultNodata is the nodata sentinel assumed when an input file does not
// declare one. -9999 is the conventional value for ASCII grids.
const DefaultNodata = -9999.0

// Grid is a dense row-major raster of float64 samples.
//
// During a filter run the input grid is shared read-only across all workers;
// none of the methods below mutate state except Set, SetRow and AddMetadata,
// which callers must not invoke concurrently with reads.
type Grid struct {
	// Rows and Cols are the grid dimensions. Both are positive.
	Rows int
	Cols int

	// Nodata is the sentinel value meaning "no valid measurement here".
	// It is compared with ==, never treated as a numeric sample.
	Nodata float64

	// XLLCorner, YLLCorner and CellSize carry the georeferencing header of
	// the source file through to the output. They do not affect filtering.
	XLLCorner float64
	YLLCorner float64
	CellSize  float64

	// Data holds Rows*Cols samples in row-major order.
	Data []float64

	// Metadata holds free-form provenance entries written as trailing
	// comment lines when the grid is saved.
	Metadata []string
}

// NewGrid allocates a rows x cols grid with every cell set to nodata.
func NewGrid(rows, cols int, nodata float64) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", rows, cols)
	}
	g := &Grid{
		Rows:     rows,
		Cols:     cols,
		Nodata:   nodata,
		CellSize: 1,
		Data:     make([]float64, rows*cols),
	}
	for i := range g.Data {
		g.Data[i] = nodata
	}
	return g, nil
}

// NewGridLike allocates a grid with the same dimensions, nodata value and
// georeferencing as src, with every cell set to nodata. The original tool
// initializes its output raster from the input file the same way.
func NewGridLike(src *Grid) *Grid {
	g, _ := NewGrid(src.Rows, src.Cols, src.Nodata)
	g.XLLCorner = src.XLLCorner
	g.YLLCorner = src.YLLCorner
	g.CellSize = src.CellSize
	return g
}

// Value returns the sample at (row, col), or the nodata sentinel for any
// coordinate outside the grid. Cells past the edge are treated as missing,
// never wrapped or clamped.
func (g *Grid) Value(row, col int) float64 {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return g.Nodata
	}
	return g.Data[row*g.Cols+col]
}

// Set stores v at (row, col). Out-of-range coordinates are ignored.
func (g *Grid) Set(row, col int, v float64) {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return
	}
	g.Data[row*g.Cols+col] = v
}

// SetRow replaces one full row of the grid. The slice must hold exactly
// Cols values.
func (g *Grid) SetRow(row int, values []float64) error {
	if row < 0 || row >= g.Rows {
		return fmt.Errorf("row %d out of range [0,%d)", row, g.Rows)
	}
	if len(values) != g.Cols {
		return fmt.Errorf("row %d has %d values, want %d", row, len(values), g.Cols)
	}
	copy(g.Data[row*g.Cols:(row+1)*g.Cols], values)
	return nil
}

// AddMetadata appends a provenance entry to be written with the grid.
func (g *Grid) AddMetadata(entry string) {
	g.Metadata = append(g.Metadata, entry)
}

// Summary reports the count, mean and standard deviation of the valid
// (non-nodata) samples. With no valid samples the count is zero and both
// statistics are NaN.
func (g *Grid) Summary() (n int, mean, stddev float64) {
	valid := make([]float64, 0, len(g.Data))
	for _, v := range g.Data {
		if v != g.Nodata {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return 0, math.NaN(), math.NaN()
	}
	mean = stat.Mean(valid, nil)
	stddev = math.Sqrt(stat.Variance(valid, nil))
	return len(valid), mean, stddev
}
