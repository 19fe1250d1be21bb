// Package filter implements the olympic smoothing filter: a windowed mean
// that discards the single highest and single lowest valid sample in each
// cell's rectangular neighborhood before averaging. The engine keeps a
// sliding window of per-column vertical aggregates so each row is filtered
// in a single pass, and processes contiguous row blocks in parallel.
package filter

import (
	"fmt"
	"runtime"
	"sync"

	"olympicfilter/pkg/raster"
)

// Config holds the filter parameters. Call Normalize before use; the
// zero-valued widths become the 11x11 default.
type Config struct {
	// WidthX and WidthY are the filter kernel dimensions in cells. They are
	// forced to odd values of at least 3 so a well-defined center cell
	// exists: values below 3 are raised to 3, even values are raised by 1.
	WidthX int
	WidthY int

	// Workers is the number of parallel row-block workers. Zero or negative
	// means runtime.NumCPU(). The effective count is capped at the number
	// of grid rows.
	Workers int

	// Progress, when non-nil, receives the completion percentage (0-100)
	// each time it changes. It is called from the collector only, never
	// concurrently.
	Progress func(pct int)

	halfX int
	halfY int
}

// DefaultWidth is the kernel size used when none is configured.
const DefaultWidth = 11

// Normalize applies the width and worker-count rules above and derives the
// half-window extents. It is idempotent.
func (c *Config) Normalize() {
	if c.WidthX <= 0 {
		c.WidthX = DefaultWidth
	}
	if c.WidthY <= 0 {
		c.WidthY = DefaultWidth
	}
	if c.WidthX < 3 {
		c.WidthX = 3
	}
	if c.WidthY < 3 {
		c.WidthY = 3
	}
	// The kernel dimensions must be odd so there is a middle cell.
	if c.WidthX%2 == 0 {
		c.WidthX++
	}
	if c.WidthY%2 == 0 {
		c.WidthY++
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	c.halfX = c.WidthX / 2
	c.halfY = c.WidthY / 2
}

// rowResult is one finished output row, or the failure that prevented it.
type rowResult struct {
	row  int
	data []float64
	err  error
}

// Apply runs the olympic filter over the whole input grid and returns a new
// grid of the same dimensions. The input is only read, never mutated, and
// may be shared; cells whose center sample is nodata stay nodata in the
// output regardless of their neighbors.
func Apply(input *raster.Grid, cfg Config) (*raster.Grid, error) {
	if input == nil || input.Rows <= 0 || input.Cols <= 0 {
		return nil, fmt.Errorf("invalid input grid")
	}
	cfg.Normalize()

	output := raster.NewGridLike(input)

	workers := cfg.Workers
	if workers > input.Rows {
		workers = input.Rows
	}
	blocks := partitionRows(input.Rows, workers)

	results := make(chan rowResult, workers)
	var wg sync.WaitGroup
	for _, b := range blocks {
		wg.Add(1)
		go func(startRow, endRow int) {
			defer wg.Done()
			filterRows(input, &cfg, startRow, endRow, results)
		}(b.start, b.end)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Single collector: rows arrive in arbitrary completion order and are
	// placed by index. Progress counts messages received, which is
	// monotonic even when row indices are not.
	var firstErr error
	received := 0
	oldProgress := -1
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		if err := output.SetRow(res.row, res.data); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		received++
		if cfg.Progress != nil {
			progress := 100 * received / input.Rows
			if progress != oldProgress {
				cfg.Progress(progress)
				oldProgress = progress
			}
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if received != input.Rows {
		return nil, fmt.Errorf("collected %d of %d rows", received, input.Rows)
	}
	return output, nil
}

// rowBlock is a contiguous range of rows assigned to one worker.
type rowBlock struct {
	start int
	end   int // exclusive
}

// partitionRows splits [0, rows) into count contiguous blocks. The blocks
// cover every row exactly once; the final block absorbs the remainder when
// rows does not divide evenly, so it is the largest.
func partitionRows(rows, count int) []rowBlock {
	if count > rows {
		count = rows
	}
	if count < 1 {
		count = 1
	}
	size := rows / count
	blocks := make([]rowBlock, 0, count)
	for i := 0; i < count; i++ {
		b := rowBlock{start: i * size, end: (i + 1) * size}
		if i == count-1 {
			b.end = rows
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// filterRows produces every output row in [startRow, endRow), sending each
// finished row immediately. A panic anywhere in the block is converted to
// an error message so the collector never waits on a row that cannot
// arrive.
func filterRows(g *raster.Grid, cfg *Config, startRow, endRow int, results chan<- rowResult) {
	defer func() {
		if r := recover(); r != nil {
			results <- rowResult{err: fmt.Errorf("row worker [%d,%d) failed: %v", startRow, endRow, r)}
		}
	}()
	for row := startRow; row < endRow; row++ {
		results <- rowResult{row: row, data: filterRow(g, cfg, row)}
	}
}

// filterRow computes one complete output row with a single sliding-window
// pass. Only the strip entering on the right is rescanned at each column
// step; the combination over the window is O(WidthX).
func filterRow(g *raster.Grid, cfg *Config, row int) []float64 {
	data := make([]float64, g.Cols)
	for i := range data {
		data[i] = g.Nodata
	}
	t := newTracker(g, cfg, row)
	for col := 0; col < g.Cols; col++ {
		if col > 0 {
			t.advance(col)
		}
		z := g.Value(row, col)
		if z == g.Nodata {
			continue
		}
		min, max, sum, n := t.combined()
		switch {
		case n > 2:
			// The olympic mean: drop one occurrence of the neighborhood
			// maximum and one of the minimum, then average the rest.
			data[col] = (sum - max - min) / float64(n-2)
		case n > 0:
			// Too few samples to trim; fall back to the plain mean.
			data[col] = sum / float64(n)
		}
		// n == 0 leaves the cell at nodata.
	}
	return data
}
