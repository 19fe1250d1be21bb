package filter

import (
	"math"

	"olympicfilter/pkg/raster"
)

// strip aggregates one column slice of the neighborhood: the widthY rows
// centred on the current output row at a fixed column. Min and max start at
// +/-Inf; out-of-bounds and nodata samples contribute nothing, so n counts
// only the valid samples actually present.
type strip struct {
	min float64
	max float64
	sum float64
	n   int
}

// scanStrip computes the vertical aggregate for one column from scratch.
func scanStrip(g *raster.Grid, row, col, halfY int) strip {
	s := strip{min: math.Inf(1), max: math.Inf(-1)}
	for r := row - halfY; r <= row+halfY; r++ {
		z := g.Value(r, col)
		if z == g.Nodata {
			continue
		}
		if z < s.min {
			s.min = z
		}
		if z > s.max {
			s.max = z
		}
		s.sum += z
		s.n++
	}
	return s
}

// window is the sliding horizontal sequence of widthX strips currently in
// view, held in a fixed-capacity ring buffer so that advancing one column
// is a single pop-front plus push-back.
type window struct {
	strips []strip
	head   int
	count  int
}

func newWindow(widthX int) *window {
	return &window{strips: make([]strip, widthX)}
}

func (w *window) push(s strip) {
	w.strips[(w.head+w.count)%len(w.strips)] = s
	w.count++
}

func (w *window) pop() {
	w.head = (w.head + 1) % len(w.strips)
	w.count--
}

// combined reduces the strips in view to a single neighborhood aggregate.
// O(widthX) rather than O(widthX*widthY).
func (w *window) combined() (min, max, sum float64, n int) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for i := 0; i < w.count; i++ {
		s := w.strips[(w.head+i)%len(w.strips)]
		if s.min < min {
			min = s.min
		}
		if s.max > max {
			max = s.max
		}
		sum += s.sum
		n += s.n
	}
	return min, max, sum, n
}

// tracker maintains the sliding window for one output row. The initial fill
// scans all widthX columns; every advance after that rescans exactly one.
type tracker struct {
	grid *raster.Grid
	cfg  *Config
	row  int
	win  *window
}

func newTracker(g *raster.Grid, cfg *Config, row int) *tracker {
	t := &tracker{grid: g, cfg: cfg, row: row, win: newWindow(cfg.WidthX)}
	for col := -cfg.halfX; col <= cfg.halfX; col++ {
		t.win.push(scanStrip(g, row, col, cfg.halfY))
	}
	return t
}

// advance slides the window one column to the right: the strip for the
// column leaving on the left is dropped and the one entering on the right
// (col + halfX) is scanned. col is the output column the window is moving to.
func (t *tracker) advance(col int) {
	t.win.pop()
	t.win.push(scanStrip(t.grid, t.row, col+t.cfg.halfX, t.cfg.halfY))
}

func (t *tracker) combined() (min, max, sum float64, n int) {
	return t.win.combined()
}
