package raster

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadASCIIGrid loads a grid from an ESRI ASCII grid file. The header keys
// (ncols, nrows, xllcorner, yllcorner, cellsize, NODATA_value) are matched
// case-insensitively; a missing NODATA_value defaults to DefaultNodata.
// Lines beginning with '#' after the data block are collected as metadata.
func ReadASCIIGrid(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open grid file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	header := map[string]float64{}
	var metadata []string
	var values []float64
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			metadata = append(metadata, strings.TrimSpace(strings.TrimPrefix(line, "#")))
			continue
		}
		fields := strings.Fields(line)
		// Header lines are "key value" pairs where the key is not numeric.
		if len(values) == 0 && len(fields) == 2 {
			if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
				v, err := strconv.ParseFloat(fields[1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid header value %q for %s", lineNum, fields[1], fields[0])
				}
				header[strings.ToLower(fields[0])] = v
				continue
			}
		}
		for _, tok := range fields {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid sample %q", lineNum, tok)
			}
			values = append(values, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read grid file: %w", err)
	}

	cols, ok := header["ncols"]
	if !ok {
		return nil, fmt.Errorf("missing ncols header")
	}
	rows, ok := header["nrows"]
	if !ok {
		return nil, fmt.Errorf("missing nrows header")
	}
	nodata, ok := header["nodata_value"]
	if !ok {
		nodata = DefaultNodata
	}

	g, err := NewGrid(int(rows), int(cols), nodata)
	if err != nil {
		return nil, err
	}
	if len(values) != g.Rows*g.Cols {
		return nil, fmt.Errorf("grid has %d samples, want %d (%dx%d)", len(values), g.Rows*g.Cols, g.Rows, g.Cols)
	}
	copy(g.Data, values)
	g.XLLCorner = header["xllcorner"]
	g.YLLCorner = header["yllcorner"]
	if cs, ok := header["cellsize"]; ok {
		g.CellSize = cs
	}
	g.Metadata = metadata
	return g, nil
}

// WriteASCIIGrid saves the grid to path in ESRI ASCII grid format. Metadata
// entries are appended after the data block as '#' comment lines. The write
// is not atomic: a failure partway through can leave a truncated file.
func (g *Grid) WriteASCIIGrid(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create grid file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "ncols         %d\n", g.Cols)
	fmt.Fprintf(w, "nrows         %d\n", g.Rows)
	fmt.Fprintf(w, "xllcorner     %s\n", formatSample(g.XLLCorner))
	fmt.Fprintf(w, "yllcorner     %s\n", formatSample(g.YLLCorner))
	fmt.Fprintf(w, "cellsize      %s\n", formatSample(g.CellSize))
	fmt.Fprintf(w, "NODATA_value  %s\n", formatSample(g.Nodata))
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if col > 0 {
				if err := w.WriteByte(' '); err != nil {
					return fmt.Errorf("failed to write grid data: %w", err)
				}
			}
			if _, err := w.WriteString(formatSample(g.Data[row*g.Cols+col])); err != nil {
				return fmt.Errorf("failed to write grid data: %w", err)
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write grid data: %w", err)
		}
	}
	for _, entry := range g.Metadata {
		fmt.Fprintf(w, "# %s\n", entry)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write grid file: %w", err)
	}
	return f.Close()
}

func formatSample(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
