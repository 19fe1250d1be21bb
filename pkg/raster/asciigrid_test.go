package raster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempGrid(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grid.asc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadASCIIGrid(t *testing.T) {
	t.Parallel()

	path := writeTempGrid(t, `ncols         3
nrows         2
xllcorner     100.5
yllcorner     -20.25
cellsize      30
NODATA_value  -999
1 2.5 -999
4 5 6
# produced upstream
`)
	g, err := ReadASCIIGrid(path)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Rows)
	assert.Equal(t, 3, g.Cols)
	assert.Equal(t, -999.0, g.Nodata)
	assert.Equal(t, 100.5, g.XLLCorner)
	assert.Equal(t, -20.25, g.YLLCorner)
	assert.Equal(t, 30.0, g.CellSize)
	assert.Equal(t, []float64{1, 2.5, -999, 4, 5, 6}, g.Data)
	assert.Equal(t, []string{"produced upstream"}, g.Metadata)
}

func TestReadASCIIGridDefaultNodata(t *testing.T) {
	t.Parallel()

	path := writeTempGrid(t, "ncols 2\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n3 4\n")
	g, err := ReadASCIIGrid(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultNodata, g.Nodata)
}

func TestReadASCIIGridErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"missing ncols", "nrows 2\n1 2\n3 4\n"},
		{"missing nrows", "ncols 2\n1 2\n3 4\n"},
		{"bad sample", "ncols 2\nnrows 1\n1 oops\n"},
		{"wrong cell count", "ncols 2\nnrows 2\n1 2 3\n"},
		{"bad header value", "ncols x\nnrows 1\n1\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeTempGrid(t, tt.content)
			_, err := ReadASCIIGrid(path)
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := ReadASCIIGrid(filepath.Join(t.TempDir(), "nope.asc"))
		assert.Error(t, err)
	})
}

func TestASCIIGridRoundTrip(t *testing.T) {
	t.Parallel()

	g, err := NewGrid(3, 2, -9999)
	require.NoError(t, err)
	g.XLLCorner = 1.25
	g.YLLCorner = 2.5
	g.CellSize = 0.5
	require.NoError(t, g.SetRow(0, []float64{1.5, -9999}))
	require.NoError(t, g.SetRow(1, []float64{0.000125, 1e9}))
	require.NoError(t, g.SetRow(2, []float64{-3, 4}))
	g.AddMetadata("Created by the olympicfilter tool")
	g.AddMetadata("Filter size x: 11")

	path := filepath.Join(t.TempDir(), "out.asc")
	require.NoError(t, g.WriteASCIIGrid(path))

	back, err := ReadASCIIGrid(path)
	require.NoError(t, err)
	assert.Equal(t, g.Rows, back.Rows)
	assert.Equal(t, g.Cols, back.Cols)
	assert.Equal(t, g.Nodata, back.Nodata)
	assert.Equal(t, g.XLLCorner, back.XLLCorner)
	assert.Equal(t, g.YLLCorner, back.YLLCorner)
	assert.Equal(t, g.CellSize, back.CellSize)
	assert.Equal(t, g.Data, back.Data)
	assert.Equal(t, g.Metadata, back.Metadata)
}
