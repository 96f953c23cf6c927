package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightpilot/insightpilot/pkg/service"
)

var pngHeader = []byte{0x89, 0x50, 0x4e, 0x47}

func barResult() *service.QueryResult {
	return &service.QueryResult{
		Columns: []string{"region", "revenue"},
		Rows: [][]interface{}{
			{"north", 120.0},
			{"south", 240.0},
			{"east", 90.0},
		},
		RowCount: 3,
	}
}

func TestRenderBar(t *testing.T) {
	r := NewRenderer(0, 0, 0)

	png, err := r.Render(barResult(), &service.ChartSpec{
		Type:    service.ChartTypeBar,
		Title:   "revenue by region",
		XColumn: "region",
		YColumn: "revenue",
	})
	require.NoError(t, err)

	require.True(t, len(png) > 4)
	assert.Equal(t, pngHeader, png[:4])
}

func TestRenderPie(t *testing.T) {
	r := NewRenderer(600, 400, 72)

	png, err := r.Render(barResult(), &service.ChartSpec{
		Type:    service.ChartTypePie,
		XColumn: "region",
		YColumn: "revenue",
	})
	require.NoError(t, err)
	assert.Equal(t, pngHeader, png[:4])
}

func TestRenderLineTemporal(t *testing.T) {
	r := NewRenderer(0, 0, 0)

	result := &service.QueryResult{
		Columns: []string{"day", "orders"},
		Rows: [][]interface{}{
			{"2026-01-01", int64(10)},
			{"2026-01-02", int64(14)},
			{"2026-01-03", int64(8)},
		},
		RowCount: 3,
	}

	png, err := r.Render(result, &service.ChartSpec{
		Type:    service.ChartTypeLine,
		XColumn: "day",
		YColumn: "orders",
	})
	require.NoError(t, err)
	assert.Equal(t, pngHeader, png[:4])
}

func TestRenderScatterFallsBackToRowIndex(t *testing.T) {
	r := NewRenderer(0, 0, 0)

	result := &service.QueryResult{
		Columns: []string{"name", "score"},
		Rows: [][]interface{}{
			{"alice", 7.5},
			{"bob", 3.25},
			{"carol", 9.0},
		},
		RowCount: 3,
	}

	png, err := r.Render(result, &service.ChartSpec{
		Type:    service.ChartTypeScatter,
		XColumn: "name",
		YColumn: "score",
	})
	require.NoError(t, err)
	assert.Equal(t, pngHeader, png[:4])
}

func TestRenderHistogram(t *testing.T) {
	r := NewRenderer(0, 0, 0)

	rows := [][]interface{}{}
	for i := 0; i < 40; i++ {
		rows = append(rows, []interface{}{float64(i % 13)})
	}

	result := &service.QueryResult{
		Columns:  []string{"latency"},
		Rows:     rows,
		RowCount: len(rows),
	}

	png, err := r.Render(result, &service.ChartSpec{
		Type:    service.ChartTypeHistogram,
		XColumn: "latency",
	})
	require.NoError(t, err)
	assert.Equal(t, pngHeader, png[:4])
}

func TestRenderTableYieldsNoImage(t *testing.T) {
	r := NewRenderer(0, 0, 0)

	png, err := r.Render(barResult(), &service.ChartSpec{Type: service.ChartTypeTable})
	require.NoError(t, err)
	assert.Nil(t, png)
}

func TestRenderEmptyResult(t *testing.T) {
	r := NewRenderer(0, 0, 0)

	png, err := r.Render(&service.QueryResult{Columns: []string{"a"}}, &service.ChartSpec{
		Type: service.ChartTypeBar,
	})
	require.NoError(t, err)
	assert.Nil(t, png)
}

func TestRenderUnknownType(t *testing.T) {
	r := NewRenderer(0, 0, 0)

	_, err := r.Render(barResult(), &service.ChartSpec{Type: "heatmap"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown chart type")
}

func TestRenderSingleColumnResult(t *testing.T) {
	r := NewRenderer(0, 0, 0)

	result := &service.QueryResult{
		Columns:  []string{"amount"},
		Rows:     [][]interface{}{{1.0}, {2.0}, {3.0}},
		RowCount: 3,
	}

	for _, chartType := range []string{
		service.ChartTypeScatter,
		service.ChartTypeLine,
		service.ChartTypeBar,
		service.ChartTypePie,
	} {
		t.Run(chartType, func(t *testing.T) {
			_, err := r.Render(result, &service.ChartSpec{Type: chartType})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "no plottable values")
		})
	}

	png, err := r.Render(result, &service.ChartSpec{Type: service.ChartTypeHistogram})
	require.NoError(t, err)
	assert.Equal(t, pngHeader, png[:4])
}

func TestRenderNoPlottableValues(t *testing.T) {
	r := NewRenderer(0, 0, 0)

	result := &service.QueryResult{
		Columns:  []string{"region", "note"},
		Rows:     [][]interface{}{{"north", "fine"}, {"south", "ok"}},
		RowCount: 2,
	}

	_, err := r.Render(result, &service.ChartSpec{Type: service.ChartTypeBar})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no plottable values")
}
