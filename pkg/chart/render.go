package chart

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
)

// Renderer draws chart specs as PNG images.
type Renderer struct {
	width  int
	height int
	dpi    float64
}

func NewRenderer(width, height, dpi int) *Renderer {
	if width <= 0 {
		width = 1000
	}
	if height <= 0 {
		height = 600
	}
	if dpi <= 0 {
		dpi = 100
	}

	return &Renderer{
		width:  width,
		height: height,
		dpi:    float64(dpi),
	}
}

// Render draws the chart. Table specs and empty results yield no
// image.
func (r *Renderer) Render(result *service.QueryResult, spec *service.ChartSpec) ([]byte, error) {
	const op errs.Op = "chart.Render"

	if spec == nil || spec.Type == service.ChartTypeTable {
		return nil, nil
	}
	if result == nil || len(result.Rows) == 0 {
		return nil, nil
	}

	var (
		buf bytes.Buffer
		err error
	)

	switch spec.Type {
	case service.ChartTypeBar:
		err = r.renderBar(&buf, result, spec)
	case service.ChartTypeLine:
		err = r.renderLine(&buf, result, spec)
	case service.ChartTypePie:
		err = r.renderPie(&buf, result, spec)
	case service.ChartTypeScatter:
		err = r.renderScatter(&buf, result, spec)
	case service.ChartTypeHistogram:
		err = r.renderHistogram(&buf, result, spec)
	default:
		return nil, errs.E(op, errs.InvalidRequest, errs.Parameter("type"), errs.Str("unknown chart type: "+spec.Type))
	}
	if err != nil {
		return nil, errs.E(op, errs.Internal, err)
	}

	return buf.Bytes(), nil
}

// labeledValues extracts label/value pairs from the first two columns.
func labeledValues(result *service.QueryResult) []chart.Value {
	values := []chart.Value{}

	for _, row := range result.Rows {
		if len(row) < 2 {
			continue
		}

		v, ok := asFloat(row[1])
		if !ok {
			continue
		}

		values = append(values, chart.Value{
			Label: stringify(row[0]),
			Value: v,
		})
	}

	return values
}

func (r *Renderer) renderBar(buf *bytes.Buffer, result *service.QueryResult, spec *service.ChartSpec) error {
	values := labeledValues(result)
	if len(values) == 0 {
		return fmt.Errorf("no plottable values in result")
	}

	graph := chart.BarChart{
		Title:    spec.Title,
		Width:    r.width,
		Height:   r.height,
		DPI:      r.dpi,
		BarWidth: 40,
		Bars:     values,
	}

	return graph.Render(chart.PNG, buf)
}

func (r *Renderer) renderPie(buf *bytes.Buffer, result *service.QueryResult, spec *service.ChartSpec) error {
	values := labeledValues(result)
	if len(values) == 0 {
		return fmt.Errorf("no plottable values in result")
	}

	graph := chart.PieChart{
		Title:  spec.Title,
		Width:  r.width,
		Height: r.height,
		DPI:    r.dpi,
		Values: values,
	}

	return graph.Render(chart.PNG, buf)
}

func (r *Renderer) renderLine(buf *bytes.Buffer, result *service.QueryResult, spec *service.ChartSpec) error {
	var series chart.Series

	if isTemporal(result, 0) {
		ts := chart.TimeSeries{Name: spec.YColumn}
		for _, row := range result.Rows {
			if len(row) < 2 {
				continue
			}

			x, xok := asTime(row[0])
			y, yok := asFloat(row[1])
			if xok && yok {
				ts.XValues = append(ts.XValues, x)
				ts.YValues = append(ts.YValues, y)
			}
		}
		if len(ts.XValues) == 0 {
			return fmt.Errorf("no plottable values in result")
		}
		series = ts
	} else {
		cs := chart.ContinuousSeries{Name: spec.YColumn}
		for _, row := range result.Rows {
			if len(row) < 2 {
				continue
			}

			x, xok := asFloat(row[0])
			y, yok := asFloat(row[1])
			if xok && yok {
				cs.XValues = append(cs.XValues, x)
				cs.YValues = append(cs.YValues, y)
			}
		}
		if len(cs.XValues) == 0 {
			return fmt.Errorf("no plottable values in result")
		}
		series = cs
	}

	graph := chart.Chart{
		Title:  spec.Title,
		Width:  r.width,
		Height: r.height,
		DPI:    r.dpi,
		XAxis:  chart.XAxis{Name: spec.XColumn},
		YAxis:  chart.YAxis{Name: spec.YColumn},
		Series: []chart.Series{series},
	}

	return graph.Render(chart.PNG, buf)
}

func (r *Renderer) renderScatter(buf *bytes.Buffer, result *service.QueryResult, spec *service.ChartSpec) error {
	cs := chart.ContinuousSeries{
		Name: spec.YColumn,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    5,
		},
	}

	for i, row := range result.Rows {
		if len(row) < 2 {
			continue
		}

		y, yok := asFloat(row[1])
		if !yok {
			continue
		}

		if x, xok := asFloat(row[0]); xok {
			cs.XValues = append(cs.XValues, x)
		} else {
			cs.XValues = append(cs.XValues, float64(i))
		}
		cs.YValues = append(cs.YValues, y)
	}
	if len(cs.XValues) == 0 {
		return fmt.Errorf("no plottable values in result")
	}

	graph := chart.Chart{
		Title:  spec.Title,
		Width:  r.width,
		Height: r.height,
		DPI:    r.dpi,
		XAxis:  chart.XAxis{Name: spec.XColumn},
		YAxis:  chart.YAxis{Name: spec.YColumn},
		Series: []chart.Series{cs},
	}

	return graph.Render(chart.PNG, buf)
}

// renderHistogram bins the first column into up to ten buckets drawn
// as bars.
func (r *Renderer) renderHistogram(buf *bytes.Buffer, result *service.QueryResult, spec *service.ChartSpec) error {
	values := []float64{}
	for _, row := range result.Rows {
		if len(row) == 0 {
			continue
		}

		if v, ok := asFloat(row[0]); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return fmt.Errorf("no plottable values in result")
	}

	min, max := values[0], values[0]
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}

	binCount := 10
	if len(values) < binCount {
		binCount = len(values)
	}

	width := (max - min) / float64(binCount)
	if width == 0 {
		width = 1
	}

	bins := make([]int, binCount)
	for _, v := range values {
		i := int((v - min) / width)
		if i >= binCount {
			i = binCount - 1
		}
		bins[i]++
	}

	bars := make([]chart.Value, binCount)
	for i, count := range bins {
		lo := min + float64(i)*width
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%.4g", lo),
			Value: float64(count),
		}
	}

	graph := chart.BarChart{
		Title:    spec.Title,
		Width:    r.width,
		Height:   r.height,
		DPI:      r.dpi,
		BarWidth: 40,
		Bars:     bars,
	}

	return graph.Render(chart.PNG, buf)
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", v)
}
