// Package chart infers chart types from query results and renders
// them as PNG images.
package chart

import (
	"strconv"
	"time"

	"github.com/insightpilot/insightpilot/pkg/service"
)

// Infer picks a chart type from the shape of the result. Two column
// results become line, pie, bar or scatter charts depending on the
// column contents, single columns become histograms, everything else
// stays tabular.
func Infer(result *service.QueryResult) *service.ChartSpec {
	if result == nil || len(result.Rows) == 0 || len(result.Columns) == 0 {
		return &service.ChartSpec{Type: service.ChartTypeTable}
	}

	switch len(result.Columns) {
	case 1:
		return &service.ChartSpec{
			Type:    service.ChartTypeHistogram,
			XColumn: result.Columns[0],
		}
	case 2:
		spec := &service.ChartSpec{
			XColumn: result.Columns[0],
			YColumn: result.Columns[1],
		}

		switch {
		case isTemporal(result, 0):
			spec.Type = service.ChartTypeLine
		case isCategorical(result, 0) && isNumeric(result, 1):
			if len(result.Rows) <= 10 {
				spec.Type = service.ChartTypePie
			} else {
				spec.Type = service.ChartTypeBar
			}
		default:
			spec.Type = service.ChartTypeScatter
		}

		return spec
	default:
		return &service.ChartSpec{Type: service.ChartTypeTable}
	}
}

// asFloat converts driver values to a plottable number.
func asFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}

	return 0, false
}

var temporalLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range temporalLayouts {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts, true
			}
		}
	}

	return time.Time{}, false
}

func sampleColumn(result *service.QueryResult, index, limit int) []interface{} {
	if index >= len(result.Columns) {
		return nil
	}

	values := []interface{}{}
	for _, row := range result.Rows {
		if len(values) == limit {
			break
		}
		if index < len(row) && row[index] != nil {
			values = append(values, row[index])
		}
	}

	return values
}

func isNumeric(result *service.QueryResult, index int) bool {
	values := sampleColumn(result, index, 10)
	if len(values) == 0 {
		return false
	}

	for _, v := range values {
		if _, ok := asFloat(v); !ok {
			return false
		}
	}

	return true
}

func isTemporal(result *service.QueryResult, index int) bool {
	values := sampleColumn(result, index, 5)
	if len(values) == 0 {
		return false
	}

	for _, v := range values {
		if _, ok := asTime(v); !ok {
			return false
		}
	}

	return true
}

// isCategorical reports whether the column holds labels, meaning
// non-numeric values with few distinct entries relative to the row
// count.
func isCategorical(result *service.QueryResult, index int) bool {
	if index >= len(result.Columns) || len(result.Rows) == 0 {
		return false
	}

	if isNumeric(result, index) {
		return false
	}

	unique := map[string]bool{}
	for _, row := range result.Rows {
		if index < len(row) && row[index] != nil {
			unique[stringify(row[index])] = true
		}
	}

	return len(unique) < 20 || float64(len(unique)) < float64(len(result.Rows))*0.5
}
