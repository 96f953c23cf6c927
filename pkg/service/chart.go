package service

import "context"

const (
	ChartTypeBar       = "bar"
	ChartTypeLine      = "line"
	ChartTypePie       = "pie"
	ChartTypeScatter   = "scatter"
	ChartTypeHistogram = "histogram"
	ChartTypeTable     = "table"
)

type ChartService interface {
	// Suggest infers a chart spec from the result shape, optionally
	// refined by the llm when a hint or question is provided.
	Suggest(ctx context.Context, result *QueryResult, question, hint string) (*ChartSpec, error)
	// Render draws the chart as a PNG. Table specs and empty results
	// return no image.
	Render(result *QueryResult, spec *ChartSpec) ([]byte, error)
}

// ChartSpec describes how a query result should be visualized.
type ChartSpec struct {
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	XColumn string `json:"xColumn,omitempty"`
	YColumn string `json:"yColumn,omitempty"`
}
