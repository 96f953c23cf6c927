package service

import (
	"context"
	"time"
)

type QueryService interface {
	// Ask turns a natural language question into a query, runs it and
	// returns the result together with an explanation.
	Ask(ctx context.Context, in QueryRequest) (*QueryResponse, error)
	// Run executes an already generated query, typically a replay from
	// history. It goes through the same read-only validation as Ask.
	Run(ctx context.Context, connectionName, query string) (*QueryResponse, error)
}

// QueryRequest is a natural language question aimed at a saved
// database connection.
type QueryRequest struct {
	ConnectionName string `json:"connectionName"`
	Question       string `json:"question"`
	// Provider optionally pins the llm connection used for generation.
	Provider string `json:"provider,omitempty"`
	// ChartHint optionally carries the user's preferred chart type.
	ChartHint string `json:"chartHint,omitempty"`
}

type QueryResponse struct {
	Query       string       `json:"query"`
	Result      *QueryResult `json:"result,omitempty"`
	Explanation string       `json:"explanation,omitempty"`
	Chart       *ChartSpec   `json:"chart,omitempty"`
	// Provider is the llm connection that produced the query.
	Provider string        `json:"provider,omitempty"`
	Duration time.Duration `json:"duration"`
}

// QueryResult holds the rows returned by a target database. Every row
// has exactly len(Columns) values.
type QueryResult struct {
	Columns  []string        `json:"columns"`
	Rows     [][]interface{} `json:"rows"`
	RowCount int             `json:"rowCount"`
	Duration time.Duration   `json:"duration"`
	// Truncated is set when the row limit clamp cut the result short.
	Truncated bool `json:"truncated,omitempty"`
}
