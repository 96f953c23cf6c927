package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type HistoryStorage interface {
	AddHistoryEntry(ctx context.Context, in NewHistoryEntry) (*HistoryEntry, error)
	GetRecentEntries(ctx context.Context, limit int) ([]*HistoryEntry, error)
	GetEntriesByConnection(ctx context.Context, connectionName string, limit int) ([]*HistoryEntry, error)
	SearchEntries(ctx context.Context, term string, limit int) ([]*HistoryEntry, error)
	GetFavoriteEntries(ctx context.Context) ([]*HistoryEntry, error)
	SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) (*HistoryEntry, error)
	GetHistoryEntry(ctx context.Context, id uuid.UUID) (*HistoryEntry, error)
	DeleteEntriesOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	GetStatistics(ctx context.Context) (*HistoryStatistics, error)
}

type HistoryService interface {
	RecordQuery(ctx context.Context, in NewHistoryEntry) (*HistoryEntry, error)
	GetHistory(ctx context.Context, connectionName string, limit int) ([]*HistoryEntry, error)
	SearchHistory(ctx context.Context, term string, limit int) ([]*HistoryEntry, error)
	GetFavorites(ctx context.Context) ([]*HistoryEntry, error)
	ToggleFavorite(ctx context.Context, id uuid.UUID) (*HistoryEntry, error)
	CleanupHistory(ctx context.Context, keepDays int) (int64, error)
	GetStatistics(ctx context.Context) (*HistoryStatistics, error)
	ExportHistory(ctx context.Context, format string, limit int) ([]byte, error)
}

type HistoryEntry struct {
	ID uuid.UUID `json:"id"`
	// ShortID is the user facing identifier shown in listings.
	ShortID        string    `json:"shortId"`
	Created        time.Time `json:"created"`
	ConnectionName string    `json:"connectionName"`
	Question       string    `json:"question"`
	GeneratedQuery string    `json:"generatedQuery"`
	ExecutionMS    int64     `json:"executionMs"`
	RowCount       int       `json:"rowCount"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
	IsFavorite     bool      `json:"isFavorite"`
	Tags           []string  `json:"tags,omitempty"`
}

type NewHistoryEntry struct {
	ConnectionName string   `json:"connectionName"`
	Question       string   `json:"question"`
	GeneratedQuery string   `json:"generatedQuery"`
	ExecutionMS    int64    `json:"executionMs"`
	RowCount       int      `json:"rowCount"`
	Success        bool     `json:"success"`
	ErrorMessage   string   `json:"errorMessage,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

type HistoryStatistics struct {
	TotalQueries   int64   `json:"totalQueries"`
	SuccessfulRuns int64   `json:"successfulRuns"`
	FailedRuns     int64   `json:"failedRuns"`
	SuccessRate    float64 `json:"successRate"`
	AvgExecutionMS float64 `json:"avgExecutionMs"`
	MostQueried    string  `json:"mostQueried,omitempty"`
	FavoriteCount  int64   `json:"favoriteCount"`
}
