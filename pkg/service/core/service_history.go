package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
)

var _ service.HistoryService = &historyService{}

type historyService struct {
	historyStorage service.HistoryStorage
}

func NewHistoryService(storage service.HistoryStorage) *historyService {
	return &historyService{historyStorage: storage}
}

const defaultHistoryLimit = 50

func (s *historyService) RecordQuery(ctx context.Context, in service.NewHistoryEntry) (*service.HistoryEntry, error) {
	const op errs.Op = "historyService.RecordQuery"

	entry, err := s.historyStorage.AddHistoryEntry(ctx, in)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return entry, nil
}

func (s *historyService) GetHistory(ctx context.Context, connectionName string, limit int) ([]*service.HistoryEntry, error) {
	const op errs.Op = "historyService.GetHistory"

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var (
		entries []*service.HistoryEntry
		err     error
	)

	if connectionName == "" {
		entries, err = s.historyStorage.GetRecentEntries(ctx, limit)
	} else {
		entries, err = s.historyStorage.GetEntriesByConnection(ctx, connectionName, limit)
	}
	if err != nil {
		return nil, errs.E(op, err)
	}

	return entries, nil
}

func (s *historyService) SearchHistory(ctx context.Context, term string, limit int) ([]*service.HistoryEntry, error) {
	const op errs.Op = "historyService.SearchHistory"

	if strings.TrimSpace(term) == "" {
		return nil, errs.E(op, errs.InvalidRequest, errs.Parameter("term"), errs.Str("search term is required"))
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	entries, err := s.historyStorage.SearchEntries(ctx, term, limit)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return entries, nil
}

func (s *historyService) GetFavorites(ctx context.Context) ([]*service.HistoryEntry, error) {
	const op errs.Op = "historyService.GetFavorites"

	entries, err := s.historyStorage.GetFavoriteEntries(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return entries, nil
}

func (s *historyService) ToggleFavorite(ctx context.Context, id uuid.UUID) (*service.HistoryEntry, error) {
	const op errs.Op = "historyService.ToggleFavorite"

	entry, err := s.historyStorage.GetHistoryEntry(ctx, id)
	if err != nil {
		return nil, errs.E(op, err)
	}

	entry, err = s.historyStorage.SetFavorite(ctx, id, !entry.IsFavorite)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return entry, nil
}

// CleanupHistory removes non-favorite entries older than keepDays and
// returns the number of deleted rows.
func (s *historyService) CleanupHistory(ctx context.Context, keepDays int) (int64, error) {
	const op errs.Op = "historyService.CleanupHistory"

	if keepDays <= 0 {
		return 0, errs.E(op, errs.InvalidRequest, errs.Parameter("keepDays"), errs.Str("keepDays must be positive"))
	}

	cutoff := time.Now().AddDate(0, 0, -keepDays)

	deleted, err := s.historyStorage.DeleteEntriesOlderThan(ctx, cutoff)
	if err != nil {
		return 0, errs.E(op, err)
	}

	return deleted, nil
}

func (s *historyService) GetStatistics(ctx context.Context) (*service.HistoryStatistics, error) {
	const op errs.Op = "historyService.GetStatistics"

	stats, err := s.historyStorage.GetStatistics(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return stats, nil
}

// ExportHistory serializes recent entries as json or csv.
func (s *historyService) ExportHistory(ctx context.Context, format string, limit int) ([]byte, error) {
	const op errs.Op = "historyService.ExportHistory"

	if limit <= 0 {
		limit = 1000
	}

	entries, err := s.historyStorage.GetRecentEntries(ctx, limit)
	if err != nil {
		return nil, errs.E(op, err)
	}

	switch format {
	case "json", "":
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, errs.E(op, errs.Internal, err)
		}

		return out, nil
	case "csv":
		return exportCSV(entries)
	}

	return nil, errs.E(op, errs.InvalidRequest, errs.Parameter("format"), errs.Str("unsupported export format: "+format))
}

func exportCSV(entries []*service.HistoryEntry) ([]byte, error) {
	const op errs.Op = "historyService.exportCSV"

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"short_id", "created", "connection", "question", "query", "execution_ms", "row_count", "success", "error", "favorite"}
	if err := w.Write(header); err != nil {
		return nil, errs.E(op, errs.Internal, err)
	}

	for _, e := range entries {
		record := []string{
			e.ShortID,
			e.Created.Format(time.RFC3339),
			e.ConnectionName,
			e.Question,
			e.GeneratedQuery,
			strconv.FormatInt(e.ExecutionMS, 10),
			strconv.Itoa(e.RowCount),
			strconv.FormatBool(e.Success),
			e.ErrorMessage,
			strconv.FormatBool(e.IsFavorite),
		}
		if err := w.Write(record); err != nil {
			return nil, errs.E(op, errs.Internal, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errs.E(op, errs.Internal, err)
	}

	return buf.Bytes(), nil
}
