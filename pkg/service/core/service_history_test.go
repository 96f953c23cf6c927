package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
)

type fakeHistoryStorage struct {
	entries map[uuid.UUID]*service.HistoryEntry

	recentLimit     int
	byConnection    string
	searchTerm      string
	deleteCutoff    time.Time
	deletedReturned int64
}

var _ service.HistoryStorage = &fakeHistoryStorage{}

func newFakeHistoryStorage() *fakeHistoryStorage {
	return &fakeHistoryStorage{entries: map[uuid.UUID]*service.HistoryEntry{}}
}

func (f *fakeHistoryStorage) add(entry *service.HistoryEntry) *service.HistoryEntry {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.entries[entry.ID] = entry

	return entry
}

func (f *fakeHistoryStorage) AddHistoryEntry(_ context.Context, in service.NewHistoryEntry) (*service.HistoryEntry, error) {
	return f.add(&service.HistoryEntry{
		ConnectionName: in.ConnectionName,
		Question:       in.Question,
		GeneratedQuery: in.GeneratedQuery,
		ExecutionMS:    in.ExecutionMS,
		RowCount:       in.RowCount,
		Success:        in.Success,
		ErrorMessage:   in.ErrorMessage,
		Tags:           in.Tags,
		Created:        time.Now(),
	}), nil
}

func (f *fakeHistoryStorage) GetRecentEntries(_ context.Context, limit int) ([]*service.HistoryEntry, error) {
	f.recentLimit = limit

	out := []*service.HistoryEntry{}
	for _, e := range f.entries {
		out = append(out, e)
	}

	return out, nil
}

func (f *fakeHistoryStorage) GetEntriesByConnection(_ context.Context, connectionName string, limit int) ([]*service.HistoryEntry, error) {
	f.byConnection = connectionName
	f.recentLimit = limit

	out := []*service.HistoryEntry{}
	for _, e := range f.entries {
		if e.ConnectionName == connectionName {
			out = append(out, e)
		}
	}

	return out, nil
}

func (f *fakeHistoryStorage) SearchEntries(_ context.Context, term string, limit int) ([]*service.HistoryEntry, error) {
	f.searchTerm = term
	f.recentLimit = limit

	out := []*service.HistoryEntry{}
	for _, e := range f.entries {
		if strings.Contains(e.Question, term) {
			out = append(out, e)
		}
	}

	return out, nil
}

func (f *fakeHistoryStorage) GetFavoriteEntries(_ context.Context) ([]*service.HistoryEntry, error) {
	out := []*service.HistoryEntry{}
	for _, e := range f.entries {
		if e.IsFavorite {
			out = append(out, e)
		}
	}

	return out, nil
}

func (f *fakeHistoryStorage) SetFavorite(_ context.Context, id uuid.UUID, favorite bool) (*service.HistoryEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, errs.E(errs.NotExist, errs.Str("entry not found"))
	}

	e.IsFavorite = favorite

	return e, nil
}

func (f *fakeHistoryStorage) GetHistoryEntry(_ context.Context, id uuid.UUID) (*service.HistoryEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, errs.E(errs.NotExist, errs.Str("entry not found"))
	}

	return e, nil
}

func (f *fakeHistoryStorage) DeleteEntriesOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.deleteCutoff = cutoff

	return f.deletedReturned, nil
}

func (f *fakeHistoryStorage) GetStatistics(_ context.Context) (*service.HistoryStatistics, error) {
	return &service.HistoryStatistics{TotalQueries: int64(len(f.entries))}, nil
}

func TestGetHistoryDefaultsLimit(t *testing.T) {
	storage := newFakeHistoryStorage()
	s := NewHistoryService(storage)

	_, err := s.GetHistory(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultHistoryLimit, storage.recentLimit)
}

func TestGetHistoryByConnection(t *testing.T) {
	storage := newFakeHistoryStorage()
	storage.add(&service.HistoryEntry{ConnectionName: "sales"})
	storage.add(&service.HistoryEntry{ConnectionName: "warehouse"})

	s := NewHistoryService(storage)

	entries, err := s.GetHistory(context.Background(), "sales", 10)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "sales", storage.byConnection)
}

func TestSearchHistoryRequiresTerm(t *testing.T) {
	s := NewHistoryService(newFakeHistoryStorage())

	_, err := s.SearchHistory(context.Background(), "   ", 10)
	require.Error(t, err)
	assert.True(t, errs.KindIs(errs.InvalidRequest, err))
}

func TestToggleFavorite(t *testing.T) {
	storage := newFakeHistoryStorage()
	entry := storage.add(&service.HistoryEntry{Question: "revenue by region"})

	s := NewHistoryService(storage)

	got, err := s.ToggleFavorite(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)

	got, err = s.ToggleFavorite(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.False(t, got.IsFavorite)
}

func TestToggleFavoriteUnknownEntry(t *testing.T) {
	s := NewHistoryService(newFakeHistoryStorage())

	_, err := s.ToggleFavorite(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errs.KindIs(errs.NotExist, err))
}

func TestCleanupHistory(t *testing.T) {
	storage := newFakeHistoryStorage()
	storage.deletedReturned = 7

	s := NewHistoryService(storage)

	deleted, err := s.CleanupHistory(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)

	expected := time.Now().AddDate(0, 0, -30)
	assert.WithinDuration(t, expected, storage.deleteCutoff, time.Minute)

	_, err = s.CleanupHistory(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, errs.KindIs(errs.InvalidRequest, err))
}

func TestExportHistoryCSV(t *testing.T) {
	storage := newFakeHistoryStorage()
	storage.add(&service.HistoryEntry{
		ShortID:        "aBc123",
		ConnectionName: "sales",
		Question:       "top customers",
		GeneratedQuery: "SELECT * FROM customers LIMIT 10",
		ExecutionMS:    42,
		RowCount:       10,
		Success:        true,
		Created:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})

	s := NewHistoryService(storage)

	out, err := s.ExportHistory(context.Background(), "csv", 100)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)

	assert.Equal(t, "short_id,created,connection,question,query,execution_ms,row_count,success,error,favorite", lines[0])
	assert.Contains(t, lines[1], "aBc123")
	assert.Contains(t, lines[1], "2026-03-01T12:00:00Z")
	assert.Contains(t, lines[1], "top customers")
}

func TestExportHistoryJSONDefault(t *testing.T) {
	storage := newFakeHistoryStorage()
	storage.add(&service.HistoryEntry{ShortID: "aBc123", Question: "top customers"})

	s := NewHistoryService(storage)

	out, err := s.ExportHistory(context.Background(), "", 100)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"shortId": "aBc123"`)
}

func TestExportHistoryUnsupportedFormat(t *testing.T) {
	s := NewHistoryService(newFakeHistoryStorage())

	_, err := s.ExportHistory(context.Background(), "xml", 100)
	require.Error(t, err)
	assert.True(t, errs.KindIs(errs.InvalidRequest, err))
}
