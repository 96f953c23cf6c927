package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/lithammer/shortuuid/v4"

	"github.com/insightpilot/insightpilot/pkg/database"
	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
)

var _ service.HistoryStorage = &historyStorage{}

type historyStorage struct {
	db *database.Repo
}

func NewHistoryStorage(db *database.Repo) *historyStorage {
	return &historyStorage{db: db}
}

const historyColumns = `"id", "short_id", "created", "connection_name", "question", "generated_query", "execution_ms", "row_count", "success", "error_message", "is_favorite", "tags"`

func (s *historyStorage) AddHistoryEntry(ctx context.Context, in service.NewHistoryEntry) (*service.HistoryEntry, error) {
	const op errs.Op = "historyStorage.AddHistoryEntry"

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	row := s.db.GetDB().QueryRowContext(ctx, `
		INSERT INTO query_history ("short_id", "connection_name", "question", "generated_query", "execution_ms", "row_count", "success", "error_message", "tags")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+historyColumns,
		shortuuid.New(), in.ConnectionName, in.Question, in.GeneratedQuery,
		in.ExecutionMS, in.RowCount, in.Success, in.ErrorMessage, pq.Array(tags))

	entry, err := scanHistoryEntry(row)
	if err != nil {
		return nil, errs.E(errs.Database, op, err)
	}

	return entry, nil
}

func (s *historyStorage) GetRecentEntries(ctx context.Context, limit int) ([]*service.HistoryEntry, error) {
	const op errs.Op = "historyStorage.GetRecentEntries"

	return s.queryEntries(ctx, op,
		`SELECT `+historyColumns+` FROM query_history ORDER BY "created" DESC LIMIT $1`, limit)
}

func (s *historyStorage) GetEntriesByConnection(ctx context.Context, connectionName string, limit int) ([]*service.HistoryEntry, error) {
	const op errs.Op = "historyStorage.GetEntriesByConnection"

	return s.queryEntries(ctx, op,
		`SELECT `+historyColumns+` FROM query_history WHERE "connection_name" = $1 ORDER BY "created" DESC LIMIT $2`,
		connectionName, limit)
}

func (s *historyStorage) SearchEntries(ctx context.Context, term string, limit int) ([]*service.HistoryEntry, error) {
	const op errs.Op = "historyStorage.SearchEntries"

	return s.queryEntries(ctx, op, `
		SELECT `+historyColumns+`
		FROM query_history
		WHERE "question" ILIKE '%' || $1 || '%' OR "generated_query" ILIKE '%' || $1 || '%'
		ORDER BY "created" DESC
		LIMIT $2`, term, limit)
}

func (s *historyStorage) GetFavoriteEntries(ctx context.Context) ([]*service.HistoryEntry, error) {
	const op errs.Op = "historyStorage.GetFavoriteEntries"

	return s.queryEntries(ctx, op,
		`SELECT `+historyColumns+` FROM query_history WHERE "is_favorite" = true ORDER BY "created" DESC`)
}

func (s *historyStorage) SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) (*service.HistoryEntry, error) {
	const op errs.Op = "historyStorage.SetFavorite"

	row := s.db.GetDB().QueryRowContext(ctx, `
		UPDATE query_history SET "is_favorite" = $1 WHERE "id" = $2
		RETURNING `+historyColumns, favorite, id)

	entry, err := scanHistoryEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.E(errs.NotExist, op, errs.Parameter("id"), err)
		}

		return nil, errs.E(errs.Database, op, err)
	}

	return entry, nil
}

func (s *historyStorage) GetHistoryEntry(ctx context.Context, id uuid.UUID) (*service.HistoryEntry, error) {
	const op errs.Op = "historyStorage.GetHistoryEntry"

	row := s.db.GetDB().QueryRowContext(ctx,
		`SELECT `+historyColumns+` FROM query_history WHERE "id" = $1`, id)

	entry, err := scanHistoryEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.E(errs.NotExist, op, errs.Parameter("id"), err)
		}

		return nil, errs.E(errs.Database, op, err)
	}

	return entry, nil
}

func (s *historyStorage) DeleteEntriesOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const op errs.Op = "historyStorage.DeleteEntriesOlderThan"

	res, err := s.db.GetDB().ExecContext(ctx,
		`DELETE FROM query_history WHERE "created" < $1 AND "is_favorite" = false`, cutoff)
	if err != nil {
		return 0, errs.E(errs.Database, op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, errs.E(errs.Database, op, err)
	}

	return affected, nil
}

func (s *historyStorage) GetStatistics(ctx context.Context) (*service.HistoryStatistics, error) {
	const op errs.Op = "historyStorage.GetStatistics"

	stats := &service.HistoryStatistics{}

	err := s.db.GetDB().QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE "success"),
		       COUNT(*) FILTER (WHERE NOT "success"),
		       COALESCE(AVG("execution_ms"), 0),
		       COUNT(*) FILTER (WHERE "is_favorite")
		FROM query_history`).Scan(
		&stats.TotalQueries,
		&stats.SuccessfulRuns,
		&stats.FailedRuns,
		&stats.AvgExecutionMS,
		&stats.FavoriteCount,
	)
	if err != nil {
		return nil, errs.E(errs.Database, op, err)
	}

	if stats.TotalQueries > 0 {
		stats.SuccessRate = float64(stats.SuccessfulRuns) / float64(stats.TotalQueries)
	}

	err = s.db.GetDB().QueryRowContext(ctx, `
		SELECT "connection_name"
		FROM query_history
		GROUP BY "connection_name"
		ORDER BY COUNT(*) DESC
		LIMIT 1`).Scan(&stats.MostQueried)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, errs.E(errs.Database, op, err)
	}

	return stats, nil
}

func (s *historyStorage) queryEntries(ctx context.Context, op errs.Op, query string, args ...interface{}) ([]*service.HistoryEntry, error) {
	rows, err := s.db.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.E(errs.Database, op, err)
	}
	defer rows.Close()

	entries := []*service.HistoryEntry{}

	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, errs.E(errs.Database, op, err)
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.E(errs.Database, op, err)
	}

	return entries, nil
}

func scanHistoryEntry(row rowScanner) (*service.HistoryEntry, error) {
	entry := &service.HistoryEntry{}

	err := row.Scan(
		&entry.ID,
		&entry.ShortID,
		&entry.Created,
		&entry.ConnectionName,
		&entry.Question,
		&entry.GeneratedQuery,
		&entry.ExecutionMS,
		&entry.RowCount,
		&entry.Success,
		&entry.ErrorMessage,
		&entry.IsFavorite,
		pq.Array(&entry.Tags),
	)
	if err != nil {
		return nil, err
	}

	return entry, nil
}
