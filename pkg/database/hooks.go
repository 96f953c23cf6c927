package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey int

const queryStartKey ctxKey = iota

// queryLogger traces metastore statements with their duration at debug
// level.
type queryLogger struct {
	log zerolog.Logger
}

func newQueryLogger(log zerolog.Logger) *queryLogger {
	return &queryLogger{log: log}
}

func (h *queryLogger) Before(ctx context.Context, _ string, _ ...interface{}) (context.Context, error) {
	return context.WithValue(ctx, queryStartKey, time.Now()), nil
}

func (h *queryLogger) After(ctx context.Context, query string, _ ...interface{}) (context.Context, error) {
	if start, ok := ctx.Value(queryStartKey).(time.Time); ok {
		h.log.Debug().
			Str("query", query).
			Dur("duration", time.Since(start)).
			Msg("metastore query")
	}

	return ctx, nil
}

func (h *queryLogger) OnError(ctx context.Context, err error, query string, _ ...interface{}) error {
	h.log.Debug().
		Err(err).
		Str("query", query).
		Msg("metastore query failed")

	return err
}
