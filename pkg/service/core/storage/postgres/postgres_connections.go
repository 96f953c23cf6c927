package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/insightpilot/insightpilot/pkg/database"
	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
)

var _ service.ConnectionStorage = &connectionStorage{}

type connectionStorage struct {
	db *database.Repo
}

func NewConnectionStorage(db *database.Repo) *connectionStorage {
	return &connectionStorage{db: db}
}

const connectionColumns = `"id", "name", "type", "subtype", "host", "port", "database", "username", "password", "model", "base_url", "extra", "is_default", "created", "last_modified"`

func (s *connectionStorage) CreateConnection(ctx context.Context, in service.NewConnection) (*service.Connection, error) {
	const op errs.Op = "connectionStorage.CreateConnection"

	extra, err := marshalExtra(in.Extra)
	if err != nil {
		return nil, errs.E(errs.Invalid, op, err)
	}

	row := s.db.GetDB().QueryRowContext(ctx, `
		INSERT INTO connections ("name", "type", "subtype", "host", "port", "database", "username", "password", "model", "base_url", "extra")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+connectionColumns,
		in.Name, in.Type, in.Subtype, in.Host, in.Port, in.Database,
		in.Username, in.Password, in.Model, in.BaseURL, extra)

	conn, err := scanConnection(row)
	if err != nil {
		return nil, errs.E(errs.Database, op, err)
	}

	return conn, nil
}

func (s *connectionStorage) UpdateConnection(ctx context.Context, id uuid.UUID, in service.UpdateConnectionDto) (*service.Connection, error) {
	const op errs.Op = "connectionStorage.UpdateConnection"

	extra, err := marshalExtra(in.Extra)
	if err != nil {
		return nil, errs.E(errs.Invalid, op, err)
	}

	row := s.db.GetDB().QueryRowContext(ctx, `
		UPDATE connections
		SET "host" = $1, "port" = $2, "database" = $3, "username" = $4,
		    "password" = CASE WHEN $5 = '' THEN "password" ELSE $5 END,
		    "model" = $6, "base_url" = $7, "extra" = $8, "last_modified" = NOW()
		WHERE "id" = $9
		RETURNING `+connectionColumns,
		in.Host, in.Port, in.Database, in.Username, in.Password,
		in.Model, in.BaseURL, extra, id)

	conn, err := scanConnection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.E(errs.NotExist, op, errs.Parameter("id"), err)
		}

		return nil, errs.E(errs.Database, op, err)
	}

	return conn, nil
}

func (s *connectionStorage) DeleteConnection(ctx context.Context, id uuid.UUID) error {
	const op errs.Op = "connectionStorage.DeleteConnection"

	res, err := s.db.GetDB().ExecContext(ctx, `DELETE FROM connections WHERE "id" = $1`, id)
	if err != nil {
		return errs.E(errs.Database, op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errs.E(errs.Database, op, err)
	}

	if affected == 0 {
		return errs.E(errs.NotExist, op, errs.Parameter("id"), errs.Str("connection not found"))
	}

	return nil
}

func (s *connectionStorage) GetConnection(ctx context.Context, id uuid.UUID) (*service.Connection, error) {
	const op errs.Op = "connectionStorage.GetConnection"

	row := s.db.GetDB().QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM connections WHERE "id" = $1`, id)

	conn, err := scanConnection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.E(errs.NotExist, op, errs.Parameter("id"), err)
		}

		return nil, errs.E(errs.Database, op, err)
	}

	return conn, nil
}

func (s *connectionStorage) GetConnectionByName(ctx context.Context, name string) (*service.Connection, error) {
	const op errs.Op = "connectionStorage.GetConnectionByName"

	row := s.db.GetDB().QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM connections WHERE "name" = $1`, name)

	conn, err := scanConnection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.E(errs.NotExist, op, errs.Parameter("name"), err)
		}

		return nil, errs.E(errs.Database, op, err)
	}

	return conn, nil
}

func (s *connectionStorage) GetConnections(ctx context.Context, connectionType string) ([]*service.Connection, error) {
	const op errs.Op = "connectionStorage.GetConnections"

	query := `SELECT ` + connectionColumns + ` FROM connections`
	args := []interface{}{}

	if connectionType != "" {
		query += ` WHERE "type" = $1`
		args = append(args, connectionType)
	}

	query += ` ORDER BY "name"`

	rows, err := s.db.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.E(errs.Database, op, err)
	}
	defer rows.Close()

	connections := []*service.Connection{}

	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, errs.E(errs.Database, op, err)
		}

		connections = append(connections, conn)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.E(errs.Database, op, err)
	}

	return connections, nil
}

// SetDefaultConnection marks one connection as default and clears the
// flag from every other connection of the same type.
func (s *connectionStorage) SetDefaultConnection(ctx context.Context, id uuid.UUID) error {
	const op errs.Op = "connectionStorage.SetDefaultConnection"

	tx, err := s.db.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errs.E(errs.Database, op, err)
	}
	defer tx.Rollback()

	var connectionType string
	if err := tx.QueryRowContext(ctx,
		`SELECT "type" FROM connections WHERE "id" = $1`, id).Scan(&connectionType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.E(errs.NotExist, op, errs.Parameter("id"), err)
		}

		return errs.E(errs.Database, op, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE connections SET "is_default" = false WHERE "type" = $1`, connectionType); err != nil {
		return errs.E(errs.Database, op, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE connections SET "is_default" = true, "last_modified" = NOW() WHERE "id" = $1`, id); err != nil {
		return errs.E(errs.Database, op, err)
	}

	if err := tx.Commit(); err != nil {
		return errs.E(errs.Database, op, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConnection(row rowScanner) (*service.Connection, error) {
	conn := &service.Connection{}
	var extra []byte

	err := row.Scan(
		&conn.ID,
		&conn.Name,
		&conn.Type,
		&conn.Subtype,
		&conn.Host,
		&conn.Port,
		&conn.Database,
		&conn.Username,
		&conn.Password,
		&conn.Model,
		&conn.BaseURL,
		&extra,
		&conn.IsDefault,
		&conn.Created,
		&conn.LastModified,
	)
	if err != nil {
		return nil, err
	}

	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &conn.Extra); err != nil {
			return nil, err
		}
	}

	return conn, nil
}

func marshalExtra(extra map[string]string) ([]byte, error) {
	if extra == nil {
		extra = map[string]string{}
	}

	return json.Marshal(extra)
}
