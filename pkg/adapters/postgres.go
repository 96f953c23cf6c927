package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"

	// Postgres targets use the same driver as the metastore.
	_ "github.com/lib/pq"

	"github.com/insightpilot/insightpilot/pkg/service"
)

func newPostgresAdapter(conn *service.Connection, opts Options) *sqlAdapter {
	return &sqlAdapter{
		conn:       conn,
		opts:       opts,
		engine:     service.EnginePostgres,
		driverName: "postgres",
		dsn:        postgresDSN,
		schemaFn:   postgresSchema,
		quoteIdent: func(name string) string {
			return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
		},
	}
}

func postgresDSN(conn *service.Connection) string {
	sslMode := conn.Extra["sslmode"]
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf("postgresql://%s:%s@%s/%s?sslmode=%s",
		conn.Username,
		conn.Password,
		net.JoinHostPort(conn.Host, strconv.Itoa(conn.Port)),
		conn.Database,
		sslMode,
	)
}

func postgresSchema(ctx context.Context, db *sql.DB, _ *service.Connection) ([]*service.TableSchema, error) {
	tableRows, err := db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer tableRows.Close()

	var tables []string
	for tableRows.Next() {
		var name string
		if err := tableRows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	if err := tableRows.Err(); err != nil {
		return nil, err
	}

	schemas := make([]*service.TableSchema, 0, len(tables))

	for _, table := range tables {
		ts := &service.TableSchema{Name: table}

		colRows, err := db.QueryContext(ctx, `
			SELECT column_name, data_type, is_nullable
			FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = $1
			ORDER BY ordinal_position`, table)
		if err != nil {
			return nil, fmt.Errorf("listing columns for %s: %w", table, err)
		}

		for colRows.Next() {
			var name, dataType, nullable string
			if err := colRows.Scan(&name, &dataType, &nullable); err != nil {
				_ = colRows.Close()
				return nil, err
			}

			ts.Columns = append(ts.Columns, &service.ColumnSchema{
				Name:     name,
				DataType: dataType,
				Nullable: nullable == "YES",
			})
		}
		if err := colRows.Err(); err != nil {
			_ = colRows.Close()
			return nil, err
		}
		_ = colRows.Close()

		keyRows, err := db.QueryContext(ctx, `
			SELECT kcu.column_name, tc.constraint_type,
			       COALESCE(ccu.table_name, ''), COALESCE(ccu.column_name, '')
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON tc.constraint_name = kcu.constraint_name
			 AND tc.table_schema = kcu.table_schema
			LEFT JOIN information_schema.constraint_column_usage ccu
			  ON tc.constraint_name = ccu.constraint_name
			 AND tc.constraint_type = 'FOREIGN KEY'
			WHERE tc.table_schema = 'public' AND tc.table_name = $1
			  AND tc.constraint_type IN ('PRIMARY KEY', 'FOREIGN KEY')`, table)
		if err != nil {
			return nil, fmt.Errorf("listing constraints for %s: %w", table, err)
		}

		for keyRows.Next() {
			var column, constraintType, refTable, refColumn string
			if err := keyRows.Scan(&column, &constraintType, &refTable, &refColumn); err != nil {
				_ = keyRows.Close()
				return nil, err
			}

			switch constraintType {
			case "PRIMARY KEY":
				ts.PrimaryKeys = append(ts.PrimaryKeys, column)
			case "FOREIGN KEY":
				ts.ForeignKeys = append(ts.ForeignKeys, &service.ForeignKey{
					Column:     column,
					References: refTable + "." + refColumn,
				})
			}
		}
		if err := keyRows.Err(); err != nil {
			_ = keyRows.Close()
			return nil, err
		}
		_ = keyRows.Close()

		schemas = append(schemas, ts)
	}

	return schemas, nil
}
