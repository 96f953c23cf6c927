package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/insightpilot/insightpilot/pkg/service"
)

func newMySQLAdapter(conn *service.Connection, opts Options) *sqlAdapter {
	return &sqlAdapter{
		conn:       conn,
		opts:       opts,
		engine:     service.EngineMySQL,
		driverName: "mysql",
		dsn:        mysqlDSN,
		schemaFn:   mysqlSchema,
		quoteIdent: func(name string) string {
			return "`" + strings.ReplaceAll(name, "`", "``") + "`"
		},
	}
}

func mysqlDSN(conn *service.Connection) string {
	cfg := mysql.NewConfig()
	cfg.User = conn.Username
	cfg.Passwd = conn.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", conn.Host, conn.Port)
	cfg.DBName = conn.Database
	cfg.Timeout = 30 * time.Second
	cfg.ParseTime = true
	cfg.Params = map[string]string{
		"charset": "utf8mb4",
	}

	for k, v := range conn.Extra {
		cfg.Params[k] = v
	}

	return cfg.FormatDSN()
}

func mysqlSchema(ctx context.Context, db *sql.DB, conn *service.Connection) ([]*service.TableSchema, error) {
	tableRows, err := db.QueryContext(ctx, `
		SELECT TABLE_NAME
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`, conn.Database)
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
			SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_KEY
			FROM information_schema.COLUMNS
			WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
			ORDER BY ORDINAL_POSITION`, conn.Database, table)
		if err != nil {
			return nil, fmt.Errorf("listing columns for %s: %w", table, err)
		}

		for colRows.Next() {
			var name, dataType, nullable, key string
			if err := colRows.Scan(&name, &dataType, &nullable, &key); err != nil {
				_ = colRows.Close()
				return nil, err
			}

			ts.Columns = append(ts.Columns, &service.ColumnSchema{
				Name:     name,
				DataType: dataType,
				Nullable: nullable == "YES",
			})

			if key == "PRI" {
				ts.PrimaryKeys = append(ts.PrimaryKeys, name)
			}
		}
		if err := colRows.Err(); err != nil {
			_ = colRows.Close()
			return nil, err
		}
		_ = colRows.Close()

		fkRows, err := db.QueryContext(ctx, `
			SELECT COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
			FROM information_schema.KEY_COLUMN_USAGE
			WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
			AND REFERENCED_TABLE_NAME IS NOT NULL`, conn.Database, table)
		if err != nil {
			return nil, fmt.Errorf("listing foreign keys for %s: %w", table, err)
		}

		for fkRows.Next() {
			var column, refTable, refColumn string
			if err := fkRows.Scan(&column, &refTable, &refColumn); err != nil {
				_ = fkRows.Close()
				return nil, err
			}

			ts.ForeignKeys = append(ts.ForeignKeys, &service.ForeignKey{
				Column:     column,
				References: refTable + "." + refColumn,
			})
		}
		if err := fkRows.Err(); err != nil {
			_ = fkRows.Close()
			return nil, err
		}
		_ = fkRows.Close()

		schemas = append(schemas, ts)
	}

	return schemas, nil
}
