package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	go_ora "github.com/sijms/go-ora/v2"

	"github.com/insightpilot/insightpilot/pkg/service"
)

func newOracleAdapter(conn *service.Connection, opts Options) *sqlAdapter {
	return &sqlAdapter{
		conn:       conn,
		opts:       opts,
		engine:     service.EngineOracle,
		driverName: "oracle",
		dsn:        oracleDSN,
		schemaFn:   oracleSchema,
		quoteIdent: func(name string) string {
			return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
		},
	}
}

func oracleDSN(conn *service.Connection) string {
	urlOptions := map[string]string{}
	for k, v := range conn.Extra {
		urlOptions[k] = v
	}

	return go_ora.BuildUrl(conn.Host, conn.Port, conn.Database, conn.Username, conn.Password, urlOptions)
}

func oracleSchema(ctx context.Context, db *sql.DB, _ *service.Connection) ([]*service.TableSchema, error) {
	tableRows, err := db.QueryContext(ctx, `
		SELECT TABLE_NAME
		FROM USER_TABLES
		ORDER BY TABLE_NAME`)
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
			SELECT COLUMN_NAME, DATA_TYPE, NULLABLE
			FROM USER_TAB_COLUMNS
			WHERE TABLE_NAME = :1
			ORDER BY COLUMN_ID`, table)
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
				Nullable: nullable == "Y",
			})
		}
		if err := colRows.Err(); err != nil {
			_ = colRows.Close()
			return nil, err
		}
		_ = colRows.Close()

		pkRows, err := db.QueryContext(ctx, `
			SELECT cols.COLUMN_NAME
			FROM USER_CONSTRAINTS cons
			JOIN USER_CONS_COLUMNS cols ON cons.CONSTRAINT_NAME = cols.CONSTRAINT_NAME
			WHERE cons.TABLE_NAME = :1 AND cons.CONSTRAINT_TYPE = 'P'
			ORDER BY cols.POSITION`, table)
		if err != nil {
			return nil, fmt.Errorf("listing primary keys for %s: %w", table, err)
		}

		for pkRows.Next() {
			var column string
			if err := pkRows.Scan(&column); err != nil {
				_ = pkRows.Close()
				return nil, err
			}
			ts.PrimaryKeys = append(ts.PrimaryKeys, column)
		}
		if err := pkRows.Err(); err != nil {
			_ = pkRows.Close()
			return nil, err
		}
		_ = pkRows.Close()

		fkRows, err := db.QueryContext(ctx, `
			SELECT cols.COLUMN_NAME, rcols.TABLE_NAME, rcols.COLUMN_NAME
			FROM USER_CONSTRAINTS cons
			JOIN USER_CONS_COLUMNS cols ON cons.CONSTRAINT_NAME = cols.CONSTRAINT_NAME
			JOIN USER_CONS_COLUMNS rcols ON cons.R_CONSTRAINT_NAME = rcols.CONSTRAINT_NAME
			  AND cols.POSITION = rcols.POSITION
			WHERE cons.TABLE_NAME = :1 AND cons.CONSTRAINT_TYPE = 'R'`, table)
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
