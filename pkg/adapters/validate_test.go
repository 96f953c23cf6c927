package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReadOnly(t *testing.T) {
	testCases := []struct {
		name      string
		query     string
		expectErr string
	}{
		{
			name:  "plain select",
			query: "SELECT id, name FROM users WHERE active = true",
		},
		{
			name:  "select with cte",
			query: "WITH recent AS (SELECT * FROM orders) SELECT count(*) FROM recent",
		},
		{
			name:  "column names containing denied substrings",
			query: "SELECT created_at, updated_at, dropped_reason FROM audit_log",
		},
		{
			name:  "lowercase select",
			query: "select 1",
		},
		{
			name:      "empty query",
			query:     "   ",
			expectErr: "empty query",
		},
		{
			name:      "insert statement",
			query:     "INSERT INTO users (name) VALUES ('x')",
			expectErr: "only SELECT statements are allowed",
		},
		{
			name:      "drop behind select",
			query:     "SELECT 1; DROP TABLE users",
			expectErr: "denied keyword DROP",
		},
		{
			name:      "delete keyword",
			query:     "SELECT * FROM users WHERE id IN (DELETE FROM users RETURNING id)",
			expectErr: "denied keyword DELETE",
		},
		{
			name:      "outfile pattern",
			query:     "SELECT * FROM users INTO OUTFILE '/tmp/x'",
			expectErr: "dangerous pattern INTO OUTFILE",
		},
		{
			name:      "exec keyword",
			query:     "SELECT * FROM users; EXEC sp_who",
			expectErr: "denied keyword EXEC",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateReadOnly(tc.query)

			if tc.expectErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectErr)
		})
	}
}

func TestClampRowLimit(t *testing.T) {
	testCases := []struct {
		name    string
		query   string
		engine  string
		maxRows int
		expect  string
	}{
		{
			name:    "appends limit",
			query:   "SELECT * FROM users",
			engine:  "mysql",
			maxRows: 100,
			expect:  "SELECT * FROM users LIMIT 100",
		},
		{
			name:    "keeps existing limit",
			query:   "SELECT * FROM users LIMIT 5",
			engine:  "postgres",
			maxRows: 100,
			expect:  "SELECT * FROM users LIMIT 5",
		},
		{
			name:    "strips trailing semicolon",
			query:   "SELECT * FROM users;",
			engine:  "mysql",
			maxRows: 50,
			expect:  "SELECT * FROM users LIMIT 50",
		},
		{
			name:    "oracle uses fetch first",
			query:   "SELECT * FROM employees",
			engine:  "oracle",
			maxRows: 100,
			expect:  "SELECT * FROM employees FETCH FIRST 100 ROWS ONLY",
		},
		{
			name:    "oracle keeps existing fetch",
			query:   "SELECT * FROM employees FETCH FIRST 10 ROWS ONLY",
			engine:  "oracle",
			maxRows: 100,
			expect:  "SELECT * FROM employees FETCH FIRST 10 ROWS ONLY",
		},
		{
			name:    "oracle keeps rownum filter",
			query:   "SELECT * FROM employees WHERE ROWNUM <= 10",
			engine:  "oracle",
			maxRows: 100,
			expect:  "SELECT * FROM employees WHERE ROWNUM <= 10",
		},
		{
			name:    "limit in identifier does not count",
			query:   "SELECT rate_limit FROM plans",
			engine:  "mysql",
			maxRows: 10,
			expect:  "SELECT rate_limit FROM plans LIMIT 10",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClampRowLimit(tc.query, tc.engine, tc.maxRows)
			assert.Equal(t, tc.expect, got)
		})
	}
}
