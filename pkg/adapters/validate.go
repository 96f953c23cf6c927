package adapters

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insightpilot/insightpilot/pkg/errs"
)

// Keywords that mutate state or leak data. Matched on word boundaries
// so column names like created_at don't trip the guard.
var deniedKeywords = []string{
	"DROP", "DELETE", "UPDATE", "INSERT", "ALTER", "CREATE",
	"TRUNCATE", "REPLACE", "GRANT", "REVOKE", "MERGE", "CALL",
	"EXEC", "EXECUTE",
}

var dangerousPatterns = []string{
	"INTO OUTFILE", "INTO DUMPFILE", "LOAD_FILE", "XP_", "SP_", "CMDSHELL",
}

var wordSplit = regexp.MustCompile(`[^A-Z0-9_$]+`)

// ValidateReadOnly rejects statements that are not plain reads. Only
// SELECT statements (optionally opening with a WITH clause) pass.
func ValidateReadOnly(query string) error {
	const op errs.Op = "adapters.ValidateReadOnly"

	upper := strings.ToUpper(strings.TrimSpace(query))
	if upper == "" {
		return errs.E(op, errs.InvalidRequest, errs.Str("empty query"))
	}

	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return errs.E(op, errs.InvalidRequest, errs.Str("only SELECT statements are allowed"))
	}

	for _, word := range wordSplit.Split(upper, -1) {
		for _, denied := range deniedKeywords {
			if word == denied {
				return errs.E(op, errs.InvalidRequest, fmt.Errorf("statement contains denied keyword %s", denied))
			}
		}
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(upper, pattern) {
			return errs.E(op, errs.InvalidRequest, fmt.Errorf("statement contains dangerous pattern %s", pattern))
		}
	}

	return nil
}

var (
	limitClause = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)
	fetchClause = regexp.MustCompile(`(?i)\bFETCH\s+FIRST\s+\d+\s+ROWS?\s+ONLY\b`)
	rownumRef   = regexp.MustCompile(`(?i)\bROWNUM\b`)
)

// ClampRowLimit appends an engine appropriate row limit when the
// statement has none of its own.
func ClampRowLimit(query, engine string, maxRows int) string {
	trimmed := strings.TrimRight(strings.TrimSpace(query), ";")

	switch engine {
	case "oracle":
		if fetchClause.MatchString(trimmed) || rownumRef.MatchString(trimmed) {
			return trimmed
		}

		return fmt.Sprintf("%s FETCH FIRST %d ROWS ONLY", trimmed, maxRows)
	default:
		if limitClause.MatchString(trimmed) {
			return trimmed
		}

		return fmt.Sprintf("%s LIMIT %d", trimmed, maxRows)
	}
}
