package llm

import (
	"fmt"
	"strings"

	"github.com/insightpilot/insightpilot/pkg/service"
)

// PromptBuilder renders the structured prompts sent to the providers.
// The rule blocks mirror what the generation step enforces afterwards,
// so a well behaved model rarely triggers the validator.
type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

func (b *PromptBuilder) SQLPrompt(schemaInfo, question string) string {
	return fmt.Sprintf(`You are an expert SQL query generator. Given the database schema and a natural language question, generate a valid SQL SELECT query.

### DATABASE SCHEMA ###
%s

### RULES ###
1. Only generate SELECT queries
2. Do not use any DDL or DML operations (CREATE, DROP, INSERT, UPDATE, DELETE)
3. Use proper SQL syntax and formatting
4. Include appropriate WHERE clauses for filtering
5. Use JOINs when needed to relate tables
6. Add LIMIT clauses to prevent large result sets (max 1000 rows)
7. Use proper aggregate functions (COUNT, SUM, AVG, etc.) when appropriate
8. Always use table aliases for better readability

### QUESTION ###
%s

### SQL QUERY ###
`, schemaInfo, question)
}

func (b *PromptBuilder) MongoDBPrompt(schemaInfo, question string) string {
	return fmt.Sprintf(`You are an expert MongoDB query generator. Given the collection schema and a natural language question, generate a valid MongoDB aggregation pipeline.

### COLLECTION SCHEMA ###
%s

### RULES ###
1. Only generate aggregation pipelines using find() or aggregate()
2. Use proper MongoDB operators ($match, $group, $sort, $limit, etc.)
3. Include appropriate $match stages for filtering
4. Use $limit stage to prevent large result sets (max 1000 documents)
5. Use proper aggregation operators ($sum, $avg, $count, etc.) when appropriate
6. Format the output as a valid MongoDB query

### QUESTION ###
%s

### MONGODB QUERY ###
`, schemaInfo, question)
}

func (b *PromptBuilder) ExplainPrompt(query string) string {
	return fmt.Sprintf(`You are an expert SQL query explainer. Given a SQL query, provide a detailed explanation of its purpose and logic.
### SQL QUERY ###
%s

### EXPLANATION ###
`, query)
}

func (b *PromptBuilder) ChartRecommendationPrompt(columns []string, sample [][]interface{}, question, userHint string) string {
	var sb strings.Builder

	sb.WriteString("You are a data visualization expert. Given the result columns, a sample of the rows and the original question, answer with exactly one of: bar, line, pie, scatter, histogram, table.\n\n")

	sb.WriteString("### COLUMNS ###\n")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString("\n\n### SAMPLE ROWS ###\n")

	for i, row := range sample {
		if i >= 5 {
			break
		}

		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprintf("%v", cell)
		}
		sb.WriteString(strings.Join(cells, ", "))
		sb.WriteString("\n")
	}

	sb.WriteString("\n### QUESTION ###\n")
	sb.WriteString(question)

	if userHint != "" {
		sb.WriteString("\n\n### USER PREFERENCE ###\n")
		sb.WriteString(userHint)
	}

	sb.WriteString("\n\n### CHART TYPE ###\n")

	return sb.String()
}

// FormatSchema renders table schemas as the plain text block embedded
// in generation prompts.
func (b *PromptBuilder) FormatSchema(tables []*service.TableSchema) string {
	var sb strings.Builder

	for i, table := range tables {
		if i > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString("Table: ")
		sb.WriteString(table.Name)
		sb.WriteString("\n")

		for _, col := range table.Columns {
			sb.WriteString("  - ")
			sb.WriteString(col.Name)
			sb.WriteString(" (")
			sb.WriteString(col.DataType)
			if col.Nullable {
				sb.WriteString(", nullable")
			}
			sb.WriteString(")")

			for _, pk := range table.PrimaryKeys {
				if pk == col.Name {
					sb.WriteString(" [primary key]")
					break
				}
			}

			for _, fk := range table.ForeignKeys {
				if fk.Column == col.Name {
					sb.WriteString(" [references ")
					sb.WriteString(fk.References)
					sb.WriteString("]")
					break
				}
			}

			sb.WriteString("\n")
		}
	}

	return sb.String()
}
