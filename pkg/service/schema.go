package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SchemaService interface {
	// GetSchema returns the table layout of a saved database
	// connection, served from the schema cache when fresh.
	GetSchema(ctx context.Context, connectionName string) ([]*TableSchema, error)
	// Describe renders a schema as the plain text block used in
	// llm prompts.
	Describe(schema []*TableSchema) string
}

type SchemaCacheStorage interface {
	GetCachedSchema(ctx context.Context, connectionID uuid.UUID) ([]*TableSchema, time.Time, error)
	PutCachedSchema(ctx context.Context, connectionID uuid.UUID, schema []*TableSchema) error
	InvalidateSchema(ctx context.Context, connectionID uuid.UUID) error
}

type TableSchema struct {
	Name        string          `json:"name"`
	Columns     []*ColumnSchema `json:"columns"`
	PrimaryKeys []string        `json:"primaryKeys,omitempty"`
	ForeignKeys []*ForeignKey   `json:"foreignKeys,omitempty"`
}

type ColumnSchema struct {
	Name     string `json:"name"`
	DataType string `json:"dataType"`
	Nullable bool   `json:"nullable"`
}

type ForeignKey struct {
	Column string `json:"column"`
	// References is the target as table.column.
	References string `json:"references"`
}
