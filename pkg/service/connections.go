package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	ConnectionTypeDatabase = "database"
	ConnectionTypeLLM      = "llm"
)

const (
	EngineMySQL    = "mysql"
	EngineOracle   = "oracle"
	EngineMongoDB  = "mongodb"
	EnginePostgres = "postgres"
)

const (
	ProviderOllama       = "ollama"
	ProviderOpenAI       = "openai"
	ProviderGithubModels = "github"
)

type ConnectionStorage interface {
	CreateConnection(ctx context.Context, in NewConnection) (*Connection, error)
	UpdateConnection(ctx context.Context, id uuid.UUID, in UpdateConnectionDto) (*Connection, error)
	DeleteConnection(ctx context.Context, id uuid.UUID) error
	GetConnection(ctx context.Context, id uuid.UUID) (*Connection, error)
	GetConnectionByName(ctx context.Context, name string) (*Connection, error)
	GetConnections(ctx context.Context, connectionType string) ([]*Connection, error)
	SetDefaultConnection(ctx context.Context, id uuid.UUID) error
}

type ConnectionService interface {
	CreateConnection(ctx context.Context, in NewConnection) (*Connection, error)
	UpdateConnection(ctx context.Context, id uuid.UUID, in UpdateConnectionDto) (*Connection, error)
	DeleteConnection(ctx context.Context, id uuid.UUID) error
	GetConnection(ctx context.Context, id uuid.UUID) (*Connection, error)
	GetConnections(ctx context.Context, connectionType string) ([]*Connection, error)
	SetDefaultConnection(ctx context.Context, id uuid.UUID) error
	TestConnection(ctx context.Context, id uuid.UUID) (*ConnectionTestResult, error)
}

// Connection is a saved endpoint, either a target database or an
// LLM provider account.
type Connection struct {
	ID uuid.UUID `json:"id"`
	// name uniquely identifies the connection.
	Name string `json:"name"`
	// type is either database or llm.
	Type string `json:"type"`
	// subtype is the engine (mysql, oracle, mongodb, postgres) for
	// database connections and the provider (ollama, openai, github)
	// for llm connections.
	Subtype  string `json:"subtype"`
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	Database string `json:"database,omitempty"`
	Username string `json:"username,omitempty"`
	// password is never serialized back out.
	Password string `json:"-"`
	// model is the default model for llm connections.
	Model   string `json:"model,omitempty"`
	BaseURL string `json:"baseUrl,omitempty"`
	// extra carries driver or provider specific parameters.
	Extra        map[string]string `json:"extra,omitempty"`
	IsDefault    bool              `json:"isDefault"`
	Created      time.Time         `json:"created"`
	LastModified time.Time         `json:"lastModified"`
}

// Engine resolves the database engine of the connection, falling back
// to well known ports when the subtype was not set explicitly.
func (c *Connection) Engine() string {
	if c.Subtype != "" {
		return c.Subtype
	}

	switch c.Port {
	case 3306:
		return EngineMySQL
	case 1521:
		return EngineOracle
	case 27017:
		return EngineMongoDB
	case 5432:
		return EnginePostgres
	}

	return ""
}

type NewConnection struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Subtype  string            `json:"subtype"`
	Host     string            `json:"host"`
	Port     int               `json:"port"`
	Database string            `json:"database"`
	Username string            `json:"username"`
	Password string            `json:"password"`
	Model    string            `json:"model"`
	BaseURL  string            `json:"baseUrl"`
	Extra    map[string]string `json:"extra"`
}

type UpdateConnectionDto struct {
	Host     string            `json:"host"`
	Port     int               `json:"port"`
	Database string            `json:"database"`
	Username string            `json:"username"`
	Password string            `json:"password"`
	Model    string            `json:"model"`
	BaseURL  string            `json:"baseUrl"`
	Extra    map[string]string `json:"extra"`
}

type ConnectionTestResult struct {
	Healthy   bool   `json:"healthy"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latencyMs"`
}
