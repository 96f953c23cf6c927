package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/insightpilot/insightpilot/pkg/service"
)

type SchemaHandler struct {
	schemaService service.SchemaService
}

func NewSchemaHandler(service service.SchemaService) *SchemaHandler {
	return &SchemaHandler{schemaService: service}
}

func (h *SchemaHandler) GetSchema(ctx context.Context, r *http.Request, _ any) ([]*service.TableSchema, error) {
	return h.schemaService.GetSchema(ctx, chi.URLParam(r, "connection"))
}

type SchemaDescription struct {
	Description string `json:"description"`
}

func (h *SchemaHandler) DescribeSchema(ctx context.Context, r *http.Request, _ any) (*SchemaDescription, error) {
	schema, err := h.schemaService.GetSchema(ctx, chi.URLParam(r, "connection"))
	if err != nil {
		return nil, err
	}

	return &SchemaDescription{Description: h.schemaService.Describe(schema)}, nil
}
