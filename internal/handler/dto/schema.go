package dto

import (
	"time"

	"github.com/strucbot/strucbot/internal/model"
)

// GenerateSchemaRequest represents the request body for schema generation.
type GenerateSchemaRequest struct {
	Prompt string `json:"prompt"`
}

// SchemaResponse represents a generated schema record in API responses.
type SchemaResponse struct {
	ID        string         `json:"id"`
	TableName string         `json:"table_name"`
	Columns   []model.Column `json:"columns"`
	Prompt    string         `json:"prompt"`
	CreatedAt time.Time      `json:"created_at"`
}

// DeleteSchemaResponse is returned on successful deletion.
type DeleteSchemaResponse struct {
	Message string `json:"message"`
}

// ToSchemaResponse converts a Schema model to SchemaResponse DTO.
func ToSchemaResponse(schema *model.Schema) *SchemaResponse {
	return &SchemaResponse{
		ID:        schema.ID,
		TableName: schema.TableName,
		Columns:   schema.Columns,
		Prompt:    schema.Prompt,
		CreatedAt: schema.CreatedAt,
	}
}

// ToSchemaListResponse converts a slice of Schema models.
func ToSchemaListResponse(schemas []*model.Schema) []SchemaResponse {
	responses := make([]SchemaResponse, len(schemas))
	for i, schema := range schemas {
		responses[i] = *ToSchemaResponse(schema)
	}
	return responses
}
