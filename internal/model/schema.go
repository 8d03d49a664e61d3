package model

import "time"

// Column is a single column of a generated table schema.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// Schema represents one generated database schema record.
// Records are append-only: once created they are never mutated,
// only deleted by id.
type Schema struct {
	ID        string    `json:"id"`
	TableName string    `json:"table_name"`
	Columns   []Column  `json:"columns"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

// GeneratedSchema is the shape the generation gateway parses out of
// the model reply, before the service attaches id, prompt and
// timestamp. The reply is passed through as-is: no validation of
// column shape or required primary key is performed.
type GeneratedSchema struct {
	TableName string   `json:"table_name"`
	Columns   []Column `json:"columns"`
}
