package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/strucbot/strucbot/internal/genai"
	"github.com/strucbot/strucbot/internal/metrics"
	"github.com/strucbot/strucbot/internal/model"
	"github.com/strucbot/strucbot/internal/store"
)

// Schema service errors.
var (
	ErrMissingPrompt    = errors.New("prompt is required")
	ErrSchemaNotFound   = errors.New("schema not found")
	ErrGenerationFailed = errors.New("failed to generate schema from AI")
)

// SchemaService handles schema generation and management.
type SchemaService struct {
	generator genai.Generator
	store     store.SchemaStore
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// NewSchemaService creates a new SchemaService.
func NewSchemaService(generator genai.Generator, schemas store.SchemaStore, logger *slog.Logger, recorder metrics.Recorder) *SchemaService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SchemaService{
		generator: generator,
		store:     schemas,
		logger:    logger,
		recorder:  recorder,
	}
}

// Generate runs the generation gateway for the given prompt, tags the
// result with a fresh id and timestamp, and appends it to the user's
// collection.
func (s *SchemaService) Generate(ctx context.Context, userID, prompt string) (*model.Schema, error) {
	if prompt == "" {
		return nil, ErrMissingPrompt
	}

	s.recorder.IncGenerationRequest()
	start := time.Now()

	generated, err := s.generator.Generate(ctx, prompt)
	s.recorder.ObserveGenerationDuration(time.Since(start))
	if err != nil {
		s.recorder.IncGenerationFailure()
		s.logger.Error("schema generation failed", "user_id", userID, "error", err)
		return nil, ErrGenerationFailed
	}

	schema := &model.Schema{
		ID:        uuid.NewString(),
		TableName: generated.TableName,
		Columns:   generated.Columns,
		Prompt:    prompt,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.AppendSchema(ctx, userID, schema); err != nil {
		return nil, fmt.Errorf("append schema: %w", err)
	}

	s.logger.Info("schema_generated",
		"user_id", userID,
		"schema_id", schema.ID,
		"table_name", schema.TableName,
	)
	return schema, nil
}

// List returns the user's schema records in insertion order.
func (s *SchemaService) List(ctx context.Context, userID string) ([]*model.Schema, error) {
	schemas, err := s.store.ListSchemas(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	return schemas, nil
}

// Delete removes one schema record from the user's collection.
func (s *SchemaService) Delete(ctx context.Context, userID, schemaID string) error {
	if err := s.store.DeleteSchema(ctx, userID, schemaID); err != nil {
		if errors.Is(err, store.ErrSchemaNotFound) {
			return ErrSchemaNotFound
		}
		return fmt.Errorf("delete schema: %w", err)
	}

	s.recorder.IncSchemaDeleted()
	s.logger.Info("schema_deleted", "user_id", userID, "schema_id", schemaID)
	return nil
}
