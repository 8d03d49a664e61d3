package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/strucbot/strucbot/internal/handler/dto"
)

func TestGenerateSchema(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "gen", "gen-password")

	rec := env.doRequest(t, http.MethodPost, "/api/generate-schema", token, map[string]any{
		"prompt": "a table for users",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.SchemaResponse
	decodeBody(t, rec, &resp)
	if resp.ID == "" {
		t.Error("expected a schema id")
	}
	if resp.TableName != "users" {
		t.Errorf("expected table_name users, got %q", resp.TableName)
	}
	if len(resp.Columns) != 2 {
		t.Errorf("expected 2 columns, got %d", len(resp.Columns))
	}
	if resp.Prompt != "a table for users" {
		t.Errorf("expected originating prompt, got %q", resp.Prompt)
	}
	if resp.CreatedAt.IsZero() {
		t.Error("expected a creation timestamp")
	}
}

func TestGenerateSchema_MissingPrompt(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "noprompt", "np-password")

	rec := env.doRequest(t, http.MethodPost, "/api/generate-schema", token, map[string]any{})
	assertError(t, rec, http.StatusBadRequest, "Prompt is required")
}

func TestGenerateSchema_GatewayFailure(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "fail", "fail-password")
	env.gen.err = errors.New("model unavailable")

	rec := env.doRequest(t, http.MethodPost, "/api/generate-schema", token, map[string]any{
		"prompt": "a table for users",
	})
	assertError(t, rec, http.StatusInternalServerError, "Failed to generate schema from AI")

	// Nothing gets stored on failure.
	rec = env.doRequest(t, http.MethodGet, "/api/schemas", token, nil)
	var listed []dto.SchemaResponse
	decodeBody(t, rec, &listed)
	if len(listed) != 0 {
		t.Errorf("expected empty collection after failure, got %d records", len(listed))
	}
}

func TestGenerateSchema_NoToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doRequest(t, http.MethodPost, "/api/generate-schema", "", map[string]any{
		"prompt": "a table for users",
	})
	assertError(t, rec, http.StatusUnauthorized, "Access token required")
}

func TestListSchemas_EmptyIsArray(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "empty", "empty-password")

	rec := env.doRequest(t, http.MethodGet, "/api/schemas", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// A fresh collection serializes as [], never null.
	body := rec.Body.String()
	if body != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", body)
	}
}

func TestDeleteSchema(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "del", "del-password")

	rec := env.doRequest(t, http.MethodPost, "/api/generate-schema", token, map[string]any{
		"prompt": "a table for users",
	})
	var schema dto.SchemaResponse
	decodeBody(t, rec, &schema)

	rec = env.doRequest(t, http.MethodDelete, "/api/schemas/"+schema.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp dto.DeleteSchemaResponse
	decodeBody(t, rec, &resp)
	if resp.Message != "Schema deleted successfully" {
		t.Errorf("unexpected message %q", resp.Message)
	}

	// Second delete is a 404.
	rec = env.doRequest(t, http.MethodDelete, "/api/schemas/"+schema.ID, token, nil)
	assertError(t, rec, http.StatusNotFound, "Schema not found")
}

func TestDeleteSchema_OtherUser(t *testing.T) {
	env := newTestEnv(t)
	ownerToken := env.registerAndLogin(t, "owner", "owner-password")
	otherToken := env.registerAndLogin(t, "other", "other-password")

	rec := env.doRequest(t, http.MethodPost, "/api/generate-schema", ownerToken, map[string]any{
		"prompt": "a table for users",
	})
	var schema dto.SchemaResponse
	decodeBody(t, rec, &schema)

	// Record ids only resolve inside the owner's collection.
	rec = env.doRequest(t, http.MethodDelete, "/api/schemas/"+schema.ID, otherToken, nil)
	assertError(t, rec, http.StatusNotFound, "Schema not found")

	rec = env.doRequest(t, http.MethodGet, "/api/schemas", ownerToken, nil)
	var listed []dto.SchemaResponse
	decodeBody(t, rec, &listed)
	if len(listed) != 1 {
		t.Errorf("owner's record should survive, got %d records", len(listed))
	}
}
