package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestServer returns an httptest server that replies with the given
// status and a generateContent-shaped body wrapping replyText.
func newTestServer(t *testing.T, status int, replyText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected api key in query, got %q", r.URL.Query().Get("key"))
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 {
			t.Errorf("unexpected request shape: %+v", req)
		} else {
			text := req.Contents[0].Parts[0].Text
			if !strings.Contains(text, "expert database architect") {
				t.Error("system instruction missing from request")
			}
			if !strings.Contains(text, "users table") {
				t.Error("user prompt missing from request")
			}
		}

		text, _ := json.Marshal(replyText)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":` + string(text) + `}]}}]}`))
	}))
}

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
	})
}

func TestClient_Generate(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, "```json\n"+sampleReply+"\n```")
	defer srv.Close()

	schema, err := newTestClient(srv.URL).Generate(context.Background(), "users table")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if schema.TableName != "users" {
		t.Errorf("expected table_name users, got %s", schema.TableName)
	}
	if len(schema.Columns) == 0 {
		t.Error("expected non-empty columns")
	}
}

func TestClient_Generate_PromptVerbatim(t *testing.T) {
	// Quotes and non-ASCII text must reach the model exactly as typed,
	// not Go-escaped.
	const prompt = `таблица "клиенты" with émail`

	var sent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			sent = req.Contents[0].Parts[0].Text
		}

		text, _ := json.Marshal("```json\n" + sampleReply + "\n```")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":` + string(text) + `}]}}]}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Generate(context.Background(), prompt); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.HasSuffix(sent, `User request: "`+prompt+`"`) {
		t.Errorf("prompt was not passed through verbatim: %q", sent)
	}
}

func TestClient_Generate_ErrorStatus(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests, sampleReply)
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), "users table")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestClient_Generate_UnparseableReply(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, "sorry, I cannot help with that")
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), "users table")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestClient_Generate_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), "users table")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestClient_Generate_ServerDown(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, sampleReply)
	srv.Close() // connection refused

	_, err := newTestClient(srv.URL).Generate(context.Background(), "users table")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed, got %v", err)
	}
}
