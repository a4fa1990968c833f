package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/enrollment-service/internal/api/dto"
	httptransport "github.com/spec-kit/enrollment-service/internal/api/http"
	"github.com/spec-kit/enrollment-service/internal/api/http/handlers"
	"github.com/spec-kit/enrollment-service/internal/domain"
	"github.com/spec-kit/enrollment-service/internal/embedding"
	"github.com/spec-kit/enrollment-service/internal/observability"
	"github.com/spec-kit/enrollment-service/internal/repository"
	"github.com/spec-kit/enrollment-service/internal/service"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestApp(t *testing.T, deps map[string]handlers.Pinger) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	engine := service.NewDialogueEngine(service.EngineDependencies{
		Store:    repository.NewMemorySessionStore(nil),
		Tickets:  repository.NewMemoryTicketSink(),
		Embedder: embedding.NewService(embedding.NewHashEmbedder(16)),
		Metrics:  metrics,
		Logger:   logger,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler("enrollment", "test", deps, metrics),
		Enrollment: handlers.NewEnrollmentHandler(engine),
	})
	return app
}

func chat(t *testing.T, app *fiber.App, body dto.ChatRequest) dto.ChatResponse {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, raw)
	}
	var out dto.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func get(t *testing.T, app *fiber.App, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func TestChatConversationAndLookups(t *testing.T) {
	app := newTestApp(t, nil)

	first := chat(t, app, dto.ChatRequest{Message: "Jane Doe jane@example.com"})
	if first.SessionID == "" || first.NextStep != domain.StepAskProgramInterest {
		t.Fatalf("unexpected first response %#v", first)
	}
	answers := []string{"yes", "C"}
	for range domain.RoleFields {
		answers = append(answers, "Acme")
	}
	var last dto.ChatResponse
	for _, answer := range answers {
		last = chat(t, app, dto.ChatRequest{Message: answer, SessionID: first.SessionID})
	}
	if !last.IsComplete || last.NextStep != domain.StepComplete {
		t.Fatalf("expected complete conversation, got %#v", last)
	}

	resp, body := get(t, app, "/api/session/"+first.SessionID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("session lookup status %d", resp.StatusCode)
	}
	data := body["data"].(map[string]any)
	if data["ticket_generated"] != true || data["current_step"] != string(domain.StepComplete) {
		t.Fatalf("unexpected session snapshot %#v", data)
	}

	resp, body = get(t, app, "/api/ticket/"+first.SessionID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ticket lookup status %d", resp.StatusCode)
	}
	ticket := body["data"].(map[string]any)
	if ticket["subject"] != "MP Enrollment - contractor - Acme" || ticket["category"] != "MP" {
		t.Fatalf("unexpected ticket %#v", ticket)
	}
}

func TestChatRejectsMalformedPayload(t *testing.T) {
	app := newTestApp(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestChatRejectsUnknownExpectedStep(t *testing.T) {
	app := newTestApp(t, nil)
	payload, _ := json.Marshal(dto.ChatRequest{Message: "yes", ExpectedStep: "nowhere"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLookupsNotFound(t *testing.T) {
	app := newTestApp(t, nil)
	for _, path := range []string{"/api/session/missing", "/api/ticket/missing"} {
		resp, body := get(t, app, path)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.StatusCode)
		}
		errBody := body["error"].(map[string]any)
		if errBody["code"] != "NOT_FOUND" {
			t.Fatalf("%s: unexpected error body %#v", path, errBody)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t, map[string]handlers.Pinger{
		"redis":    pingFunc(func(context.Context) error { return nil }),
		"postgres": pingFunc(func(context.Context) error { return errors.New("down") }),
	})

	resp, body := get(t, app, "/health/live")
	if resp.StatusCode != http.StatusOK || body["status"] != "alive" {
		t.Fatalf("unexpected live response %d %#v", resp.StatusCode, body)
	}

	resp, body = get(t, app, "/health/ready")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	details := body["error"].(map[string]any)["details"].(map[string]any)
	if details["redis"] != "ok" || details["postgres"] != "down" {
		t.Fatalf("unexpected readiness details %#v", details)
	}

	resp, body = get(t, app, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status %d", resp.StatusCode)
	}
	if _, ok := body["data"].(map[string]any)["requests"]; !ok {
		t.Fatalf("expected request counters, got %#v", body)
	}
}
