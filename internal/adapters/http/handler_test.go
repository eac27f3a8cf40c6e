package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/ffaguiar/verbo/internal/adapters/http"
	"github.com/ffaguiar/verbo/internal/adapters/llm"
	"github.com/ffaguiar/verbo/internal/adapters/storage/memory"
	"github.com/ffaguiar/verbo/internal/app/chat"
	"github.com/ffaguiar/verbo/internal/domain"
)

func newTestServer(t *testing.T, model domain.ModelClient) http.Handler {
	t.Helper()

	if model == nil {
		model = llm.NewMockModel()
	}
	store := memory.NewSessionStore(30 * time.Minute)
	svc := chat.NewService(model, store, chat.Config{DefaultLanguage: "Português (Brasil)"})

	return httpadapter.NewServer(svc)
}

type failingModel struct{ err error }

func (m *failingModel) Generate(ctx context.Context, history []domain.Turn, prompt domain.Prompt) (string, error) {
	return "", m.err
}

func postChat(t *testing.T, srv http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v (body=%s)", err, w.Body.String())
	}
	return resp.Detail
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestChatIssuesSessionAndAnswers(t *testing.T) {
	srv := newTestServer(t, nil)

	w := postChat(t, srv, `{"text":"hello","language":"English"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Response  string `json:"response"`
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("expected a session id in the response")
	}
	if resp.Response == "" {
		t.Error("expected a model response")
	}
}

func TestChatContinuesSession(t *testing.T) {
	srv := newTestServer(t, nil)

	w := postChat(t, srv, `{"text":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("first call: expected 200, got %d", w.Code)
	}
	var first struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}

	body, _ := json.Marshal(map[string]string{
		"text":       "what did I just say?",
		"session_id": first.SessionID,
	})
	w = postChat(t, srv, string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("second call: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var second struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}
	if second.SessionID != first.SessionID {
		t.Fatalf("expected the session to continue, got %s then %s", first.SessionID, second.SessionID)
	}
}

func TestChatRejectsEmptyTurn(t *testing.T) {
	srv := newTestServer(t, nil)

	w := postChat(t, srv, `{"language":"English"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if decodeDetail(t, w) == "" {
		t.Error("expected a detail message")
	}
}

func TestChatRejectsInvalidJSON(t *testing.T) {
	srv := newTestServer(t, nil)

	w := postChat(t, srv, `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestChatRejectsBadImage(t *testing.T) {
	srv := newTestServer(t, nil)

	w := postChat(t, srv, `{"image_base64":"%%%not-base64%%%"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestChatMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestChatSurfacesUpstreamError(t *testing.T) {
	srv := newTestServer(t, &failingModel{err: domain.ErrUpstream})

	w := postChat(t, srv, `{"text":"hello"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d, body=%s", w.Code, w.Body.String())
	}
	if decodeDetail(t, w) == "" {
		t.Error("expected a detail message")
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected an X-Request-ID header")
	}
}
