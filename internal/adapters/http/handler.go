package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ffaguiar/verbo/internal/app/chat"
	"github.com/ffaguiar/verbo/internal/domain"
)

type Server struct {
	svc *chat.Service
}

func NewServer(svc *chat.Service) http.Handler {
	s := &Server{svc: svc}
	mux := http.NewServeMux()

	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/healthz", s.handleHealthz)

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type chatRequest struct {
	Text        string `json:"text"`
	ImageBase64 string `json:"image_base64"`
	Language    string `json:"language"`
	SessionID   string `json:"session_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo JSON inválido.")
		return
	}

	out, err := s.svc.Relay(r.Context(), chat.RelayInput{
		SessionID: req.SessionID,
		Text:      req.Text,
		ImageB64:  req.ImageBase64,
		Language:  req.Language,
	})
	if err != nil {
		writeRelayError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  out.Response,
		SessionID: string(out.SessionID),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─────────────────────────────────────────────
// Error mapping
// ─────────────────────────────────────────────

// writeRelayError maps the relay error taxonomy to HTTP statuses with a
// human-readable detail string. Nothing upstream is retried here.
func writeRelayError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyTurn):
		writeError(w, http.StatusBadRequest, "É necessário enviar texto ou imagem.")
	case errors.Is(err, domain.ErrBadImage):
		writeError(w, http.StatusBadRequest, "Formato de imagem inválido ou corrompido.")
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Não foi possível conectar ao serviço de sessão.")
	case errors.Is(err, domain.ErrUpstream):
		writeError(w, http.StatusBadGateway, "O serviço de IA não retornou uma resposta válida.")
	default:
		writeError(w, http.StatusInternalServerError, "Ocorreu um erro interno inesperado no servidor.")
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "Método não permitido.")
}
