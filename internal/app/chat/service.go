package chat

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/ffaguiar/verbo/internal/domain"
	"github.com/ffaguiar/verbo/internal/observability"
)

// Service is the conversation relay: it resolves the session, loads
// prior turns, calls the model and persists the exchange. All state
// lives in the session store; the service itself is stateless.
type Service struct {
	model domain.ModelClient
	store domain.SessionStore

	defaultLanguage   string
	statelessFallback bool

	now   func() time.Time
	newID func() domain.SessionID
}

// Config carries the relay policies decided at startup.
type Config struct {
	DefaultLanguage string

	// StatelessFallback degrades a call to a historyless single turn
	// when the store fails, instead of rejecting it.
	StatelessFallback bool
}

func NewService(model domain.ModelClient, store domain.SessionStore, cfg Config) *Service {
	return &Service{
		model:             model,
		store:             store,
		defaultLanguage:   cfg.DefaultLanguage,
		statelessFallback: cfg.StatelessFallback,
		now:               time.Now,
		newID:             domain.NewSessionID,
	}
}

type RelayInput struct {
	SessionID string
	Text      string
	ImageB64  string
	Language  string
}

type RelayOutput struct {
	Response  string
	SessionID domain.SessionID

	// Stateless is set when the degraded mode answered without
	// loading or persisting history.
	Stateless bool
}

// Relay handles one chat exchange:
// validate → resolve session → load history → call model → append → respond.
// Any failure aborts immediately; nothing is persisted for a failed call.
func (s *Service) Relay(ctx context.Context, in RelayInput) (*RelayOutput, error) {
	text := strings.TrimSpace(in.Text)

	// Validation happens before any I/O.
	if err := (domain.Turn{Text: text, ImageB64: in.ImageB64}).Validate(); err != nil {
		return nil, err
	}

	var imageBytes []byte
	if in.ImageB64 != "" {
		data, err := base64.StdEncoding.DecodeString(in.ImageB64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrBadImage, err)
		}
		imageBytes = data
	}

	language := in.Language
	if language == "" {
		language = s.defaultLanguage
	}

	sessionID, history, degraded, err := s.resolveSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	log := observability.LoggerFromContext(ctx).With(
		"session_id", sessionID,
		"has_image", imageBytes != nil,
	)
	log.Info("relaying chat turn", "history_len", len(history))

	prompt := domain.Prompt{
		Text:       text,
		ImageBytes: imageBytes,
		Language:   language,
	}

	reply, err := s.model.Generate(ctx, history, prompt)
	if err != nil {
		log.Error("model call failed", "error", err)
		return nil, err
	}

	userAt := s.now()
	// Stores that order by timestamp need the model turn to sort
	// strictly after the user turn of the same exchange.
	modelAt := s.now()
	if !modelAt.After(userAt) {
		modelAt = userAt.Add(time.Microsecond)
	}

	userTurn := domain.Turn{
		Role:      domain.RoleUser,
		Text:      text,
		ImageB64:  in.ImageB64,
		CreatedAt: userAt,
	}
	modelTurn := domain.Turn{
		Role:      domain.RoleModel,
		Text:      reply,
		CreatedAt: modelAt,
	}

	if !degraded {
		if err := s.persist(ctx, sessionID, userTurn, modelTurn); err != nil {
			if !s.statelessFallback {
				log.Error("failed to persist turns", "error", err)
				return nil, err
			}
			log.Warn("store failed, answering statelessly", "error", err)
			degraded = true
		}
	}

	log.Info("chat turn relayed", "stateless", degraded)

	return &RelayOutput{
		Response:  reply,
		SessionID: sessionID,
		Stateless: degraded,
	}, nil
}

// resolveSession loads history for a supplied id or issues a fresh one.
// A supplied id with no surviving history starts a new conversation
// under a new id, so ids are never reused across logical conversations.
func (s *Service) resolveSession(
	ctx context.Context,
	supplied string,
) (domain.SessionID, []domain.Turn, bool, error) {
	log := observability.LoggerFromContext(ctx)

	var history []domain.Turn
	if supplied != "" {
		turns, err := s.store.GetTurns(ctx, domain.SessionID(supplied))
		if err != nil {
			if !s.statelessFallback {
				log.Error("failed to load history", "session_id", supplied, "error", err)
				return "", nil, false, err
			}
			log.Warn("store failed on load, answering statelessly", "error", err)
			return s.newID(), nil, true, nil
		}
		history = turns
	}

	if supplied == "" || len(history) == 0 {
		id := s.newID()
		log.Info("starting new session", "session_id", id)
		return id, nil, false, nil
	}

	id := domain.SessionID(supplied)
	if err := s.store.Touch(ctx, id); err != nil {
		// Expiry refresh is best-effort; the read already succeeded.
		log.Warn("failed to refresh session ttl", "session_id", id, "error", err)
	}
	return id, history, false, nil
}

func (s *Service) persist(
	ctx context.Context,
	id domain.SessionID,
	turns ...domain.Turn,
) error {
	for _, t := range turns {
		if err := s.store.AppendTurn(ctx, id, t); err != nil {
			return err
		}
	}
	return nil
}
