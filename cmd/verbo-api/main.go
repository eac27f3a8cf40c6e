package main

import (
	"context"
	"log"
	"net/http"

	"github.com/ffaguiar/verbo/internal/adapters/llm"
	firestorestore "github.com/ffaguiar/verbo/internal/adapters/storage/firestore"
	memstore "github.com/ffaguiar/verbo/internal/adapters/storage/memory"
	redisstore "github.com/ffaguiar/verbo/internal/adapters/storage/redis"
	sqlitestore "github.com/ffaguiar/verbo/internal/adapters/storage/sqlite"
	"github.com/ffaguiar/verbo/internal/app/chat"
	"github.com/ffaguiar/verbo/internal/config"
	"github.com/ffaguiar/verbo/internal/domain"

	httpadapter "github.com/ffaguiar/verbo/internal/adapters/http"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	var (
		model domain.ModelClient
		err   error
	)

	if cfg.UseMockLLM {
		log.Println("[LLM] Using MOCK model client")
		model = llm.NewMockModel()
	} else {
		log.Printf("[LLM] Using Gemini model client (model=%s)", cfg.ModelName)
		model, err = llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.ModelName, cfg.MaxHistoryTurns)
		if err != nil {
			log.Fatalf("error initializing Gemini client: %v", err)
		}
	}

	var store domain.SessionStore

	switch cfg.StorageBackend {
	case "redis":
		log.Printf("[STORE] Using Redis session store (url=%s)", cfg.RedisURL)
		store, err = redisstore.NewStore(ctx, cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			log.Fatalf("error initializing Redis store: %v", err)
		}

	case "sqlite":
		log.Printf("[STORE] Using SQLite session store (path=%s)", cfg.SQLitePath)
		store, err = sqlitestore.NewStore(cfg.SQLitePath, cfg.SessionTTL)
		if err != nil {
			log.Fatalf("error initializing SQLite store: %v", err)
		}

	case "firestore":
		log.Printf("[STORE] Using Firestore session store (project=%s)", cfg.GCPProjectID)
		store, err = firestorestore.NewStore(ctx, cfg.GCPProjectID, cfg.SessionTTL)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}

	default:
		log.Println("[STORE] Using in-memory session store")
		store = memstore.NewSessionStore(cfg.SessionTTL)
	}

	svc := chat.NewService(model, store, chat.Config{
		DefaultLanguage:   cfg.DefaultLanguage,
		StatelessFallback: cfg.StatelessFallback,
	})

	handler := httpadapter.NewServer(svc)

	addr := ":" + cfg.Port
	log.Println("Verbo API listening on", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
