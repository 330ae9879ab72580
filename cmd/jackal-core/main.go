package main

// @title           Jackal Core API
// @version         1.0
// @description     Retrieval-augmented chat API for Jack.ai. Answers questions about Jack grounded in a personal knowledge base.

// @contact.name   Jack.ai
// @contact.url    https://github.com/jack-ai/jackal-core/issues

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Admin pre-shared key. Format: "Bearer {key}"

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jack-ai/jackal-core/internal/adapters/driven/ai"
	"github.com/jack-ai/jackal-core/internal/adapters/driven/postgres"
	redisadapter "github.com/jack-ai/jackal-core/internal/adapters/driven/redis"
	"github.com/jack-ai/jackal-core/internal/adapters/driven/sqlite"
	httpserver "github.com/jack-ai/jackal-core/internal/adapters/driving/http"
	"github.com/jack-ai/jackal-core/internal/core/ports/driven"
	"github.com/jack-ai/jackal-core/internal/core/services"
)

var version = "dev"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	log.Printf("jackal-core %s starting", version)

	// Configuration from environment
	port := getEnvInt("PORT", 8080)
	databaseURL := getEnv("DATABASE_URL", "")
	sqlitePath := getEnv("SQLITE_PATH", "./data/knowledge.db")
	redisURL := getEnv("REDIS_URL", "")
	openAIKey := getEnv("OPENAI_API_KEY", "")
	embeddingModel := getEnv("EMBEDDING_MODEL", "text-embedding-3-small")
	chatModel := getEnv("CHAT_MODEL", "gpt-4o")
	adminKey := getEnv("ADMIN_API_KEY", "")
	knowledgeDir := getEnv("KNOWLEDGE_DIR", "./knowledge")
	matchThreshold := getEnvFloat("MATCH_THRESHOLD", services.DefaultMatchThreshold)
	allowedOrigins := strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ",")

	if openAIKey == "" {
		log.Fatal("OPENAI_API_KEY is required")
	}
	if adminKey == "" {
		log.Println("Warning: ADMIN_API_KEY not set, admin endpoints are disabled")
	}

	ctx := context.Background()

	// ===== Knowledge store (PostgreSQL if configured, otherwise SQLite) =====
	var knowledgeStore driven.KnowledgeStore
	if databaseURL != "" {
		log.Println("Connecting to PostgreSQL...")
		dbConfig := postgres.Config{
			URL:             databaseURL,
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300)) * time.Second,
			ConnMaxIdleTime: time.Duration(getEnvInt("DB_CONN_MAX_IDLE_SEC", 60)) * time.Second,
		}
		db, err := postgres.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		// Initialize schema (idempotent)
		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		log.Println("PostgreSQL connected and schema initialized")
		knowledgeStore = postgres.NewKnowledgeStore(db)
	} else {
		log.Printf("DATABASE_URL not set, using SQLite at %s", sqlitePath)
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		store, err := sqlite.NewKnowledgeStore(sqlitePath)
		if err != nil {
			log.Fatalf("Failed to open SQLite store: %v", err)
		}
		knowledgeStore = store
	}
	defer knowledgeStore.Close()

	// ===== Session store (Redis, optional) =====
	var sessionStore driven.SessionStore
	if redisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		sessionStore = redisadapter.NewSessionStore(redisClient)
		defer sessionStore.Close()
		log.Println("Redis connected, server-side chat sessions enabled")
	} else {
		log.Println("REDIS_URL not set, chat history is client-held only")
	}

	// ===== OpenAI adapters =====
	embedder, err := ai.NewOpenAIEmbedding(openAIKey, embeddingModel, "")
	if err != nil {
		log.Fatalf("Failed to create embedding service: %v", err)
	}
	defer embedder.Close()

	llm, err := ai.NewOpenAILLM(openAIKey, chatModel, "")
	if err != nil {
		log.Fatalf("Failed to create LLM service: %v", err)
	}
	defer llm.Close()

	// ===== Services (core business logic) =====
	retrievalService := services.NewRetrievalService(knowledgeStore, embedder, matchThreshold, logger)
	ingestService := services.NewIngestService(services.IngestConfig{
		Store:        knowledgeStore,
		Embedder:     embedder,
		KnowledgeDir: knowledgeDir,
		Logger:       logger,
	})
	chatService := services.NewChatService(services.ChatConfig{
		Retriever: retrievalService,
		LLM:       llm,
		Sessions:  sessionStore,
		Logger:    logger,
	})

	// ===== HTTP server =====
	cfg := httpserver.Config{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           port,
		Version:        version,
		AdminKey:       adminKey,
		AllowedOrigins: allowedOrigins,
	}
	server := httpserver.NewServer(cfg, chatService, ingestService, knowledgeStore)

	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.ParseFloat(value, 64); err == nil {
			return result
		}
	}
	return defaultValue
}
