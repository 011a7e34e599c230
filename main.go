package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"rolechat/internal/api"
	"rolechat/internal/auth"
	"rolechat/internal/chat"
	"rolechat/internal/config"
	"rolechat/internal/history"
	"rolechat/internal/llm"
	"rolechat/internal/redis"
	"rolechat/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("ROLECHAT_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	provCfg := cfg.Providers[cfg.Chat.Provider]
	if !llm.HasCredentials(cfg.Chat.Provider, provCfg) {
		// Missing provider credentials are the one deliberate hard stop.
		log.Fatalf("no API key configured for provider %s", cfg.Chat.Provider)
	}

	ctx := context.Background()

	var db *sql.DB
	needDB := cfg.Auth.Enabled || cfg.History.Backend == "sql"
	if needDB {
		dbType := os.Getenv("ROLECHAT_DB")
		if dbType == "" {
			dbType = "sqlite3"
		}
		db, err = storage.Open(dbType, cfg)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer db.Close()
		if err := storage.Migrate(db, dbType); err != nil {
			log.Fatalf("migrate database: %v", err)
		}
	}

	var store history.Store
	switch cfg.History.Backend {
	case "sql":
		store, err = history.NewSQLStore(db)
	default:
		store, err = history.NewFileStore(cfg.History.Dir)
	}
	if err != nil {
		log.Fatalf("init history store: %v", err)
	}

	var authService *auth.Service
	if cfg.Auth.Enabled {
		var cache *redis.Client
		if cfg.Redis.Host != "" {
			cache, err = redis.NewClient(cfg)
			if err != nil {
				log.Printf("redis unavailable, running without token cache: %v", err)
				cache = nil
			} else {
				defer cache.Close()
			}
		}
		authService = auth.NewService(db, cache, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	}

	chatModel, err := llm.NewChatModel(ctx, cfg.Chat.Provider, provCfg)
	if err != nil {
		log.Fatalf("init chat model: %v", err)
	}
	chatService, err := chat.NewService(chatModel, store, cfg.Server.Development)
	if err != nil {
		log.Fatalf("init chat service: %v", err)
	}

	if !cfg.Server.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	handler := api.NewHandler(chatService, authService, cfg.Auth.Enabled)
	handler.RegisterRoutes(router)

	log.Printf("listening on %s (provider=%s, history=%s, auth=%v)",
		cfg.Server.Address, cfg.Chat.Provider, cfg.History.Backend, cfg.Auth.Enabled)
	if err := router.Run(cfg.Server.Address); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
