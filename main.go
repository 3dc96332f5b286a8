package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"audit-agent/config"
	"audit-agent/database"
	"audit-agent/index"
	"audit-agent/ingest"
	"audit-agent/llmclient"
	"audit-agent/retrieval"
	"audit-agent/web"
	"audit-agent/web/services"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Load config (which includes log level setting)
	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	store, err := database.NewPostgresStore(cfg.DatabaseURL, cfg.EmbeddingDim)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	llm := llmclient.New(cfg, logger)

	// Warm the keyword index from stored chunks
	keywordIndex := index.NewBM25Index()
	chunks, err := store.ListChunks(ctx)
	if err != nil {
		logger.Warn("Failed to load stored chunks into keyword index", zap.Error(err))
	} else {
		for _, chunk := range chunks {
			keywordIndex.Add(chunk)
		}
		logger.Info("Keyword index warmed", zap.Int("chunks", len(chunks)))
	}

	engine, err := retrieval.NewEngine(retrieval.Config{
		DefaultLimit:            cfg.DefaultLimit,
		SemanticWeight:          cfg.SemanticWeight,
		KeywordWeight:           cfg.KeywordWeight,
		EnsembleSemanticWeight:  cfg.EnsembleSemanticWeight,
		EnsembleKeywordWeight:   cfg.EnsembleKeywordWeight,
		EnsembleExpansionWeight: cfg.EnsembleExpansionWeight,
		CacheTTL:                cfg.CacheTTL,
		CacheMaxEntries:         cfg.CacheMaxEntries,
		MaxHops:                 cfg.MaxHops,
		MinHopResults:           cfg.MinHopResults,
		StrategyTimeout:         cfg.StrategyTimeout,
		ShortQueryTokens:        cfg.ShortQueryTokens,
		LongQueryTokens:         cfg.LongQueryTokens,
		MaxQueryVariants:        cfg.MaxQueryVariants,
	}, store, keywordIndex, llm.Embed, logger)
	if err != nil {
		logger.Fatal("Failed to initialize retrieval engine", zap.Error(err))
	}

	processor := ingest.NewProcessor(store, keywordIndex, llm.Embed, cfg.ChunkMaxChars, cfg.ChunkOverlapSentences, logger)
	chatService := services.NewChatService(engine, llm, logger)

	webServer := web.NewServer(cfg, store, keywordIndex, processor, engine, chatService, logger)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	addr := fmt.Sprintf(":%d", cfg.WebPort)
	if err := webServer.Start(ctx, addr); err != nil {
		logger.Error("Web server shutdown error", zap.Error(err))
	}
}
