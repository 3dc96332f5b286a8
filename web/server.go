package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"audit-agent/config"
	"audit-agent/database"
	"audit-agent/index"
	"audit-agent/ingest"
	"audit-agent/retrieval"
	"audit-agent/web/handlers"
	"audit-agent/web/services"
)

type Server struct {
	router *gin.Engine
	logger *zap.Logger
	config *config.Config
}

func NewServer(cfg *config.Config, store *database.PostgresStore, idx *index.BM25Index, processor *ingest.Processor, engine *retrieval.Engine, chatService *services.ChatService, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		router: router,
		logger: logger,
		config: cfg,
	}

	chatHandler := handlers.NewChatHandler(chatService, logger)
	documentHandler := handlers.NewDocumentHandler(store, processor, idx, engine, cfg.UploadDir, logger)

	router.POST("/chat", chatHandler.Ask)
	router.POST("/documents", documentHandler.Upload)
	router.GET("/documents", documentHandler.List)
	router.DELETE("/documents/:id", documentHandler.Delete)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"indexed_docs":  idx.DocCount(),
			"indexed_terms": idx.TermCount(),
		})
	})

	return server
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	return srv.Shutdown(context.Background())
}
