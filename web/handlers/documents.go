package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"audit-agent/database"
	"audit-agent/index"
	"audit-agent/ingest"
	"audit-agent/web/types"
)

// ResultInvalidator drops cached retrieval results. Handlers call it after
// corpus mutations so stale rankings are not served.
type ResultInvalidator interface {
	InvalidateCache()
}

type DocumentHandler struct {
	store       *database.PostgresStore
	processor   *ingest.Processor
	idx         *index.BM25Index
	invalidator ResultInvalidator
	uploadDir   string
	logger      *zap.Logger
}

func NewDocumentHandler(store *database.PostgresStore, processor *ingest.Processor, idx *index.BM25Index, invalidator ResultInvalidator, uploadDir string, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		store:       store,
		processor:   processor,
		idx:         idx,
		invalidator: invalidator,
		uploadDir:   uploadDir,
		logger:      logger,
	}
}

// Upload accepts a multipart document, runs it through ingestion and
// returns its classification.
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	company := c.PostForm("company")

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.logger.Error("Failed to create upload directory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	dst := filepath.Join(h.uploadDir, uuid.New().String()+"_"+filepath.Base(fileHeader.Filename))
	if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
		h.logger.Error("Failed to save upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	doc, chunks, err := h.processor.ProcessFile(c.Request.Context(), dst, fileHeader.Filename, company)
	if err != nil {
		h.logger.Error("Document processing failed",
			zap.String("filename", fileHeader.Filename),
			zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "document processing failed"})
		return
	}
	h.invalidator.InvalidateCache()

	c.JSON(http.StatusOK, types.UploadResponse{
		DocumentID:   doc.ID.String(),
		Filename:     doc.Filename,
		DocumentType: doc.DocumentType,
		Frameworks:   doc.Frameworks,
		QualityLevel: doc.QualityLevel,
		Chunks:       chunks,
		UploadedAt:   doc.UploadedAt,
	})
}

// List returns every uploaded document with its classification.
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.store.ListDocuments(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list documents", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// Delete removes a document, its chunks, their keyword index entries and
// any cached results that could still rank them.
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	// Chunk IDs must be read before the delete cascades them away.
	chunkIDs, err := h.store.ListChunkIDsByDocument(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to list document chunks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete document"})
		return
	}

	if err := h.store.DeleteDocument(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to delete document", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete document"})
		return
	}

	for _, chunkID := range chunkIDs {
		h.idx.Remove(chunkID)
	}
	h.invalidator.InvalidateCache()

	c.JSON(http.StatusOK, gin.H{"deleted": id.String(), "chunks": len(chunkIDs)})
}
