package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/chitdoc/docqa/internal/pkg/errcode"
	"github.com/chitdoc/docqa/internal/pkg/response"
	"github.com/chitdoc/docqa/internal/service"
)

type DocumentHandler struct {
	documents *service.DocumentService
	summaries *service.SummaryService
}

func NewDocumentHandler(documents *service.DocumentService, summaries *service.SummaryService) *DocumentHandler {
	return &DocumentHandler{documents: documents, summaries: summaries}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to open file")
		return
	}
	defer opened.Close()

	doc, err := h.documents.Upload(c.Request.Context(), getUserID(c),
		file.Filename, file.Header.Get("Content-Type"), opened, file.Size)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, docs)
}

func (h *DocumentHandler) Search(c *gin.Context) {
	docs, err := h.documents.Search(c.Request.Context(), getUserID(c), c.Query("q"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, docs)
}

func (h *DocumentHandler) Extract(c *gin.Context) {
	doc, err := h.documents.Extract(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"id":     doc.ID,
		"status": doc.Status,
		"length": len(doc.RawText),
	})
}

func (h *DocumentHandler) GetText(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"id":     doc.ID,
		"status": doc.Status,
		"text":   doc.RawText,
	})
}

func (h *DocumentHandler) CreateEmbeddings(c *gin.Context) {
	userID := getUserID(c)
	docID := c.Param("id")
	if err := h.documents.CreateEmbeddings(c.Request.Context(), userID, docID); err != nil {
		handleError(c, err)
		return
	}
	count, err := h.documents.ChunkCount(c.Request.Context(), userID, docID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"id": docID, "chunks": count})
}

func (h *DocumentHandler) ListChunks(c *gin.Context) {
	chunks, err := h.documents.ListChunks(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chunks)
}

func (h *DocumentHandler) Summarize(c *gin.Context) {
	summary, err := h.summaries.Summarize(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, summary)
}

func (h *DocumentHandler) GetSummary(c *gin.Context) {
	summary, err := h.summaries.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if c.Query("format") == "html" {
		html, err := h.summaries.RenderHTML(summary.Summary)
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, gin.H{"document_id": summary.DocumentID, "html": html})
		return
	}
	response.Success(c, summary)
}
