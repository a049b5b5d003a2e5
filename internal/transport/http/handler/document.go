package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/response"
	"docuchat/internal/upload"
)

type DocumentHandler struct {
	uploader *upload.Uploader
	ingest   *app.IngestService
}

func NewDocumentHandler(uploader *upload.Uploader, ingest *app.IngestService) *DocumentHandler {
	return &DocumentHandler{uploader: uploader, ingest: ingest}
}

type uploadFileResult struct {
	Name       string `json:"name"`
	Saved      bool   `json:"saved"`
	Ingested   bool   `json:"ingested"`
	ChunkCount int    `json:"chunk_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Upload accepts one or more PDF files in the "file" multipart field, stores
// them, and runs each through the dedup-gated ingestion pipeline. A failure
// on one file does not affect the others.
func (h *DocumentHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}
	files := form.File["file"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no file provided in request")
		return
	}

	results := make([]uploadFileResult, 0, len(files))
	failed := 0
	for _, header := range files {
		result := uploadFileResult{Name: header.Filename}

		name, path, err := h.uploader.Save(header)
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			failed++
			continue
		}
		result.Name = name
		result.Saved = true

		ingested, err := h.ingest.Ingest(c.Request.Context(), name, path)
		if err != nil {
			log.Printf("ingest %q failed: %v", name, err)
			result.Error = err.Error()
			failed++
		} else {
			result.Ingested = ingested.Ingested
			result.ChunkCount = ingested.ChunkCount
		}
		results = append(results, result)
	}

	response.OK(c, gin.H{
		"total_files": len(files),
		"failed":      failed,
		"results":     results,
	})
}

// List returns the stored files and the names known to the index.
func (h *DocumentHandler) List(c *gin.Context) {
	files, err := h.uploader.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list files failed")
		return
	}
	ingested, err := h.ingest.ListDocuments(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}

	var totalSize int64
	for _, f := range files {
		totalSize += f.Size
	}
	response.OK(c, gin.H{
		"files":      files,
		"ingested":   ingested,
		"file_count": len(files),
		"total_size": totalSize,
	})
}

// Delete cascades: vector records first, then the stored file.
func (h *DocumentHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing document name")
		return
	}

	deleted, err := h.ingest.DeleteDocument(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}

	if err := h.uploader.Delete(name); err != nil && !errors.Is(err, upload.ErrFileNotFound) {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete file failed")
		return
	}

	response.OK(c, gin.H{
		"document_name":   name,
		"deleted_vectors": deleted,
	})
}
