package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/HenriqueVilasBoas/Print-Management-System/internal/core"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/storage"
)

type FileHandler struct {
	queue *core.FileQueueStore
	docs  *storage.DocumentStore
}

type UpdateCopiesRequest struct {
	Copies int `json:"copies" binding:"required"`
}

type ReorderRequest struct {
	FileIDs []string `json:"file_ids" binding:"required"`
}

func NewFileHandler(queue *core.FileQueueStore, docs *storage.DocumentStore) *FileHandler {
	return &FileHandler{queue: queue, docs: docs}
}

func (h *FileHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_form", Message: err.Error()})
		return
	}

	uploads := form.File["files"]
	if len(uploads) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no_files", Message: "no files in request"})
		return
	}

	settings := loadSystemSettings(c.Request.Context())
	maxBytes := int64(settings.MaxFileSizeMB) * 1024 * 1024

	// Validate the whole batch before touching the queue, so a bad part
	// never leaves earlier parts of the same request behind.
	for _, fh := range uploads {
		if fh.Size > maxBytes {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "file_too_large",
				Message: fmt.Sprintf("file %s exceeds maximum size of %d MB", fh.Filename, settings.MaxFileSizeMB),
			})
			return
		}
		if fileType := normalizeType(fh.Filename); !typeSupported(fileType, settings.SupportedFileTypes) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "unsupported_type",
				Message: fmt.Sprintf("file type %q is not supported", fileType),
			})
			return
		}
	}

	created := make([]core.File, 0, len(uploads))
	rollback := func() {
		for _, f := range created {
			_ = h.queue.Remove(c.Request.Context(), f.ID)
			_ = h.docs.Remove(f.ID)
		}
	}

	for _, fh := range uploads {
		fileType := normalizeType(fh.Filename)
		f := &core.File{
			Name:   fh.Filename,
			Type:   fileType,
			Size:   fh.Size,
			Pages:  estimatePages(fileType, fh.Size),
			Copies: 1,
		}

		id, err := h.queue.Add(c.Request.Context(), f)
		if err != nil {
			rollback()
			respondError(c, err)
			return
		}

		src, err := fh.Open()
		if err == nil {
			_, err = h.docs.Save(id, src)
			src.Close()
		}
		if err != nil {
			_ = h.queue.Remove(c.Request.Context(), id)
			rollback()
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "upload_failed", Message: err.Error()})
			return
		}

		created = append(created, *f)
	}

	c.JSON(http.StatusOK, gin.H{"files": created})
}

func (h *FileHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"files": h.queue.List()})
}

func (h *FileHandler) UpdateCopies(c *gin.Context) {
	var req UpdateCopiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	if err := h.queue.SetCopies(c.Request.Context(), c.Param("id"), req.Copies); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "copies updated"})
}

func (h *FileHandler) Reorder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	if err := h.queue.Reorder(c.Request.Context(), req.FileIDs); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "files reordered", "success": true})
}

func (h *FileHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.queue.Remove(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.docs.Remove(id); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "delete_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "file deleted"})
}

func (h *FileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/files/upload", h.Upload)
	r.GET("/files", h.List)
	r.PUT("/files/:id/copies", h.UpdateCopies)
	r.POST("/files/reorder", h.Reorder)
	r.DELETE("/files/:id", h.Delete)
}

func normalizeType(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

func typeSupported(fileType string, supported []string) bool {
	for _, t := range supported {
		if strings.EqualFold(t, fileType) {
			return true
		}
	}
	return false
}

// estimatePages guesses a page count from size alone. Real metadata
// extraction lives outside this service; the scheduler only needs a
// stable number to snapshot into jobs.
func estimatePages(fileType string, size int64) int {
	var perPage int64
	switch fileType {
	case "pdf":
		perPage = 60 * 1024
	case "doc", "docx":
		perPage = 30 * 1024
	case "xls", "xlsx", "csv":
		perPage = 20 * 1024
	case "txt":
		perPage = 4 * 1024
	default:
		// Images and anything unknown print one page.
		return 1
	}

	pages := int(size / perPage)
	if pages < 1 {
		pages = 1
	}
	return pages
}
