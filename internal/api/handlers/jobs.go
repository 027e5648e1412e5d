package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HenriqueVilasBoas/Print-Management-System/internal/core"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/db"
)

type JobHandler struct {
	builder   *core.JobBuilder
	scheduler *core.JobScheduler
	queue     *core.FileQueueStore
}

type CreateJobRequest struct {
	FileIDs   []string          `json:"file_ids"`
	PrinterID string            `json:"printer_id" binding:"required"`
	Settings  *core.JobSettings `json:"settings"`
}

func NewJobHandler(builder *core.JobBuilder, scheduler *core.JobScheduler, queue *core.FileQueueStore) *JobHandler {
	return &JobHandler{builder: builder, scheduler: scheduler, queue: queue}
}

// Create validates the request, materializes a job and hands it to the
// scheduler. Submission is the point of no return for file snapshots.
func (h *JobHandler) Create(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	settings := req.Settings
	if settings == nil {
		s := loadSystemSettings(c.Request.Context()).DefaultSettings
		settings = &s
	}

	job, err := h.builder.Build(req.FileIDs, req.PrinterID, *settings)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.scheduler.Submit(job); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": job})
}

// StartPrint creates and submits a job in one call. The files key selects
// which queued files to print; when it is absent the whole queue goes, in
// queue order, as one job.
func (h *JobHandler) StartPrint(c *gin.Context) {
	var req struct {
		Files     []string          `json:"files"`
		PrinterID string            `json:"printer_id" binding:"required"`
		Settings  *core.JobSettings `json:"settings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	fileIDs := req.Files
	if len(fileIDs) == 0 {
		files := h.queue.List()
		fileIDs = make([]string, 0, len(files))
		for _, f := range files {
			fileIDs = append(fileIDs, f.ID)
		}
	}

	settings := req.Settings
	if settings == nil {
		s := loadSystemSettings(c.Request.Context()).DefaultSettings
		settings = &s
	}

	job, err := h.builder.Build(fileIDs, req.PrinterID, *settings)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.scheduler.Submit(job); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_id": job.ID, "total_pages": job.TotalPages, "status": job.Status})
}

func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.scheduler.GetJob(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Status(c *gin.Context) {
	job, err := h.scheduler.GetJob(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"job_id": job.ID, "status": job.Status, "total_pages": job.TotalPages}
	if job.FailureReason != "" {
		resp["failure_reason"] = job.FailureReason
	}
	c.JSON(http.StatusOK, resp)
}

func (h *JobHandler) Cancel(c *gin.Context) {
	if err := h.scheduler.Cancel(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "job cancelled"})
}

func (h *JobHandler) History(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	c.JSON(http.StatusOK, gin.H{"history": h.scheduler.History(limit)})
}

func (h *JobHandler) QueueDepth(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, gin.H{"printer_id": id, "depth": h.scheduler.QueueDepth(id)})
}

func (h *JobHandler) Dashboard(c *gin.Context) {
	stats, err := db.Jobs.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *JobHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/print-jobs", h.Create)
	r.POST("/print/start", h.StartPrint)
	r.GET("/print-jobs/:id", h.Get)
	r.GET("/print-jobs/:id/status", h.Status)
	r.POST("/print-jobs/:id/cancel", h.Cancel)
	r.GET("/print-history", h.History)
	r.GET("/print-queue/:id", h.QueueDepth)
	r.GET("/stats/dashboard", h.Dashboard)
}
