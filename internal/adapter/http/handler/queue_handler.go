package handler

import (
	"strconv"

	"tapneat/internal/adapter/http/dto"
	"tapneat/internal/core/domain"
	"tapneat/internal/core/ports"
	"tapneat/pkg/apperror"
	"tapneat/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QueueHandler exposes the print queue to the dispatcher and to external
// enqueuers. All its routes sit behind API-key auth.
type QueueHandler struct {
	printSvc ports.PrintQueueService
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(printSvc ports.PrintQueueService) *QueueHandler {
	return &QueueHandler{printSvc: printSvc}
}

// ClaimJobs handles GET /api/v1/print-queue/jobs. Claimed jobs are marked
// printing atomically, so concurrent pollers never share a job.
func (h *QueueHandler) ClaimJobs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, apperror.Validation("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	jobs, err := h.printSvc.Claim(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.PrintJobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, dto.FromPrintJob(&jobs[i]))
	}
	response.OK(c, dto.ClaimResponse{Jobs: out})
}

// GetJob handles GET /api/v1/print-queue/jobs/:id, an operator lookup of a
// single job in any state.
func (h *QueueHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a UUID"))
		return
	}

	job, err := h.printSvc.GetJob(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromPrintJob(job))
}

// UpdateStatus handles POST /api/v1/print-queue/status, the dispatcher's
// completion report for a claimed job.
func (h *QueueHandler) UpdateStatus(c *gin.Context) {
	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	id, err := uuid.Parse(req.JobID)
	if err != nil {
		response.Error(c, apperror.Validation("job_id must be a UUID"))
		return
	}

	switch domain.PrintJobStatus(req.Status) {
	case domain.PrintJobCompleted:
		err = h.printSvc.Complete(c.Request.Context(), id)
	case domain.PrintJobFailed:
		detail := ""
		if req.Error != nil {
			detail = *req.Error
		}
		err = h.printSvc.Fail(c.Request.Context(), id, detail)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"job_id": id.String(), "status": req.Status})
}

// Enqueue handles POST /api/v1/print-queue/jobs. The body is the loose
// employee/transaction shape produced by legacy POS clients; see
// dto.PrintEnqueueRequest for the field fallbacks.
func (h *QueueHandler) Enqueue(c *gin.Context) {
	var req dto.PrintEnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	enq, err := req.ToEnqueueRequest()
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	job, err := h.printSvc.Enqueue(c.Request.Context(), enq)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.FromPrintJob(job))
}
