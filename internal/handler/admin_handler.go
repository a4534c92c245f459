package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edulane/sims-api/internal/service"
	appErrors "github.com/edulane/sims-api/pkg/errors"
	"github.com/edulane/sims-api/pkg/jobs"
	"github.com/edulane/sims-api/pkg/response"
)

// JobTypeGradeReconcile identifies queued grade reconciliation jobs.
const JobTypeGradeReconcile = "grade_reconcile"

// AdminHandler exposes maintenance endpoints.
type AdminHandler struct {
	initializer *service.GradeInitializer
	metrics     *service.MetricsService
	queue       *jobs.Queue
	logger      *zap.Logger
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(initializer *service.GradeInitializer, metrics *service.MetricsService, queue *jobs.Queue, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{initializer: initializer, metrics: metrics, queue: queue, logger: logger}
}

// InitializeGrades godoc
// @Summary Reconcile missing grade rows for all enrollments
// @Description Runs synchronously by default; pass async=true to enqueue a background job
// @Tags Admin
// @Produce json
// @Param async query bool false "Run in background"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /admin/grades/initialize [post]
func (h *AdminHandler) InitializeGrades(c *gin.Context) {
	if c.Query("async") == "true" && h.queue != nil {
		job := jobs.Job{
			ID:       uuid.NewString(),
			Type:     JobTypeGradeReconcile,
			Enqueued: time.Now().UTC(),
		}
		if err := h.queue.Enqueue(job); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue reconciliation"))
			return
		}
		response.JSON(c, http.StatusAccepted, gin.H{"job_id": job.ID}, nil)
		return
	}

	summary, err := h.initializer.ReconcileAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveGradeInit(summary)
	h.logger.Info("grade reconciliation completed",
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))
	response.JSON(c, http.StatusOK, summary, nil)
}
