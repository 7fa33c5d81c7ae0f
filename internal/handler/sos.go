package handlers

import (
	"net/http"

	"safecircle/internal/models"
	"safecircle/internal/sos"
	"safecircle/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type triggerSOSBody struct {
	UserID   string           `json:"userId"`
	Location *models.Location `json:"location"`
}

// TriggerSOS handles POST /sos. The countdown runs on the device; by the
// time this endpoint is hit the alert is being dispatched, so Send runs
// without one. A "queued" reply means the record is durably stored even if
// the remote sync is still in flight.
func (h *Handlers) TriggerSOS(c *gin.Context) {
	var body triggerSOSBody
	_ = c.ShouldBindJSON(&body)

	ctx := c.Request.Context()
	if body.Location != nil {
		ctx = sos.WithDeviceFix(ctx, body.UserID, *body.Location)
	} else {
		ctx = sos.WithUser(ctx, body.UserID)
	}

	rec, err := h.sosManager.Send(ctx, body.UserID)
	if err != nil {
		response.ServerError(c, "failed to queue SOS")
		return
	}
	response.Success(c, "SOS queued", gin.H{"record": rec})
}

// ListRecords handles GET /users/:userId/records, the "My Records" view,
// all statuses included.
func (h *Handlers) ListRecords(c *gin.Context) {
	recs, err := models.ListSOSRecords(h.db, c.Param("userId"))
	if err != nil {
		response.ServerError(c, "failed to load records")
		return
	}
	response.Success(c, "ok", gin.H{"records": recs})
}

// MarkRecordSafe handles POST /records/:recordId/safe.
func (h *Handlers) MarkRecordSafe(c *gin.Context) {
	err := models.MarkRecordSafe(h.db, c.Param("recordId"))
	if err == gorm.ErrRecordNotFound {
		response.Fail(c, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		response.ServerError(c, "failed to update record")
		return
	}
	response.Success(c, "marked safe", nil)
}

// QueueStatus handles GET /sos/queue: pending-count introspection for the
// client's sync indicator.
func (h *Handlers) QueueStatus(c *gin.Context) {
	n, err := h.queue.CountPending(c.Request.Context())
	if err != nil {
		response.ServerError(c, "failed to read queue")
		return
	}
	response.Success(c, "ok", gin.H{"pending": n})
}

// RetryPending handles POST /sos/retry, the explicit user-action retry
// path; the scheduler covers the periodic one.
func (h *Handlers) RetryPending(c *gin.Context) {
	synced, err := h.sosManager.RetryPending(c.Request.Context())
	if err != nil {
		response.ServerError(c, "retry sweep failed")
		return
	}
	response.Success(c, "retry complete", gin.H{"synced": synced})
}
