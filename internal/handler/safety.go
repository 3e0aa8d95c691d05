package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bogdang40/DouaInimi/internal/apperr"
)

// Block handles POST /api/users/:id/block.
func (h *Handler) Block(c *gin.Context) {
	blockedID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.safety.Block(c.Request.Context(), currentUser(c), blockedID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": true})
}

// Unblock handles DELETE /api/users/:id/block.
func (h *Handler) Unblock(c *gin.Context) {
	blockedID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.safety.Unblock(c.Request.Context(), currentUser(c), blockedID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unblocked": true})
}

type reportRequest struct {
	ReportedID  uint64 `json:"reported_id"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// Report handles POST /api/reports. Filing a report also blocks the
// reported user for the reporter.
func (h *Handler) Report(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ReportedID == 0 {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	report, err := h.safety.Report(c.Request.Context(), currentUser(c), req.ReportedID, req.Reason, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report_id": report.ID})
}
