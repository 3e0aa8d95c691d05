package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bogdang40/DouaInimi/internal/apperr"
)

type sendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage handles POST /api/matches/:id/messages, the HTTP fallback for
// clients without a socket. The service path is identical to the gateway's.
func (h *Handler) SendMessage(c *gin.Context) {
	matchID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	msg, err := h.chat.SendMessage(c.Request.Context(), matchID, currentUser(c), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Conversation handles GET /api/matches/:id/messages.
func (h *Handler) Conversation(c *gin.Context) {
	matchID, ok := pathID(c, "id")
	if !ok {
		return
	}

	limit := queryInt(c, "limit", 0)
	beforeID := queryUint(c, "before_id")

	msgs, err := h.chat.GetConversation(c.Request.Context(), matchID, currentUser(c), limit, beforeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// MarkRead handles POST /api/matches/:id/read.
func (h *Handler) MarkRead(c *gin.Context) {
	matchID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.chat.MarkRead(c.Request.Context(), matchID, currentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

// DeleteMessage handles DELETE /api/messages/:id. Removal is per viewer;
// the other participant keeps seeing the message.
func (h *Handler) DeleteMessage(c *gin.Context) {
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.chat.SoftDelete(c.Request.Context(), messageID, currentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
