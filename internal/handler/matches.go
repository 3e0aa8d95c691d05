package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Matches handles GET /api/matches. with_activity=true enriches each match
// with the last message and the caller's unread count.
func (h *Handler) Matches(c *gin.Context) {
	userID := currentUser(c)

	if c.Query("with_activity") == "true" {
		summaries, err := h.matches.GetUserMatchesWithActivity(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"matches": summaries})
		return
	}

	list, err := h.matches.GetUserMatches(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": list})
}

// Unmatch handles DELETE /api/matches/:id.
func (h *Handler) Unmatch(c *gin.Context) {
	matchID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.matches.Unmatch(c.Request.Context(), matchID, currentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unmatched": true})
}
