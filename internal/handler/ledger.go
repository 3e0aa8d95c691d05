package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bogdang40/DouaInimi/internal/apperr"
)

type likeRequest struct {
	SuperLike bool `json:"super_like"`
}

// Like handles POST /api/users/:id/like.
//
// Block and quota checks happen here at the boundary. The ledger service
// assumes they passed and only guards its own invariants.
func (h *Handler) Like(c *gin.Context) {
	likerID := currentUser(c)
	likedID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req likeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperr.Validation("invalid request body"))
			return
		}
	}

	blocked, err := h.safety.IsBlocked(c.Request.Context(), likerID, likedID)
	if err != nil {
		respondError(c, err)
		return
	}
	if blocked {
		respondError(c, apperr.Denied("cannot like this user"))
		return
	}

	if req.SuperLike {
		user, err := h.userRepo.FindByID(c.Request.Context(), likerID)
		if err != nil || user == nil {
			respondError(c, apperr.Wrap(apperr.KindInternal, "failed to load user", err))
			return
		}
		remaining, err := h.ledger.SuperLikesRemaining(c.Request.Context(), likerID, user.Premium)
		if err != nil {
			respondError(c, err)
			return
		}
		if remaining == 0 {
			respondError(c, apperr.QuotaExceeded("no super likes left today", 0))
			return
		}
	}

	result, err := h.ledger.RecordLike(c.Request.Context(), likerID, likedID, req.SuperLike)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"liked":   true,
		"matched": result.MatchCreated,
	}
	if result.Match != nil {
		resp["match_id"] = result.Match.ID
	}
	c.JSON(http.StatusOK, resp)
}

// Pass handles POST /api/users/:id/pass.
func (h *Handler) Pass(c *gin.Context) {
	passerID := currentUser(c)
	passedID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.ledger.RecordPass(c.Request.Context(), passerID, passedID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"passed": true})
}

// Unlike handles DELETE /api/users/:id/like.
func (h *Handler) Unlike(c *gin.Context) {
	likerID := currentUser(c)
	likedID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.ledger.RemoveLike(c.Request.Context(), likerID, likedID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// LikedYou handles GET /api/likes. The new=true query narrows the feed to
// likers not yet liked back.
func (h *Handler) LikedYou(c *gin.Context) {
	userID := currentUser(c)

	var token *string
	if t := c.Query("token"); t != "" {
		token = &t
	}
	limit := queryInt(c, "limit", 20)

	if c.Query("new") == "true" {
		result, e := h.ledger.ListNewLikedYou(c.Request.Context(), userID, token, limit)
		if e != nil {
			respondError(c, e)
			return
		}
		c.JSON(http.StatusOK, gin.H{"likes": result.Likes, "next_token": result.NextToken})
		return
	}

	result, err := h.ledger.ListLikedYou(c.Request.Context(), userID, token, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": result.Likes, "next_token": result.NextToken})
}

// LikedYouCount handles GET /api/likes/count.
func (h *Handler) LikedYouCount(c *gin.Context) {
	count, err := h.ledger.CountLikedYou(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// SuperLikeStatus handles GET /api/likes/super-status.
func (h *Handler) SuperLikeStatus(c *gin.Context) {
	userID := currentUser(c)
	user, err := h.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		respondError(c, apperr.Wrap(apperr.KindInternal, "failed to load user", err))
		return
	}
	used, err := h.ledger.SuperLikesUsedToday(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	limit := h.ledger.DailyLimit(user.Premium)
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	c.JSON(http.StatusOK, gin.H{
		"used":      used,
		"remaining": remaining,
		"limit":     limit,
	})
}
