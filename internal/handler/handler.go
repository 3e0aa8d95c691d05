// Package handler implements the HTTP surface over the core services.
package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bogdang40/DouaInimi/internal/app"
	"github.com/bogdang40/DouaInimi/internal/apperr"
	"github.com/bogdang40/DouaInimi/internal/middleware"
	"github.com/bogdang40/DouaInimi/internal/presence"
	"github.com/bogdang40/DouaInimi/internal/repository"
	"github.com/bogdang40/DouaInimi/internal/service/chat"
	"github.com/bogdang40/DouaInimi/internal/service/discover"
	"github.com/bogdang40/DouaInimi/internal/service/ledger"
	"github.com/bogdang40/DouaInimi/internal/service/matches"
	"github.com/bogdang40/DouaInimi/internal/service/safety"
)

// Handler bundles the services behind the HTTP routes.
type Handler struct {
	appCtx   *app.AppContext
	ledger   *ledger.Service
	matches  *matches.Service
	chat     *chat.Service
	discover *discover.Service
	safety   *safety.Service
	userRepo *repository.UserRepository
	presence *presence.Tracker
}

// New wires a handler from the application context.
func New(appCtx *app.AppContext) *Handler {
	return &Handler{
		appCtx:   appCtx,
		ledger:   ledger.NewService(appCtx),
		matches:  matches.NewService(appCtx),
		chat:     chat.NewService(appCtx),
		discover: discover.NewService(appCtx),
		safety:   safety.NewService(appCtx),
		userRepo: repository.NewUserRepository(appCtx.DB),
		presence: presence.NewTracker(appCtx.RedisCache),
	}
}

// respondError maps a service error onto the HTTP response.
func respondError(c *gin.Context, err error) {
	body := gin.H{"error": apperr.UserMessage(err)}
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind == apperr.KindQuotaExceeded {
		body["remaining"] = appErr.Remaining
	}
	c.JSON(apperr.HTTPStatus(err), body)
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperr.Validation("invalid id"))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func queryUint(c *gin.Context, name string) uint64 {
	if v := c.Query(name); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func currentUser(c *gin.Context) uint64 {
	return middleware.UserID(c)
}
