package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bogdang40/DouaInimi/internal/app"
	"github.com/bogdang40/DouaInimi/internal/config"
	"github.com/bogdang40/DouaInimi/internal/db"
	"github.com/bogdang40/DouaInimi/internal/events"
	"github.com/bogdang40/DouaInimi/internal/handler"
)

// asUser stands in for the JWT middleware in tests.
func asUser(userID uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func setupHandler(t *testing.T) (*handler.Handler, *app.AppContext) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(
		&db.User{}, &db.Profile{}, &db.Like{}, &db.Pass{},
		&db.Match{}, &db.Message{}, &db.Block{}, &db.Report{},
	))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(dbase, nil, log, events.NopPublisher{}, config.New())
	return handler.New(appCtx), appCtx
}

func TestSuperLikeStatusReportsUsedRemainingLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, appCtx := setupHandler(t)

	user := db.User{ID: 1, Email: "u1@test.com", PasswordHash: "x", Active: true}
	require.NoError(t, appCtx.DB.Create(&user).Error)
	for i := uint64(2); i <= 3; i++ {
		like := db.Like{LikerID: 1, LikedID: i, SuperLike: true}
		require.NoError(t, appCtx.DB.Create(&like).Error)
	}

	r := gin.New()
	r.GET("/likes/super-status", asUser(1), h.SuperLikeStatus)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/likes/super-status", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Used      int `json:"used"`
		Remaining int `json:"remaining"`
		Limit     int `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Used)
	assert.Equal(t, 1, body.Remaining)
	assert.Equal(t, 3, body.Limit)
}

func TestSuperLikeStatusPremiumLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, appCtx := setupHandler(t)

	user := db.User{ID: 1, Email: "u1@test.com", PasswordHash: "x", Active: true, Premium: true}
	require.NoError(t, appCtx.DB.Create(&user).Error)

	r := gin.New()
	r.GET("/likes/super-status", asUser(1), h.SuperLikeStatus)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/likes/super-status", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Used      int `json:"used"`
		Remaining int `json:"remaining"`
		Limit     int `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Used)
	assert.Equal(t, 10, body.Remaining)
	assert.Equal(t, 10, body.Limit)
}
