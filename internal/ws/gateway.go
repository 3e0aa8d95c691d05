package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/bogdang40/DouaInimi/internal/app"
	"github.com/bogdang40/DouaInimi/internal/apperr"
	"github.com/bogdang40/DouaInimi/internal/logger"
	"github.com/bogdang40/DouaInimi/internal/middleware"
	"github.com/bogdang40/DouaInimi/internal/presence"
	"github.com/bogdang40/DouaInimi/internal/repository"
	"github.com/bogdang40/DouaInimi/internal/service/chat"
	"github.com/bogdang40/DouaInimi/internal/service/matches"
)

const eventTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auth happens via the JWT middleware; cross-origin browser clients
	// are expected.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Gateway owns the hub and routes client events to the chat services.
type Gateway struct {
	appCtx   *app.AppContext
	hub      *Hub
	limiter  *RateLimiter
	presence *presence.Tracker
	chat     *chat.Service
	matches  *matches.Service
	userRepo *repository.UserRepository
}

// NewGateway wires a gateway from the application context.
func NewGateway(appCtx *app.AppContext, tracker *presence.Tracker) *Gateway {
	limiter := NewRateLimiter(appCtx.Config.Limits.SocketMessagesPerWindow, appCtx.Config.Limits.SocketRateWindow)
	limiter.StartSweeper(10*time.Minute, nil)
	return &Gateway{
		appCtx:   appCtx,
		hub:      NewHub(),
		limiter:  limiter,
		presence: tracker,
		chat:     chat.NewService(appCtx),
		matches:  matches.NewService(appCtx),
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// Handle upgrades an authenticated HTTP request to a websocket and serves
// it until the connection closes.
func (g *Gateway) Handle(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": apperr.UserMessage(apperr.Unauthorized())})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", "user_id", userID, "error", err)
		return
	}

	client := newClient(conn, userID)
	g.hub.Register(client)

	ctx := context.Background()
	if err := g.presence.SetOnline(ctx, userID); err != nil {
		logger.Warn("presence set failed", "user_id", userID, "error", err)
	}
	if err := g.userRepo.TouchLastActive(ctx, userID); err != nil {
		logger.Warn("last_active touch failed", "user_id", userID, "error", err)
	}
	// Every pong renews the presence mark. Pings go out well inside the
	// presence TTL, so a live connection never reads as offline.
	client.onPong = func() {
		refreshCtx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()
		if err := g.presence.SetOnline(refreshCtx, userID); err != nil {
			logger.Warn("presence refresh failed", "user_id", userID, "error", err)
		}
	}

	go client.writePump()
	client.readPump(g.route)

	g.hub.Unregister(client)
	if err := g.presence.SetOffline(ctx, userID); err != nil {
		logger.Warn("presence clear failed", "user_id", userID, "error", err)
	}
	// The rate limiter is deliberately NOT reset here. Reconnecting must not
	// grant a fresh message budget; stale entries age out on their own.
}

// route dispatches one client frame. Runs on the connection's read loop, so
// events of one connection are handled strictly in order.
func (g *Gateway) route(c *Client, env Envelope) {
	var frame clientFrame
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &frame); err != nil {
			c.sendError("malformed frame")
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch env.Event {
	case EvJoinConversation:
		g.join(ctx, c, frame.MatchID)
	case EvLeaveConversation:
		g.hub.Leave(c, frame.MatchID)
	case EvSendMessage:
		g.sendMessage(ctx, c, frame.MatchID, frame.Content)
	case EvMarkRead:
		g.markRead(ctx, c, frame.MatchID)
	case EvTyping:
		g.typing(ctx, c, frame.MatchID, frame.Typing)
	default:
		c.sendError("unknown event")
	}
}

// join admits the client to a conversation room after verifying
// participation. The error sent back never reveals whether the match exists.
func (g *Gateway) join(ctx context.Context, c *Client, matchID uint64) {
	match, err := g.matches.GetByID(ctx, matchID)
	if err != nil {
		c.sendError(apperr.UserMessage(err))
		return
	}
	if match == nil || !matches.IsParticipant(match, c.userID) {
		logger.Security("unauthorized_room_join", "match_id", matchID, "user_id", c.userID)
		c.sendError(apperr.UserMessage(apperr.Unauthorized()))
		return
	}
	g.hub.Join(c, matchID)
	c.sendEvent(EvJoined, gin.H{"match_id": matchID})
}

// sendMessage runs the full authorization and persistence path for every
// frame. Membership in the room is not trusted as authorization: the match
// may have been unmatched or blocked since the join.
func (g *Gateway) sendMessage(ctx context.Context, c *Client, matchID uint64, content string) {
	if !g.limiter.Allow(c.userID) {
		c.sendError("you are sending messages too quickly, slow down")
		return
	}

	msg, err := g.chat.SendMessage(ctx, matchID, c.userID, content)
	if err != nil {
		c.sendError(apperr.UserMessage(err))
		return
	}

	frame, err := serverEvent(EvNewMessage, MessagePayload{
		MatchID:   matchID,
		MessageID: msg.ID,
		SenderID:  c.userID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	})
	if err != nil {
		logger.Error("ws marshal failed", "event", EvNewMessage, "error", err)
		return
	}
	// Broadcast only after the message is durably stored; echoes back to
	// the sender's other connections too.
	g.hub.Broadcast(matchID, frame, nil)
}

func (g *Gateway) markRead(ctx context.Context, c *Client, matchID uint64) {
	if err := g.chat.MarkRead(ctx, matchID, c.userID); err != nil {
		c.sendError(apperr.UserMessage(err))
		return
	}
	frame, err := serverEvent(EvMessagesRead, ReadPayload{MatchID: matchID, ReaderID: c.userID})
	if err != nil {
		logger.Error("ws marshal failed", "event", EvMessagesRead, "error", err)
		return
	}
	g.hub.Broadcast(matchID, frame, c)
}

// typing is ephemeral but still re-validated against the registry on every
// frame. Room membership alone is stale after an unmatch or block; the
// counterpart must stop receiving relays the moment the match closes.
func (g *Gateway) typing(ctx context.Context, c *Client, matchID uint64, isTyping bool) {
	if !g.hub.InRoom(c, matchID) {
		c.sendError(apperr.UserMessage(apperr.Unauthorized()))
		return
	}
	match, err := g.matches.GetByID(ctx, matchID)
	if err != nil {
		c.sendError(apperr.UserMessage(err))
		return
	}
	if match == nil || !matches.IsParticipant(match, c.userID) || !match.Active {
		c.sendError(apperr.UserMessage(apperr.Unauthorized()))
		return
	}
	frame, err := serverEvent(EvUserTyping, TypingPayload{MatchID: matchID, UserID: c.userID, Typing: isTyping})
	if err != nil {
		logger.Error("ws marshal failed", "event", EvUserTyping, "error", err)
		return
	}
	g.hub.Broadcast(matchID, frame, c)
}
