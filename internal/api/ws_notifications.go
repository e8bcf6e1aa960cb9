package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"devconnect/internal/auth"
	"devconnect/internal/config"
	"devconnect/internal/errs"
	"devconnect/internal/notification"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
)

// UnreadFeed is one frame of the notification feed.
type UnreadFeed struct {
	Unread int64 `json:"unread"`
}

func newUpgrader(cfg *config.Config) *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || !cfg.IsProduction() {
				return true
			}
			return origin == cfg.Server.FrontendURL
		},
	}
}

// GET /api/notifications/ws
//
// Pushes the caller's unread count on connect and whenever it changes. The
// count is polled from the store every interval. The session is resolved
// again on every poll, so a ban or an expired token ends the feed.
func NotificationFeedHandler(cfg *config.Config, resolver *auth.Resolver, notifications *notification.Store, interval time.Duration, log *slog.Logger) gin.HandlerFunc {
	upgrader := newUpgrader(cfg)
	return func(c *gin.Context) {
		userID := caller(c).ID
		token := auth.SessionToken(c)
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", "user_id", userID, "error", err)
			return
		}
		defer conn.Close()

		// the read loop only exists to notice the client going away
		done := make(chan struct{})
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ctx := c.Request.Context()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		last := int64(-1)
		for {
			if _, err := resolver.Resolve(ctx, token); err != nil {
				closeFeed(conn, err)
				log.Info("notification feed closed", "user_id", userID, "reason", err)
				return
			}
			count, err := notifications.UnreadCount(ctx, userID)
			if err != nil {
				log.Error("unread count failed", "user_id", userID, "error", err)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if count != last {
				if err := conn.WriteJSON(UnreadFeed{Unread: count}); err != nil {
					return
				}
				last = count
			} else if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}
}

// closeFeed sends a close frame: policy violation when the session is no
// longer valid, internal error otherwise.
func closeFeed(conn *websocket.Conn, err error) {
	code, text := websocket.CloseInternalServerErr, "Internal server error"
	switch {
	case errors.Is(err, errs.ErrBanned):
		code, text = websocket.ClosePolicyViolation, "Account banned"
	case errs.Status(err) == http.StatusUnauthorized:
		code, text = websocket.ClosePolicyViolation, "Not authenticated"
	}
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(wsWriteWait))
}
