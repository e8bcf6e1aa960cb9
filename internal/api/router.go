package api

import (
	"log/slog"
	"time"

	"devconnect/internal/auth"
	"devconnect/internal/comment"
	"devconnect/internal/config"
	"devconnect/internal/db"
	"devconnect/internal/gig"
	"devconnect/internal/message"
	"devconnect/internal/notification"
	"devconnect/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// feedInterval is how often the websocket feed re-reads the unread count.
const feedInterval = 5 * time.Second

// SetupRouter wires every route. rdb may be nil, which disables presence.
func SetupRouter(cfg *config.Config, log *slog.Logger, stores *db.Stores, rdb *redis.Client, gatherer prometheus.Gatherer) *gin.Engine {
	users := user.NewStore(stores.Users)
	gigs := gig.NewStore(stores.Gigs)
	comments := comment.NewStore(stores.Comments)
	messages := message.NewStore(stores.Messages)
	notifications := notification.NewStore(stores.Notifications)
	fanout := notification.NewDispatcher(notifications, log)

	tokens := auth.NewTokenService(cfg.Server.JWTSecret)
	presence := auth.NewPresence(rdb)
	resolver := auth.NewResolver(tokens, users, presence, log)
	csrf := auth.NewCSRF(cfg.IsProduction(), log)
	session := resolver.RequireSession()

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(log), instrument(), securityHeaders(cfg.IsProduction()), corsPolicy(cfg))
	r.NoRoute(notFoundHandler)

	r.GET("/health", healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// CSRF guard covers every API route; it runs before the session check.
	group := r.Group("/api", csrf.Guard())
	{
		a := group.Group("/auth")
		a.GET("/csrf", CSRFTokenHandler(csrf, log))
		a.POST("/register", RegisterHandler(users, log))
		a.POST("/login", LoginHandler(cfg, users, tokens, presence, log))
		a.POST("/logout", LogoutHandler(cfg, tokens, presence, log))
		a.GET("/me", session, MeHandler())

		u := group.Group("/users", session)
		u.GET("", auth.RequireAdmin(), ListUsersHandler(users, log))
		u.GET("/online", OnlineUserCountHandler(presence, log))
		u.PUT("/profile", UpdateProfileHandler(users, log))
		u.GET("/:id", GetUserHandler(users, log))

		g := group.Group("/gigs", session)
		g.POST("", CreateGigHandler(gigs, log))
		g.GET("", ListGigsHandler(gigs, log))
		g.GET("/:id", GetGigHandler(gigs, comments, users, log))
		g.PUT("/:id/status", UpdateGigStatusHandler(gigs, fanout, log))

		cm := group.Group("/comments", session)
		cm.POST("", CreateCommentHandler(gigs, comments, fanout, log))
		cm.DELETE("/:id", DeleteCommentHandler(comments, log))

		m := group.Group("/messages", session)
		m.POST("", SendMessageHandler(users, messages, fanout, log))
		m.GET("/conversation/:userId", ConversationHandler(users, messages, log))
		m.GET("/conversations", ConversationsHandler(users, messages, log))
		m.PUT("/read/:userId", MarkMessagesReadHandler(messages, log))

		n := group.Group("/notifications", session)
		n.GET("/unread", UnreadNotificationsHandler(notifications, log))
		n.GET("", ListNotificationsHandler(notifications, log))
		n.PUT("/read-all", MarkAllNotificationsReadHandler(notifications, log))
		n.PUT("/:id/read", MarkNotificationReadHandler(notifications, log))
		n.GET("/ws", NotificationFeedHandler(cfg, resolver, notifications, feedInterval, log))

		adm := group.Group("/admin", session, auth.RequireAdmin())
		adm.PUT("/users/:id/ban", BanUserHandler(users, presence, log))
		adm.PUT("/users/:id/verify", VerifyUserHandler(users, log))
		adm.DELETE("/gigs/:id", AdminDeleteGigHandler(gigs, comments, log))
		adm.DELETE("/comments/:id", AdminDeleteCommentHandler(comments, log))
	}
	return r
}
