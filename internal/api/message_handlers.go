package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"devconnect/internal/message"
	"devconnect/internal/notification"
	"devconnect/internal/user"
	"devconnect/internal/validate"

	"github.com/gin-gonic/gin"
)

type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id"`
	GigID      *uint  `json:"gig_id"`
	Text       string `json:"text"`
}

type messageView struct {
	message.Message
	SenderName   string `json:"sender_name"`
	ReceiverName string `json:"receiver_name"`
}

type conversationView struct {
	message.Conversation
	Username string `json:"username"`
}

// POST /api/messages
func SendMessageHandler(users *user.Store, messages *message.Store, fanout *notification.Dispatcher, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ReceiverID == 0 || req.Text == "" {
			badRequest(c, "Receiver and text required")
			return
		}
		text := validate.Sanitize(req.Text)
		if err := validate.Message(text); err != nil {
			writeError(c, log, err, "")
			return
		}
		ctx := c.Request.Context()
		if _, err := users.ByID(ctx, req.ReceiverID); err != nil {
			writeError(c, log, err, "Receiver not found")
			return
		}

		me := caller(c)
		m := &message.Message{SenderID: me.ID, ReceiverID: req.ReceiverID, Text: text}
		if req.GigID != nil && *req.GigID != 0 {
			m.GigID = req.GigID
		}
		if err := messages.Create(ctx, m); err != nil {
			writeError(c, log, err, "")
			return
		}
		fanout.Dispatch(ctx, notification.ForMessage(actor(me), m.ID, m.ReceiverID))
		c.JSON(http.StatusCreated, gin.H{"id": m.ID, "message": "Message sent"})
	}
}

// GET /api/messages/conversation/:userId
func ConversationHandler(users *user.Store, messages *message.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		other, ok := pathID(c, "userId")
		if !ok {
			return
		}
		var gigID *uint
		if raw := c.Query("gig_id"); raw != "" {
			v, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				badRequest(c, "Invalid gig_id")
				return
			}
			id := uint(v)
			gigID = &id
		}

		ctx := c.Request.Context()
		me := caller(c)
		msgs, err := messages.Between(ctx, me.ID, other, gigID)
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		names, err := users.Usernames(ctx, []uint{me.ID, other})
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		views := make([]messageView, 0, len(msgs))
		for _, m := range msgs {
			views = append(views, messageView{
				Message:      m,
				SenderName:   names[m.SenderID],
				ReceiverName: names[m.ReceiverID],
			})
		}
		c.JSON(http.StatusOK, views)
	}
}

// GET /api/messages/conversations
func ConversationsHandler(users *user.Store, messages *message.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		convs, err := messages.Conversations(ctx, caller(c).ID)
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		ids := make([]uint, 0, len(convs))
		for _, cv := range convs {
			ids = append(ids, cv.UserID)
		}
		names, err := users.Usernames(ctx, ids)
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		views := make([]conversationView, 0, len(convs))
		for _, cv := range convs {
			name, ok := names[cv.UserID]
			if !ok {
				continue
			}
			views = append(views, conversationView{Conversation: cv, Username: name})
		}
		c.JSON(http.StatusOK, views)
	}
}

// PUT /api/messages/read/:userId
func MarkMessagesReadHandler(messages *message.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sender, ok := pathID(c, "userId")
		if !ok {
			return
		}
		n, err := messages.MarkRead(c.Request.Context(), caller(c).ID, sender)
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Messages marked as read", "updated": n})
	}
}
