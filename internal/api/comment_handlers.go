package api

import (
	"errors"
	"log/slog"
	"net/http"

	"devconnect/internal/comment"
	"devconnect/internal/errs"
	"devconnect/internal/gig"
	"devconnect/internal/notification"
	"devconnect/internal/validate"

	"github.com/gin-gonic/gin"
)

type CreateCommentRequest struct {
	GigID    uint   `json:"gig_id"`
	Text     string `json:"text"`
	ParentID *uint  `json:"parent_id"`
}

// POST /api/comments
func CreateCommentHandler(gigs *gig.Store, comments *comment.Store, fanout *notification.Dispatcher, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCommentRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.GigID == 0 || req.Text == "" {
			badRequest(c, "Gig ID and text required")
			return
		}
		text := validate.Sanitize(req.Text)
		if err := validate.Comment(text); err != nil {
			writeError(c, log, err, "")
			return
		}

		ctx := c.Request.Context()
		g, err := gigs.ByID(ctx, req.GigID)
		if err != nil {
			writeError(c, log, err, "Gig not found")
			return
		}
		var parent *comment.Comment
		if req.ParentID != nil && *req.ParentID != 0 {
			parent, err = comments.ByID(ctx, *req.ParentID)
			if err != nil {
				writeError(c, log, err, "Parent comment not found")
				return
			}
			if parent.GigID != g.ID {
				badRequest(c, "Parent comment belongs to another gig")
				return
			}
		}

		cm := &comment.Comment{GigID: g.ID, UserID: caller(c).ID, Text: text}
		if parent != nil {
			cm.ParentID = &parent.ID
		}
		if err := comments.Create(ctx, cm); err != nil {
			writeError(c, log, err, "")
			return
		}

		who := actor(caller(c))
		notices := [][]notification.Notice{notification.ForComment(who, g.ID, g.UserID)}
		if parent != nil {
			notices = append(notices, notification.ForReply(who, g.ID, g.UserID, parent.UserID))
		}
		fanout.Dispatch(ctx, notices...)

		c.JSON(http.StatusCreated, gin.H{"id": cm.ID, "message": "Comment added"})
	}
}

// DELETE /api/comments/:id
func DeleteCommentHandler(comments *comment.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		cm, err := comments.ByID(ctx, id)
		if err != nil {
			writeError(c, log, err, "Comment not found")
			return
		}
		me := caller(c)
		if cm.UserID != me.ID && !me.IsAdmin() {
			forbidden(c, "Not authorized")
			return
		}
		if err := comments.DeleteWithReplies(ctx, id); err != nil && !errors.Is(err, errs.ErrNotFound) {
			writeError(c, log, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
	}
}
