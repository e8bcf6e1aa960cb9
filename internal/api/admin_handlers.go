package api

import (
	"log/slog"
	"net/http"

	"devconnect/internal/auth"
	"devconnect/internal/comment"
	"devconnect/internal/gig"
	"devconnect/internal/user"

	"github.com/gin-gonic/gin"
)

type BanRequest struct {
	Ban *bool `json:"ban"`
}

// PUT /api/admin/users/:id/ban
func BanUserHandler(users *user.Store, presence *auth.Presence, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req BanRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Ban == nil {
			badRequest(c, "Ban status required")
			return
		}
		ctx := c.Request.Context()
		target, err := users.ByID(ctx, id)
		if err != nil {
			writeError(c, log, err, "User not found")
			return
		}
		if target.IsAdmin() {
			forbidden(c, "Cannot ban admin")
			return
		}

		role, verb := user.RoleUser, "unbanned"
		if *req.Ban {
			role, verb = user.RoleBanned, "banned"
		}
		if err := users.SetRole(ctx, id, role); err != nil {
			writeError(c, log, err, "User not found")
			return
		}
		if *req.Ban {
			if err := presence.Remove(ctx, id); err != nil {
				log.Warn("presence removal failed", "user_id", id, "error", err)
			}
		}
		log.Info("user "+verb, "user_id", id, "admin_id", caller(c).ID)
		c.JSON(http.StatusOK, gin.H{"message": "User " + verb})
	}
}

// PUT /api/admin/users/:id/verify
func VerifyUserHandler(users *user.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := users.MarkVerified(c.Request.Context(), id); err != nil {
			writeError(c, log, err, "User not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User verified"})
	}
}

// DELETE /api/admin/gigs/:id
//
// Removes the gig and its comments. Notifications pointing at the gig are kept.
func AdminDeleteGigHandler(gigs *gig.Store, comments *comment.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if _, err := gigs.ByID(ctx, id); err != nil {
			writeError(c, log, err, "Gig not found")
			return
		}
		if err := gigs.Delete(ctx, id); err != nil {
			writeError(c, log, err, "")
			return
		}
		// separate store; a failure here leaves orphaned comments behind
		if err := comments.DeleteByGig(ctx, id); err != nil {
			writeError(c, log, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Gig deleted"})
	}
}

// DELETE /api/admin/comments/:id
func AdminDeleteCommentHandler(comments *comment.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := comments.Delete(c.Request.Context(), id); err != nil {
			writeError(c, log, err, "Comment not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
	}
}
