package api

import (
	"log/slog"
	"net/http"

	"devconnect/internal/auth"
	"devconnect/internal/user"
	"devconnect/internal/validate"

	"github.com/gin-gonic/gin"
)

type UpdateProfileRequest struct {
	Skills string `json:"skills"`
	Bio    string `json:"bio"`
}

// GET /api/users/:id
func GetUserHandler(users *user.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		u, err := users.ByID(c.Request.Context(), id)
		if err != nil {
			writeError(c, log, err, "User not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":         u.ID,
			"username":   u.Username,
			"skills":     u.Skills,
			"bio":        u.Bio,
			"verified":   u.Verified,
			"created_at": u.CreatedAt,
		})
	}
}

// PUT /api/users/profile
func UpdateProfileHandler(users *user.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		me := caller(c)
		if err := users.UpdateProfile(c.Request.Context(), me.ID, validate.Sanitize(req.Skills), validate.Sanitize(req.Bio)); err != nil {
			writeError(c, log, err, "User not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
	}
}

// GET /api/users  [admin only]
func ListUsersHandler(users *user.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset := validate.Pagination(c.Query("page"), c.Query("limit"))
		ctx := c.Request.Context()
		list, err := users.List(ctx, limit, offset)
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		total, err := users.Count(ctx)
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		result := make([]gin.H, 0, len(list))
		for _, u := range list {
			result = append(result, gin.H{
				"id":         u.ID,
				"username":   u.Username,
				"email":      u.Email,
				"role":       u.Role,
				"verified":   u.Verified,
				"created_at": u.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"users": result, "total": total, "page": page, "limit": limit})
	}
}

// OnlineUserCountHandler returns the number of unique online users.
func OnlineUserCountHandler(presence *auth.Presence, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := presence.OnlineCount(c.Request.Context())
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"online": count, "tracked": presence.Enabled()})
	}
}
