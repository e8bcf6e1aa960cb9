package api

import (
	"log/slog"
	"net/http"

	"devconnect/internal/notification"
	"devconnect/internal/validate"

	"github.com/gin-gonic/gin"
)

// GET /api/notifications/unread
func UnreadNotificationsHandler(notifications *notification.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := notifications.Unread(c.Request.Context(), caller(c).ID)
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /api/notifications
func ListNotificationsHandler(notifications *notification.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset := validate.Pagination(c.Query("page"), c.Query("limit"))
		list, total, err := notifications.List(c.Request.Context(), caller(c).ID, limit, offset)
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": list, "total": total, "page": page, "limit": limit})
	}
}

// PUT /api/notifications/:id/read
func MarkNotificationReadHandler(notifications *notification.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := notifications.MarkRead(c.Request.Context(), id, caller(c).ID); err != nil {
			writeError(c, log, err, "Notification not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
	}
}

// PUT /api/notifications/read-all
func MarkAllNotificationsReadHandler(notifications *notification.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := notifications.MarkAllRead(c.Request.Context(), caller(c).ID)
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": n})
	}
}
