package api

import (
	"net/http"
	"strconv"

	"devconnect/internal/auth"
	"devconnect/internal/notification"

	"github.com/gin-gonic/gin"
)

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func notFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Route not found"}})
}

// pathID parses a positive numeric path parameter, writing a 400 when it is not one.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// caller returns the identity attached by the session resolver. Routes using it
// are always mounted behind RequireSession.
func caller(c *gin.Context) *auth.Identity {
	id, _ := auth.CurrentIdentity(c)
	return id
}

func actor(id *auth.Identity) notification.Actor {
	return notification.Actor{ID: id.ID, Username: id.Username}
}
