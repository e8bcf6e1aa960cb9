package api

import (
	"errors"
	"log/slog"
	"net/http"

	"devconnect/internal/errs"
	"devconnect/internal/validate"

	"github.com/gin-gonic/gin"
)

// writeError aborts with the status errs.Status assigns to err. Validation
// problems are reported verbatim, other client errors use msg, and server
// errors are logged and hidden behind a generic message.
func writeError(c *gin.Context, log *slog.Logger, err error, msg string) {
	status := errs.Status(err)
	var verr *validate.Error
	switch {
	case status == http.StatusInternalServerError:
		log.Error("request failed",
			"request_id", c.GetString(ctxRequestID),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		msg = "Internal server error"
	case errors.As(err, &verr):
		msg = verr.Error()
	case msg == "":
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"message": msg}})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": msg}})
}

func forbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": gin.H{"message": msg}})
}
