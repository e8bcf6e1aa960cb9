package api

import (
	"errors"
	"log/slog"
	"net/http"

	"devconnect/internal/auth"
	"devconnect/internal/config"
	"devconnect/internal/errs"
	"devconnect/internal/metrics"
	"devconnect/internal/user"
	"devconnect/internal/validate"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// GET /api/auth/csrf
func CSRFTokenHandler(csrf *auth.CSRF, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := csrf.Token(c)
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"csrfToken": token})
	}
}

// POST /api/auth/register
func RegisterHandler(users *user.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		if err := validate.Registration(req.Username, req.Email, req.Password); err != nil {
			metrics.AuthRegistrationsTotal.WithLabelValues("invalid").Inc()
			writeError(c, log, err, "")
			return
		}

		ctx := c.Request.Context()
		taken, err := users.Taken(ctx, req.Username, req.Email)
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		if taken {
			metrics.AuthRegistrationsTotal.WithLabelValues("conflict").Inc()
			writeError(c, log, errs.ErrConflict, "Username or email already exists")
			return
		}

		hash, err := user.HashPassword(req.Password)
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		u := &user.User{Username: req.Username, Email: req.Email, PasswordHash: hash}
		// the unique indexes decide races between concurrent registrations
		if err := users.Create(ctx, u); err != nil {
			if errors.Is(err, errs.ErrConflict) {
				metrics.AuthRegistrationsTotal.WithLabelValues("conflict").Inc()
			}
			writeError(c, log, err, "Username or email already exists")
			return
		}
		metrics.AuthRegistrationsTotal.WithLabelValues("ok").Inc()
		log.Info("user registered", "user_id", u.ID, "username", u.Username)
		c.JSON(http.StatusCreated, gin.H{"id": u.ID, "message": "Registration successful"})
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config, users *user.Store, tokens *auth.TokenService, presence *auth.Presence, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
			badRequest(c, "Username and password required")
			return
		}
		ctx := c.Request.Context()
		u, err := users.ByUsername(ctx, req.Username)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				metrics.AuthLoginsTotal.WithLabelValues("invalid").Inc()
				writeError(c, log, errs.ErrUnauthenticated, "Invalid credentials")
				return
			}
			writeError(c, log, err, "")
			return
		}
		if err := user.CheckPassword(u.PasswordHash, req.Password); err != nil {
			metrics.AuthLoginsTotal.WithLabelValues("invalid").Inc()
			writeError(c, log, errs.ErrUnauthenticated, "Invalid credentials")
			return
		}
		if u.IsBanned() {
			metrics.AuthLoginsTotal.WithLabelValues("banned").Inc()
			writeError(c, log, errs.ErrBanned, "Account banned")
			return
		}

		token, err := tokens.Issue(u.ID, u.Username, string(u.Role))
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		auth.SetTokenCookie(c, token, int(auth.TokenTTL.Seconds()), cfg.IsProduction())
		if err := presence.Touch(ctx, u.ID); err != nil {
			log.Warn("presence update failed", "user_id", u.ID, "error", err)
		}
		metrics.AuthLoginsTotal.WithLabelValues("ok").Inc()

		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"user": gin.H{
				"id":       u.ID,
				"username": u.Username,
				"role":     u.Role,
			},
		})
	}
}

// POST /api/auth/logout
func LogoutHandler(cfg *config.Config, tokens *auth.TokenService, presence *auth.Presence, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := tokens.Validate(auth.SessionToken(c)); err == nil {
			if err := presence.Remove(c.Request.Context(), claims.UserID); err != nil {
				log.Warn("presence removal failed", "user_id", claims.UserID, "error", err)
			}
		}
		auth.SetTokenCookie(c, "", -1, cfg.IsProduction())
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// GET /api/auth/me
func MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, caller(c))
	}
}
