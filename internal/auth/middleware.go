package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"devconnect/internal/errs"
	"devconnect/internal/metrics"
	"devconnect/internal/user"

	"github.com/gin-gonic/gin"
)

const (
	TokenCookie = "token"

	ctxUserID   = "userId"
	ctxUsername = "username"
	ctxUserRole = "userRole"
	ctxIdentity = "identity"
)

// Identity is the authenticated caller as stored, not as claimed by the token.
type Identity struct {
	ID       uint      `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     user.Role `json:"role"`
	Verified bool      `json:"verified"`
	Skills   string    `json:"skills"`
	Bio      string    `json:"bio"`
}

func (i *Identity) IsAdmin() bool { return i.Role == user.RoleAdmin }

// UserLookup is the part of the identity store the resolver needs.
type UserLookup interface {
	ByID(ctx context.Context, id uint) (*user.User, error)
}

// Resolver turns a session token into the caller's current identity.
type Resolver struct {
	tokens   *TokenService
	users    UserLookup
	presence *Presence
	log      *slog.Logger
}

func NewResolver(tokens *TokenService, users UserLookup, presence *Presence, log *slog.Logger) *Resolver {
	return &Resolver{tokens: tokens, users: users, presence: presence, log: log}
}

// Resolve validates token and reloads the user it names. The role always comes
// from the store, so bans and promotions apply to tokens issued earlier.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, errs.ErrUnauthenticated
	}
	claims, err := r.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	u, err := r.users.ByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("user %d no longer exists: %w", claims.UserID, errs.ErrUnauthenticated)
		}
		return nil, err
	}
	if u.IsBanned() {
		return nil, fmt.Errorf("user %d: %w", u.ID, errs.ErrBanned)
	}
	return &Identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Verified: u.Verified,
		Skills:   u.Skills,
		Bio:      u.Bio,
	}, nil
}

// SessionToken reads the token cookie, falling back to a Bearer header.
func SessionToken(c *gin.Context) string {
	if token, err := c.Cookie(TokenCookie); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func (r *Resolver) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := r.Resolve(c.Request.Context(), SessionToken(c))
		if err != nil {
			metrics.AuthRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
			if errs.Status(err) == http.StatusInternalServerError {
				r.log.Error("session lookup failed", "error", err)
			}
			abortWithError(c, err)
			return
		}
		if err := r.presence.Touch(c.Request.Context(), id.ID); err != nil {
			r.log.Warn("presence update failed", "user_id", id.ID, "error", err)
		}

		c.Set(ctxUserID, id.ID)
		c.Set(ctxUsername, id.Username)
		c.Set(ctxUserRole, string(id.Role))
		c.Set(ctxIdentity, id)
		c.Next()
	}
}

// RequireRole checks an already resolved identity.
func RequireRole(id *Identity, role user.Role) error {
	if id == nil {
		return errs.ErrUnauthenticated
	}
	if id.Role != role {
		return fmt.Errorf("role %s required: %w", role, errs.ErrForbidden)
	}
	return nil
}

// RequireAdmin must run after RequireSession.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		if err := RequireRole(id, user.RoleAdmin); err != nil {
			metrics.AuthRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok && id != nil
}

// SetTokenCookie stores the session token; an empty token with a negative
// maxAge clears it.
func SetTokenCookie(c *gin.Context, token string, maxAge int, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, errs.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, errs.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, errs.ErrBanned):
		return "banned"
	case errors.Is(err, errs.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}

// message is the caller-facing text for an auth failure.
func message(err error) string {
	switch {
	case errors.Is(err, errs.ErrInvalidCSRF):
		return "Invalid CSRF token"
	case errors.Is(err, errs.ErrInvalidToken):
		return "Invalid or expired token"
	case errors.Is(err, errs.ErrUnauthenticated):
		return "Not authenticated"
	case errors.Is(err, errs.ErrBanned):
		return "Account banned"
	case errors.Is(err, errs.ErrForbidden):
		return "Admin access required"
	default:
		return "Internal server error"
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errs.Status(err), gin.H{"error": gin.H{"message": message(err)}})
}
