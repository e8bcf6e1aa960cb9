package auth

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"devconnect/internal/errs"
	"devconnect/internal/metrics"

	"github.com/gin-gonic/gin"
)

const (
	CSRFCookie = "csrfToken"
	CSRFHeader = "X-CSRF-Token"
	// CSRFField is the body field checked when the header is missing.
	CSRFField = "_csrf"

	csrfTokenBytes = 32
	maxCSRFBody    = 1 << 20
)

// CSRF implements the double-submit cookie check.
type CSRF struct {
	secure   bool
	log      *slog.Logger
	newToken func() (string, error)
}

func NewCSRF(secure bool, log *slog.Logger) *CSRF {
	return &CSRF{secure: secure, log: log, newToken: newCSRFToken}
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Issue sets a fresh token cookie on the response and returns the token.
func (g *CSRF) Issue(c *gin.Context) (string, error) {
	token, err := g.newToken()
	if err != nil {
		return "", err
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CSRFCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
	})
	c.Set(CSRFCookie, token)
	return token, nil
}

// VerifyCSRF reports whether the submitted token matches the cookie.
func VerifyCSRF(submitted, cookie string) bool {
	if submitted == "" || cookie == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(cookie)) == 1
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Guard rejects mutating requests whose submitted token does not match the
// cookie. Safe methods pass through and receive a cookie when they lack one.
// A verified request gets a rotated token.
func (g *CSRF) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(CSRFCookie)

		if isSafeMethod(c.Request.Method) {
			if cookie == "" {
				if _, err := g.Issue(c); err != nil {
					g.fail(c, err)
					return
				}
			}
			c.Next()
			return
		}

		if !VerifyCSRF(submittedToken(c), cookie) {
			metrics.AuthRejectionsTotal.WithLabelValues("csrf").Inc()
			// hand out a token so the client can retry
			if cookie == "" {
				if _, err := g.Issue(c); err != nil {
					g.log.Error("csrf token issue failed", "path", c.Request.URL.Path, "error", err)
				}
			}
			abortWithError(c, errs.ErrInvalidCSRF)
			return
		}
		if _, err := g.Issue(c); err != nil {
			g.fail(c, err)
			return
		}
		c.Next()
	}
}

func (g *CSRF) fail(c *gin.Context, err error) {
	g.log.Error("csrf token issue failed", "path", c.Request.URL.Path, "error", err)
	abortWithError(c, err)
}

func submittedToken(c *gin.Context) string {
	if token := c.GetHeader(CSRFHeader); token != "" {
		return token
	}
	if c.Request.Body == nil {
		return ""
	}
	if strings.HasPrefix(c.ContentType(), "application/json") {
		body := c.Request.Body
		raw, err := io.ReadAll(io.LimitReader(body, maxCSRFBody))
		if err != nil {
			return ""
		}
		// put back what was read ahead of whatever the limit left unread
		c.Request.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(raw), body), body}
		var form struct {
			CSRF string `json:"_csrf"`
		}
		if json.Unmarshal(raw, &form) != nil {
			return ""
		}
		return form.CSRF
	}
	return c.PostForm(CSRFField)
}

// Token returns the token already issued on this response, or issues one.
func (g *CSRF) Token(c *gin.Context) (string, error) {
	if token := c.GetString(CSRFCookie); token != "" {
		return token, nil
	}
	return g.Issue(c)
}
