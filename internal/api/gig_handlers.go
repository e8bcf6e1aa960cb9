package api

import (
	"log/slog"
	"net/http"

	"devconnect/internal/comment"
	"devconnect/internal/gig"
	"devconnect/internal/notification"
	"devconnect/internal/user"
	"devconnect/internal/validate"

	"github.com/gin-gonic/gin"
)

type CreateGigRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Budget       string `json:"budget"`
	SkillsNeeded string `json:"skills_needed"`
	Type         string `json:"type"`
	Location     string `json:"location"`
	Deadline     string `json:"deadline"`
}

type UpdateGigStatusRequest struct {
	Status string `json:"status"`
}

// commentView is a comment with its author's username.
type commentView struct {
	comment.Comment
	Username string `json:"username"`
}

// POST /api/gigs
func CreateGigHandler(gigs *gig.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateGigRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		if req.Title == "" {
			badRequest(c, "Title required")
			return
		}
		g := &gig.Gig{
			UserID:       caller(c).ID,
			Title:        validate.Sanitize(req.Title),
			Description:  validate.Sanitize(req.Description),
			Budget:       validate.Sanitize(req.Budget),
			SkillsNeeded: validate.Sanitize(req.SkillsNeeded),
			Type:         validate.Sanitize(req.Type),
			Location:     validate.Sanitize(req.Location),
			Deadline:     validate.Sanitize(req.Deadline),
		}
		if err := validate.Gig(validate.GigInput{
			Title:       g.Title,
			Description: g.Description,
			Budget:      g.Budget,
			Deadline:    g.Deadline,
		}); err != nil {
			writeError(c, log, err, "")
			return
		}
		if err := gigs.Create(c.Request.Context(), g); err != nil {
			writeError(c, log, err, "")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": g.ID, "message": "Gig created"})
	}
}

// GET /api/gigs
func ListGigsHandler(gigs *gig.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset := validate.Pagination(c.Query("page"), c.Query("limit"))
		filter := gig.Filter{
			Type:   c.Query("type"),
			Status: c.Query("status"),
			Search: c.Query("search"),
		}
		list, total, err := gigs.List(c.Request.Context(), filter, limit, offset)
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"gigs": list, "total": total, "page": page, "limit": limit})
	}
}

// GET /api/gigs/:id
func GetGigHandler(gigs *gig.Store, comments *comment.Store, users *user.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		g, err := gigs.ByID(ctx, id)
		if err != nil {
			writeError(c, log, err, "Gig not found")
			return
		}
		list, err := comments.ByGig(ctx, id)
		if err != nil {
			writeError(c, log, err, "")
			return
		}

		ids := make([]uint, 0, len(list))
		for _, cm := range list {
			ids = append(ids, cm.UserID)
		}
		names, err := users.Usernames(ctx, ids)
		if err != nil {
			writeError(c, log, err, "")
			return
		}
		views := make([]commentView, 0, len(list))
		for _, cm := range list {
			name, ok := names[cm.UserID]
			if !ok {
				// author account is gone
				continue
			}
			views = append(views, commentView{Comment: cm, Username: name})
		}
		c.JSON(http.StatusOK, gin.H{"gig": g, "comments": views})
	}
}

// PUT /api/gigs/:id/status
func UpdateGigStatusHandler(gigs *gig.Store, fanout *notification.Dispatcher, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req UpdateGigStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil || !gig.Status(req.Status).Valid() {
			badRequest(c, "Invalid status")
			return
		}
		ctx := c.Request.Context()
		g, err := gigs.ByID(ctx, id)
		if err != nil {
			writeError(c, log, err, "Gig not found")
			return
		}
		me := caller(c)
		if g.UserID != me.ID && !me.IsAdmin() {
			forbidden(c, "Not authorized")
			return
		}
		if err := gigs.UpdateStatus(ctx, id, gig.Status(req.Status)); err != nil {
			writeError(c, log, err, "Gig not found")
			return
		}
		fanout.Dispatch(ctx, notification.ForGigStatus(actor(me), g.ID, g.UserID, req.Status))
		c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
	}
}
