package gig

import (
	"context"
	"fmt"
	"time"

	"devconnect/internal/errs"

	"gorm.io/gorm"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusClosed     Status = "closed"
	StatusInProgress Status = "in-progress"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusInProgress:
		return true
	}
	return false
}

type Gig struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `json:"description"`
	Budget       string    `json:"budget"`
	SkillsNeeded string    `json:"skills_needed"`
	Type         string    `json:"type"`
	Location     string    `json:"location"`
	Deadline     string    `json:"deadline"`
	Status       Status    `gorm:"type:varchar(16);not null;default:'open';index" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// Filter narrows the gig feed. Empty fields match everything.
type Filter struct {
	Type   string
	Status string
	Search string
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, g *Gig) error {
	if g.Status == "" {
		g.Status = StatusOpen
	}
	return errs.FromStore(s.db.WithContext(ctx).Create(g).Error, "create gig")
}

func (s *Store) ByID(ctx context.Context, id uint) (*Gig, error) {
	var g Gig
	if err := s.db.WithContext(ctx).First(&g, id).Error; err != nil {
		return nil, errs.FromStore(err, fmt.Sprintf("gig %d", id))
	}
	return &g, nil
}

// List returns the filtered feed newest first, plus the total number of gigs
// matching the filter.
func (s *Store) List(ctx context.Context, f Filter, limit, offset int) ([]Gig, int64, error) {
	q := s.db.WithContext(ctx).Model(&Gig{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("(title LIKE ? OR description LIKE ? OR skills_needed LIKE ?)", like, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, errs.FromStore(err, "count gigs")
	}
	var gigs []Gig
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&gigs).Error
	if err != nil {
		return nil, 0, errs.FromStore(err, "list gigs")
	}
	return gigs, total, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uint, status Status) error {
	res := s.db.WithContext(ctx).Model(&Gig{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return errs.FromStore(res.Error, fmt.Sprintf("update gig %d", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("gig %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	return errs.FromStore(s.db.WithContext(ctx).Delete(&Gig{}, id).Error, fmt.Sprintf("delete gig %d", id))
}
