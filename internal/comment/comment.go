package comment

import (
	"context"
	"fmt"
	"time"

	"devconnect/internal/errs"

	"gorm.io/gorm"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GigID     uint      `gorm:"not null;index" json:"gig_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Text      string    `gorm:"not null" json:"text"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, c *Comment) error {
	return errs.FromStore(s.db.WithContext(ctx).Create(c).Error, "create comment")
}

func (s *Store) ByID(ctx context.Context, id uint) (*Comment, error) {
	var c Comment
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, errs.FromStore(err, fmt.Sprintf("comment %d", id))
	}
	return &c, nil
}

// ByGig returns a gig's comments oldest first.
func (s *Store) ByGig(ctx context.Context, gigID uint) ([]Comment, error) {
	var comments []Comment
	err := s.db.WithContext(ctx).
		Where("gig_id = ?", gigID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, errs.FromStore(err, "list comments")
	}
	return comments, nil
}

// DeleteWithReplies removes the comment and its direct replies.
func (s *Store) DeleteWithReplies(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? OR parent_id = ?", id, id).Delete(&Comment{})
	if res.Error != nil {
		return errs.FromStore(res.Error, fmt.Sprintf("delete comment %d", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

// Delete removes a single comment. Replies are left in place.
func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&Comment{}, id)
	if res.Error != nil {
		return errs.FromStore(res.Error, fmt.Sprintf("delete comment %d", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteByGig(ctx context.Context, gigID uint) error {
	err := s.db.WithContext(ctx).Where("gig_id = ?", gigID).Delete(&Comment{}).Error
	return errs.FromStore(err, fmt.Sprintf("delete comments of gig %d", gigID))
}
