package notification

import (
	"context"
	"fmt"
	"time"

	"devconnect/internal/errs"

	"gorm.io/gorm"
)

type Type string

const (
	TypeComment   Type = "comment"
	TypeReply     Type = "reply"
	TypeMessage   Type = "message"
	TypeGigStatus Type = "gig_status"
)

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      Type      `gorm:"type:varchar(16);not null" json:"type"`
	RelatedID uint      `json:"related_id"`
	Message   string    `gorm:"not null" json:"message"`
	Read      bool      `gorm:"not null;default:false;index" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, n *Notification) error {
	return errs.FromStore(s.db.WithContext(ctx).Create(n).Error, "create notification")
}

// Unread returns the recipient's unread notifications, newest first.
func (s *Store) Unread(ctx context.Context, userID uint) ([]Notification, error) {
	var ns []Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND read = ?", userID, false).
		Order("created_at DESC").Order("id DESC").
		Find(&ns).Error
	if err != nil {
		return nil, errs.FromStore(err, "list unread notifications")
	}
	return ns, nil
}

func (s *Store) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, errs.FromStore(err, "count unread notifications")
	}
	return count, nil
}

// List pages through every notification of the recipient and reports the total.
func (s *Store) List(ctx context.Context, userID uint, limit, offset int) ([]Notification, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&Notification{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, errs.FromStore(err, "count notifications")
	}
	var ns []Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&ns).Error
	if err != nil {
		return nil, 0, errs.FromStore(err, "list notifications")
	}
	return ns, total, nil
}

// MarkRead marks one notification read. Notifications of other users are
// reported as not found.
func (s *Store) MarkRead(ctx context.Context, id, userID uint) error {
	res := s.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return errs.FromStore(res.Error, fmt.Sprintf("mark notification %d", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

// MarkAllRead is idempotent; it returns how many were unread before the call.
func (s *Store) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, errs.FromStore(res.Error, "mark all notifications")
	}
	return res.RowsAffected, nil
}
