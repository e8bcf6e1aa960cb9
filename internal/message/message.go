package message

import (
	"context"
	"time"

	"devconnect/internal/errs"

	"gorm.io/gorm"
)

type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index" json:"receiver_id"`
	GigID      *uint     `gorm:"index" json:"gig_id"`
	Text       string    `gorm:"not null" json:"text"`
	Read       bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// Conversation summarises the exchange with one peer.
type Conversation struct {
	UserID      uint      `json:"user_id"`
	LastMessage string    `json:"last_message"`
	LastTime    time.Time `json:"last_time"`
	Unread      int       `json:"unread"`
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, m *Message) error {
	return errs.FromStore(s.db.WithContext(ctx).Create(m).Error, "create message")
}

// Between returns the messages exchanged by a and b, oldest first. A non-nil
// gigID restricts the result to that gig.
func (s *Store) Between(ctx context.Context, a, b uint, gigID *uint) ([]Message, error) {
	q := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a)
	if gigID != nil {
		q = q.Where("gig_id = ?", *gigID)
	}
	var msgs []Message
	if err := q.Order("created_at ASC").Order("id ASC").Find(&msgs).Error; err != nil {
		return nil, errs.FromStore(err, "list conversation")
	}
	return msgs, nil
}

// Conversations lists every peer userID has exchanged messages with, most
// recently active first.
func (s *Store) Conversations(ctx context.Context, userID uint) ([]Conversation, error) {
	var msgs []Message
	err := s.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").Order("id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, errs.FromStore(err, "list conversations")
	}

	idx := make(map[uint]int)
	convs := make([]Conversation, 0)
	for _, m := range msgs {
		peer := m.SenderID
		if peer == userID {
			peer = m.ReceiverID
		}
		i, ok := idx[peer]
		if !ok {
			// newest message comes first
			i = len(convs)
			idx[peer] = i
			convs = append(convs, Conversation{UserID: peer, LastMessage: m.Text, LastTime: m.CreatedAt})
		}
		if m.ReceiverID == userID && m.SenderID == peer && !m.Read {
			convs[i].Unread++
		}
	}
	return convs, nil
}

// MarkRead marks everything sender has sent to receiver as read.
func (s *Store) MarkRead(ctx context.Context, receiverID, senderID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&Message{}).
		Where("receiver_id = ? AND sender_id = ? AND read = ?", receiverID, senderID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, errs.FromStore(res.Error, "mark messages read")
	}
	return res.RowsAffected, nil
}
