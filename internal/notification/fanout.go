package notification

import (
	"context"
	"fmt"
	"log/slog"

	"devconnect/internal/metrics"
)

// Actor is the user whose action triggers a notification.
type Actor struct {
	ID       uint
	Username string
}

// Notice is a notification that has been decided on but not yet written.
type Notice struct {
	UserID    uint
	Type      Type
	RelatedID uint
	Message   string
}

func (n Notice) model() *Notification {
	return &Notification{UserID: n.UserID, Type: n.Type, RelatedID: n.RelatedID, Message: n.Message}
}

// ForComment notifies the gig owner about a new comment unless the owner wrote it.
func ForComment(actor Actor, gigID, gigOwnerID uint) []Notice {
	if actor.ID == gigOwnerID {
		return nil
	}
	return []Notice{{
		UserID:    gigOwnerID,
		Type:      TypeComment,
		RelatedID: gigID,
		Message:   fmt.Sprintf("%s commented on your gig", actor.Username),
	}}
}

// ForReply notifies the parent comment's author. It stays quiet when the
// author replies to themselves or when the author owns the gig, since the
// owner already gets the comment notice.
func ForReply(actor Actor, gigID, gigOwnerID, parentAuthorID uint) []Notice {
	if actor.ID == parentAuthorID || parentAuthorID == gigOwnerID {
		return nil
	}
	return []Notice{{
		UserID:    parentAuthorID,
		Type:      TypeReply,
		RelatedID: gigID,
		Message:   fmt.Sprintf("%s replied to your comment", actor.Username),
	}}
}

func ForMessage(actor Actor, messageID, receiverID uint) []Notice {
	return []Notice{{
		UserID:    receiverID,
		Type:      TypeMessage,
		RelatedID: messageID,
		Message:   fmt.Sprintf("%s sent you a message", actor.Username),
	}}
}

// ForGigStatus notifies the owner when someone else, typically an admin,
// changes the status of their gig.
func ForGigStatus(actor Actor, gigID, gigOwnerID uint, status string) []Notice {
	if actor.ID == gigOwnerID {
		return nil
	}
	return []Notice{{
		UserID:    gigOwnerID,
		Type:      TypeGigStatus,
		RelatedID: gigID,
		Message:   fmt.Sprintf("Your gig status changed to %s", status),
	}}
}

// Writer persists a single notification.
type Writer interface {
	Create(ctx context.Context, n *Notification) error
}

// Dispatcher writes notices after the triggering write has committed. Each
// notice is written on its own; a failure is logged and counted and never
// reaches the caller.
type Dispatcher struct {
	w   Writer
	log *slog.Logger
}

func NewDispatcher(w Writer, log *slog.Logger) *Dispatcher {
	return &Dispatcher{w: w, log: log}
}

// Dispatch returns how many notices were written.
func (d *Dispatcher) Dispatch(ctx context.Context, notices ...[]Notice) int {
	written := 0
	for _, batch := range notices {
		for _, n := range batch {
			if err := d.w.Create(ctx, n.model()); err != nil {
				metrics.NotificationsTotal.WithLabelValues(string(n.Type), "error").Inc()
				d.log.Error("failed to write notification",
					slog.String("type", string(n.Type)),
					slog.Uint64("recipient", uint64(n.UserID)),
					slog.Uint64("related_id", uint64(n.RelatedID)),
					slog.Any("error", err),
				)
				continue
			}
			metrics.NotificationsTotal.WithLabelValues(string(n.Type), "ok").Inc()
			written++
		}
	}
	return written
}
