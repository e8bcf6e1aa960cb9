package notification

import (
	"context"
	"errors"
	"testing"

	"devconnect/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForComment(t *testing.T) {
	owner := Actor{ID: 1, Username: "owner"}
	bob := Actor{ID: 2, Username: "bob"}

	assert.Empty(t, ForComment(owner, 10, owner.ID))

	got := ForComment(bob, 10, owner.ID)
	require.Len(t, got, 1)
	assert.Equal(t, Notice{UserID: 1, Type: TypeComment, RelatedID: 10, Message: "bob commented on your gig"}, got[0])
}

func TestForReply(t *testing.T) {
	tests := []struct {
		name     string
		actor    uint
		owner    uint
		parent   uint
		expected int
	}{
		{"reply to other commenter", 3, 1, 2, 1},
		{"reply to own comment", 2, 1, 2, 0},
		{"reply to gig owner", 3, 1, 1, 0},
		{"owner replies to commenter", 1, 1, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForReply(Actor{ID: tt.actor, Username: "carol"}, 10, tt.owner, tt.parent)
			require.Len(t, got, tt.expected)
			if tt.expected == 1 {
				assert.Equal(t, tt.parent, got[0].UserID)
				assert.Equal(t, TypeReply, got[0].Type)
				assert.EqualValues(t, 10, got[0].RelatedID)
				assert.Equal(t, "carol replied to your comment", got[0].Message)
			}
		})
	}
}

func TestForMessageAndGigStatus(t *testing.T) {
	got := ForMessage(Actor{ID: 1, Username: "alice"}, 42, 2)
	require.Len(t, got, 1)
	assert.Equal(t, Notice{UserID: 2, Type: TypeMessage, RelatedID: 42, Message: "alice sent you a message"}, got[0])

	assert.Empty(t, ForGigStatus(Actor{ID: 1}, 10, 1, "closed"))
	got = ForGigStatus(Actor{ID: 9, Username: "admin"}, 10, 1, "closed")
	require.Len(t, got, 1)
	assert.Equal(t, "Your gig status changed to closed", got[0].Message)
	assert.Equal(t, TypeGigStatus, got[0].Type)
}

type flakyWriter struct {
	failType Type
	written  []*Notification
}

func (w *flakyWriter) Create(_ context.Context, n *Notification) error {
	if n.Type == w.failType {
		return errors.New("disk full")
	}
	w.written = append(w.written, n)
	return nil
}

func TestDispatcher_FailuresAreIndependent(t *testing.T) {
	w := &flakyWriter{failType: TypeComment}
	d := NewDispatcher(w, logging.Discard())

	actor := Actor{ID: 3, Username: "carol"}
	n := d.Dispatch(context.Background(),
		ForComment(actor, 10, 1),
		ForReply(actor, 10, 1, 2),
	)
	assert.Equal(t, 1, n)
	require.Len(t, w.written, 1)
	assert.Equal(t, TypeReply, w.written[0].Type)
	assert.EqualValues(t, 2, w.written[0].UserID)
}

func TestDispatcher_WritesToStore(t *testing.T) {
	s := newTestStore(t)
	d := NewDispatcher(s, logging.Discard())

	n := d.Dispatch(context.Background(), ForMessage(Actor{ID: 1, Username: "alice"}, 5, 2))
	assert.Equal(t, 1, n)

	unread, err := s.Unread(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "alice sent you a message", unread[0].Message)
	assert.False(t, unread[0].Read)
}
