package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/collection"
)

// DefaultNoticeCapacity bounds the notice queue of a session
const DefaultNoticeCapacity = 50

// NoticeBoard is a bounded queue of user-visible notices. When full, the oldest notice is dropped.
type NoticeBoard struct {
	mu       sync.Mutex
	notices  []collection.Notice
	capacity int
}

// NewNoticeBoard creates a board holding at most capacity notices
func NewNoticeBoard(capacity int) *NoticeBoard {
	if capacity <= 0 {
		capacity = DefaultNoticeCapacity
	}
	return &NoticeBoard{capacity: capacity}
}

// Notify implements collection.Notifier
func (b *NoticeBoard) Notify(n collection.Notice) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Level == "" {
		n.Level = collection.NoticeInfo
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.notices) >= b.capacity {
		b.notices = b.notices[len(b.notices)-b.capacity+1:]
	}
	b.notices = append(b.notices, n)
}

// Error publishes an error notice
func (b *NoticeBoard) Error(msg string) {
	b.Notify(collection.Notice{Level: collection.NoticeError, Message: msg})
}

// List returns the queued notices, oldest first
func (b *NoticeBoard) List() []collection.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]collection.Notice{}, b.notices...)
}

// Drain returns the queued notices and empties the board
func (b *NoticeBoard) Drain() []collection.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	if out == nil {
		out = []collection.Notice{}
	}
	return out
}
