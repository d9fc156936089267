package collection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

// Notice is a user-visible message about something that happened in the background
type Notice struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notice levels
const (
	NoticeInfo  = "info"
	NoticeError = "error"
)

// Notifier publishes notices to the user
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// RemoteCall performs the server side of a mutation. The returned record, when non-nil,
// replaces the optimistic one.
type RemoteCall[T any] func(ctx context.Context) (*T, error)

// Mutation is one optimistic change and its outcome
type Mutation struct {
	ID        string
	Operation domain.Operation
	TargetID  string

	mu    sync.Mutex
	state domain.MutationState
	err   error
}

func newMutation(op domain.Operation, target string) *Mutation {
	return &Mutation{
		ID:        uuid.NewString(),
		Operation: op,
		TargetID:  target,
		state:     domain.MutationStateIdle,
	}
}

// State returns the current mutation state
func (m *Mutation) State() domain.MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err is the remote failure that caused a rollback, if any
func (m *Mutation) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *Mutation) transition(next domain.MutationState, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.CanTransitionTo(next) {
		return &errors.ErrInvalidStateTransition{From: string(m.state), To: string(next)}
	}
	m.state = next
	if cause != nil {
		m.err = cause
	}
	return nil
}

// Optimistic applies local changes to a synchronizer before the server confirms them
type Optimistic[T any] struct {
	coll     *Synchronizer[T]
	withID   func(T, string) T
	notifier Notifier
	logger   *zap.Logger
}

// NewOptimistic wraps s. withID stamps a temporary identity onto a record being created.
func NewOptimistic[T any](s *Synchronizer[T], withID func(T, string) T, notifier Notifier, logger *zap.Logger) *Optimistic[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NotifierFunc(func(Notice) {})
	}
	return &Optimistic[T]{
		coll:     s,
		withID:   withID,
		notifier: notifier,
		logger:   logger.With(zap.String("collection", s.name)),
	}
}

// Synchronizer returns the wrapped collection
func (o *Optimistic[T]) Synchronizer() *Synchronizer[T] {
	return o.coll
}

// Create inserts record at the front under a temporary identity, then calls remote
func (o *Optimistic[T]) Create(ctx context.Context, record T, remote RemoteCall[T]) (*Mutation, error) {
	tempID := "tmp-" + uuid.NewString()
	if o.withID != nil {
		record = o.withID(record, tempID)
	}
	m := newMutation(domain.OperationCreate, tempID)

	snapshot, gen := o.coll.apply(func(items []T) []T {
		return append([]T{record}, items...)
	})
	return m, o.settle(ctx, m, snapshot, gen, remote)
}

// Update patches the record with the given identity in place, then calls remote
func (o *Optimistic[T]) Update(ctx context.Context, id string, patch func(T) T, remote RemoteCall[T]) (*Mutation, error) {
	m := newMutation(domain.OperationUpdate, id)

	snapshot, gen := o.coll.apply(func(items []T) []T {
		for i := range items {
			if o.coll.identity(items[i]) == id {
				items[i] = patch(items[i])
			}
		}
		return items
	})
	return m, o.settle(ctx, m, snapshot, gen, remote)
}

// Delete removes the record with the given identity, then calls remote
func (o *Optimistic[T]) Delete(ctx context.Context, id string, remote RemoteCall[T]) (*Mutation, error) {
	m := newMutation(domain.OperationDelete, id)

	snapshot, gen := o.coll.apply(func(items []T) []T {
		kept := items[:0]
		for _, it := range items {
			if o.coll.identity(it) != id {
				kept = append(kept, it)
			}
		}
		return kept
	})
	return m, o.settle(ctx, m, snapshot, gen, remote)
}

func (o *Optimistic[T]) settle(ctx context.Context, m *Mutation, snapshot []T, gen uint64, remote RemoteCall[T]) error {
	if err := m.transition(domain.MutationStateOptimisticApplied, nil); err != nil {
		return err
	}

	confirmed, err := remote(ctx)
	if err != nil {
		restored := o.coll.restore(snapshot, gen)
		if terr := m.transition(domain.MutationStateRolledBack, err); terr != nil {
			return terr
		}
		o.logger.Warn("Optimistic mutation rolled back",
			zap.String("mutation_id", m.ID),
			zap.String("operation", string(m.Operation)),
			zap.String("target_id", m.TargetID),
			zap.Bool("restored", restored),
			zap.Error(err),
		)
		o.notifier.Notify(Notice{
			ID:        m.ID,
			Level:     NoticeError,
			Message:   fmt.Sprintf("Could not %s item, change reverted", m.Operation),
			CreatedAt: time.Now().UTC(),
		})
		return err
	}

	if confirmed != nil && m.Operation != domain.OperationDelete {
		o.confirm(m.TargetID, *confirmed)
	}
	if err := m.transition(domain.MutationStateConfirmed, nil); err != nil {
		return err
	}
	o.logger.Debug("Optimistic mutation confirmed",
		zap.String("mutation_id", m.ID),
		zap.String("operation", string(m.Operation)),
	)
	return nil
}

// confirm swaps the optimistic record for the server's copy. When a page merge already
// brought that copy in, the optimistic record is dropped instead.
func (o *Optimistic[T]) confirm(target string, rec T) {
	id := o.coll.identity(rec)
	o.coll.apply(func(items []T) []T {
		present := false
		if id != target {
			for _, it := range items {
				if o.coll.identity(it) == id {
					present = true
					break
				}
			}
		}
		out := items[:0]
		for _, it := range items {
			if o.coll.identity(it) == target {
				if present {
					continue
				}
				it = rec
			}
			out = append(out, it)
		}
		return out
	})
}
