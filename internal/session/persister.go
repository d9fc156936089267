package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
)

const persistTimeout = 5 * time.Second

// cartPersister writes cart snapshots in the background. Only the latest pending snapshot
// is written; older ones are superseded.
type cartPersister struct {
	mu      sync.Mutex
	pending *domain.Cart
	save    func(ctx context.Context, cart domain.Cart) error
	logger  *zap.Logger

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func newCartPersister(save func(ctx context.Context, cart domain.Cart) error, logger *zap.Logger) *cartPersister {
	p := &cartPersister{
		save:   save,
		logger: logger,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go p.loop()
	return p
}

// offer queues a snapshot. It never blocks, so it is safe inside the engine hook.
func (p *cartPersister) offer(cart domain.Cart) {
	p.mu.Lock()
	p.pending = &cart
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// close writes whatever is pending and stops the loop
func (p *cartPersister) close() {
	p.once.Do(func() { close(p.stop) })
	<-p.done
}

func (p *cartPersister) loop() {
	defer close(p.done)
	for {
		select {
		case <-p.wake:
			p.flush()
		case <-p.stop:
			p.flush()
			return
		}
	}
}

func (p *cartPersister) flush() {
	p.mu.Lock()
	cart := p.pending
	p.pending = nil
	p.mu.Unlock()
	if cart == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := p.save(ctx, *cart); err != nil {
		p.logger.Error("Failed to persist cart", zap.Error(err))
	}
}
