package collection

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// DefaultLimit is the page size used when none is configured
const DefaultLimit = 10

// Pagination is the server-supplied paging metadata
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalRecords int `json:"totalRecords"`
}

// Page is one fetched page. Pagination is nil when the server sent none.
type Page[T any] struct {
	Records    []T
	Pagination *Pagination
}

// FetchFunc loads one page of records for a filter
type FetchFunc[T any] func(ctx context.Context, filter Filter, page, limit int) (Page[T], error)

// State is a copy of the accumulated collection
type State[T any] struct {
	Items        []T   `json:"items"`
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalRecords int   `json:"totalRecords"`
	HasMore      bool  `json:"hasMore"`
	Loading      bool  `json:"loading"`
	Err          error `json:"-"`
}

// Synchronizer accumulates server pages into a de-duplicated list
type Synchronizer[T any] struct {
	mu       sync.Mutex
	name     string
	fetch    FetchFunc[T]
	identity func(T) string
	limit    int
	logger   *zap.Logger

	filter       Filter
	items        []T
	seen         map[string]struct{}
	page         int
	totalPages   int
	totalRecords int
	hasMore      bool
	loading      bool
	lastErr      error
	generation   uint64
	visible      bool
}

// NewSynchronizer creates an empty synchronizer. identity must return a stable unique key.
func NewSynchronizer[T any](name string, fetch FetchFunc[T], identity func(T) string, limit int, logger *zap.Logger) *Synchronizer[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Synchronizer[T]{
		name:     name,
		fetch:    fetch,
		identity: identity,
		limit:    limit,
		logger:   logger.With(zap.String("collection", name)),
		seen:     map[string]struct{}{},
		hasMore:  true,
	}
}

// Filter returns the active filter
func (s *Synchronizer[T]) Filter() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter switches to a new descriptor. A different descriptor resets the accumulated
// list before anything else is merged. Reports whether a reset happened.
func (s *Synchronizer[T]) SetFilter(f Filter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.filter.Equal(f) {
		return false
	}
	s.filter = f
	s.resetLocked()
	s.logger.Debug("Collection filter changed", zap.String("filter", f.Key()))
	return true
}

// Reset drops the accumulated pages without fetching. The next LoadNextPage starts at page 1.
func (s *Synchronizer[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// Refresh drops the accumulated pages and loads page 1 again for the current filter
func (s *Synchronizer[T]) Refresh(ctx context.Context) error {
	s.Reset()
	_, err := s.LoadNextPage(ctx)
	return err
}

// LoadNextPage fetches the page after the last merged one. It does nothing and returns
// false while a fetch is in flight or when there is nothing more to load.
func (s *Synchronizer[T]) LoadNextPage(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.loading || !s.hasMore {
		s.mu.Unlock()
		return false, nil
	}
	s.loading = true
	s.lastErr = nil
	gen := s.generation
	filter := s.filter
	next := s.page + 1
	limit := s.limit
	s.mu.Unlock()

	page, err := s.fetch(ctx, filter, next, limit)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		// Filter changed or list refreshed while fetching. The reset already cleared loading.
		s.logger.Debug("Discarding page for superseded filter", zap.Int("page", next))
		return true, nil
	}
	s.loading = false

	if err != nil {
		s.lastErr = err
		s.logger.Warn("Page fetch failed", zap.Int("page", next), zap.Error(err))
		return true, err
	}

	added := s.mergeLocked(page.Records)
	s.page = next
	if p := page.Pagination; p != nil && p.TotalPages > 0 {
		if p.CurrentPage > 0 {
			s.page = p.CurrentPage
		}
		s.totalPages = p.TotalPages
		s.totalRecords = p.TotalRecords
		s.hasMore = s.page < s.totalPages
	} else {
		// Degraded fallback without server metadata: a full page with something new may have a successor
		s.hasMore = added > 0 && len(page.Records) >= limit
	}

	s.logger.Debug("Page merged",
		zap.Int("page", s.page),
		zap.Int("received", len(page.Records)),
		zap.Int("added", added),
		zap.Bool("has_more", s.hasMore),
	)
	return true, nil
}

// Retry re-issues the page fetch that failed last
func (s *Synchronizer[T]) Retry(ctx context.Context) (bool, error) {
	s.mu.Lock()
	failed := s.lastErr != nil
	s.mu.Unlock()
	if !failed {
		return false, nil
	}
	return s.LoadNextPage(ctx)
}

// SentinelVisible is the viewport-intersection entry point. Only an invisible-to-visible
// transition requests the next page.
func (s *Synchronizer[T]) SentinelVisible(ctx context.Context, visible bool) (bool, error) {
	s.mu.Lock()
	becameVisible := visible && !s.visible
	s.visible = visible
	s.mu.Unlock()

	if !becameVisible {
		return false, nil
	}
	return s.LoadNextPage(ctx)
}

// State returns a copy of the collection
func (s *Synchronizer[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State[T]{
		Items:        append([]T{}, s.items...),
		CurrentPage:  s.page,
		TotalPages:   s.totalPages,
		TotalRecords: s.totalRecords,
		HasMore:      s.hasMore,
		Loading:      s.loading,
		Err:          s.lastErr,
	}
}

// apply runs transform on the current list and returns the list as it was before,
// together with the generation it belongs to. The snapshot is taken under the same
// lock as the change.
func (s *Synchronizer[T]) apply(transform func([]T) []T) ([]T, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := append([]T{}, s.items...)
	s.items = transform(append([]T{}, s.items...))
	s.reindexLocked()
	return snapshot, s.generation
}

// restore puts a snapshot taken by apply back in place. A snapshot from an older
// generation belongs to a previous filter and is dropped; restore reports whether
// it was applied.
func (s *Synchronizer[T]) restore(snapshot []T, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.items = append([]T{}, snapshot...)
	s.reindexLocked()
	return true
}

func (s *Synchronizer[T]) resetLocked() {
	s.generation++
	s.items = nil
	s.seen = map[string]struct{}{}
	s.page = 0
	s.totalPages = 0
	s.totalRecords = 0
	s.hasMore = true
	s.loading = false
	s.lastErr = nil
	s.visible = false
}

func (s *Synchronizer[T]) mergeLocked(records []T) int {
	added := 0
	for _, rec := range records {
		id := s.identity(rec)
		if _, dup := s.seen[id]; dup {
			continue
		}
		s.seen[id] = struct{}{}
		s.items = append(s.items, rec)
		added++
	}
	return added
}

func (s *Synchronizer[T]) reindexLocked() {
	s.seen = make(map[string]struct{}, len(s.items))
	for _, rec := range s.items {
		s.seen[s.identity(rec)] = struct{}{}
	}
}
