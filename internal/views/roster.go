package views

import (
	"context"
	"slices"
	"sync"

	"library-web/internal/models"

	"github.com/rs/zerolog"
)

type AdminReader interface {
	ActiveOrders(ctx context.Context) ([]models.Order, error)
	Reminders(ctx context.Context) ([]models.Reminder, error)
}

type OrderLister interface {
	Mine(ctx context.Context) ([]models.Order, error)
}

type RosterSnapshot[T any] struct {
	Items   []T
	Loaded  bool
	Loading bool
	Error   string
}

// RosterView is a read-only list fetched on open and on explicit refresh,
// kept in the order the API returns it.
type RosterView[T any] struct {
	fetch   func(ctx context.Context) ([]T, error)
	failMsg string
	logger  zerolog.Logger

	mu         sync.Mutex
	items      []T
	loaded     bool
	loading    bool
	errMsg     string
	generation uint64
	closed     bool
}

func NewRosterView[T any](name string, fetch func(ctx context.Context) ([]T, error), failMsg string, logger zerolog.Logger) *RosterView[T] {
	return &RosterView[T]{
		fetch:   fetch,
		failMsg: failMsg,
		logger:  logger.With().Str("view", name).Logger(),
	}
}

func NewActiveRentalsView(admin AdminReader, logger zerolog.Logger) *RosterView[models.Order] {
	return NewRosterView("admin_orders", admin.ActiveOrders, MsgActiveRentalsFailed, logger)
}

func NewRemindersView(admin AdminReader, logger zerolog.Logger) *RosterView[models.Reminder] {
	return NewRosterView("admin_reminders", admin.Reminders, MsgRemindersFailed, logger)
}

func NewMyOrdersView(orders OrderLister, logger zerolog.Logger) *RosterView[models.Order] {
	return NewRosterView("orders", orders.Mine, MsgMyOrdersFailed, logger)
}

// Open fetches the list the first time the page is shown.
func (v *RosterView[T]) Open(ctx context.Context) {
	v.mu.Lock()
	loaded := v.loaded
	v.mu.Unlock()
	if !loaded {
		v.Refresh(ctx)
	}
}

// Refresh refetches the list. A failure keeps the last list shown.
func (v *RosterView[T]) Refresh(ctx context.Context) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.generation++
	gen := v.generation
	v.loading = true
	v.errMsg = ""
	v.mu.Unlock()

	items, err := v.fetch(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.generation {
		return
	}
	v.loading = false
	if err != nil {
		v.logger.Error().Err(err).Msg(v.failMsg)
		v.errMsg = v.failMsg
		return
	}
	v.items = items
	v.loaded = true
}

func (v *RosterView[T]) Snapshot() RosterSnapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return RosterSnapshot[T]{
		Items:   slices.Clone(v.items),
		Loaded:  v.loaded,
		Loading: v.loading,
		Error:   v.errMsg,
	}
}

func (v *RosterView[T]) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}
