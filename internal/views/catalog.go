package views

import (
	"context"
	"slices"
	"sync"

	"library-web/internal/models"

	"github.com/rs/zerolog"
)

const CatalogPageSize = 12

var CatalogSorts = []string{"title", "author", "year"}

type BookReader interface {
	List(ctx context.Context, q models.BookQuery) (*models.BookPage, error)
	Get(ctx context.Context, id string) (*models.Book, error)
}

type OrderPlacer interface {
	Place(ctx context.Context, bookID string, orderType models.OrderType) (*models.Order, error)
}

// Filters are passed to the API verbatim; only the sort key is constrained.
type Filters struct {
	Category string
	Author   string
	Year     string
	Sort     string
}

func DefaultFilters() Filters {
	return Filters{Sort: "title"}
}

func (f Filters) normalized() Filters {
	if !slices.Contains(CatalogSorts, f.Sort) {
		f.Sort = "title"
	}
	return f
}

type CatalogSnapshot struct {
	Filters    Filters
	Page       int
	Books      []models.BookSummary
	HasNext    bool
	Loading    bool
	Error      string
	Message    string
	SelectedID string
	Selected   *models.Book
	Categories []string
	Authors    []string
}

// CatalogView accumulates catalog pages for one set of filters. A filter
// change starts a new generation; responses from older generations and any
// response arriving after Close are dropped.
type CatalogView struct {
	books   BookReader
	orders  OrderPlacer
	details *DetailCache
	logger  zerolog.Logger

	mu         sync.Mutex
	filters    Filters
	page       int
	items      []models.BookSummary
	hasNext    bool
	loading    bool
	loaded     bool
	errMsg     string
	detailErr  string
	message    string
	selectedID string
	generation uint64
	closed     bool
}

func NewCatalogView(books BookReader, orders OrderPlacer, logger zerolog.Logger) *CatalogView {
	return &CatalogView{
		books:   books,
		orders:  orders,
		details: NewDetailCache(books.Get),
		logger:  logger.With().Str("view", "catalog").Logger(),
		filters: DefaultFilters(),
	}
}

// Show loads the first page unless the view already holds pages for f. A
// failed load is retried.
func (v *CatalogView) Show(ctx context.Context, f Filters) {
	f = f.normalized()
	v.mu.Lock()
	current := v.loaded && v.filters == f && v.errMsg == ""
	v.mu.Unlock()
	if current {
		return
	}
	v.SetFilters(ctx, f)
}

// SetFilters resets to page zero and replaces the accumulated list.
func (v *CatalogView) SetFilters(ctx context.Context, f Filters) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.filters = f.normalized()
	v.generation++
	v.page = 0
	v.hasNext = false
	v.items = nil
	v.loaded = false
	v.mu.Unlock()

	v.load(ctx, 0, false)
}

// LoadMore appends the next page, keeping the order of entries already shown.
func (v *CatalogView) LoadMore(ctx context.Context) {
	v.mu.Lock()
	if v.closed || v.loading || !v.hasNext {
		v.mu.Unlock()
		return
	}
	next := v.page + 1
	v.mu.Unlock()

	v.load(ctx, next, true)
}

func (v *CatalogView) load(ctx context.Context, page int, appendItems bool) {
	v.mu.Lock()
	gen := v.generation
	q := models.BookQuery{
		Page:     page,
		Size:     CatalogPageSize,
		Category: v.filters.Category,
		Author:   v.filters.Author,
		Year:     v.filters.Year,
		Sort:     v.filters.Sort,
	}
	v.loading = true
	v.errMsg = ""
	v.mu.Unlock()

	data, err := v.books.List(ctx, q)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.generation {
		return
	}
	v.loading = false
	if err != nil {
		v.logger.Error().Err(err).Int("page", page).Msg("Catalog load failed")
		v.errMsg = MsgCatalogLoadFailed
		return
	}
	v.page = data.Page
	v.hasNext = data.HasNext
	if appendItems {
		v.items = append(v.items, data.Items...)
	} else {
		v.items = data.Items
	}
	v.loaded = true
}

// Select toggles the detail panel for id, fetching the record on first use.
func (v *CatalogView) Select(ctx context.Context, id string) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.detailErr = ""
	if v.selectedID == id {
		v.selectedID = ""
		v.mu.Unlock()
		return
	}
	if !validID(id) {
		v.selectedID = ""
		v.detailErr = MsgDetailLoadFailed
		v.mu.Unlock()
		v.logger.Warn().Str("book_id", id).Msg("Refusing malformed book id")
		return
	}
	v.selectedID = id
	v.mu.Unlock()

	if _, err := v.details.Get(ctx, id); err != nil {
		v.logger.Error().Err(err).Str("book_id", id).Msg("Book detail load failed")
		v.mu.Lock()
		if !v.closed && v.selectedID == id {
			v.detailErr = MsgDetailLoadFailed
		}
		v.mu.Unlock()
	}
}

// CanOrder is a display hint only; the API decides whether an order stands.
func CanOrder(user *models.User, status models.BookStatus) bool {
	return user != nil && status == models.BookAvailable
}

// PlaceOrder submits an order and reports the outcome as the action message.
func (v *CatalogView) PlaceOrder(ctx context.Context, bookID string, orderType models.OrderType) string {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ""
	}
	v.message = ""
	title := v.titleOf(bookID)
	v.mu.Unlock()

	var msg string
	if !orderType.Valid() || !validID(bookID) {
		msg = MsgOrderFailed
	} else if order, err := v.orders.Place(ctx, bookID, orderType); err != nil {
		msg = failureMessage(v.logger, err, MsgOrderFailed)
	} else {
		if title == "" {
			title = order.BookTitle
		}
		msg = orderConfirmation(orderType, title)
	}

	v.mu.Lock()
	if !v.closed {
		v.message = msg
	}
	v.mu.Unlock()
	return msg
}

func (v *CatalogView) titleOf(id string) string {
	if b, ok := v.details.Peek(id); ok {
		return b.Title
	}
	for _, b := range v.items {
		if b.ID == id {
			return b.Title
		}
	}
	return ""
}

func (v *CatalogView) Snapshot() CatalogSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := CatalogSnapshot{
		Filters:    v.filters,
		Page:       v.page,
		Books:      slices.Clone(v.items),
		HasNext:    v.hasNext,
		Loading:    v.loading,
		Error:      v.errMsg,
		Message:    v.message,
		SelectedID: v.selectedID,
		Categories: distinct(v.items, func(b models.BookSummary) string { return b.Category }),
		Authors:    distinct(v.items, func(b models.BookSummary) string { return b.Author }),
	}
	if snap.Error == "" {
		snap.Error = v.detailErr
	}
	if v.selectedID != "" {
		snap.Selected, _ = v.details.Peek(v.selectedID)
	}
	return snap
}

func (v *CatalogView) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

func distinct(items []models.BookSummary, key func(models.BookSummary) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, it := range items {
		k := key(it)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
