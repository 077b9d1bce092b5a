package views

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"library-web/internal/models"

	"github.com/rs/zerolog"
)

const defaultFormYear = "2024"

type BookManager interface {
	ListAll(ctx context.Context) ([]models.Book, error)
	Create(ctx context.Context, in models.BookInput) (*models.Book, error)
	Update(ctx context.Context, id string, in models.BookInput) (*models.Book, error)
	ChangeStatus(ctx context.Context, id string, status models.BookStatus) (*models.Book, error)
}

// BookForm holds the editable fields exactly as typed.
type BookForm struct {
	Title           string
	Author          string
	Category        string
	Year            string
	Description     string
	CoverURL        string
	PurchasePrice   string
	RentTwoWeeks    string
	RentOneMonth    string
	RentThreeMonths string
}

func NewBookForm() BookForm {
	return BookForm{Year: defaultFormYear}
}

func BookFormFrom(b models.Book) BookForm {
	return BookForm{
		Title:           b.Title,
		Author:          b.Author,
		Category:        b.Category,
		Year:            strconv.Itoa(b.Year),
		Description:     deref(b.Description),
		CoverURL:        deref(b.CoverURL),
		PurchasePrice:   formatPrice(b.PurchasePrice),
		RentTwoWeeks:    formatPrice(b.RentTwoWeeks),
		RentOneMonth:    formatPrice(b.RentOneMonth),
		RentThreeMonths: formatPrice(b.RentThreeMonths),
	}
}

// FormError is a client-side rejection of the form; no request was sent.
type FormError struct {
	Message string
}

func (e *FormError) Error() string {
	return e.Message
}

// Payload converts the form into the API body. Strings are trimmed, empty
// prices become zero and empty optional text becomes null.
func (f BookForm) Payload() (models.BookInput, error) {
	in := models.BookInput{
		Title:       strings.TrimSpace(f.Title),
		Author:      strings.TrimSpace(f.Author),
		Category:    strings.TrimSpace(f.Category),
		Description: optional(f.Description),
		CoverURL:    optional(f.CoverURL),
	}

	year, err := strconv.Atoi(strings.TrimSpace(f.Year))
	if err != nil {
		return models.BookInput{}, &FormError{Message: "Year must be a whole number"}
	}
	in.Year = year

	prices := []struct {
		field string
		raw   string
		dst   *float64
	}{
		{"purchasePrice", f.PurchasePrice, &in.PurchasePrice},
		{"rentTwoWeeks", f.RentTwoWeeks, &in.RentTwoWeeks},
		{"rentOneMonth", f.RentOneMonth, &in.RentOneMonth},
		{"rentThreeMonths", f.RentThreeMonths, &in.RentThreeMonths},
	}
	for _, p := range prices {
		raw := strings.TrimSpace(p.raw)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.BookInput{}, &FormError{Message: fieldLabel(p.field) + " must be a number"}
		}
		*p.dst = v
	}

	if msg, invalid := firstViolation(validate.Struct(in)); invalid {
		return models.BookInput{}, &FormError{Message: msg}
	}
	return in, nil
}

type BookGroup struct {
	Status models.BookStatus
	Books  []models.Book
}

func (g BookGroup) Count() int {
	return len(g.Books)
}

type AdminBooksSnapshot struct {
	Books      []models.Book
	Groups     []BookGroup
	Loaded     bool
	Loading    bool
	Error      string
	Message    string
	EditingID  string
	Form       BookForm
	Submitting bool
}

// AdminBooksView manages the full catalog. Every successful write is
// followed by a full reload.
type AdminBooksView struct {
	books  BookManager
	logger zerolog.Logger

	mu         sync.Mutex
	items      []models.Book
	loaded     bool
	loading    bool
	errMsg     string
	message    string
	editingID  string
	form       BookForm
	submitting bool
	generation uint64
	closed     bool
}

func NewAdminBooksView(books BookManager, logger zerolog.Logger) *AdminBooksView {
	return &AdminBooksView{
		books:  books,
		logger: logger.With().Str("view", "admin_books").Logger(),
		form:   NewBookForm(),
	}
}

func (v *AdminBooksView) Open(ctx context.Context) {
	v.mu.Lock()
	loaded := v.loaded
	v.mu.Unlock()
	if !loaded {
		v.Reload(ctx)
	}
}

func (v *AdminBooksView) Reload(ctx context.Context) {
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

	items, err := v.books.ListAll(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.generation {
		return
	}
	v.loading = false
	if err != nil {
		v.logger.Error().Err(err).Msg("Book list load failed")
		v.errMsg = MsgBooksLoadFailed
		return
	}
	v.items = items
	v.loaded = true
}

func (v *AdminBooksView) StartCreate() {
	v.mu.Lock()
	v.editingID = ""
	v.form = NewBookForm()
	v.message = ""
	v.mu.Unlock()
}

func (v *AdminBooksView) StartEdit(b models.Book) {
	v.mu.Lock()
	v.editingID = b.ID
	v.form = BookFormFrom(b)
	v.message = ""
	v.mu.Unlock()
}

// Find looks a book up among the loaded entries.
func (v *AdminBooksView) Find(id string) (models.Book, bool) {
	if !validID(id) {
		return models.Book{}, false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, b := range v.items {
		if b.ID == id {
			return b, true
		}
	}
	return models.Book{}, false
}

// Submit updates the book with editingID, or creates one when it is empty.
// On failure the form keeps what was typed.
func (v *AdminBooksView) Submit(ctx context.Context, editingID string, form BookForm) bool {
	v.mu.Lock()
	if v.closed || v.submitting {
		v.mu.Unlock()
		return false
	}
	v.submitting = true
	v.editingID = editingID
	v.form = form
	v.message = ""
	v.mu.Unlock()

	if editingID != "" && !validID(editingID) {
		v.endSubmit(MsgUnknownBook, false)
		return false
	}
	in, err := form.Payload()
	if err != nil {
		v.endSubmit(err.Error(), false)
		return false
	}

	success := MsgBookCreated
	if editingID != "" {
		_, err = v.books.Update(ctx, editingID, in)
		success = MsgBookUpdated
	} else {
		_, err = v.books.Create(ctx, in)
	}
	if err != nil {
		v.endSubmit(failureMessage(v.logger, err, MsgBookSaveFailed), false)
		return false
	}

	v.Reload(ctx)
	v.endSubmit(success, true)
	return true
}

func (v *AdminBooksView) endSubmit(msg string, reset bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.submitting = false
	if v.closed {
		return
	}
	v.message = msg
	if reset {
		v.editingID = ""
		v.form = NewBookForm()
	}
}

// ChangeStatus is independent of the form.
func (v *AdminBooksView) ChangeStatus(ctx context.Context, id string, status models.BookStatus) bool {
	if !status.Valid() {
		v.setMessage(fmt.Sprintf("Unknown status %q", status))
		return false
	}
	if !validID(id) {
		v.setMessage(MsgUnknownBook)
		return false
	}

	title := id
	if b, ok := v.Find(id); ok {
		title = b.Title
	}
	if _, err := v.books.ChangeStatus(ctx, id, status); err != nil {
		v.setMessage(failureMessage(v.logger, err, MsgStatusChangeFailed))
		return false
	}
	v.setMessage(statusChanged(title))
	v.Reload(ctx)
	return true
}

func (v *AdminBooksView) setMessage(msg string) {
	v.mu.Lock()
	if !v.closed {
		v.message = msg
	}
	v.mu.Unlock()
}

// Groups splits the entries by status in the fixed status order. Empty
// groups are kept.
func (v *AdminBooksView) Groups() []BookGroup {
	v.mu.Lock()
	defer v.mu.Unlock()
	return groupByStatus(v.items)
}

func groupByStatus(items []models.Book) []BookGroup {
	groups := make([]BookGroup, 0, len(models.BookStatuses))
	for _, status := range models.BookStatuses {
		g := BookGroup{Status: status, Books: []models.Book{}}
		for _, b := range items {
			if b.Status == status {
				g.Books = append(g.Books, b)
			}
		}
		groups = append(groups, g)
	}
	return groups
}

func (v *AdminBooksView) Snapshot() AdminBooksSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return AdminBooksSnapshot{
		Books:      slices.Clone(v.items),
		Groups:     groupByStatus(v.items),
		Loaded:     v.loaded,
		Loading:    v.loading,
		Error:      v.errMsg,
		Message:    v.message,
		EditingID:  v.editingID,
		Form:       v.form,
		Submitting: v.submitting,
	}
}

func (v *AdminBooksView) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
