package views

import (
	"context"
	"sync"

	"library-web/internal/models"
)

const (
	duneID     = "6f1c2d3e-4a5b-4c6d-8e7f-901a2b3c4d5e"
	hyperionID = "0d9e8f7a-6b5c-4d3e-9f2a-1b0c9d8e7f6a"
)

type bookReaderMock struct {
	mu      sync.Mutex
	queries []models.BookQuery
	gets    map[string]int
	listFn  func(q models.BookQuery) (*models.BookPage, error)
	getFn   func(id string) (*models.Book, error)
}

func (m *bookReaderMock) List(ctx context.Context, q models.BookQuery) (*models.BookPage, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()
	return m.listFn(q)
}

func (m *bookReaderMock) Get(ctx context.Context, id string) (*models.Book, error) {
	m.mu.Lock()
	if m.gets == nil {
		m.gets = make(map[string]int)
	}
	m.gets[id]++
	m.mu.Unlock()
	return m.getFn(id)
}

func (m *bookReaderMock) getCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets[id]
}

func (m *bookReaderMock) queryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

type orderPlacerMock struct {
	calls   []models.CreateOrderRequest
	placeFn func(bookID string, t models.OrderType) (*models.Order, error)
}

func (m *orderPlacerMock) Place(ctx context.Context, bookID string, t models.OrderType) (*models.Order, error) {
	m.calls = append(m.calls, models.CreateOrderRequest{BookID: bookID, Type: t})
	return m.placeFn(bookID, t)
}

type bookManagerMock struct {
	calls    []string
	books    []models.Book
	listErr  error
	writeErr error
	inputs   []models.BookInput
}

func (m *bookManagerMock) ListAll(ctx context.Context) ([]models.Book, error) {
	m.calls = append(m.calls, "list")
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.books, nil
}

func (m *bookManagerMock) Create(ctx context.Context, in models.BookInput) (*models.Book, error) {
	m.calls = append(m.calls, "create")
	m.inputs = append(m.inputs, in)
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	return &models.Book{ID: "new", Title: in.Title}, nil
}

func (m *bookManagerMock) Update(ctx context.Context, id string, in models.BookInput) (*models.Book, error) {
	m.calls = append(m.calls, "update:"+id)
	m.inputs = append(m.inputs, in)
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	return &models.Book{ID: id, Title: in.Title}, nil
}

func (m *bookManagerMock) ChangeStatus(ctx context.Context, id string, status models.BookStatus) (*models.Book, error) {
	m.calls = append(m.calls, "status:"+id+":"+string(status))
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	return &models.Book{ID: id, Status: status}, nil
}

type authenticatorMock struct {
	identifiers []string
	registers   []models.RegisterRequest
	err         error
}

func (m *authenticatorMock) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	m.identifiers = append(m.identifiers, identifier)
	if m.err != nil {
		return nil, m.err
	}
	return &models.User{ID: "1", Username: identifier, Role: models.RoleUser}, nil
}

func (m *authenticatorMock) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	m.registers = append(m.registers, req)
	if m.err != nil {
		return nil, m.err
	}
	return &models.User{ID: "2", Username: req.Username, Email: req.Email, Role: models.RoleUser}, nil
}

func summaries(ids ...string) []models.BookSummary {
	out := make([]models.BookSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.BookSummary{ID: id, Title: "Book " + id, Status: models.BookAvailable})
	}
	return out
}
