package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"library-web/internal/api"
	"library-web/internal/models"

	"github.com/rs/zerolog"
)

const (
	// AdminListSize bounds the unfiltered management listing.
	AdminListSize  = 200
	adminStatusAll = "ALL"
)

type BookService struct {
	client Doer
	logger zerolog.Logger
}

func NewBookService(client Doer, logger zerolog.Logger) *BookService {
	return &BookService{
		client: client,
		logger: logger,
	}
}

func (s *BookService) List(ctx context.Context, q models.BookQuery) (*models.BookPage, error) {
	var page models.BookPage
	if err := s.client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/api/books?" + EncodeBookQuery(q)}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListAll returns every entry regardless of status, up to AdminListSize.
func (s *BookService) ListAll(ctx context.Context) ([]models.Book, error) {
	q := models.BookQuery{Status: adminStatusAll, Size: AdminListSize}
	var page models.AdminBookPage
	if err := s.client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/api/books?" + EncodeBookQuery(q)}, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *BookService) Get(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	if err := s.client.Do(ctx, api.Request{Method: http.MethodGet, Path: bookPath(id)}, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (s *BookService) Create(ctx context.Context, in models.BookInput) (*models.Book, error) {
	var book models.Book
	if err := s.client.Do(ctx, api.Request{Method: http.MethodPost, Path: "/api/books", Body: in}, &book); err != nil {
		return nil, err
	}
	s.logger.Info().Str("book_id", book.ID).Str("title", in.Title).Msg("Book created")
	return &book, nil
}

func (s *BookService) Update(ctx context.Context, id string, in models.BookInput) (*models.Book, error) {
	var book models.Book
	if err := s.client.Do(ctx, api.Request{Method: http.MethodPut, Path: bookPath(id), Body: in}, &book); err != nil {
		return nil, err
	}
	s.logger.Info().Str("book_id", id).Msg("Book updated")
	return &book, nil
}

func (s *BookService) ChangeStatus(ctx context.Context, id string, status models.BookStatus) (*models.Book, error) {
	var book models.Book
	req := api.Request{
		Method: http.MethodPatch,
		Path:   bookPath(id) + "/status",
		Body:   models.BookStatusRequest{Status: status},
	}
	if err := s.client.Do(ctx, req, &book); err != nil {
		return nil, err
	}
	s.logger.Info().Str("book_id", id).Str("status", string(status)).Msg("Book status changed")
	return &book, nil
}

func bookPath(id string) string {
	return "/api/books/" + url.PathEscape(id)
}

// EncodeBookQuery renders q in a fixed parameter order (page, size, category,
// author, year, sort, status). Empty filters are omitted. Values are passed
// through verbatim apart from escaping.
func EncodeBookQuery(q models.BookQuery) string {
	var parts []string
	add := func(key, value string) {
		parts = append(parts, key+"="+url.QueryEscape(value))
	}

	add("page", strconv.Itoa(q.Page))
	if q.Size > 0 {
		add("size", strconv.Itoa(q.Size))
	}
	for _, kv := range [][2]string{
		{"category", q.Category},
		{"author", q.Author},
		{"year", q.Year},
		{"sort", q.Sort},
		{"status", q.Status},
	} {
		if kv[1] != "" {
			add(kv[0], kv[1])
		}
	}
	return strings.Join(parts, "&")
}
