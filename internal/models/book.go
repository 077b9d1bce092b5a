package models

import "time"

type BookStatus string

const (
	BookAvailable   BookStatus = "AVAILABLE"
	BookUnavailable BookStatus = "UNAVAILABLE"
	BookArchived    BookStatus = "ARCHIVED"
)

// BookStatuses is the fixed display order used when grouping entries.
var BookStatuses = []BookStatus{BookAvailable, BookUnavailable, BookArchived}

func (s BookStatus) Valid() bool {
	switch s {
	case BookAvailable, BookUnavailable, BookArchived:
		return true
	}
	return false
}

func (s BookStatus) Label() string {
	switch s {
	case BookAvailable:
		return "Available"
	case BookUnavailable:
		return "Unavailable"
	case BookArchived:
		return "Archived"
	}
	return string(s)
}

// BookSummary is the list projection returned by the catalog listing.
type BookSummary struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Category      string     `json:"category"`
	Year          int        `json:"year"`
	PurchasePrice *float64   `json:"purchasePrice"`
	Status        BookStatus `json:"status"`
	CoverURL      *string    `json:"coverUrl"`
}

// Book is the full record returned by the detail, create and update calls.
type Book struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	Category        string     `json:"category"`
	Year            int        `json:"year"`
	Description     *string    `json:"description"`
	CoverURL        *string    `json:"coverUrl"`
	PurchasePrice   *float64   `json:"purchasePrice"`
	RentTwoWeeks    *float64   `json:"rentTwoWeeks"`
	RentOneMonth    *float64   `json:"rentOneMonth"`
	RentThreeMonths *float64   `json:"rentThreeMonths"`
	Status          BookStatus `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt"`
}

func (b *Book) Summary() BookSummary {
	return BookSummary{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Category:      b.Category,
		Year:          b.Year,
		PurchasePrice: b.PurchasePrice,
		Status:        b.Status,
		CoverURL:      b.CoverURL,
	}
}

type BookPage struct {
	Items         []BookSummary `json:"items"`
	Page          int           `json:"page"`
	Size          int           `json:"size"`
	TotalElements int64         `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
	HasNext       bool          `json:"hasNext"`
}

// AdminBookPage is the unfiltered listing used by catalog management; the API
// returns full records there.
type AdminBookPage struct {
	Items []Book `json:"items"`
}

// BookInput carries the editable fields of a catalog entry.
type BookInput struct {
	Title           string  `json:"title" validate:"required"`
	Author          string  `json:"author" validate:"required"`
	Category        string  `json:"category" validate:"required"`
	Year            int     `json:"year" validate:"min=1800,max=2100"`
	Description     *string `json:"description"`
	CoverURL        *string `json:"coverUrl"`
	PurchasePrice   float64 `json:"purchasePrice" validate:"gte=0"`
	RentTwoWeeks    float64 `json:"rentTwoWeeks" validate:"gte=0"`
	RentOneMonth    float64 `json:"rentOneMonth" validate:"gte=0"`
	RentThreeMonths float64 `json:"rentThreeMonths" validate:"gte=0"`
}

type BookStatusRequest struct {
	Status BookStatus `json:"status"`
}

// BookQuery holds catalog listing parameters. Empty fields are omitted from
// the query string.
type BookQuery struct {
	Page     int
	Size     int
	Category string
	Author   string
	Year     string
	Sort     string
	Status   string
}
