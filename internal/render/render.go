// Package render turns view snapshots into HTML pages.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"library-web/internal/models"
	"library-web/internal/views"

	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var files embed.FS

var pageNames = []string{
	"waiting",
	"error",
	"login",
	"catalog",
	"orders",
	"admin_books",
	"admin_orders",
	"admin_reminders",
}

// Page is the data every template receives. Data holds the page-specific
// snapshot.
type Page struct {
	Title string
	User  *models.User
	CSRF  string
	Path  string
	Data  any
}

type Renderer struct {
	pages  map[string]*template.Template
	logger zerolog.Logger
}

func New(logger zerolog.Logger) (*Renderer, error) {
	r := &Renderer{
		pages:  make(map[string]*template.Template, len(pageNames)),
		logger: logger,
	}
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// HTML renders the named page into a buffer first so that a template
// failure never leaves a half-written response.
func (r *Renderer) HTML(w http.ResponseWriter, status int, name string, page Page) {
	tmpl, ok := r.pages[name]
	if !ok {
		r.logger.Error().Str("template", name).Msg("Unknown template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		r.logger.Error().Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

var funcs = template.FuncMap{
	"price":       price,
	"money":       money,
	"date":        date,
	"dateTime":    dateTime,
	"optDate":     optDate,
	"deref":       deref,
	"canOrder":    views.CanOrder,
	"rentalTypes": func() []models.OrderType { return models.RentalTypes },
	"statuses":    func() []models.BookStatus { return models.BookStatuses },
	"purchase":    func() models.OrderType { return models.OrderPurchase },
	"sorts":       func() []string { return views.CatalogSorts },
}

const (
	dateLayout     = "02 Jan 2006"
	dateTimeLayout = "02 Jan 2006 15:04"
	missing        = "—"
)

func price(p *float64) string {
	if p == nil || *p == 0 {
		return missing
	}
	return money(*p)
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func date(t time.Time) string {
	if t.IsZero() {
		return missing
	}
	return t.Local().Format(dateLayout)
}

func dateTime(t time.Time) string {
	if t.IsZero() {
		return missing
	}
	return t.Local().Format(dateTimeLayout)
}

func optDate(t *time.Time) string {
	if t == nil {
		return missing
	}
	return date(*t)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
