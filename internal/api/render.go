package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"touragency/internal/models"
	"touragency/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"index.html",
	"register.html",
	"login.html",
	"tours.html",
	"tour_detail.html",
	"my_bookings.html",
}

// pageSet holds one template tree per page, each cloned from the layout.
type pageSet struct {
	pages map[string]*template.Template
}

type pageData struct {
	Title    string
	User     *session.Data
	Flashes  []session.Flash
	Tours    []*models.Tour
	Tour     *models.Tour
	Bookings []*models.BookingView
	Form     map[string]string
}

var templateFuncs = template.FuncMap{
	"price": formatPrice,
	"date": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04")
	},
}

func loadPages() (*pageSet, error) {
	layout, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, err
	}

	set := &pageSet{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		set.pages[name] = t
	}
	return set, nil
}

// render drains the flash queue into the page, saves the session and writes
// the page. Nothing is written when execution fails.
func (s *HTTPServer) render(w http.ResponseWriter, r *http.Request, status int, name string, data *pageData) {
	t, ok := s.pages.pages[name]
	if !ok {
		s.serverError(w, r, fmt.Errorf("unknown page %q", name))
		return
	}

	sess := session.FromContext(r.Context())
	data.User = sess
	data.Flashes = sess.DrainFlashes()

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.serverError(w, r, fmt.Errorf("render %s: %w", name, err))
		return
	}

	if err := s.saveSession(w, r); err != nil {
		s.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// formatPrice renders 45000 as "45 000".
func formatPrice(v float64) string {
	raw := strconv.FormatFloat(v, 'f', 0, 64)
	neg := false
	if raw[0] == '-' {
		neg = true
		raw = raw[1:]
	}

	var out []byte
	for i := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, raw[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
