// Package session keeps the signed client-side session: the logged-in user
// and a one-shot queue of flash notices.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"touragency/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Flash is a notice shown once on the next rendered page.
type Flash struct {
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

// Data is the decoded session. The zero value is an anonymous, empty session.
type Data struct {
	UserID   int64
	Username string
	flashes  []Flash
	dirty    bool
}

func (d *Data) LoggedIn() bool {
	return d != nil && d.UserID != 0
}

func (d *Data) SetUser(id int64, username string) {
	d.UserID = id
	d.Username = username
	d.dirty = true
}

// ClearUser logs the session out but keeps queued flashes.
func (d *Data) ClearUser() {
	d.UserID = 0
	d.Username = ""
	d.dirty = true
}

func (d *Data) AddFlash(severity, text string) {
	d.flashes = append(d.flashes, Flash{Severity: severity, Text: text})
	d.dirty = true
}

// DrainFlashes returns the queued flashes in order and empties the queue.
func (d *Data) DrainFlashes() []Flash {
	if len(d.flashes) == 0 {
		return nil
	}
	out := d.flashes
	d.flashes = nil
	d.dirty = true
	return out
}

// Dirty reports whether the session changed since it was loaded.
func (d *Data) Dirty() bool {
	return d.dirty
}

func (d *Data) empty() bool {
	return d.UserID == 0 && len(d.flashes) == 0
}

type claims struct {
	UserID   int64   `json:"uid,omitempty"`
	Username string  `json:"usr,omitempty"`
	Flashes  []Flash `json:"fl,omitempty"`
	jwt.RegisteredClaims
}

// Manager encodes sessions as HS256 tokens in a single cookie.
type Manager struct {
	secret     []byte
	cookieName string
	maxAge     time.Duration
	secure     bool
	now        func() time.Time
}

func NewManager(cfg config.SessionConfig) *Manager {
	maxAge := time.Duration(cfg.MaxAgeDays) * 24 * time.Hour
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	name := cfg.CookieName
	if name == "" {
		name = "tour_session"
	}
	return &Manager{
		secret:     []byte(cfg.Secret),
		cookieName: name,
		maxAge:     maxAge,
		secure:     cfg.Secure,
		now:        time.Now,
	}
}

// Load decodes the session cookie. A missing, tampered or expired cookie
// yields an empty session, never an error.
func (m *Manager) Load(r *http.Request) *Data {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return &Data{}
	}

	c, err := m.decode(cookie.Value)
	if err != nil {
		return &Data{}
	}
	return &Data{UserID: c.UserID, Username: c.Username, flashes: c.Flashes}
}

// Save writes the session cookie, or removes it when the session is empty.
func (m *Manager) Save(w http.ResponseWriter, d *Data) error {
	if d == nil || d.empty() {
		m.Clear(w)
		return nil
	}

	token, err := m.encode(d)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.maxAge / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	d.dirty = false
	return nil
}

func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) encode(d *Data) (string, error) {
	now := m.now()
	c := &claims{
		UserID:   d.UserID,
		Username: d.Username,
		Flashes:  d.flashes,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

func (m *Manager) decode(raw string) (*claims, error) {
	token, err := jwt.ParseWithClaims(raw, &claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return c, nil
}

type ctxKey struct{}

func NewContext(ctx context.Context, d *Data) context.Context {
	return context.WithValue(ctx, ctxKey{}, d)
}

// FromContext returns the request's session, or an empty one when none was attached.
func FromContext(ctx context.Context) *Data {
	if d, ok := ctx.Value(ctxKey{}).(*Data); ok && d != nil {
		return d
	}
	return &Data{}
}
