package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"touragency/internal/database"
	"touragency/internal/metrics"
	"touragency/internal/models"
	"touragency/internal/service"
	"touragency/internal/session"

	"github.com/gorilla/mux"
)

const (
	msgRegistered       = "Registration successful! Please log in."
	msgPasswordMismatch = "Passwords do not match"
	msgMissingFields    = "All fields are required"
	msgInvalidEmail     = "Please enter a valid email address"
	msgUserExists       = "A user with this username or email already exists"
	msgLoggedIn         = "You have logged in successfully!"
	msgBadCredentials   = "Invalid username or password"
	msgLoggedOut        = "You have been logged out"
	msgTourNotFound     = "Tour not found"
	msgTourBooked       = "Tour booked successfully!"
	msgTooManyAttempts  = "Too many attempts. Please try again later."
)

func (s *HTTPServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	tours, err := s.svc.Catalog.ListAvailableTours(r.Context(), database.OrderNewest)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index.html", &pageData{Title: "Tour Agency", Tours: tours})
}

func (s *HTTPServer) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register.html", &pageData{Title: "Register"})
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	form := formValues(r, "username", "email")
	page := &pageData{Title: "Register", Form: form}

	if !s.allowAttempt(r, "register") {
		sess.AddFlash(models.FlashError, msgTooManyAttempts)
		s.render(w, r, http.StatusTooManyRequests, "register.html", page)
		return
	}

	_, err := s.svc.Auth.Register(r.Context(), service.RegisterInput{
		Username:        r.PostFormValue("username"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	})
	switch {
	case err == nil:
		sess.AddFlash(models.FlashSuccess, msgRegistered)
		s.redirect(w, r, "/login")
	case errors.Is(err, service.ErrPasswordMismatch):
		sess.AddFlash(models.FlashError, msgPasswordMismatch)
		s.render(w, r, http.StatusOK, "register.html", page)
	case errors.Is(err, service.ErrInvalidEmail):
		sess.AddFlash(models.FlashError, msgInvalidEmail)
		s.render(w, r, http.StatusOK, "register.html", page)
	case errors.Is(err, service.ErrValidation):
		sess.AddFlash(models.FlashError, msgMissingFields)
		s.render(w, r, http.StatusOK, "register.html", page)
	case errors.Is(err, service.ErrConflict):
		sess.AddFlash(models.FlashError, msgUserExists)
		s.render(w, r, http.StatusOK, "register.html", page)
	default:
		s.serverError(w, r, err)
	}
}

func (s *HTTPServer) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", &pageData{Title: "Log in"})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	page := &pageData{Title: "Log in", Form: formValues(r, "username")}

	if !s.allowAttempt(r, "login") {
		sess.AddFlash(models.FlashError, msgTooManyAttempts)
		s.render(w, r, http.StatusTooManyRequests, "login.html", page)
		return
	}

	user, err := s.svc.Auth.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	switch {
	case err == nil:
		sess.SetUser(user.ID, user.Username)
		sess.AddFlash(models.FlashSuccess, msgLoggedIn)
		s.redirect(w, r, "/")
	case errors.Is(err, service.ErrAuth):
		sess.AddFlash(models.FlashError, msgBadCredentials)
		s.render(w, r, http.StatusOK, "login.html", page)
	default:
		s.serverError(w, r, err)
	}
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := s.svc.Auth.Logout(r.Context(), sess.UserID, sess.Username); err != nil {
		s.serverError(w, r, err)
		return
	}
	sess.ClearUser()
	sess.AddFlash(models.FlashInfo, msgLoggedOut)
	s.redirect(w, r, "/")
}

func (s *HTTPServer) handleTours(w http.ResponseWriter, r *http.Request) {
	tours, err := s.svc.Catalog.ListAvailableTours(r.Context(), database.OrderPriceAsc)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "tours.html", &pageData{Title: "All tours", Tours: tours})
}

func (s *HTTPServer) handleTourDetail(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		sess.AddFlash(models.FlashError, msgTourNotFound)
		s.redirect(w, r, "/tours")
		return
	}

	tour, err := s.svc.Catalog.GetTour(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			sess.AddFlash(models.FlashError, msgTourNotFound)
			s.redirect(w, r, "/tours")
			return
		}
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "tour_detail.html", &pageData{Title: tour.Title, Tour: tour})
}

func (s *HTTPServer) handleBook(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		sess.AddFlash(models.FlashError, msgTourNotFound)
		s.redirect(w, r, "/tours")
		return
	}

	if _, err := s.svc.Bookings.CreateBooking(r.Context(), sess.UserID, id); err != nil {
		s.serverError(w, r, err)
		return
	}
	sess.AddFlash(models.FlashSuccess, msgTourBooked)
	s.redirect(w, r, "/my-bookings")
}

func (s *HTTPServer) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	bookings, err := s.svc.Bookings.ListBookingsForUser(r.Context(), sess.UserID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "my_bookings.html", &pageData{Title: "My bookings", Bookings: bookings})
}

func (s *HTTPServer) handleAPITours(w http.ResponseWriter, r *http.Request) {
	tours, err := s.svc.Catalog.ListAvailableTours(r.Context(), database.OrderNewest)
	if err != nil {
		s.requestLogger(r).Error().Err(err).Msg("list tours")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, tours)
}

func (s *HTTPServer) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	stats, err := s.svc.Bookings.ComputeStats(r.Context(), sess.UserID)
	if err != nil {
		s.requestLogger(r).Error().Err(err).Msg("compute stats")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// allowAttempt applies the per-address throttle on credential forms. Limiter
// failures let the attempt through.
func (s *HTTPServer) allowAttempt(r *http.Request, scope string) bool {
	if s.attempts == nil || s.cfg.Throttle.MaxAttempts <= 0 {
		return true
	}
	window := time.Duration(s.cfg.Throttle.WindowSeconds) * time.Second
	allowed, err := s.attempts.Allow(r.Context(), scope+":"+clientIP(r), s.cfg.Throttle.MaxAttempts, window)
	if err != nil {
		s.requestLogger(r).Warn().Err(err).Str("scope", scope).Msg("attempt limiter failed")
		return true
	}
	if !allowed {
		metrics.IncThrottled(scope)
		s.requestLogger(r).Warn().Str("scope", scope).Str("ip", clientIP(r)).Msg("attempt throttled")
	}
	return allowed
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// formValues echoes safe fields back into a re-rendered form.
func formValues(r *http.Request, keys ...string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = strings.TrimSpace(r.PostFormValue(k))
	}
	return out
}
