// Package httpapi serves the public site, the CMS admin panel, and the
// auth endpoints that guard it.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bizcard/internal/auth"
	"bizcard/internal/config"
	"bizcard/internal/models"
	"bizcard/internal/ratelimit"
	"bizcard/internal/storage"
	"bizcard/internal/store"

	"github.com/gorilla/mux"
)

const (
	sessionCookieName = "access_token"
	csrfCookieName    = "csrftoken"
	csrfHeaderName    = "X-CSRF-Token"
	csrfFieldName     = "csrf_token"
)

type Handler struct {
	store    store.Store
	limiter  ratelimit.Limiter
	files    *storage.FileStore
	cfg      config.Config
	secret   []byte
	tokenTTL time.Duration
}

func NewHandler(st store.Store, limiter ratelimit.Limiter, files *storage.FileStore, cfg config.Config) *Handler {
	return &Handler{
		store:    st,
		limiter:  limiter,
		files:    files,
		cfg:      cfg,
		secret:   []byte(cfg.JWTSecret),
		tokenTTL: time.Duration(cfg.JWTExpiresMinutes) * time.Minute,
	}
}

func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/login", h.handleLoginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/register", h.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.handleLogout).Methods(http.MethodPost)

	cms := r.PathPrefix("/cms").Subrouter()
	cms.Use(h.sessionMiddleware)
	cms.HandleFunc("", h.handleDashboard).Methods(http.MethodGet)
	cms.HandleFunc("/texts", h.handleTextsPage).Methods(http.MethodGet)
	cms.HandleFunc("/texts", h.handleTextsSave).Methods(http.MethodPost)
	cms.HandleFunc("/seo", h.handleSEOPage).Methods(http.MethodGet)
	cms.HandleFunc("/seo", h.handleSEOSave).Methods(http.MethodPost)
	cms.HandleFunc("/images", h.handleImagesPage).Methods(http.MethodGet)
	cms.HandleFunc("/images", h.handleImageUpload).Methods(http.MethodPost)
	cms.HandleFunc("/images/{id}/delete", h.handleImageDelete).Methods(http.MethodPost)
	cms.Handle("/users", h.requireRole(models.RoleAdmin, http.HandlerFunc(h.handleUsersPage))).Methods(http.MethodGet)

	api := r.PathPrefix("/api/cms").Subrouter()
	api.Use(h.sessionMiddleware)
	api.HandleFunc("/stats", h.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/stats/stream", h.handleStatsStream).Methods(http.MethodGet)
	api.HandleFunc("/texts", h.handleTextsList).Methods(http.MethodGet)

	if h.files != nil {
		r.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.files.Dir()))))
	}

	r.HandleFunc("/{lang:[a-z]{2}}", h.handleSitePage).Methods(http.MethodGet)
	r.HandleFunc("/{lang:[a-z]{2}}/{page:[a-z]+}", h.handleSitePage).Methods(http.MethodGet)
	r.HandleFunc("/", h.handleSitePage).Methods(http.MethodGet)

	return h.csrfMiddleware(r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// readCredentials accepts either a JSON body or a classic form post so the
// same endpoints serve both the login page and API callers.
func readCredentials(r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			return credentialsRequest{}, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return credentialsRequest{}, err
		}
		req.Email = r.PostFormValue("email")
		req.Password = r.PostFormValue("password")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	return req, nil
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := readCredentials(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	key := "login:" + clientIP(r)
	allowed, err := h.limiter.Check(r.Context(), key)
	if err != nil {
		// A broken limiter backend must not lock everyone out.
		log.Printf("rate limiter check error: %v", err)
		allowed = true
	}
	if !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(h.cfg.LoginWindowSeconds))
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts, try later")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.recordFailure(r, key)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		h.recordFailure(r, key)
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	h.finishLogin(w, r, user)
}

func (h *Handler) recordFailure(r *http.Request, key string) {
	if err := h.limiter.Record(r.Context(), key); err != nil {
		log.Printf("rate limiter record error: %v", err)
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := readCredentials(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}
	if msg := validateEmail(req.Email); msg != "" {
		writeError(w, http.StatusBadRequest, "invalid_email", msg)
		return
	}
	if msg := validatePassword(req.Password); msg != "" {
		writeError(w, http.StatusBadRequest, "invalid_password", msg)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	// The store decides the role: first account ever becomes the admin.
	user, err := h.store.RegisterUser(r.Context(), req.Email, hash)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email_taken", "email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	h.finishLogin(w, r, user)
}

// finishLogin issues the session token and both cookies, then either
// redirects the browser to the panel or answers JSON.
func (h *Handler) finishLogin(w http.ResponseWriter, r *http.Request, user models.User) {
	token, err := auth.IssueToken(user.UserID, user.Role, h.secret, h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	csrfToken, err := newCSRFToken()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	h.setSessionCookies(w, token, csrfToken)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{
			"user": map[string]string{
				"user_id": user.UserID,
				"email":   user.Email,
				"role":    user.Role,
			},
		})
		return
	}
	http.Redirect(w, r, "/cms", http.StatusFound)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookies(w)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handler) setSessionCookies(w http.ResponseWriter, token, csrfToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cfg.IsProduction(),
	})
	// Readable on purpose: the client echoes it back on unsafe methods.
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    csrfToken,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cfg.IsProduction(),
	})
}

func (h *Handler) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{sessionCookieName, csrfCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: name == sessionCookieName,
			SameSite: http.SameSiteLaxMode,
			Secure:   h.cfg.IsProduction(),
		})
	}
}

func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: responseError{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
