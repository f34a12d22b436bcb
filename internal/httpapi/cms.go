package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"bizcard/internal/models"
	"bizcard/internal/storage"
	"bizcard/internal/store"

	"github.com/gorilla/mux"
)

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	stats, err := h.store.DashboardStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	h.render(w, "dashboard.html", map[string]any{
		"Identity": identity,
		"Stats":    stats,
		"CSRF":     csrfValue(r),
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.DashboardStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleTextsPage(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	page := r.URL.Query().Get("page")
	lang := r.URL.Query().Get("lang")
	texts, err := h.store.ListTexts(r.Context(), page, lang)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	h.render(w, "texts.html", map[string]any{
		"Identity":  identity,
		"Texts":     texts,
		"Page":      page,
		"Lang":      lang,
		"Languages": h.cfg.SupportedLanguages,
		"CSRF":      csrfValue(r),
	})
}

func (h *Handler) handleTextsList(w http.ResponseWriter, r *http.Request) {
	texts, err := h.store.ListTexts(r.Context(), r.URL.Query().Get("page"), r.URL.Query().Get("lang"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, texts)
}

func (h *Handler) handleTextsSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed form")
		return
	}
	text := models.Text{
		Page:  r.PostFormValue("page"),
		Key:   r.PostFormValue("key"),
		Lang:  r.PostFormValue("lang"),
		Value: r.PostFormValue("value"),
	}
	if text.Page == "" || text.Key == "" || text.Lang == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "page, key, and lang are required")
		return
	}
	if !h.languageSupported(text.Lang) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unsupported language")
		return
	}
	if err := h.store.UpsertText(r.Context(), text); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, text)
		return
	}
	http.Redirect(w, r, "/cms/texts?page="+text.Page+"&lang="+text.Lang, http.StatusFound)
}

func (h *Handler) handleSEOPage(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	page := r.URL.Query().Get("page")
	lang := r.URL.Query().Get("lang")
	if page == "" {
		page = "home"
	}
	if lang == "" {
		lang = h.cfg.DefaultLanguage
	}
	entry, err := h.store.GetSEO(r.Context(), page, lang)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	h.render(w, "seo.html", map[string]any{
		"Identity":  identity,
		"Entry":     entry,
		"Languages": h.cfg.SupportedLanguages,
		"CSRF":      csrfValue(r),
	})
}

func (h *Handler) handleSEOSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed form")
		return
	}
	entry := models.SEOEntry{
		Page:        r.PostFormValue("page"),
		Lang:        r.PostFormValue("lang"),
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Keywords:    r.PostFormValue("keywords"),
	}
	if entry.Page == "" || entry.Lang == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "page and lang are required")
		return
	}
	if !h.languageSupported(entry.Lang) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unsupported language")
		return
	}
	if err := h.store.UpsertSEO(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, entry)
		return
	}
	http.Redirect(w, r, "/cms/seo?page="+entry.Page+"&lang="+entry.Lang, http.StatusFound)
}

func (h *Handler) handleImagesPage(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	images, err := h.store.ListImages(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	h.render(w, "images.html", map[string]any{
		"Identity": identity,
		"Images":   images,
		"CSRF":     csrfValue(r),
	})
}

func (h *Handler) handleImageUpload(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		writeError(w, http.StatusServiceUnavailable, "uploads_disabled", "file storage is not configured")
		return
	}
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed upload")
		return
	}
	imageType := r.PostFormValue("type")
	if imageType == "" {
		imageType = "slider"
	}
	sortOrder, _ := strconv.Atoi(r.PostFormValue("sort_order"))

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "file field is required")
		return
	}
	defer file.Close()

	name, err := h.files.Save(file)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			writeError(w, http.StatusBadRequest, "unsupported_type", "only image uploads are accepted")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	image, err := h.store.InsertImage(r.Context(), models.Image{
		Type:      imageType,
		Path:      name,
		SortOrder: sortOrder,
	})
	if err != nil {
		_ = h.files.Remove(name)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, image)
		return
	}
	http.Redirect(w, r, "/cms/images", http.StatusFound)
}

func (h *Handler) handleImageDelete(w http.ResponseWriter, r *http.Request) {
	imageID := mux.Vars(r)["id"]
	image, err := h.store.DeleteImage(r.Context(), imageID)
	if err != nil {
		if errors.Is(err, store.ErrImageNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "image not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if h.files != nil {
		_ = h.files.Remove(image.Path)
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		return
	}
	http.Redirect(w, r, "/cms/images", http.StatusFound)
}

func (h *Handler) handleUsersPage(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	h.render(w, "users.html", map[string]any{
		"Identity": identity,
		"Users":    users,
		"CSRF":     csrfValue(r),
	})
}

func (h *Handler) languageSupported(lang string) bool {
	for _, supported := range h.cfg.SupportedLanguages {
		if supported == lang {
			return true
		}
	}
	return false
}

// csrfValue exposes the current CSRF cookie to templates so forms can
// embed the hidden echo field.
func csrfValue(r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
