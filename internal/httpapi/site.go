package httpapi

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const langCookieName = "lang"

var sitePages = map[string]bool{
	"home":     true,
	"about":    true,
	"contacts": true,
}

func (h *Handler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", map[string]any{
		"Lang": h.negotiateLanguage(r),
	})
}

// handleSitePage renders the public pages. The language comes from the URL
// prefix when present, then the lang cookie, then the configured default.
// Visiting a prefixed URL pins the choice in the cookie.
func (h *Handler) handleSitePage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	lang := vars["lang"]
	fromURL := lang != "" && h.languageSupported(lang)
	if !fromURL {
		lang = h.negotiateLanguage(r)
	}

	page := vars["page"]
	if page == "" {
		page = "home"
	}
	if !sitePages[page] {
		http.NotFound(w, r)
		return
	}

	if fromURL {
		http.SetCookie(w, &http.Cookie{
			Name:     langCookieName,
			Value:    lang,
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
		})
	}

	texts, err := h.store.ListTexts(r.Context(), page, lang)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	content := make(map[string]string, len(texts))
	for _, text := range texts {
		content[text.Key] = text.Value
	}

	seo, err := h.store.GetSEO(r.Context(), page, lang)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	images, err := h.store.ListImages(r.Context(), "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	h.render(w, "site.html", map[string]any{
		"Page":      page,
		"Lang":      lang,
		"Languages": h.cfg.SupportedLanguages,
		"SEO":       seo,
		"Content":   content,
		"Images":    images,
	})
}

// negotiateLanguage resolves the language for requests without a URL
// prefix: cookie first, then the configured default.
func (h *Handler) negotiateLanguage(r *http.Request) string {
	if cookie, err := r.Cookie(langCookieName); err == nil && h.languageSupported(cookie.Value) {
		return cookie.Value
	}
	return h.cfg.DefaultLanguage
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("template %s: %v", name, err)
	}
}
