package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bizcard/internal/models"
)

func siteStore() *fakeStore {
	return &fakeStore{
		listTextsFn: func(ctx context.Context, page, lang string) ([]models.Text, error) {
			return []models.Text{
				{Page: page, Key: "title", Lang: lang, Value: "title-" + lang},
			}, nil
		},
		getSEOFn: func(ctx context.Context, page, lang string) (models.SEOEntry, error) {
			return models.SEOEntry{Page: page, Lang: lang, Title: "seo-" + page + "-" + lang}, nil
		},
	}
}

func TestSiteLanguageFromURL(t *testing.T) {
	handler := newTestHandler(siteStore())

	req := httptest.NewRequest(http.MethodGet, "/ua/about", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "title-ua") {
		t.Fatal("expected Ukrainian content for /ua/about")
	}
	langCookie := cookieByName(resp, langCookieName)
	if langCookie == nil || langCookie.Value != "ua" {
		t.Fatal("visiting a prefixed URL should pin the language cookie")
	}
}

func TestSiteLanguageFromCookie(t *testing.T) {
	handler := newTestHandler(siteStore())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: langCookieName, Value: "ru"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "title-ru") {
		t.Fatal("expected language from cookie on unprefixed URL")
	}
}

func TestSiteUnsupportedLanguageFallsBack(t *testing.T) {
	handler := newTestHandler(siteStore())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: langCookieName, Value: "xx"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "title-en") {
		t.Fatal("unsupported cookie language should fall back to the default")
	}
}

func TestSiteUnknownPage404(t *testing.T) {
	handler := newTestHandler(siteStore())

	req := httptest.NewRequest(http.MethodGet, "/en/admin", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestSitePagesArePublic(t *testing.T) {
	handler := newTestHandler(siteStore())

	for _, path := range []string{"/", "/en", "/en/about", "/ru/contacts", "/health", "/login"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200 without a session, got %d", path, resp.Code)
		}
	}
}
