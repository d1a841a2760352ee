package ui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestRenderPages tests that both pages render with the language applied
func TestRenderPages(t *testing.T) {
	for _, name := range []string{Overlay, Control} {
		body, err := Render(name, PageData{Language: "en"})
		if err != nil {
			t.Fatalf("Render %s failed: %v", name, err)
		}
		if !strings.Contains(string(body), `<html lang="en">`) {
			t.Errorf("Expected lang attribute in %s", name)
		}
		if !strings.Contains(string(body), "/ws") {
			t.Errorf("Expected %s to open the WebSocket", name)
		}
	}
}

// TestRenderUnknownPage tests the error path
func TestRenderUnknownPage(t *testing.T) {
	if _, err := Render("missing.html", PageData{}); err == nil {
		t.Error("Expected error for unknown page")
	}
}

// TestHandlerDisablesCaching tests the response headers
func TestHandlerDisablesCaching(t *testing.T) {
	h := Handler(Overlay, func() PageData { return PageData{Language: "ko"} })
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/overlay", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache, no-store, must-revalidate" {
		t.Errorf("Expected no-cache header, got %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Expected html content type, got %q", got)
	}
}
