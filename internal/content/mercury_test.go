package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMercuryClient_Extract(t *testing.T) {
	page := "https://example.com/a?b=1&c=2"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != page {
			t.Errorf("url param = %q, want %q", got, page)
		}
		if got := r.Header.Get("x-api-key"); got != "secret" {
			t.Errorf("x-api-key = %q", got)
		}
		w.Write([]byte(`{
			"title": "Big Game",
			"content": "<div><p>The home team won.</p><p>Fans celebrated.</p></div>",
			"excerpt": "The home team won.",
			"author": null,
			"domain": "example.com"
		}`))
	}))
	defer srv.Close()

	m := NewMercuryClient(srv.URL+"/parser", "secret", 5*time.Second)
	x, err := m.Extract(context.Background(), page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value(x.Title) != "Big Game" || value(x.Domain) != "example.com" {
		t.Errorf("unexpected fields: %+v", x)
	}
	if x.Author != nil {
		t.Errorf("null author should stay absent, got %q", *x.Author)
	}
	if got := value(x.Content); got != "The home team won. Fans celebrated." {
		t.Errorf("content = %q", got)
	}
}

func TestMercuryClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr func(error) bool
	}{
		{"non-200", http.StatusBadGateway, `{}`, func(err error) bool {
			var h *HTTPError
			return errors.As(err, &h) && h.Status == http.StatusBadGateway
		}},
		{"malformed", http.StatusOK, `{"title": `, func(err error) bool { return err != nil }},
		{"error flag", http.StatusOK, `{"error": true, "messages": "could not parse"}`, func(err error) bool { return err != nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewMercuryClient(srv.URL, "k", time.Second).Extract(context.Background(), "https://example.com")
			if !tt.wantErr(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
