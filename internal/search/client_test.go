package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, items []searchItem, status int) (*Client, *string) {
	t.Helper()

	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{Items: items})
	}))
	t.Cleanup(server.Close)

	client := NewClient("test-key", "test-cx")
	client.httpClient = server.Client()
	client.baseURL = server.URL
	return client, &gotQuery
}

func TestFindSheetLinkFiltering(t *testing.T) {
	items := []searchItem{
		{Title: "video lesson", Link: "https://www.cifraclub.com.br/oasis/wonderwall/videoaulas/"},
		{Title: "wrong site", Link: "https://www.letras.mus.br/oasis/wonderwall/"},
		{Title: "sheet", Link: "https://www.cifraclub.com.br/oasis/wonderwall/"},
		{Title: "another sheet", Link: "https://www.cifraclub.com.br/oasis/wonderwall/simplificada.html"},
	}

	client, _ := newTestClient(t, items, http.StatusOK)

	link, err := client.FindSheetLink(context.Background(), "Wonderwall", "Oasis")
	if err != nil {
		t.Fatalf("FindSheetLink() error = %v", err)
	}
	if want := "https://www.cifraclub.com.br/oasis/wonderwall/"; link != want {
		t.Errorf("FindSheetLink() = %q, want %q", link, want)
	}
}

func TestFindSheetLinkQueryIncludesKeyword(t *testing.T) {
	client, gotQuery := newTestClient(t, nil, http.StatusOK)

	if _, err := client.FindSheetLink(context.Background(), "Wonderwall", "Oasis"); err != nil {
		t.Fatalf("FindSheetLink() error = %v", err)
	}
	if want := "Oasis Wonderwall cifra"; *gotQuery != want {
		t.Errorf("query = %q, want %q", *gotQuery, want)
	}
}

func TestFindSheetLinkNoAdmissibleResult(t *testing.T) {
	items := []searchItem{
		{Link: "https://www.cifraclub.com.br/oasis/wonderwall/videoaulas/"},
		{Link: "https://www.youtube.com/watch?v=abc"},
	}

	client, _ := newTestClient(t, items, http.StatusOK)

	link, err := client.FindSheetLink(context.Background(), "Wonderwall", "Oasis")
	if err != nil {
		t.Fatalf("FindSheetLink() error = %v", err)
	}
	if link != "" {
		t.Errorf("FindSheetLink() = %q, want empty string", link)
	}
}

func TestFindSheetLinkUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, nil, http.StatusForbidden)

	_, err := client.FindSheetLink(context.Background(), "Wonderwall", "Oasis")
	if err == nil {
		t.Fatal("FindSheetLink() expected error for non-200 status, got nil")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("FindSheetLink() error = %v, want ErrUnavailable", err)
	}
}

func TestAdmissibleSheetURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"sheet page", "https://www.cifraclub.com.br/oasis/wonderwall/", true},
		{"bare domain", "https://cifraclub.com.br/oasis/wonderwall/", true},
		{"video lesson", "https://www.cifraclub.com.br/oasis/wonderwall/videoaulas/", false},
		{"other domain", "https://www.letras.mus.br/oasis/", false},
		{"subdomain", "https://tv.cifraclub.com.br/oasis/", false},
		{"lookalike domain", "https://cifraclub.com.br.evil.example/x/", false},
		{"unparseable", "://bad", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := admissibleSheetURL(tt.url); got != tt.want {
				t.Errorf("admissibleSheetURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
