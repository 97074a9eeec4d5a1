package sheet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestScraper(t *testing.T, status int, page string) (*Scraper, string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)

	scraper := NewScraper()
	scraper.httpClient = server.Client()
	return scraper, server.URL
}

func TestFetchExtractsSheetAndKey(t *testing.T) {
	page := `<html><body>
<span id="cifra_tom">tom: <a href="#">Gsus4</a></span>
<pre><b>Em7</b>  <b>G</b><br>Today is gonna be the day<br><b>Dsus4</b>  <b>A7sus4</b></pre>
</body></html>`

	scraper, url := newTestScraper(t, http.StatusOK, page)

	sheet, err := scraper.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if sheet == nil {
		t.Fatal("Fetch() = nil, want sheet")
	}

	if sheet.Key != "Gsus4" {
		t.Errorf("Key = %q, want %q", sheet.Key, "Gsus4")
	}
	want := "Em7  G\nToday is gonna be the day\nDsus4  A7sus4"
	if sheet.Body != want {
		t.Errorf("Body = %q, want %q", sheet.Body, want)
	}
}

func TestFetchMissingKeyYieldsEmptyString(t *testing.T) {
	page := `<html><body><pre>G  D<br>Em  C</pre></body></html>`

	scraper, url := newTestScraper(t, http.StatusOK, page)

	sheet, err := scraper.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if sheet.Key != "" {
		t.Errorf("Key = %q, want empty string", sheet.Key)
	}
	if want := "G  D\nEm  C"; sheet.Body != want {
		t.Errorf("Body = %q, want %q", sheet.Body, want)
	}
}

func TestFetchNoSheetBlock(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{"no pre element", `<html><body><p>nothing here</p></body></html>`},
		{"empty pre element", `<html><body><pre>   </pre></body></html>`},
		{"pre with only markup", `<html><body><pre><b></b></pre></body></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scraper, url := newTestScraper(t, http.StatusOK, tt.page)

			sheet, err := scraper.Fetch(context.Background(), url)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if sheet != nil {
				t.Errorf("Fetch() = %+v, want nil for missing sheet content", sheet)
			}
		})
	}
}

func TestFetchHTTPError(t *testing.T) {
	scraper, url := newTestScraper(t, http.StatusNotFound, "")

	_, err := scraper.Fetch(context.Background(), url)
	if err == nil {
		t.Fatal("Fetch() expected error for 404, got nil")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Fetch() error = %v, want ErrUnavailable", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			// Line breaks must become newlines before tags are stripped.
			name: "br before tag stripping",
			raw:  "G  D<br>Em  C",
			want: "G  D\nEm  C",
		},
		{
			name: "self-closing and uppercase br",
			raw:  "G<br/>D<BR />Em",
			want: "G\nD\nEm",
		},
		{
			name: "chord markup stripped",
			raw:  "<b>Am</b>  <b>F</b>\nSome lyric line",
			want: "Am  F\nSome lyric line",
		},
		{
			name: "entities unescaped",
			raw:  "Rock &amp; Roll<br>C&#39;est la vie",
			want: "Rock & Roll\nC'est la vie",
		},
		{
			name: "surrounding blank lines trimmed",
			raw:  "<br><br>G  D<br>",
			want: "G  D",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize(tt.raw); got != tt.want {
				t.Errorf("normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
