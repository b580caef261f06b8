package pagemeta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func fastClient() *Client {
	return NewClient(ClientConfig{
		RetryMaxAttempts:  1,
		RetryInitialDelay: time.Millisecond,
		RetryMaxDelay:     2 * time.Millisecond,
	})
}

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}))
}

func TestFetchMeta(t *testing.T) {
	server := serveHTML(t, `<!DOCTYPE html>
<html>
<head>
  <title>  Best Running Shoes of 2025  </title>
  <meta name="description" content="  Our lab-tested picks for every budget.  ">
</head>
<body><h1>Shoes</h1></body>
</html>`)
	defer server.Close()

	meta, err := fastClient().FetchMeta(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected fetch to succeed, got error: %v", err)
	}

	if meta.Title != "Best Running Shoes of 2025" {
		t.Errorf("Expected trimmed title, got %q", meta.Title)
	}
	if meta.Description != "Our lab-tested picks for every budget." {
		t.Errorf("Expected trimmed description, got %q", meta.Description)
	}
}

func TestFetchMetaOGDescriptionFallback(t *testing.T) {
	server := serveHTML(t, `<html>
<head>
  <title>Shoe Guide</title>
  <meta property="og:description" content="Social description.">
</head>
<body></body>
</html>`)
	defer server.Close()

	meta, err := fastClient().FetchMeta(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected fetch to succeed, got error: %v", err)
	}
	if meta.Description != "Social description." {
		t.Errorf("Expected og:description fallback, got %q", meta.Description)
	}
}

func TestFetchMetaTitleOnly(t *testing.T) {
	server := serveHTML(t, `<html><head><title>Just a Title</title></head><body></body></html>`)
	defer server.Close()

	meta, err := fastClient().FetchMeta(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected a title-only page to succeed, got error: %v", err)
	}
	if meta.Title != "Just a Title" {
		t.Errorf("Expected title, got %q", meta.Title)
	}
	if meta.Description != "" {
		t.Errorf("Expected empty description, got %q", meta.Description)
	}
}

func TestFetchMetaNoMetadata(t *testing.T) {
	server := serveHTML(t, `<html><head></head><body><p>Nothing here.</p></body></html>`)
	defer server.Close()

	_, err := fastClient().FetchMeta(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for a page without title or description")
	}
	if !strings.Contains(err.Error(), "no title or meta description") {
		t.Errorf("Expected missing-metadata error, got %q", err.Error())
	}
}

func TestFetchMetaHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := fastClient().FetchMeta(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for HTTP 404")
	}
	if !strings.Contains(err.Error(), "page fetch HTTP 404") {
		t.Errorf("Expected HTTP status error, got %q", err.Error())
	}
}

func TestParseMetaFirstTitleWins(t *testing.T) {
	meta := parseMeta([]byte(`<html><head>
<title>First Title</title>
<title>Second Title</title>
<meta name="description" content="First description.">
<meta name="description" content="Second description.">
</head></html>`))

	if meta.Title != "First Title" {
		t.Errorf("Expected first title to win, got %q", meta.Title)
	}
	if meta.Description != "First description." {
		t.Errorf("Expected first description to win, got %q", meta.Description)
	}
}
