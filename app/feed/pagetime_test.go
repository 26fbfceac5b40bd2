package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type trustAll bool

func (t trustAll) IsTrusted(domain string) bool {
	return bool(t)
}

func newPageServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestResolveRegexMatch(t *testing.T) {
	page := `<html><head>
<meta property="article:published_time" content="2024-05-01T08:30:00Z">
<title>Paper</title></head><body></body></html>`
	server, _ := newPageServer(t, http.StatusOK, page)

	resolver := NewPublishTimeResolver(server.Client(), trustAll(true), "Mozilla/5.0", time.Second)
	published, err := resolver.Resolve(context.Background(), server.URL, "arxiv.org")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if published != "2024-05-01T08:30:00Z" {
		t.Errorf("Expected '2024-05-01T08:30:00Z', got '%s'", published)
	}
}

func TestResolveReturnsCaptureVerbatim(t *testing.T) {
	page := `<meta property="article:published_time" content="2024-05-01T08:30:00+02:00">`
	server, _ := newPageServer(t, http.StatusOK, page)

	resolver := NewPublishTimeResolver(server.Client(), trustAll(true), "Mozilla/5.0", time.Second)
	published, err := resolver.Resolve(context.Background(), server.URL, "arxiv.org")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if published != "2024-05-01T08:30:00+02:00" {
		t.Errorf("Expected capture returned verbatim, got '%s'", published)
	}
}

func TestResolveMetaScanFallback(t *testing.T) {
	page := `<html><head>
<meta content='2024-05-02T10:00:00Z' property='article:published_time'>
</head></html>`
	server, _ := newPageServer(t, http.StatusOK, page)

	resolver := NewPublishTimeResolver(server.Client(), trustAll(true), "Mozilla/5.0", time.Second)
	published, err := resolver.Resolve(context.Background(), server.URL, "nature.com")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if published != "2024-05-02T10:00:00Z" {
		t.Errorf("Expected '2024-05-02T10:00:00Z', got '%s'", published)
	}
}

func TestResolveSkipsUntrustedDomain(t *testing.T) {
	server, hits := newPageServer(t, http.StatusOK, `<meta property="article:published_time" content="2024-05-01T08:30:00Z">`)

	resolver := NewPublishTimeResolver(server.Client(), trustAll(false), "Mozilla/5.0", time.Second)
	_, err := resolver.Resolve(context.Background(), server.URL, "news.google.com")

	if !errors.Is(err, ErrUntrusted) {
		t.Errorf("Expected ErrUntrusted, got: %v", err)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Errorf("Expected no request for untrusted domain, got %d", atomic.LoadInt32(hits))
	}
}

func TestResolveNonOKStatus(t *testing.T) {
	server, _ := newPageServer(t, http.StatusNotFound, `<meta property="article:published_time" content="2024-05-01T08:30:00Z">`)

	resolver := NewPublishTimeResolver(server.Client(), trustAll(true), "Mozilla/5.0", time.Second)
	_, err := resolver.Resolve(context.Background(), server.URL, "arxiv.org")

	if !errors.Is(err, ErrStatus) {
		t.Errorf("Expected ErrStatus, got: %v", err)
	}
}

func TestResolveOnlyReadsHead(t *testing.T) {
	page := "<html><head><title>x</title></head><body>" + strings.Repeat("a", PageHeadLimit) +
		`<meta property="article:published_time" content="2024-05-01T08:30:00Z"></body></html>`
	server, _ := newPageServer(t, http.StatusOK, page)

	resolver := NewPublishTimeResolver(server.Client(), trustAll(true), "Mozilla/5.0", time.Second)
	_, err := resolver.Resolve(context.Background(), server.URL, "arxiv.org")

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for tag beyond the head limit, got: %v", err)
	}
}

func TestResolveNoMetadata(t *testing.T) {
	server, _ := newPageServer(t, http.StatusOK, `<html><head><title>Nothing</title></head><body><p>Text</p></body></html>`)

	resolver := NewPublishTimeResolver(server.Client(), trustAll(true), "Mozilla/5.0", time.Second)
	_, err := resolver.Resolve(context.Background(), server.URL, "arxiv.org")

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}
}

func TestResolveReadabilityFallback(t *testing.T) {
	page := `<html><head>
<title>Model release</title>
<script type="application/ld+json">
{"@context": "https://schema.org", "@type": "NewsArticle", "headline": "Model release", "datePublished": "2024-05-03T11:00:00+02:00"}
</script>
</head><body><article><p>The new model was released today with improved benchmarks across the board.</p></article></body></html>`
	server, _ := newPageServer(t, http.StatusOK, page)

	resolver := NewPublishTimeResolver(server.Client(), trustAll(true), "Mozilla/5.0", time.Second)
	published, err := resolver.Resolve(context.Background(), server.URL, "openai.com")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if published != "2024-05-03T09:00:00Z" {
		t.Errorf("Expected '2024-05-03T09:00:00Z', got '%s'", published)
	}
}

func TestResolveTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	resolver := NewPublishTimeResolver(server.Client(), trustAll(true), "Mozilla/5.0", 50*time.Millisecond)
	start := time.Now()
	_, err := resolver.Resolve(context.Background(), server.URL, "arxiv.org")

	if !errors.Is(err, ErrRequest) {
		t.Errorf("Expected ErrRequest on timeout, got: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("Expected resolver to give up quickly, took %v", time.Since(start))
	}
}

func TestResolveSendsUserAgent(t *testing.T) {
	userAgents := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgents <- r.Header.Get("User-Agent")
	}))
	defer server.Close()

	resolver := NewPublishTimeResolver(server.Client(), trustAll(true), "Mozilla/5.0", time.Second)
	resolver.Resolve(context.Background(), server.URL, "arxiv.org")

	if userAgent := <-userAgents; userAgent != "Mozilla/5.0" {
		t.Errorf("Expected User-Agent 'Mozilla/5.0', got '%s'", userAgent)
	}
}
