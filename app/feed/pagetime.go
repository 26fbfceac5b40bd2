package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// PageHeadLimit bounds how much of an article page is downloaded; the
// publish-time meta tag lives in <head>.
const PageHeadLimit = 4096

var publishedTimePattern = regexp.MustCompile(`property="article:published_time" content="([^"]+)"`)

type TrustChecker interface {
	IsTrusted(domain string) bool
}

// PublishTimeResolver reads the article:published_time of trusted pages.
type PublishTimeResolver struct {
	httpClient *http.Client
	trust      TrustChecker
	userAgent  string
	timeout    time.Duration
}

func NewPublishTimeResolver(httpClient *http.Client, trust TrustChecker, userAgent string, timeout time.Duration) *PublishTimeResolver {
	return &PublishTimeResolver{
		httpClient: httpClient,
		trust:      trust,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// Resolve fetches the head of pageURL once and returns the published time
// found there. The regex hit is returned verbatim; the fallbacks are
// formatted with TimeLayout when they yield a parsed time.
func (r *PublishTimeResolver) Resolve(ctx context.Context, pageURL, domain string) (string, error) {
	if !r.trust.IsTrusted(domain) {
		return "", ErrUntrusted
	}

	head, err := r.fetchHead(ctx, pageURL)
	if err != nil {
		return "", err
	}

	if match := publishedTimePattern.FindStringSubmatch(head); match != nil {
		return match[1], nil
	}

	if published := metaPublishedTime(head); published != "" {
		slog.Debug("Published time found by meta scan", "url", pageURL)
		return published, nil
	}

	if published := readabilityPublishedTime(head, pageURL); published != "" {
		slog.Debug("Published time found by readability", "url", pageURL)
		return published, nil
	}

	return "", ErrNotFound
}

func (r *PublishTimeResolver) fetchHead(ctx context.Context, pageURL string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrRequest, err)
	}

	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d %s", ErrStatus, resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, PageHeadLimit))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response body: %v", ErrRequest, err)
	}

	return strings.ToValidUTF8(string(data), ""), nil
}

func metaPublishedTime(head string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(head))
	if err != nil {
		return ""
	}

	content, _ := doc.Find(`meta[property="article:published_time"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

func readabilityPublishedTime(head, pageURL string) string {
	parsedURL, _ := url.Parse(pageURL)

	article, err := readability.FromReader(bytes.NewReader([]byte(head)), parsedURL)
	if err != nil || article.PublishedTime == nil {
		return ""
	}

	return article.PublishedTime.UTC().Format(TimeLayout)
}
