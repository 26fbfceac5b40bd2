package pipeline

import (
	"context"
	"errors"

	"github.com/lysyi3m/rss-rank/app/archive"
	"github.com/lysyi3m/rss-rank/app/feed"
	"github.com/lysyi3m/rss-rank/app/scoring"
)

const (
	DefaultFetchLimit  = 20
	DefaultResultLimit = 20
)

var ErrEmptyQuery = errors.New("no query provided")

// Entry is one ranked feed item. PublishedPage is empty when the page
// publish time was not resolved.
type Entry struct {
	ID            string
	Title         string
	Link          string
	Domain        string
	PublishedRSS  string
	PublishedPage string
	Summary       string
	Score         float64
}

type Stats struct {
	FeedsFetched   int
	FeedsFailed    int
	EntriesBlocked int
	EntriesSkipped int
	PagesResolved  int
	ArchiveAdded   int
}

type Result struct {
	Entries []Entry
	Stats   Stats
}

type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type FeedParser interface {
	Run(data []byte) (*feed.Metadata, []feed.Item, error)
}

type DomainClassifier interface {
	IsBlocked(domain string) bool
	IsTrusted(domain string) bool
}

type PublishTimeResolver interface {
	Resolve(ctx context.Context, pageURL, domain string) (string, error)
}

type EntryScorer interface {
	Score(in scoring.Input) scoring.Breakdown
}

type Archive interface {
	Merge(ctx context.Context, candidates archive.Records) (int, error)
}

// URLBuilder returns the feed addresses to read for a query.
type URLBuilder func(query string) []string
