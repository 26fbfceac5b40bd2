package pipeline

import (
	"cmp"
	"context"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/lysyi3m/rss-rank/app/archive"
	"github.com/lysyi3m/rss-rank/app/domains"
	"github.com/lysyi3m/rss-rank/app/feed"
	"github.com/lysyi3m/rss-rank/app/scoring"
)

const (
	googleNewsSearchURL = "https://news.google.com/rss/search?q="
	arxivCategoryURL    = "http://export.arxiv.org/rss/cs.AI"
)

// BuildFeedURLs returns the query-driven search feed followed by the fixed
// category feed.
func BuildFeedURLs(query string) []string {
	return []string{
		googleNewsSearchURL + url.QueryEscape(query),
		arxivCategoryURL,
	}
}

type Options struct {
	FetchLimit   int
	ResultLimit  int
	MaxSentences int
	URLBuilder   URLBuilder
	Now          func() time.Time
}

// Ranker runs the fetch, enrich, score, dedupe and rank steps for a query.
// Feeds and entries are processed sequentially.
type Ranker struct {
	fetcher    FeedFetcher
	parser     FeedParser
	classifier DomainClassifier
	resolver   PublishTimeResolver
	scorer     EntryScorer
	archive    Archive
	opts       Options
}

func NewRanker(fetcher FeedFetcher, parser FeedParser, classifier DomainClassifier,
	resolver PublishTimeResolver, scorer EntryScorer, store Archive, opts Options) *Ranker {
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = DefaultFetchLimit
	}
	if opts.ResultLimit <= 0 {
		opts.ResultLimit = DefaultResultLimit
	}
	if opts.MaxSentences <= 0 {
		opts.MaxSentences = feed.DefaultMaxSentences
	}
	if opts.URLBuilder == nil {
		opts.URLBuilder = BuildFeedURLs
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Ranker{
		fetcher:    fetcher,
		parser:     parser,
		classifier: classifier,
		resolver:   resolver,
		scorer:     scorer,
		archive:    store,
		opts:       opts,
	}
}

func (r *Ranker) Run(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	started := time.Now()
	result := &Result{Entries: []Entry{}}
	candidates := archive.Records{}

	for _, feedURL := range r.opts.URLBuilder(query) {
		items, err := r.loadFeed(ctx, feedURL)
		if err != nil {
			slog.Warn("Feed skipped", "feed", feedURL, "error", err)
			result.Stats.FeedsFailed++
			continue
		}
		result.Stats.FeedsFetched++

		if len(items) > r.opts.FetchLimit {
			items = items[:r.opts.FetchLimit]
		}

		for _, item := range items {
			entry, ok := r.processItem(ctx, query, item, &result.Stats)
			if !ok {
				continue
			}
			result.Entries = append(result.Entries, entry)

			if _, seen := candidates[entry.ID]; !seen {
				candidates[entry.ID] = archive.Record{
					Title:     entry.Title,
					Link:      entry.Link,
					Published: entry.PublishedRSS,
				}
			}
		}
	}

	// Entries already scored are returned even if the caller went away, so
	// their first-seen records are kept as well.
	added, err := r.archive.Merge(context.WithoutCancel(ctx), candidates)
	if err != nil {
		slog.Error("Archive update failed", "query", query, "error", err)
	} else {
		result.Stats.ArchiveAdded = added
	}

	SortEntries(result.Entries)
	if len(result.Entries) > r.opts.ResultLimit {
		result.Entries = result.Entries[:r.opts.ResultLimit]
	}

	slog.Info("Query ranked",
		"query", query,
		"duration", time.Since(started),
		"feeds", result.Stats.FeedsFetched,
		"failed_feeds", result.Stats.FeedsFailed,
		"blocked", result.Stats.EntriesBlocked,
		"resolved_pages", result.Stats.PagesResolved,
		"archived", result.Stats.ArchiveAdded,
		"returned", len(result.Entries))

	return result, nil
}

func (r *Ranker) loadFeed(ctx context.Context, feedURL string) ([]feed.Item, error) {
	data, err := r.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	metadata, items, err := r.parser.Run(data)
	if err != nil {
		return nil, err
	}

	slog.Debug("Feed parsed", "feed", feedURL, "title", metadata.Title, "items", len(items))
	return items, nil
}

func (r *Ranker) processItem(ctx context.Context, query string, item feed.Item, stats *Stats) (Entry, bool) {
	if item.Link == "" {
		slog.Debug("Item without link skipped", "guid", item.GUID)
		stats.EntriesSkipped++
		return Entry{}, false
	}

	domain := domains.DomainOf(item.Link)
	if r.classifier.IsBlocked(domain) {
		slog.Debug("Blocked domain skipped", "domain", domain, "link", item.Link)
		stats.EntriesBlocked++
		return Entry{}, false
	}

	entry := Entry{
		ID:           cmp.Or(item.GUID, item.Link),
		Title:        item.Title,
		Link:         item.Link,
		Domain:       domain,
		PublishedRSS: cmp.Or(item.Published, r.opts.Now().UTC().Format(feed.TimeLayout)),
		Summary:      feed.Summarize(cmp.Or(item.Summary, item.Title), r.opts.MaxSentences),
	}

	if r.classifier.IsTrusted(domain) {
		published, err := r.resolver.Resolve(ctx, item.Link, domain)
		if err != nil {
			slog.Debug("Page publish time unresolved", "link", item.Link, "error", err)
		} else {
			entry.PublishedPage = published
			stats.PagesResolved++
		}
	}

	breakdown := r.scorer.Score(scoring.Input{
		Title:         entry.Title,
		Summary:       entry.Summary,
		Query:         query,
		Domain:        domain,
		PublishedRSS:  entry.PublishedRSS,
		PublishedPage: entry.PublishedPage,
	})
	if breakdown.RecencyErr != nil {
		slog.Debug("Recency fallback applied", "link", item.Link, "error", breakdown.RecencyErr)
	}
	entry.Score = breakdown.Total

	return entry, true
}

// SortEntries orders by score, then by the published string, both
// descending. The string comparison is only chronological while every
// timestamp shares one layout and zone; parsed feed dates are normalised to
// feed.TimeLayout for that reason.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].PublishedRSS > entries[j].PublishedRSS
	})
}
