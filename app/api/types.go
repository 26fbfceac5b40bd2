package api

import (
	"context"

	"github.com/lysyi3m/rss-rank/app/pipeline"
)

const unknownPublished = "unknown"

type Ranker interface {
	Run(ctx context.Context, query string) (*pipeline.Result, error)
}

type ArchiveCounter interface {
	Count(ctx context.Context) (int, error)
}

var _ Ranker = (*pipeline.Ranker)(nil)

type Handler struct {
	ranker  Ranker
	archive ArchiveCounter
	version string
}

// EntryResponse is the wire form of a ranked entry.
type EntryResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Link          string  `json:"link"`
	Source        string  `json:"source"`
	PublishedRSS  string  `json:"published_rss"`
	PublishedPage string  `json:"published_page"`
	Summary       string  `json:"summary"`
	Score         float64 `json:"score"`
}

func newEntryResponse(entry pipeline.Entry) EntryResponse {
	published := entry.PublishedPage
	if published == "" {
		published = unknownPublished
	}

	return EntryResponse{
		ID:            entry.ID,
		Title:         entry.Title,
		Link:          entry.Link,
		Source:        entry.Domain,
		PublishedRSS:  entry.PublishedRSS,
		PublishedPage: published,
		Summary:       entry.Summary,
		Score:         entry.Score,
	}
}
