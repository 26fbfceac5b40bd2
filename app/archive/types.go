package archive

import (
	"context"
	"errors"
)

var ErrStopped = errors.New("archive writer stopped")

// Record is the minimal trace kept for every entry ever seen.
type Record struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
}

// Records maps entry identity to its first-seen record.
type Records map[string]Record

// Store persists the archive. Save must never replace a record that is
// already stored under the same id.
type Store interface {
	Load(ctx context.Context) (Records, error)
	Save(ctx context.Context, records Records) error
	Close() error
}

// Appender is implemented by stores that insert records individually. The
// Writer hands them only the records a merge added instead of the whole
// archive.
type Appender interface {
	Add(ctx context.Context, records Records) error
}
