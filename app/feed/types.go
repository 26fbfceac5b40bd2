package feed

import (
	"errors"
	"time"
)

// TimeLayout is the ISO-8601 UTC layout used for every timestamp string the
// ranking pipeline produces or compares.
const TimeLayout = "2006-01-02T15:04:05Z"

var (
	ErrRequest   = errors.New("request failed")
	ErrStatus    = errors.New("unexpected HTTP status")
	ErrParse     = errors.New("feed could not be parsed")
	ErrNotFound  = errors.New("published time not found")
	ErrUntrusted = errors.New("domain is not trusted")
)

type Metadata struct {
	Title    string
	Link     string
	Language string
}

type Item struct {
	GUID  string
	Title string
	Link  string
	// Summary is the raw feed description, markup included.
	Summary string
	// Published is TimeLayout when the feed date parsed, the raw feed value
	// when it did not, and "" when the feed omitted it.
	Published   string
	PublishedAt *time.Time
}
