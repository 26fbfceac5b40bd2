package scoring

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const (
	MaxMatchScore   = 60.0
	MaxDomainScore  = 20.0
	MaxRecencyScore = 20.0

	// FallbackRecencyScore is used when no timestamp can be parsed.
	FallbackRecencyScore = 10.0
	RecencyWindowHours   = 72.0

	TimeLayout = "2006-01-02T15:04:05Z"
)

var ErrTimestamp = errors.New("unparsable timestamp")

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

type TrustWeigher interface {
	TrustWeight(domain string) float64
}

type Input struct {
	Title         string
	Summary       string
	Query         string
	Domain        string
	PublishedRSS  string
	PublishedPage string
}

// Breakdown keeps the unrounded components next to the rounded total.
type Breakdown struct {
	Match      float64
	Domain     float64
	Recency    float64
	Total      float64
	RecencyErr error
}

type Scorer struct {
	trust TrustWeigher
	now   func() time.Time
}

func NewScorer(trust TrustWeigher, now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	return &Scorer{trust: trust, now: now}
}

func (s *Scorer) Score(in Input) Breakdown {
	b := Breakdown{
		Match:  MatchScore(in.Query, in.Title+" "+in.Summary),
		Domain: s.trust.TrustWeight(in.Domain) / 10 * MaxDomainScore,
	}

	published := in.PublishedPage
	if published == "" {
		published = in.PublishedRSS
	}

	recency, err := RecencyScore(published, s.now())
	if err != nil {
		recency = FallbackRecencyScore
		b.RecencyErr = err
	}
	b.Recency = recency

	b.Total = RoundScore(b.Match + b.Domain + b.Recency)
	return b
}

// RoundScore rounds to one decimal, exact halves to the even digit.
func RoundScore(score float64) float64 {
	return math.RoundToEven(score*10) / 10
}

// MatchScore is the share of content tokens that also occur in the query,
// scaled to MaxMatchScore.
func MatchScore(query, content string) float64 {
	queryWords := make(map[string]struct{})
	for _, word := range Tokenize(query) {
		queryWords[word] = struct{}{}
	}

	contentWords := Tokenize(content)
	if len(contentWords) == 0 {
		return 0
	}

	matched := 0
	for _, word := range contentWords {
		if _, ok := queryWords[word]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(contentWords)) * MaxMatchScore
}

// RecencyScore decays linearly from MaxRecencyScore at publication to zero
// after RecencyWindowHours.
func RecencyScore(published string, now time.Time) (float64, error) {
	publishedAt, err := time.Parse(TimeLayout, published)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrTimestamp, published)
	}

	hoursAgo := now.Sub(publishedAt).Hours()
	score := (RecencyWindowHours - hoursAgo) / RecencyWindowHours * MaxRecencyScore

	return math.Min(MaxRecencyScore, math.Max(0, score)), nil
}

func Tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(norm.NFC.String(text)), -1)
}
