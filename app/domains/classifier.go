package domains

import (
	"net/url"
	"strings"
)

// Classifier answers blocklist and trust questions about article hostnames.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	blocked map[string]struct{}
	trusted map[string]float64
}

func NewClassifier(blocked []string, trusted map[string]float64) *Classifier {
	c := &Classifier{
		blocked: make(map[string]struct{}, len(blocked)),
		trusted: make(map[string]float64, len(trusted)),
	}
	for _, host := range blocked {
		c.blocked[strings.ToLower(host)] = struct{}{}
	}
	for host, weight := range trusted {
		c.trusted[strings.ToLower(host)] = weight
	}
	return c
}

func NewDefaultClassifier() *Classifier {
	return NewClassifier(defaultBlocked, defaultTrusted)
}

// DomainOf returns the lower-cased host (with port) of rawURL, or "" when it
// cannot be parsed. Userinfo is dropped so it cannot mask a blocked host.
func DomainOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

func (c *Classifier) IsBlocked(domain string) bool {
	_, ok := c.blocked[domain]
	return ok
}

func (c *Classifier) IsTrusted(domain string) bool {
	_, ok := c.trusted[domain]
	return ok
}

func (c *Classifier) TrustWeight(domain string) float64 {
	if weight, ok := c.trusted[domain]; ok {
		return weight
	}
	return DefaultTrustWeight
}

func (c *Classifier) BlockedCount() int {
	return len(c.blocked)
}

func (c *Classifier) TrustedCount() int {
	return len(c.trusted)
}
