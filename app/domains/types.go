package domains

const DefaultTrustWeight = 5.0

// File is the on-disk layout of a domains override file.
type File struct {
	Blocked []string           `yaml:"blocked"`
	Trusted map[string]float64 `yaml:"trusted"`
}

var defaultBlocked = []string{
	"example-fake-news.com",
	"india-tabloid.co.in",
}

var defaultTrusted = map[string]float64{
	"openai.com": 10,
	"arxiv.org":  9,
	"nature.com": 9,
}
