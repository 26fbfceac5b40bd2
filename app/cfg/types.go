package cfg

import "time"

type Cfg struct {
	// HTTP server
	Port string

	// Archive configuration
	ArchiveDriver string
	ArchivePath   string
	SQLitePath    string
	RedisAddr     string
	RedisKey      string

	// Ranking configuration
	DomainsFile string
	FetchLimit  int
	ResultLimit int
	FeedTimeout time.Duration
	PageTimeout time.Duration

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
