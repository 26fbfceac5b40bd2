package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	Port string `long:"port" env:"PORT" default:"5000" description:"HTTP server port"`

	// Archive configuration
	ArchiveDriver string `long:"archive-driver" env:"ARCHIVE_DRIVER" default:"json" choice:"json" choice:"sqlite" choice:"redis" description:"Archive storage backend"`
	ArchivePath   string `long:"archive-path" env:"ARCHIVE_PATH" default:"ai_updates.json" description:"Path of the JSON archive file"`
	SQLitePath    string `long:"sqlite-path" env:"SQLITE_PATH" default:"ai_updates.db" description:"Path of the SQLite archive database"`
	RedisAddr     string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address for the archive"`
	RedisKey      string `long:"redis-key" env:"REDIS_KEY" default:"rss-rank:archive" description:"Redis hash holding archive records"`

	// Ranking configuration
	DomainsFile string `long:"domains-file" env:"DOMAINS_FILE" description:"YAML file overriding the built-in blocklist and trust table"`
	FetchLimit  int    `long:"fetch-limit" env:"FETCH_LIMIT" default:"20" description:"Maximum entries taken from each feed"`
	ResultLimit int    `long:"result-limit" env:"RESULT_LIMIT" default:"20" description:"Maximum entries returned per query"`
	FeedTimeout int    `long:"feed-timeout" env:"FEED_TIMEOUT" default:"15" description:"Feed fetch timeout in seconds"`
	PageTimeout int    `long:"page-timeout" env:"PAGE_TIMEOUT" default:"4" description:"Article page fetch timeout in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for log timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args when args is non-nil.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.FetchLimit <= 0 {
		return nil, fmt.Errorf("fetch limit must be positive, got %d", raw.FetchLimit)
	}
	if raw.ResultLimit <= 0 {
		return nil, fmt.Errorf("result limit must be positive, got %d", raw.ResultLimit)
	}
	if raw.FeedTimeout <= 0 || raw.PageTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be positive")
	}

	cfg := &Cfg{
		Port:          raw.Port,
		ArchiveDriver: raw.ArchiveDriver,
		ArchivePath:   raw.ArchivePath,
		SQLitePath:    raw.SQLitePath,
		RedisAddr:     raw.RedisAddr,
		RedisKey:      raw.RedisKey,
		DomainsFile:   raw.DomainsFile,
		FetchLimit:    raw.FetchLimit,
		ResultLimit:   raw.ResultLimit,
		FeedTimeout:   time.Duration(raw.FeedTimeout) * time.Second,
		PageTimeout:   time.Duration(raw.PageTimeout) * time.Second,
		UserAgent:     raw.UserAgent,
		Timezone:      raw.Timezone,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
