package constants

import "time"

const (
	BoundsCacheTTL     = 10 * time.Minute
	SessionTTL         = 30 * time.Minute
	SessionCleanup     = 5 * time.Minute
	BoundsCacheCleanup = 15 * time.Minute
)

const (
	DataAPITimeout  = 10 * time.Second
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	ChartWidth    = 960
	ChartHeight   = 500
	LabelFontSize = 12
)

// nanoid settings for generated row ids
const (
	IDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	IDLength   = 12
)

const (
	FightTimelinePath   = "/fights.v1.FightTimeline/"
	TimelineSessionPath = "/fights.v1.TimelineSession/"
	MetricsPath         = "/metrics"
)
