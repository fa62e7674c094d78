package config

// Constants defining default values for application configuration
const (
	DefaultDBPath     = "./news_cache.db"
	DefaultExportPath = "./latest_news.json"

	DefaultServerPort = 8080
	DefaultServerHost = "" // Empty string means all interfaces

	DefaultIntervalMinutes     = 30 // Minutes between aggregation runs
	DefaultMaxConcurrent       = 10 // In-flight feed requests per run
	DefaultRetentionDays       = 3  // Days to keep cached articles before purging
	DefaultFallbackMaxAgeHours = 6  // Max staleness served from the store fallback

	DefaultLogLevel = "info"
)
