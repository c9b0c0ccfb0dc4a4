package config

// DefaultForum is the forum collected and plotted when none is given.
const DefaultForum = "Python"

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Collector: CollectorConfig{
			BaseURL:           "https://api.pushshift.io",
			SiteOrigin:        "https://www.reddit.com",
			PageSize:          100,
			RequestsPerSecond: 1,
			TimeoutSeconds:    60,
			UserAgent:         "subplot/1.0",
		},
		Output: OutputConfig{
			DataDir: ".",
		},
		Storage: StorageConfig{
			Path:       "~/.config/subplot",
			SQLiteFile: "catalog.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
