package config

// Config represents the complete configuration structure
type Config struct {
	Telegram       TelegramConfig    `mapstructure:"telegram"`
	QBittorrent    QBittorrentConfig `mapstructure:"qbittorrent"`
	ShutdownPhrase string            `mapstructure:"shutdown_phrase"`
	Logging        LoggingConfig     `mapstructure:"logging"`
}

// TelegramConfig holds the bot credential and the sender allow-list.
type TelegramConfig struct {
	Token string `mapstructure:"token"`
	// AllowedUserIDs is the comma-separated list of numeric Telegram
	// user ids permitted to submit torrents.
	AllowedUserIDs string `mapstructure:"allowed_user_ids"`
}

// QBittorrentConfig holds the daemon connection details. URL may be
// empty, in which case it is auto-discovered from the default gateway
// (see ResolveURL).
type QBittorrentConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
