package config

import (
	"fmt"
	"strings"
)

// FormatRedacted renders the resolved configuration for diagnostics with
// secrets masked: the telegram token keeps only a short prefix and Mongo URI
// credentials are stripped.
func FormatRedacted(cfg Config) string {
	lines := []string{
		"app_env: " + cfg.AppEnv,
		"telegram_token: " + maskToken(cfg.TelegramToken),
		fmt.Sprintf("bot_owner: %d", cfg.BotOwnerID),
		"mongo_uri: " + redactMongoURI(cfg.MongoURI),
		"mongo_db: " + cfg.MongoDB,
		"log_level: " + cfg.LogLevel,
		fmt.Sprintf("http_port: %d", cfg.HTTPPort),
		"payment_url: " + cfg.PaymentURL,
	}

	return strings.Join(lines, "\n")
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return "redacted"
	}

	return token[:4] + "...redacted"
}

func redactMongoURI(uri string) string {
	schemeEnd := strings.Index(uri, "://")
	if schemeEnd < 0 {
		return uri
	}

	rest := uri[schemeEnd+3:]
	if at := strings.Index(rest, "@"); at >= 0 {
		rest = rest[at+1:]
	}

	return uri[:schemeEnd+3] + rest
}
