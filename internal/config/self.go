package config

import "wanwatch/internal/logger"

// LogConfig represents logging configuration
// This is a copy of the logger.Config
type LogConfig = logger.Config

var (
	// AppName is the name of the application
	AppName = "wanwatch"

	// EnvPrefix prefixes environment overrides, e.g. WANWATCH_ROUTER_URL
	EnvPrefix = "WANWATCH"

	// Config search paths

	// InDot is the path to the config file in ./
	InDot = "."
	// InEtc is the path to the config file in /etc/{AppName}
	InEtc = "/etc/" + AppName
	// InHome is the path to the config file in $HOME/.config/{AppName}
	InHome = "$HOME/.config/" + AppName
	// InHomeDot is the path to the config file in $HOME/.{AppName}
	InHomeDot = "$HOME/." + AppName
)

// legacyEnv maps config keys to the plain environment variable names
// accepted by earlier releases.
var legacyEnv = map[string]string{
	"hostname":           "DNS_HOSTNAME",
	"telegram.bot_token": "TELEGRAM_TOKEN",
	"telegram.chat_id":   "CHAT_ID",
	"router.api_key":     "API_KEY",
	"router.api_secret":  "API_SECRET",
	"router.url":         "URL",
	"router.interface":   "INTERFACE",
	"state.path":         "LOCKFILE",
}
