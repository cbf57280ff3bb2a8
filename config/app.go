package config

import (
	"os"
	"strconv"
	"strings"
)

// RichMenuIDs holds the LINE rich menu assigned per member state.
type RichMenuIDs struct {
	Pending  string
	Internal string
	External string
}

// AppConfig is loaded once at startup and injected into the services
// that talk to LINE or classify members. Nothing in the request path
// reads the process environment directly.
type AppConfig struct {
	LineAPIBase      string
	LineChannelToken string

	// Organization type id that marks a member organization as internal.
	InternalOrgTypeID int

	RichMenus RichMenuIDs

	// Roles whose web channel starts disabled when preferences are
	// bootstrapped. The line channel is always enabled regardless.
	WebDefaultOffRoles map[int]bool
}

// LoadAppConfig reads the application configuration from environment
// variables. Call after godotenv.Load().
func LoadAppConfig() *AppConfig {
	cfg := &AppConfig{
		LineAPIBase:      strings.TrimSpace(os.Getenv("LINE_API_BASE")),
		LineChannelToken: strings.TrimSpace(os.Getenv("LINE_CHANNEL_TOKEN")),
		RichMenus: RichMenuIDs{
			Pending:  strings.TrimSpace(os.Getenv("LINE_RICHMENU_PENDING")),
			Internal: strings.TrimSpace(os.Getenv("LINE_RICHMENU_INTERNAL")),
			External: strings.TrimSpace(os.Getenv("LINE_RICHMENU_EXTERNAL")),
		},
		WebDefaultOffRoles: map[int]bool{},
	}

	if cfg.LineAPIBase == "" {
		cfg.LineAPIBase = "https://api.line.me"
	}

	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv("INTERNAL_ORG_TYPE_ID"))); err == nil {
		cfg.InternalOrgTypeID = v
	}

	// Comma separated role ids, e.g. WEB_CHANNEL_DEFAULT_OFF_ROLES=1,5
	for _, part := range strings.Split(os.Getenv("WEB_CHANNEL_DEFAULT_OFF_ROLES"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.Atoi(part); err == nil {
			cfg.WebDefaultOffRoles[id] = true
		}
	}

	return cfg
}

// WebEnabledByDefault reports whether the web channel should start
// enabled for the given role when preferences are bootstrapped.
func (c *AppConfig) WebEnabledByDefault(roleID int) bool {
	return !c.WebDefaultOffRoles[roleID]
}
