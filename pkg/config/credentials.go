package config

import (
	"strings"

	"github.com/rs/zerolog"
)

// ResolveCredentials fills in the user/password of every team filter from
// the given environment ("KEY=VALUE" pairs, normally os.Environ()).
//
// A variable participates when its name contains the configured marker
// (e.g. TEAMNAME_devops_user=alice). The owning team is matched by
// case-insensitive substring against the team names; a "_user" suffix sets
// the user, a "_password" suffix the password. After the scan, any team
// still without a user inherits the fallback team's identity verbatim.
// That is a deliberate best-effort policy: the run proceeds with some
// usable identity rather than failing a team outright.
func (c *Config) ResolveCredentials(environ []string, log zerolog.Logger) {
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.Contains(name, c.EnvMarker) {
			continue
		}

		upperName := strings.ToUpper(name)
		for teamName, team := range c.Teams {
			if !strings.Contains(upperName, strings.ToUpper(teamName)) {
				continue
			}
			switch {
			case strings.HasSuffix(name, "_user"):
				team.User = value
				log.Info().Str("variable", name).Str("user", value).Msg("found os variable with user")
			case strings.HasSuffix(name, "_password"):
				team.Password = value
				// never log the value
				log.Info().Str("variable", name).Msg("found os variable with password")
			default:
				log.Warn().Str("variable", name).Msg("found strange os variable")
			}
		}
	}

	fallback := c.Teams[c.Fallback]
	for teamName, team := range c.Teams {
		if team.User != "" || fallback == nil {
			continue
		}
		log.Info().Str("team", teamName).Str("fallback", c.Fallback).
			Msg("no credentials found for team, assigning fallback identity")
		team.User = fallback.User
		team.Password = fallback.Password
	}
}

// LogFilters writes the resolved filter table at debug level. Passwords are
// withheld.
func (c *Config) LogFilters(log zerolog.Logger) {
	for teamName, team := range c.Teams {
		log.Debug().Str("team", teamName).Str("filter_id", team.FilterID).
			Str("user", team.User).Msg("resolved team filter")
	}
}
