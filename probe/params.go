package probe

import "strings"

// Params carries the per-cycle values for the recognized URL placeholders.
// Every field is optional; an unset field substitutes as the empty string.
// Unknown placeholder syntax in a template is deliberately left untouched.
type Params struct {
	CountryCode   string
	TournamentKey string
	MatchKey      string
	PlayerKey     string
	InningKey     string
	OverKey       string
	Page          string
	TeamKey       string
}

// ParamNames lists the caller-facing parameter names, in the order clients
// send them as request headers. Names are case-sensitive.
var ParamNames = []string{
	"countryCode",
	"tournamentKey",
	"matchKey",
	"playerKey",
	"inningKey",
	"overKey",
	"page",
	"teamKey",
}

// FromMap builds Params from caller-facing parameter names. Unrecognized
// names are ignored.
func FromMap(values map[string]string) Params {
	return Params{
		CountryCode:   values["countryCode"],
		TournamentKey: values["tournamentKey"],
		MatchKey:      values["matchKey"],
		PlayerKey:     values["playerKey"],
		InningKey:     values["inningKey"],
		OverKey:       values["overKey"],
		Page:          values["page"],
		TeamKey:       values["teamKey"],
	}
}

// Expand replaces every recognized placeholder in template with its value.
// The project key fills both {{proj_key}} and {{project_key}}. Expansion is
// idempotent: a second pass over already-substituted text changes nothing,
// unless a substituted value itself contains placeholder syntax (accepted
// quirk, not corrected).
func Expand(template, projectKey string, p Params) string {
	r := strings.NewReplacer(
		"{{proj_key}}", projectKey,
		"{{project_key}}", projectKey,
		"{{match_key}}", p.MatchKey,
		"{{tournament_key}}", p.TournamentKey,
		"{{inning_key}}", p.InningKey,
		"{{over_key}}", p.OverKey,
		"{{player_key}}", p.PlayerKey,
		"{{page}}", p.Page,
		"{{team_key}}", p.TeamKey,
		"{{country_code}}", p.CountryCode,
	)
	return r.Replace(template)
}

// ResolveURL builds the concrete probe URL: the base URL with {proj_key}
// filled in, followed by the expanded endpoint path.
func ResolveURL(baseURL, projectKey, urlTemplate string, p Params) string {
	base := strings.ReplaceAll(baseURL, "{proj_key}", projectKey)
	return base + Expand(urlTemplate, projectKey, p)
}
