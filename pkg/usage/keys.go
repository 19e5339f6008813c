package usage

import "strings"

// Resource names understood by the usage API.
const (
	ResourceServices    = "services"
	ResourcePhotos      = "photos"
	ResourceTeamMembers = "team_members"
)

const scopeSep = ":"

// ServicesKey is the counter of services owned by the current user.
func ServicesKey() string { return ResourceServices }

// TeamMembersKey is the counter of team members of the current account.
func TeamMembersKey() string { return ResourceTeamMembers }

// PhotosKey is the per-service photo counter.
func PhotosKey(serviceID string) string {
	return ResourcePhotos + scopeSep + serviceID
}

// SplitKey splits a counter key into its resource and optional scope,
// e.g. "photos:42" -> ("photos", "42").
func SplitKey(key string) (resource, scope string) {
	resource, scope, _ = strings.Cut(key, scopeSep)
	return resource, scope
}
