package instance

import "github.com/angelmondragon/spacerent-backend/pkg/env"

// GetID returns the process instance identifier used in startup logs.
// DYNO is set on Heroku, HOSTNAME inside containers.
func GetID() string {
	return env.First("local", "DYNO", "HOSTNAME")
}
