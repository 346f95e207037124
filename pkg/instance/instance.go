package instance

import "github.com/OmkarVetal12/synlawn/pkg/env"

// ID returns the process identifier used in logs, or fallback when the
// platform sets none.
func ID(fallback string) string {
	return env.First(fallback, "SYNLAWN_INSTANCE_ID", "DYNO", "HOSTNAME")
}
