package metric

import "github.com/okian/voidframe/internal/domain/model"

// DefaultNearestK is the nearest-defender count used by SQI and BAA
// when no coverage-specific override is configured.
const DefaultNearestK = 2

// Config controls the calculators. Whether the nearest-defender count
// should adapt to the coverage call is an open analysis question, so
// the per-coverage overrides stay configurable; zero means "use
// NearestK".
type Config struct {
	NearestK     int
	NearestKMan  int
	NearestKZone int
}

// DefaultConfig returns the calculator defaults.
func DefaultConfig() Config {
	return Config{NearestK: DefaultNearestK}
}

// KFor resolves the nearest-defender count for a coverage class.
func (c Config) KFor(coverage model.CoverageClass) int {
	k := c.NearestK
	if k <= 0 {
		k = DefaultNearestK
	}
	switch coverage {
	case model.CoverageMan:
		if c.NearestKMan > 0 {
			k = c.NearestKMan
		}
	case model.CoverageZone:
		if c.NearestKZone > 0 {
			k = c.NearestKZone
		}
	}
	return k
}
