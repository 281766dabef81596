package walker

import (
	"slices"

	"github.com/Masterminds/semver/v3"
)

// LatestVersion returns the greatest version under semantic ordering. If any
// entry does not parse as a semantic version, the lexicographic maximum of
// the whole set is returned instead. ok is false for an empty input.
func LatestVersion(versions []string) (latest string, ok bool) {
	if len(versions) == 0 {
		return "", false
	}
	var best *semver.Version
	for _, v := range versions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			return slices.Max(versions), true
		}
		if best == nil || sv.GreaterThan(best) {
			best, latest = sv, v
		}
	}
	return latest, true
}
