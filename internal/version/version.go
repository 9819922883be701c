// Package version holds build information and the API compatibility check.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Build-time variables set via ldflags during releases
var (
	Version = "latest"  // Version is the application version
	Commit  = "unknown" // Commit is the git commit hash
	Date    = "unknown" // Date is the build date
)

// APIVersion is the version of the REST API served and spoken by this build.
const APIVersion = "0.8.4"

// CheckAPI returns an error unless a peer speaking apiVersion can talk to
// this build. Versions are compatible when they share a major version and,
// for 0.x, a minor version.
func CheckAPI(apiVersion string) error {
	peer, err := semver.NewVersion(apiVersion)
	if err != nil {
		return fmt.Errorf("invalid API version %q: %w", apiVersion, err)
	}
	ours := semver.MustParse(APIVersion)
	constraint := fmt.Sprintf("^%d.%d", ours.Major(), ours.Minor())
	if ours.Major() > 0 {
		constraint = fmt.Sprintf("^%d", ours.Major())
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return err
	}
	if !c.Check(peer) {
		return fmt.Errorf("API version %s is incompatible with %s", peer, ours)
	}
	return nil
}
