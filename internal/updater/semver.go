package updater

import (
	"fmt"
	"strconv"
	"strings"
)

// Semver is the major.minor.patch triple release tags carry. Pre-release
// suffixes are not used on agentdeck tags and are rejected by the parser.
type Semver struct {
	Major int
	Minor int
	Patch int
}

// ParseSemver parses "1.2.3" or "v1.2.3".
func ParseSemver(s string) (Semver, error) {
	parts := strings.SplitN(strings.TrimPrefix(s, "v"), ".", 3)
	if len(parts) != 3 {
		return Semver{}, fmt.Errorf("invalid semver: %q", s)
	}

	var v Semver
	for i, dst := range []*int{&v.Major, &v.Minor, &v.Patch} {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return Semver{}, fmt.Errorf("invalid semver component %q in %q", parts[i], s)
		}
		*dst = n
	}
	return v, nil
}

// String returns the version without a leading "v".
func (v Semver) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// LessThan reports whether v precedes other.
func (v Semver) LessThan(other Semver) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}
