package version

import (
	"fmt"
	"strconv"

	"github.com/Masterminds/semver/v3"
)

// Platform is the version of the platform (Minecraft) a build targets.
type Platform struct {
	Major int
	Minor int
	Patch int
}

// ParsePlatform parses "1.20" or "1.20.1". A missing patch is zero.
func ParsePlatform(s string) (Platform, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return Platform{}, fmt.Errorf("invalid platform version %q: %w", s, err)
	}
	if v.Prerelease() != "" {
		return Platform{}, fmt.Errorf("invalid platform version %q: pre-releases are not platform versions", s)
	}
	return Platform{Major: int(v.Major()), Minor: int(v.Minor()), Patch: int(v.Patch())}, nil
}

// WithPatch returns a copy of p with the patch replaced.
func (p Platform) WithPatch(patch int) Platform {
	p.Patch = patch
	return p
}

// Format renders major.minor and appends the patch when it is non-zero or
// full is set.
func (p Platform) Format(full bool) string {
	s := strconv.Itoa(p.Major) + "." + strconv.Itoa(p.Minor)
	if p.Patch > 0 || full {
		s += "." + strconv.Itoa(p.Patch)
	}
	return s
}

// String renders p the way the platform names its releases: "1.20", "1.20.1".
func (p Platform) String() string { return p.Format(false) }

// Full always includes the patch: "1.20.0".
func (p Platform) Full() string { return p.Format(true) }

// MarshalText renders p as String does.
func (p Platform) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText parses p with ParsePlatform.
func (p *Platform) UnmarshalText(text []byte) error {
	v, err := ParsePlatform(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Compare orders platforms by major, minor, then patch.
func (p Platform) Compare(o Platform) int {
	switch {
	case p.Major != o.Major:
		return sign(p.Major - o.Major)
	case p.Minor != o.Minor:
		return sign(p.Minor - o.Minor)
	default:
		return sign(p.Patch - o.Patch)
	}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
