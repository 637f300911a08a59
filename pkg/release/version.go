package release

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	AliasStable    = "stable"
	AliasOldStable = "oldstable"
)

func IsAlias(spec string) bool {
	return spec == AliasStable || spec == AliasOldStable
}

// Normalize coerces a loosely formatted version (0.39, v0.39.1, 0.22-beta.1)
// into a strict semantic version string.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	core, suffix, hasSuffix := strings.Cut(trimmed, "-")
	v, err := semver.NewVersion(core)
	if err != nil {
		return "", &FormatError{Input: raw, Err: err}
	}
	coerced := fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
	if !hasSuffix {
		return coerced, nil
	}
	if suffix == "" {
		return "", &FormatError{Input: raw, Err: fmt.Errorf("empty prerelease")}
	}
	full := coerced + "-" + suffix
	if _, err := semver.StrictNewVersion(full); err != nil {
		return "", &FormatError{Input: raw, Err: err}
	}
	return full, nil
}

// MajorMinor returns the "major.minor" line of a version, e.g. 0.57 for 0.57.2.
func MajorMinor(version string) (string, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return "", &FormatError{Input: version, Err: err}
	}
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor()), nil
}
