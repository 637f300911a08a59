package resolver

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/airslate-oss/setup-specmatic/pkg/release"
)

type Options struct {
	// StableOnly skips releases not flagged as stable.
	StableOnly bool
}

var partialVersionRegex = regexp.MustCompile(`^v?\d+(\.\d+)?$`)

// NewConstraint parses spec as a version constraint. Partial versions are
// treated as compatible ranges: 0.39 matches any 0.39.x release.
func NewConstraint(spec string) (*semver.Constraints, error) {
	spec = strings.TrimSpace(spec)
	if partialVersionRegex.MatchString(spec) {
		spec += ".x"
	}
	constraint, err := semver.NewConstraint(spec)
	if err != nil {
		return nil, &release.FormatError{Input: spec, Err: err}
	}
	return constraint, nil
}

// Resolve returns the first release in catalog order that satisfies spec and
// ships a file for platform/arch.
func Resolve(spec, platform, arch string, catalog release.Catalog, opts Options) (*release.Release, *release.File, bool) {
	if release.IsAlias(spec) {
		version, ok := ResolveAlias(spec, platform, arch, catalog)
		if !ok {
			return nil, nil, false
		}
		spec = version
	}
	constraint, err := NewConstraint(spec)
	if err != nil {
		return nil, nil, false
	}
	for _, r := range catalog {
		if opts.StableOnly && !r.Stable {
			continue
		}
		v, err := semver.NewVersion(r.Version)
		if err != nil {
			continue
		}
		if !constraint.Check(v) {
			continue
		}
		if f := r.FindFile(platform, arch); f != nil {
			return r, f, true
		}
	}
	return nil, nil, false
}

func stableCandidates(platform, arch string, catalog release.Catalog) []*semver.Version {
	ret := make([]*semver.Version, 0, len(catalog))
	for _, r := range catalog {
		if r.FindFile(platform, arch) == nil {
			continue
		}
		v, err := semver.NewVersion(r.Version)
		if err != nil || v.Prerelease() != "" {
			continue
		}
		ret = append(ret, v)
	}
	return ret
}

// ResolveAlias turns stable or oldstable into a concrete version. stable is
// the most recent release without a prerelease tag, oldstable the most recent
// release of the second newest major.minor line.
func ResolveAlias(alias, platform, arch string, catalog release.Catalog) (string, bool) {
	candidates := stableCandidates(platform, arch, catalog)
	if len(candidates) == 0 {
		return "", false
	}
	switch alias {
	case release.AliasStable:
		return candidates[0].Original(), true
	case release.AliasOldStable:
		lines := make(map[string]struct{}, 2)
		for _, v := range candidates {
			line, err := release.MajorMinor(v.Original())
			if err != nil {
				continue
			}
			if _, ok := lines[line]; ok {
				continue
			}
			lines[line] = struct{}{}
			if len(lines) == 2 {
				return v.Original(), true
			}
		}
		return "", false
	default:
		return "", false
	}
}
