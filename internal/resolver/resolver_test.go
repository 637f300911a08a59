package resolver

import (
	"testing"

	"github.com/airslate-oss/setup-specmatic/pkg/release"
	"github.com/stretchr/testify/require"
)

func newRelease(version string, stable bool, platformArchs ...string) *release.Release {
	r := &release.Release{Version: version, Stable: stable}
	for i := 0; i+1 < len(platformArchs); i += 2 {
		r.Files = append(r.Files, &release.File{
			FileName:    "specmatic.jar",
			Platform:    platformArchs[i],
			Arch:        platformArchs[i+1],
			DownloadURL: "https://github.com/znsio/specmatic/releases/download/" + version + "/specmatic.jar",
		})
	}
	return r
}

func linuxRelease(version string) *release.Release {
	return newRelease(version, true, "linux", "x64")
}

func TestNewConstraint(t *testing.T) {
	testCases := []struct {
		spec    string
		match   []string
		noMatch []string
	}{
		{"0.39", []string{"0.39.0", "0.39.1"}, []string{"0.40.0", "0.38.9"}},
		{"1", []string{"1.0.0", "1.9.3"}, []string{"2.0.0", "0.9.0"}},
		{"0.39.1", []string{"0.39.1"}, []string{"0.39.0", "0.39.2"}},
		{"^0.39.0", []string{"0.39.0", "0.39.7"}, []string{"0.40.0"}},
		{">=0.50 <0.60", []string{"0.50.0", "0.59.9"}, []string{"0.60.0", "0.49.0"}},
		{"0.39.x", []string{"0.39.4"}, []string{"0.40.0"}},
	}
	for _, tc := range testCases {
		t.Run(tc.spec, func(t *testing.T) {
			c, err := NewConstraint(tc.spec)
			require.NoError(t, err)
			for _, v := range tc.match {
				r, _, ok := Resolve(tc.spec, "linux", "x64", release.Catalog{linuxRelease(v)}, Options{})
				require.True(t, ok, v)
				require.Equal(t, v, r.Version)
			}
			for _, v := range tc.noMatch {
				_, _, ok := Resolve(tc.spec, "linux", "x64", release.Catalog{linuxRelease(v)}, Options{})
				require.False(t, ok, v)
			}
			require.NotNil(t, c)
		})
	}
}

func TestNewConstraintInvalid(t *testing.T) {
	_, err := NewConstraint("latest-and-greatest")
	var formatErr *release.FormatError
	require.ErrorAs(t, err, &formatErr)
}

func TestResolveFirstMatchWins(t *testing.T) {
	catalog := release.Catalog{
		linuxRelease("0.59.0"),
		linuxRelease("0.58.0"),
		linuxRelease("0.39.1"),
		linuxRelease("0.39.0"),
	}
	r, f, ok := Resolve("0.39", "linux", "x64", catalog, Options{})
	require.True(t, ok)
	require.Equal(t, "0.39.1", r.Version)
	require.Equal(t, "https://github.com/znsio/specmatic/releases/download/0.39.1/specmatic.jar", f.DownloadURL)

	// catalog order wins over version order
	catalog = release.Catalog{linuxRelease("0.39.0"), linuxRelease("0.39.1")}
	r, _, ok = Resolve("0.39", "linux", "x64", catalog, Options{})
	require.True(t, ok)
	require.Equal(t, "0.39.0", r.Version)
}

func TestResolveSkipsReleasesWithoutPlatformFile(t *testing.T) {
	catalog := release.Catalog{
		newRelease("0.39.2", true, "darwin", "x64"),
		newRelease("0.39.1", true, "linux", "x64", "darwin", "arm64"),
	}
	r, f, ok := Resolve("0.39", "darwin", "arm64", catalog, Options{})
	require.True(t, ok)
	require.Equal(t, "0.39.1", r.Version)
	require.Equal(t, "arm64", f.Arch)
}

func TestResolveNoPlatformMatch(t *testing.T) {
	catalog := release.Catalog{
		linuxRelease("0.59.0"),
		linuxRelease("0.58.0"),
	}
	for _, spec := range []string{"0.59.0", "0.58", ">=0.1", "stable", "oldstable"} {
		_, _, ok := Resolve(spec, "win32", "x64", catalog, Options{})
		require.False(t, ok, spec)
	}
	_, _, ok := Resolve("0.59.0", "linux", "x64", release.Catalog{}, Options{})
	require.False(t, ok)
}

func TestResolveStableOnly(t *testing.T) {
	catalog := release.Catalog{
		newRelease("0.60.0", false, "linux", "x64"),
		linuxRelease("0.59.0"),
	}
	r, _, ok := Resolve(">=0.59", "linux", "x64", catalog, Options{})
	require.True(t, ok)
	require.Equal(t, "0.60.0", r.Version)

	r, _, ok = Resolve(">=0.59", "linux", "x64", catalog, Options{StableOnly: true})
	require.True(t, ok)
	require.Equal(t, "0.59.0", r.Version)
}

func TestResolvePrerelease(t *testing.T) {
	catalog := release.Catalog{
		newRelease("0.22.0-beta.1", false, "linux", "x64"),
		linuxRelease("0.21.0"),
	}
	// ranges without a prerelease never match prereleases
	r, _, ok := Resolve(">=0.21", "linux", "x64", catalog, Options{})
	require.True(t, ok)
	require.Equal(t, "0.21.0", r.Version)

	r, _, ok = Resolve("0.22.0-beta.1", "linux", "x64", catalog, Options{})
	require.True(t, ok)
	require.Equal(t, "0.22.0-beta.1", r.Version)
}

func TestResolveInvalidSpec(t *testing.T) {
	_, _, ok := Resolve("not a version", "linux", "x64", release.Catalog{linuxRelease("1.0.0")}, Options{})
	require.False(t, ok)
}

func TestResolveSkipsInvalidCatalogVersions(t *testing.T) {
	catalog := release.Catalog{linuxRelease("nightly"), linuxRelease("1.0.0")}
	r, _, ok := Resolve("1", "linux", "x64", catalog, Options{})
	require.True(t, ok)
	require.Equal(t, "1.0.0", r.Version)
}

func TestResolveAlias(t *testing.T) {
	catalog := release.Catalog{
		linuxRelease("0.58.0"),
		linuxRelease("0.57.2"),
	}
	v, ok := ResolveAlias("stable", "linux", "x64", catalog)
	require.True(t, ok)
	require.Equal(t, "0.58.0", v)

	v, ok = ResolveAlias("oldstable", "linux", "x64", catalog)
	require.True(t, ok)
	require.Equal(t, "0.57.2", v)

	r, _, ok := Resolve("oldstable", "linux", "x64", catalog, Options{})
	require.True(t, ok)
	require.Equal(t, "0.57.2", r.Version)
}

func TestResolveAliasNewestPatchOfSecondLine(t *testing.T) {
	catalog := release.Catalog{
		newRelease("0.59.0-rc.1", false, "linux", "x64"),
		linuxRelease("0.58.1"),
		linuxRelease("0.58.0"),
		linuxRelease("0.57.3"),
		linuxRelease("0.57.2"),
		linuxRelease("0.56.0"),
	}
	v, ok := ResolveAlias("stable", "linux", "x64", catalog)
	require.True(t, ok)
	require.Equal(t, "0.58.1", v)

	v, ok = ResolveAlias("oldstable", "linux", "x64", catalog)
	require.True(t, ok)
	require.Equal(t, "0.57.3", v)
}

func TestResolveAliasSingleLine(t *testing.T) {
	catalog := release.Catalog{
		linuxRelease("0.58.1"),
		linuxRelease("0.58.0"),
	}
	_, ok := ResolveAlias("oldstable", "linux", "x64", catalog)
	require.False(t, ok)

	_, ok = ResolveAlias("stable", "linux", "x64", release.Catalog{})
	require.False(t, ok)

	_, ok = ResolveAlias("latest", "linux", "x64", catalog)
	require.False(t, ok)
}
