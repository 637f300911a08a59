package installer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/airslate-oss/setup-specmatic/internal/fetch"
	"github.com/airslate-oss/setup-specmatic/internal/toolcache"
	"github.com/airslate-oss/setup-specmatic/pkg/release"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func getJarServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/znsio/specmatic/releases/download/0.55.0/specmatic.jar" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "jar-content")
	}))
}

func newArtifact(url string) *release.Artifact {
	return release.NewArtifact(release.SourceManifest, "specmatic", "0.55.0", &release.File{
		FileName:    "specmatic.jar",
		Platform:    "linux",
		Arch:        "x64",
		DownloadURL: url,
	})
}

func TestInstall(t *testing.T) {
	ts := getJarServer()
	defer ts.Close()

	cache := toolcache.New(t.TempDir(), logrus.New())
	inst := New(fetch.New(), cache, t.TempDir(), "linux", logrus.New())
	artifact := newArtifact(ts.URL + "/znsio/specmatic/releases/download/0.55.0/specmatic.jar")

	installPath, err := inst.Install(context.Background(), artifact, "x64")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cache.Root(), "specmatic", "0.55.0", "x64"), installPath)
	require.Equal(t, installPath, artifact.InstallPath)

	content, err := os.ReadFile(filepath.Join(installPath, "specmatic.jar"))
	require.NoError(t, err)
	require.Equal(t, "jar-content", string(content))

	launcher := filepath.Join(installPath, "specmatic")
	info, err := os.Stat(launcher)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o555), info.Mode().Perm())

	script, err := os.ReadFile(launcher)
	require.NoError(t, err)
	expected := "#!/usr/bin/env bash\nexec -a specmatic java -jar \"" + filepath.Join(installPath, "specmatic.jar") + "\" \"$@\"\n"
	require.Equal(t, expected, string(script))

	found, ok := cache.Find("specmatic", "0.55.0", "x64")
	require.True(t, ok)
	require.Equal(t, installPath, found)
}

func TestInstallWindowsLauncher(t *testing.T) {
	ts := getJarServer()
	defer ts.Close()

	cache := toolcache.New(t.TempDir(), logrus.New())
	inst := New(fetch.New(), cache, t.TempDir(), release.PlatformWindows, logrus.New())
	installPath, err := inst.Install(context.Background(), newArtifact(ts.URL+"/znsio/specmatic/releases/download/0.55.0/specmatic.jar"), "x64")
	require.NoError(t, err)

	require.NoFileExists(t, filepath.Join(installPath, "specmatic"))
	script, err := os.ReadFile(filepath.Join(installPath, "specmatic.bat"))
	require.NoError(t, err)
	require.Equal(t, "start java -jar \""+filepath.Join(installPath, "specmatic.jar")+"\" %*\r\n", string(script))
}

func TestInstallDownloadError(t *testing.T) {
	ts := getJarServer()
	defer ts.Close()

	inst := New(fetch.New(), toolcache.New(t.TempDir(), logrus.New()), t.TempDir(), "linux", logrus.New())
	artifact := newArtifact(ts.URL + "/missing.jar")
	_, err := inst.Install(context.Background(), artifact, "x64")

	var downloadErr *release.DownloadError
	require.ErrorAs(t, err, &downloadErr)
	require.Equal(t, "0.55.0", downloadErr.Version)
	var netErr *release.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, release.NotFound, netErr.Kind)
	require.Empty(t, artifact.InstallPath)
}

type failingCache struct{}

func (failingCache) CacheFile(_, _, _, _, _ string) (string, error) {
	return "", errors.New("disk full")
}

func TestInstallCacheError(t *testing.T) {
	ts := getJarServer()
	defer ts.Close()

	inst := New(fetch.New(), failingCache{}, t.TempDir(), "linux", logrus.New())
	_, err := inst.Install(context.Background(), newArtifact(ts.URL+"/znsio/specmatic/releases/download/0.55.0/specmatic.jar"), "x64")

	var cacheErr *release.CacheError
	require.ErrorAs(t, err, &cacheErr)
	require.ErrorContains(t, err, "disk full")
}

func TestLauncher(t *testing.T) {
	require.Equal(t, "specmatic", LauncherName("specmatic", "darwin"))
	require.Equal(t, "specmatic.bat", LauncherName("specmatic", "win32"))
	require.Equal(t,
		"#!/usr/bin/env bash\nexec -a specmatic java -jar \"/opt/specmatic.jar\" \"$@\"\n",
		Launcher("specmatic", "/opt/specmatic.jar", "linux"),
	)
	require.Equal(t,
		"start java -jar \"C:\\tools\\specmatic.jar\" %*\r\n",
		Launcher("specmatic", `C:\tools\specmatic.jar`, "win32"),
	)
}
