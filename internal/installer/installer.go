package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/airslate-oss/setup-specmatic/pkg/release"
	"github.com/sirupsen/logrus"
)

const launcherMode = 0o555

type Downloader interface {
	Download(ctx context.Context, url, dir string) (string, error)
}

type Cache interface {
	CacheFile(source, fileName, tool, version, arch string) (string, error)
}

type Installer struct {
	downloader Downloader
	cache      Cache
	tempDir    string
	platform   string
	log        logrus.FieldLogger
}

// New creates an installer writing launchers for platform. Downloads are
// stored in tempDir before being copied into the cache.
func New(downloader Downloader, cache Cache, tempDir, platform string, log logrus.FieldLogger) *Installer {
	return &Installer{
		downloader: downloader,
		cache:      cache,
		tempDir:    tempDir,
		platform:   platform,
		log:        log,
	}
}

// Install downloads the artifact, stores it in the tool cache and creates the
// launcher next to it. It returns the install directory.
func (i *Installer) Install(ctx context.Context, artifact *release.Artifact, arch string) (string, error) {
	i.log.Infof("Acquiring %s from %s...", artifact.ResolvedVersion, artifact.DownloadURL)
	downloadPath, err := i.downloader.Download(ctx, artifact.DownloadURL, i.tempDir)
	if err != nil {
		return "", &release.DownloadError{Version: artifact.ResolvedVersion, URL: artifact.DownloadURL, Err: err}
	}
	defer os.Remove(downloadPath)
	i.log.Infof("Successfully downloaded %s to %s", artifact.ToolName, downloadPath)

	i.log.Info("Adding to the cache...")
	installPath, err := i.cache.CacheFile(downloadPath, artifact.FileName, artifact.ToolName, artifact.ResolvedVersion, arch)
	if err != nil {
		return "", &release.CacheError{Version: artifact.ResolvedVersion, Path: downloadPath, Err: err}
	}
	if err := artifact.SetInstallPath(installPath); err != nil {
		return "", &release.CacheError{Version: artifact.ResolvedVersion, Path: installPath, Err: err}
	}
	i.log.Infof("Successfully cached %s to %s", artifact.ToolName, installPath)

	if err := i.writeLauncher(artifact); err != nil {
		return "", &release.CacheError{Version: artifact.ResolvedVersion, Path: installPath, Err: err}
	}
	return installPath, nil
}

// LauncherName returns the file name of the launcher of tool on platform.
func LauncherName(tool, platform string) string {
	if release.IsWindows(platform) {
		return tool + ".bat"
	}
	return tool
}

// Launcher renders the script starting the jar at jarPath with all arguments
// forwarded.
func Launcher(tool, jarPath, platform string) string {
	cmd := fmt.Sprintf(`java -jar "%s"`, jarPath)
	if release.IsWindows(platform) {
		return fmt.Sprintf("start %s %%*\r\n", cmd)
	}
	return fmt.Sprintf("#!/usr/bin/env bash\nexec -a %s %s \"$@\"\n", tool, cmd)
}

func (i *Installer) writeLauncher(artifact *release.Artifact) error {
	i.log.Info("Creating executable...")
	jarPath := filepath.Join(artifact.InstallPath, artifact.FileName)
	scriptPath := filepath.Join(artifact.InstallPath, LauncherName(artifact.ToolName, i.platform))

	script := Launcher(artifact.ToolName, jarPath, i.platform)
	if err := os.WriteFile(scriptPath, []byte(script), launcherMode); err != nil {
		return fmt.Errorf("failed to write launcher: %w", err)
	}
	// WriteFile keeps the mode of an existing file and applies the umask
	if err := os.Chmod(scriptPath, launcherMode); err != nil {
		return fmt.Errorf("failed to make launcher executable: %w", err)
	}
	i.log.Infof("Successfully created executable at %s", scriptPath)
	return nil
}
