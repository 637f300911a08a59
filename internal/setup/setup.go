package setup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/airslate-oss/setup-specmatic/internal/catalog"
	"github.com/airslate-oss/setup-specmatic/internal/config"
	"github.com/airslate-oss/setup-specmatic/internal/resolver"
	"github.com/airslate-oss/setup-specmatic/pkg/release"
	"github.com/sirupsen/logrus"
)

type Cache interface {
	Find(tool, spec, arch string) (string, bool)
}

type Installer interface {
	Install(ctx context.Context, artifact *release.Artifact, arch string) (string, error)
}

type Result struct {
	InstallDir string
	Version    string
	// Source is empty when the tool was found in the cache.
	Source   release.SourceKind
	CacheHit bool
}

// Setup makes a version of a tool available, preferring the tool cache, then
// the curated manifest and finally the upstream releases.
type Setup struct {
	tool      *config.Tool
	manifest  *catalog.Memo
	dist      *catalog.Memo
	cache     Cache
	installer Installer
	platform  string
	log       logrus.FieldLogger
}

func New(tool *config.Tool, manifest, dist catalog.Source, cache Cache, installer Installer, platform string, log logrus.FieldLogger) *Setup {
	return &Setup{
		tool:      tool,
		manifest:  catalog.NewMemo(manifest),
		dist:      catalog.NewMemo(dist),
		cache:     cache,
		installer: installer,
		platform:  platform,
		log:       log,
	}
}

// Acquire resolves spec and returns the directory the tool is installed in.
func (s *Setup) Acquire(ctx context.Context, spec string, checkLatest bool, token, arch string) (*Result, error) {
	// catalogs are fetched at most once per run
	s.manifest.Invalidate()
	s.dist.Invalidate()

	if release.IsAlias(spec) {
		version, err := s.resolveAlias(ctx, spec, token, arch)
		if err != nil {
			return nil, err
		}
		s.log.Infof("%s version resolved as %s", spec, version)
		spec = version
	} else if _, err := resolver.NewConstraint(spec); err != nil {
		return nil, err
	}

	if checkLatest {
		spec = s.resolveLatest(ctx, spec, token, arch)
	}

	if path, ok := s.cache.Find(s.tool.Name, spec, arch); ok {
		s.log.Infof("Found in cache: %s", path)
		return &Result{
			InstallDir: path,
			Version:    filepath.Base(filepath.Dir(path)),
			CacheHit:   true,
		}, nil
	}

	s.log.Infof("Attempting to download %s...", spec)
	res, err := s.installFromManifest(ctx, spec, token, arch)
	switch {
	case err != nil:
		s.logManifestError(err)
		s.log.Info("Falling back to download directly from Specmatic")
	case res == nil:
		s.log.Info("Not found in manifest.  Falling back to download directly from Specmatic")
	default:
		return res, nil
	}

	return s.installFromDist(ctx, spec, token, arch)
}

// logManifestError warns about exceeded rate limits and reports any other
// failure as a regular message.
func (s *Setup) logManifestError(err error) {
	var netErr *release.NetworkError
	if errors.As(err, &netErr) && netErr.IsRateLimited() {
		s.log.Warnf("Received HTTP status code %d.  This usually indicates the rate limit has been exceeded", netErr.StatusCode)
		return
	}
	s.log.Info(err.Error())
}

func (s *Setup) resolveAlias(ctx context.Context, alias, token, arch string) (string, error) {
	manifest, err := s.manifest.FetchCatalog(ctx, token)
	if err != nil {
		s.logManifestError(err)
		s.log.Infof("Unable to resolve %s from the manifest", alias)
	} else if version, ok := resolver.ResolveAlias(alias, s.platform, arch, manifest); ok {
		return version, nil
	}

	dist, err := s.dist.FetchCatalog(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s releases: %w", s.tool.Name, err)
	}
	version, ok := resolver.ResolveAlias(alias, s.platform, arch, dist)
	if !ok {
		return "", s.resolutionError(alias, arch)
	}
	return version, nil
}

func (s *Setup) resolveLatest(ctx context.Context, spec, token, arch string) string {
	s.log.Info("Attempting to resolve the latest version from the manifest...")
	manifest, err := s.manifest.FetchCatalog(ctx, token)
	if err != nil {
		s.logManifestError(err)
		s.log.Info("Unable to resolve a version from the manifest...")
		return spec
	}
	r, _, ok := resolver.Resolve(spec, s.platform, arch, manifest, resolver.Options{StableOnly: true})
	if !ok {
		s.log.Infof("Failed to resolve version %s from manifest", spec)
		return spec
	}
	s.log.Infof("Resolved as '%s'", r.Version)
	return r.Version
}

// installFromManifest returns a nil result without error when spec is not
// part of the manifest.
func (s *Setup) installFromManifest(ctx context.Context, spec, token, arch string) (*Result, error) {
	manifest, err := s.manifest.FetchCatalog(ctx, token)
	if err != nil {
		return nil, err
	}
	s.log.Debugf("matching %s...", spec)
	r, f, ok := resolver.Resolve(spec, s.platform, arch, manifest, resolver.Options{StableOnly: true})
	if !ok {
		return nil, nil
	}
	artifact := release.NewArtifact(release.SourceManifest, s.tool.Name, r.Version, f)
	installDir, err := s.installer.Install(ctx, artifact, arch)
	if err != nil {
		return nil, err
	}
	return &Result{
		InstallDir: installDir,
		Version:    artifact.ResolvedVersion,
		Source:     artifact.Source,
	}, nil
}

func (s *Setup) installFromDist(ctx context.Context, spec, token, arch string) (*Result, error) {
	dist, err := s.dist.FetchCatalog(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s releases: %w", s.tool.Name, err)
	}
	r, f, ok := resolver.Resolve(spec, s.platform, arch, dist, resolver.Options{})
	if !ok {
		return nil, s.resolutionError(spec, arch)
	}
	artifact := release.NewArtifact(release.SourceDist, s.tool.Name, r.Version, f)
	s.log.Info("Install from dist")
	installDir, err := s.installer.Install(ctx, artifact, arch)
	if err != nil {
		return nil, fmt.Errorf("failed to download version %s: %w", spec, err)
	}
	return &Result{
		InstallDir: installDir,
		Version:    artifact.ResolvedVersion,
		Source:     artifact.Source,
	}, nil
}

func (s *Setup) resolutionError(spec, arch string) error {
	return &release.ResolutionError{Spec: spec, Platform: s.platform, Arch: arch}
}
