package catalog

import (
	"context"
	"fmt"

	"github.com/airslate-oss/setup-specmatic/internal/config"
	"github.com/airslate-oss/setup-specmatic/pkg/release"
	"github.com/google/go-github/v59/github"
)

var (
	distPlatforms = []string{release.PlatformDarwin, release.PlatformLinux, release.PlatformWindows}
	distArchs     = []string{release.ArchX64, release.ArchArm64}
)

// DistSource builds a catalog from the upstream GitHub releases. Every release
// ships a single platform independent artifact, so one file is synthesized per
// platform and arch, all pointing to the same download URL.
type DistSource struct {
	tool      *config.Tool
	newClient ClientFactory
}

func NewDistSource(tool *config.Tool, newClient ClientFactory) *DistSource {
	return &DistSource{
		tool:      tool,
		newClient: newClient,
	}
}

func (s *DistSource) Name() string {
	return string(release.SourceDist)
}

func (s *DistSource) getAllGitHubReleases(ctx context.Context, ghClient *github.Client) ([]*github.RepositoryRelease, error) {
	owner, repo := getOwnerRepo(s.tool.Repo)
	if owner == "" {
		return nil, fmt.Errorf("invalid repository %q", s.tool.Repo)
	}
	ret := make([]*github.RepositoryRelease, 0)
	opts := &github.ListOptions{Page: 1, PerPage: 100}
	for {
		releases, resp, err := ghClient.Repositories.ListReleases(ctx, owner, repo, opts)
		if err != nil {
			return nil, toNetworkError(err, s.tool.GetReleasesURL())
		}
		for _, r := range releases {
			// ignore drafts
			if r.GetDraft() {
				continue
			}
			ret = append(ret, r)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return ret, nil
}

func (s *DistSource) toRelease(ghr *github.RepositoryRelease) (*release.Release, error) {
	tag := ghr.GetTagName()
	version, err := release.Normalize(tag)
	if err != nil {
		return nil, err
	}
	downloadURL := s.tool.GetDistDownloadURL(tag)
	files := make([]*release.File, 0, len(distPlatforms)*len(distArchs))
	for _, platform := range distPlatforms {
		for _, arch := range distArchs {
			files = append(files, &release.File{
				FileName:    s.tool.ArtifactName,
				Platform:    platform,
				Arch:        arch,
				DownloadURL: downloadURL,
			})
		}
	}
	return &release.Release{
		Version: version,
		Stable:  !ghr.GetPrerelease(),
		URL:     ghr.GetHTMLURL(),
		Files:   files,
	}, nil
}

func (s *DistSource) FetchCatalog(ctx context.Context, token string) (release.Catalog, error) {
	releases, err := s.getAllGitHubReleases(ctx, s.newClient(ctx, token))
	if err != nil {
		return nil, err
	}
	ret := make(release.Catalog, 0, len(releases))
	for _, ghr := range releases {
		r, err := s.toRelease(ghr)
		if err != nil {
			// only include releases with a valid version tag
			continue
		}
		ret = append(ret, r)
	}
	return ret, nil
}
