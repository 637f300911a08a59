package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/airslate-oss/setup-specmatic/internal/config"
	"github.com/airslate-oss/setup-specmatic/pkg/release"
	"github.com/google/go-github/v59/github"
)

type JSONFetcher interface {
	GetJSON(ctx context.Context, url, token string, v any) error
}

// ManifestSource reads the curated versions manifest kept in the action repository.
type ManifestSource struct {
	tool      *config.Tool
	newClient ClientFactory
	fetcher   JSONFetcher
}

func NewManifestSource(tool *config.Tool, newClient ClientFactory, fetcher JSONFetcher) *ManifestSource {
	return &ManifestSource{
		tool:      tool,
		newClient: newClient,
		fetcher:   fetcher,
	}
}

func (s *ManifestSource) Name() string {
	return string(release.SourceManifest)
}

func (s *ManifestSource) FetchCatalog(ctx context.Context, token string) (release.Catalog, error) {
	owner, repo := getOwnerRepo(s.tool.ManifestRepo)
	if owner == "" {
		return nil, fmt.Errorf("invalid manifest repository %q", s.tool.ManifestRepo)
	}
	url := repoURL(s.tool.ManifestRepo, "contents/%s?ref=%s", s.tool.ManifestPath, s.tool.ManifestRef)

	file, _, _, err := s.newClient(ctx, token).Repositories.GetContents(ctx, owner, repo, s.tool.ManifestPath, &github.RepositoryContentGetOptions{
		Ref: s.tool.ManifestRef,
	})
	if err != nil {
		return nil, toNetworkError(err, url)
	}
	if file == nil {
		return nil, fmt.Errorf("manifest %s is not a file", s.tool.ManifestPath)
	}

	var manifest release.Catalog
	// the contents API omits inline content for files larger than 1MB
	if file.GetEncoding() == "none" || file.Content == nil {
		if file.GetDownloadURL() == "" {
			return nil, fmt.Errorf("manifest %s has no content", s.tool.ManifestPath)
		}
		if err := s.fetcher.GetJSON(ctx, file.GetDownloadURL(), token, &manifest); err != nil {
			return nil, err
		}
	} else {
		content, err := file.GetContent()
		if err != nil {
			return nil, fmt.Errorf("failed to decode manifest: %w", err)
		}
		if err := json.Unmarshal([]byte(content), &manifest); err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %w", err)
		}
	}

	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return manifest, nil
}
