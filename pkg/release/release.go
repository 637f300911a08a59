package release

import (
	"fmt"
)

type SourceKind string

const (
	SourceManifest SourceKind = "manifest"
	SourceDist     SourceKind = "dist"
)

type File struct {
	FileName    string `json:"filename"`
	Platform    string `json:"platform"`
	Arch        string `json:"arch"`
	DownloadURL string `json:"download_url"`
}

func (f *File) Matches(platform, arch string) bool {
	return f.Platform == platform && f.Arch == arch
}

type Release struct {
	Version string  `json:"version"`
	Stable  bool    `json:"stable"`
	URL     string  `json:"release_url,omitempty"`
	Files   []*File `json:"files"`
}

// FindFile returns the file built for platform/arch or nil.
func (r *Release) FindFile(platform, arch string) *File {
	for _, f := range r.Files {
		if f.Matches(platform, arch) {
			return f
		}
	}
	return nil
}

func (r *Release) Validate() error {
	seen := make(map[string]struct{}, len(r.Files))
	for _, f := range r.Files {
		key := f.Platform + "/" + f.Arch
		if _, ok := seen[key]; ok {
			return fmt.Errorf("release %s has multiple files for %s", r.Version, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Catalog is ordered by descending recency, index 0 being the most recent release.
type Catalog []*Release

func (c Catalog) Validate() error {
	for _, r := range c {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type Artifact struct {
	Source          SourceKind
	DownloadURL     string
	ResolvedVersion string
	FileName        string
	InstallPath     string
	ToolName        string
}

func NewArtifact(source SourceKind, toolName, version string, file *File) *Artifact {
	return &Artifact{
		Source:          source,
		DownloadURL:     file.DownloadURL,
		ResolvedVersion: version,
		FileName:        file.FileName,
		ToolName:        toolName,
	}
}

func (a *Artifact) SetInstallPath(path string) error {
	if a.InstallPath != "" {
		return fmt.Errorf("install path of %s@%s is already set to %s", a.ToolName, a.ResolvedVersion, a.InstallPath)
	}
	a.InstallPath = path
	return nil
}
