package config

import "fmt"

type Tool struct {
	Name         string
	Repo         string
	ArtifactName string
	ManifestRepo string
	ManifestRef  string
	ManifestPath string
	Description  string
}

func (t *Tool) GetDistDownloadURL(tag string) string {
	return fmt.Sprintf("https://github.com/%s/releases/download/%s/%s", t.Repo, tag, t.ArtifactName)
}

func (t *Tool) GetReleasesURL() string {
	return fmt.Sprintf("https://api.github.com/repos/%s/releases", t.Repo)
}

var Specmatic = &Tool{
	Name:         "specmatic",
	Repo:         "znsio/specmatic",
	ArtifactName: "specmatic.jar",
	ManifestRepo: "airslate-oss/setup-specmatic",
	ManifestRef:  "main",
	ManifestPath: "versions-manifest.json",
	Description:  "Contract driven development tool that turns API specifications into executable contracts.",
}
