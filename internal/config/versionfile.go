package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/airslate-oss/setup-specmatic/pkg/release"
	"github.com/sirupsen/logrus"
)

var versionFileRegex = regexp.MustCompile(`(?m)^(\d+(\.\d+)*)`)

// ParseVersionFile returns the first line of contents starting with a dotted
// numeric version, or an empty string.
func ParseVersionFile(contents string) string {
	match := versionFileRegex.FindStringSubmatch(contents)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// ResolveVersionInput picks the version to install from the version input or
// the version file. The version input wins when both are given.
func ResolveVersionInput(log logrus.FieldLogger, version, versionFile string) (string, error) {
	if version != "" && versionFile != "" {
		log.Warn("Both specmatic-version and specmatic-version-file inputs are specified, only specmatic-version will be used")
	}
	if version != "" {
		return version, nil
	}
	if versionFile == "" {
		return "", nil
	}
	contents, err := os.ReadFile(versionFile)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("The specified specmatic version file at: %s does not exist: %w", versionFile, release.ErrVersionFileNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read version file %s: %w", versionFile, err)
	}
	return ParseVersionFile(string(contents)), nil
}
