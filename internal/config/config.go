package config

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/airslate-oss/setup-specmatic/pkg/release"
	"github.com/google/go-github/v59/github"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/oauth2"
)

// BoolInput parses an action input following the YAML 1.2 core schema. An
// empty input is false.
type BoolInput bool

func (b *BoolInput) Decode(value string) error {
	switch strings.TrimSpace(value) {
	case "true", "True", "TRUE":
		*b = true
	case "false", "False", "FALSE", "":
		*b = false
	default:
		return fmt.Errorf("input %q does not meet YAML 1.2 \"Core Schema\" specification, support boolean input list: `true | True | TRUE | false | False | FALSE`", value)
	}
	return nil
}

// IntInput parses an integer action input. An empty input is zero.
type IntInput int

func (i *IntInput) Decode(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		*i = 0
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer input %q: %w", value, err)
	}
	*i = IntInput(n)
	return nil
}

type ActionConfig struct {
	SpecmaticVersion     string    `envconfig:"INPUT_SPECMATIC-VERSION"`
	SpecmaticVersionFile string    `envconfig:"INPUT_SPECMATIC-VERSION-FILE"`
	CheckLatest          BoolInput `envconfig:"INPUT_CHECK-LATEST"`
	Token                string    `envconfig:"INPUT_TOKEN"`
	Architecture         string    `envconfig:"INPUT_ARCHITECTURE"`
	HTTPRetries          IntInput  `envconfig:"INPUT_HTTP-RETRIES"`
	ToolCache            string    `envconfig:"RUNNER_TOOL_CACHE"`
	Temp                 string    `envconfig:"RUNNER_TEMP"`
	PathFile             string    `envconfig:"GITHUB_PATH"`
	OutputFile           string    `envconfig:"GITHUB_OUTPUT"`
	Actions              BoolInput `envconfig:"GITHUB_ACTIONS"`
}

func NewActionConfigFromEnv() (*ActionConfig, error) {
	var aCfg ActionConfig
	err := envconfig.Process("", &aCfg)
	if err != nil {
		return nil, err
	}
	return &aCfg, nil
}

// GetArch returns the requested architecture, defaulting to the one of the
// running machine.
func (a *ActionConfig) GetArch() string {
	if a.Architecture != "" {
		return a.Architecture
	}
	return release.CurrentArch()
}

func (a *ActionConfig) GetToolCacheDir() (string, error) {
	if a.ToolCache != "" {
		return a.ToolCache, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("RUNNER_TOOL_CACHE is not set: %w", err)
	}
	return filepath.Join(dir, "setup-specmatic", "tool-cache"), nil
}

func (a *ActionConfig) GetTempDir() string {
	if a.Temp != "" {
		return a.Temp
	}
	return os.TempDir()
}

// GitHubClientFactory returns a constructor for GitHub clients sending their
// requests through base.
func GitHubClientFactory(base *http.Client) func(ctx context.Context, token string) *github.Client {
	return func(ctx context.Context, token string) *github.Client {
		if token == "" {
			return github.NewClient(base)
		}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		oauthClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		return github.NewClient(oauthClient)
	}
}
