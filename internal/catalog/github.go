package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/airslate-oss/setup-specmatic/pkg/release"
	"github.com/google/go-github/v59/github"
)

// ClientFactory creates a GitHub client authenticated with token. An empty
// token yields an anonymous client.
type ClientFactory func(ctx context.Context, token string) *github.Client

func getOwnerRepo(fullRepo string) (string, string) {
	owner, repo, found := strings.Cut(fullRepo, "/")
	if !found {
		return "", ""
	}

	return owner, repo
}

func toNetworkError(err error, url string) error {
	if err == nil {
		return nil
	}
	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &release.NetworkError{Kind: release.RateLimited, StatusCode: statusCode(rateLimitErr.Response), URL: url, Err: err}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &release.NetworkError{Kind: release.RateLimited, StatusCode: statusCode(abuseErr.Response), URL: url, Err: err}
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		code := statusCode(respErr.Response)
		return &release.NetworkError{Kind: release.KindFromStatus(code), StatusCode: code, URL: url, Err: err}
	}
	var netErr *release.NetworkError
	if errors.As(err, &netErr) {
		return err
	}
	return &release.NetworkError{Kind: release.Transport, URL: url, Err: err}
}

func statusCode(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

func repoURL(fullRepo, format string, args ...any) string {
	return fmt.Sprintf("https://api.github.com/repos/%s/", fullRepo) + fmt.Sprintf(format, args...)
}
