// Package gitlab wraps the GitLab REST API client, covering
// the merge request operations that the reviewer flows need.
package gitlab

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/tzrikka/revowners/internal/httpclient"
)

var (
	// ErrConfigMissing is returned when the ownership file can't be fetched.
	ErrConfigMissing = errors.New("ownership file not found")
	// ErrMergeRequestNotFound is returned when there isn't an open merge request for a branch.
	ErrMergeRequestNotFound = errors.New("merge request not found")
)

type Client struct {
	api       *gl.Client
	projectID string
}

// NewClient returns a client for a specific GitLab project.
// The base URL is the GitLab server's URL, without the "/api/v4" suffix.
// Failed requests are not retried: the CI job reports them and exits.
func NewClient(baseURL, projectID, token string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = httpclient.DefaultTimeout
	}

	api, err := gl.NewClient(token,
		gl.WithBaseURL(strings.TrimSuffix(baseURL, "/")+"/"),
		gl.WithHTTPClient(&http.Client{Timeout: timeout}),
		gl.WithoutRetries(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GitLab client: %w", err)
	}

	return &Client{api: api, projectID: projectID}, nil
}

// upstreamError marks a failed API call as an [httpclient.ErrUpstream],
// like all the other calls to external services.
func upstreamError(action string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", action, httpclient.ErrUpstream, err)
}

func isNotFound(resp *gl.Response, err error) bool {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}

	var er *gl.ErrorResponse
	return errors.As(err, &er) && er.Response != nil && er.Response.StatusCode == http.StatusNotFound
}
