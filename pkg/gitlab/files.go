package gitlab

import (
	"context"
	"fmt"

	gl "gitlab.com/gitlab-org/api/client-go"
)

// RawFile returns the raw content of a repository file in a specific branch.
// A file which doesn't exist is reported as [ErrConfigMissing].
//
// Based on: https://docs.gitlab.com/api/repository_files/#retrieve-a-raw-file-from-a-repository
func (c *Client) RawFile(ctx context.Context, branch, path string) ([]byte, error) {
	opts := &gl.GetRawFileOptions{Ref: gl.Ptr(branch)}
	body, resp, err := c.api.RepositoryFiles.GetRawFile(c.projectID, path, opts, gl.WithContext(ctx))
	if err != nil {
		if isNotFound(resp, err) {
			return nil, fmt.Errorf("%w: %q in branch %q", ErrConfigMissing, path, branch)
		}
		return nil, upstreamError("read repository file", err)
	}

	return body, nil
}
