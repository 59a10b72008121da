package gitlab

import (
	"context"

	gl "gitlab.com/gitlab-org/api/client-go"
)

// UserIDByUsername returns the ID of a GitLab user, or 0 if there isn't such a user.
//
// Based on: https://docs.gitlab.com/api/users/#list-users
func (c *Client) UserIDByUsername(ctx context.Context, username string) (int, error) {
	users, _, err := c.api.Users.ListUsers(&gl.ListUsersOptions{Username: gl.Ptr(username)}, gl.WithContext(ctx))
	if err != nil {
		return 0, upstreamError("look up GitLab user", err)
	}

	for _, u := range users {
		if u != nil && u.Username == username {
			return u.ID, nil
		}
	}
	return 0, nil
}
