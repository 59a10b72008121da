// Package markdown renders the GitLab comments and Mattermost
// messages about merge request reviewers and approvals.
package markdown
