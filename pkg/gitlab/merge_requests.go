package gitlab

import (
	"context"
	"fmt"
	"slices"

	gl "gitlab.com/gitlab-org/api/client-go"
)

// diffsPerPage is the maximum page size of GitLab's list APIs.
const diffsPerPage = 100

// MergeRequest is the subset of GitLab's merge request fields that the reviewer flows use.
type MergeRequest struct {
	IID       int
	Title     string
	WebURL    string
	Draft     bool
	Author    User
	Reviewers []User
}

type User struct {
	ID       int
	Username string
}

func userOf(u *gl.BasicUser) User {
	if u == nil {
		return User{}
	}
	return User{ID: u.ID, Username: u.Username}
}

// ReviewerUsernames returns the sorted usernames of the merge request's current reviewers.
func (mr MergeRequest) ReviewerUsernames() []string {
	names := make([]string, 0, len(mr.Reviewers))
	for _, r := range mr.Reviewers {
		names = append(names, r.Username)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// ReviewerIDs maps the usernames of the merge request's current
// reviewers to their GitLab IDs (which are always known).
func (mr MergeRequest) ReviewerIDs() map[string]int {
	ids := make(map[string]int, len(mr.Reviewers))
	for _, r := range mr.Reviewers {
		if r.ID != 0 {
			ids[r.Username] = r.ID
		}
	}
	return ids
}

// MergeRequestByBranch returns the first merge request whose source branch is the given one.
//
// Based on: https://docs.gitlab.com/api/merge_requests/#list-project-merge-requests
func (c *Client) MergeRequestByBranch(ctx context.Context, branch string) (*MergeRequest, error) {
	opts := &gl.ListProjectMergeRequestsOptions{SourceBranch: gl.Ptr(branch)}
	mrs, _, err := c.api.MergeRequests.ListProjectMergeRequests(c.projectID, opts, gl.WithContext(ctx))
	if err != nil {
		return nil, upstreamError("list merge requests", err)
	}

	if len(mrs) == 0 || mrs[0] == nil {
		return nil, fmt.Errorf("%w: source branch %q", ErrMergeRequestNotFound, branch)
	}

	first := mrs[0]
	mr := &MergeRequest{
		IID:    first.IID,
		Title:  first.Title,
		WebURL: first.WebURL,
		Draft:  first.Draft,
		Author: userOf(first.Author),
	}
	for _, r := range first.Reviewers {
		mr.Reviewers = append(mr.Reviewers, userOf(r))
	}

	return mr, nil
}

// ChangedPaths returns the sorted set of old and new paths of all the files
// which were changed in a merge request (renamed files appear twice).
//
// Based on: https://docs.gitlab.com/api/merge_requests/#list-merge-request-diffs
func (c *Client) ChangedPaths(ctx context.Context, iid int) ([]string, error) {
	opts := &gl.ListMergeRequestDiffsOptions{ListOptions: gl.ListOptions{PerPage: diffsPerPage, Page: 1}}

	var paths []string
	for {
		diffs, resp, err := c.api.MergeRequests.ListMergeRequestDiffs(c.projectID, iid, opts, gl.WithContext(ctx))
		if err != nil {
			return nil, upstreamError("list merge request diffs", err)
		}

		for _, d := range diffs {
			if d != nil {
				paths = append(paths, d.OldPath, d.NewPath)
			}
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	paths = slices.DeleteFunc(paths, func(p string) bool { return p == "" })
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

// Approvers returns the sorted usernames of all the users who approved a merge request.
//
// Based on: https://docs.gitlab.com/api/merge_request_approvals/#retrieve-approval-state-for-a-merge-request
func (c *Client) Approvers(ctx context.Context, iid int) ([]string, error) {
	approvals, _, err := c.api.MergeRequestApprovals.GetConfiguration(c.projectID, iid, gl.WithContext(ctx))
	if err != nil {
		return nil, upstreamError("get merge request approvals", err)
	}

	var names []string
	for _, a := range approvals.ApprovedBy {
		if a != nil && a.User != nil {
			names = append(names, a.User.Username)
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// SetReviewers replaces the reviewers of a merge request.
//
// Based on: https://docs.gitlab.com/api/merge_requests/#update-mr
func (c *Client) SetReviewers(ctx context.Context, iid int, ids []int) error {
	if ids == nil {
		ids = []int{}
	}

	opts := &gl.UpdateMergeRequestOptions{ReviewerIDs: &ids}
	if _, _, err := c.api.MergeRequests.UpdateMergeRequest(c.projectID, iid, opts, gl.WithContext(ctx)); err != nil {
		return upstreamError("set merge request reviewers", err)
	}
	return nil
}

// CreateComment posts a note in a merge request.
//
// Based on: https://docs.gitlab.com/api/notes/#create-new-merge-request-note
func (c *Client) CreateComment(ctx context.Context, iid int, body string) error {
	opts := &gl.CreateMergeRequestNoteOptions{Body: gl.Ptr(body)}
	if _, _, err := c.api.Notes.CreateMergeRequestNote(c.projectID, iid, opts, gl.WithContext(ctx)); err != nil {
		return upstreamError("create merge request comment", err)
	}
	return nil
}

// CreateThread starts a new (resolvable) discussion in a merge request.
//
// Based on: https://docs.gitlab.com/api/discussions/#create-new-merge-request-thread
func (c *Client) CreateThread(ctx context.Context, iid int, body string) error {
	opts := &gl.CreateMergeRequestDiscussionOptions{Body: gl.Ptr(body)}
	if _, _, err := c.api.Discussions.CreateMergeRequestDiscussion(c.projectID, iid, opts, gl.WithContext(ctx)); err != nil {
		return upstreamError("create merge request thread", err)
	}
	return nil
}
