package reviewers

import (
	"context"
	"log/slog"
	"slices"

	"github.com/tzrikka/revowners/internal/logger"
	"github.com/tzrikka/revowners/internal/otel"
	"github.com/tzrikka/revowners/pkg/markdown"
	"github.com/tzrikka/revowners/pkg/owners"
)

// SetReviewers assigns reviewers to the merge request of the source branch:
// its existing reviewers, the members of the teams which own the changed files,
// and random reviewers to fill the quota. Then it posts a summary comment, and
// notifies the author and all the new reviewers, if there are any.
//
// Draft merge requests are skipped, with a comment, and the CI job doesn't fail.
func (r *Runner) SetReviewers(ctx context.Context) (Result, error) {
	ctx, mr, err := r.mergeRequest(ctx)
	if err != nil {
		return Result{}, err
	}

	if mr.Draft {
		return r.skipDraft(ctx, FlowSetReviewers, mr, false)
	}

	l := logger.FromContext(ctx)
	paths, err := r.platform.ChangedPaths(ctx, mr.IID)
	if err != nil {
		return Result{}, err
	}
	existing := mr.ReviewerUsernames()
	l.Debug("merge request state", slog.Any("changed_paths", paths), slog.Any("existing_reviewers", existing))

	c, err := r.ownershipConfig(ctx)
	if err != nil {
		return Result{}, err
	}

	teams, unowned := owners.Resolve(paths, c.Paths)
	if len(unowned) > 0 {
		l.Info("changed files without owners", slog.Any("paths", unowned))
	}

	sel, err := owners.Select(owners.SelectInput{
		Author:        mr.Author.Username,
		Existing:      existing,
		TeamMembers:   owners.MembersOf(teams, c.Teams),
		MinReviewers:  r.cfg.MinReviewers,
		ExcludedTeams: r.cfg.TeamExclude,
		AllTeams:      c.Teams,
	}, r.rng)
	if err != nil {
		return Result{}, err
	}

	l.Info("selected reviewers", slog.Any("teams", sel.Teams), slog.Any("reviewers", sel.Reviewers),
		slog.Any("random", sel.Random))
	otel.IncrementCounter(ctx, "revowners.reviewers.random", int64(len(sel.Random)), nil)

	ids, err := r.reviewerIDs(ctx, c.Users, mr.ReviewerIDs(), sel.Reviewers)
	if err != nil {
		return Result{}, err
	}
	if err := r.platform.SetReviewers(ctx, mr.IID, ids); err != nil {
		return Result{}, err
	}
	if err := r.platform.CreateComment(ctx, mr.IID, markdown.ReviewersComment(sel.Teams, sel.Outside)); err != nil {
		return Result{}, err
	}

	added := markdown.NewReviewers(sel.Reviewers, existing)
	if len(added) == 0 {
		l.Info("no new reviewers, skipping notifications")
		return r.done(ctx, FlowSetReviewers, Result{MergeRequest: mr.IID, Outcome: OutcomeUnchanged}), nil
	}

	if err := r.notifyNewReviewers(ctx, mr.Title, mr.WebURL, mr.Author.Username, sel, added); err != nil {
		return Result{}, err
	}

	return r.done(ctx, FlowSetReviewers, Result{MergeRequest: mr.IID, Outcome: OutcomeAssigned}), nil
}

// reviewerIDs maps reviewer usernames to GitLab user IDs. The IDs of the merge
// request's existing reviewers are already known, and the rest are based on the
// users list of the ownership file. Usernames which are missing from both are
// either looked up in GitLab, or skipped, depending on the configuration.
func (r *Runner) reviewerIDs(ctx context.Context, users []owners.User, known map[string]int, usernames []string) ([]int, error) {
	var ids []int
	unknown := make([]string, 0, len(usernames))
	for _, username := range usernames {
		if id, ok := known[username]; ok {
			ids = append(ids, id)
		} else {
			unknown = append(unknown, username)
		}
	}

	fromFile, missing := owners.IDsOf(users, unknown)
	ids = append(ids, fromFile...)

	l := logger.FromContext(ctx)
	if len(missing) > 0 && !r.cfg.ResolveMissingUsers {
		l.Warn("reviewers without GitLab IDs in ownership file", slog.Any("usernames", missing))
		missing = nil
	}

	lookup := func(username string) (int, error) {
		return r.platform.UserIDByUsername(ctx, username)
	}
	for _, username := range missing {
		id, err := r.userIDs.GetOrLoad(username, lookup)
		if err != nil {
			return nil, err
		}
		if id == 0 {
			l.Warn("reviewer not found in GitLab", slog.String("username", username))
			continue
		}
		ids = append(ids, id)
	}

	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func (r *Runner) notifyNewReviewers(ctx context.Context, title, webURL, author string, sel owners.Selection, added []string) error {
	summary := markdown.AuthorSummary(title, webURL, sel.Teams, sel.Outside)
	err := r.messenger.SendRichMessage(ctx, author, markdown.AuthorSummaryTitle, "", markdown.AuthorSummaryColor, summary)
	if err != nil {
		return err
	}

	projectURL := r.cfg.GitLabProjectURL
	if projectURL == "" {
		projectURL = markdown.ProjectURL(webURL)
	}

	for _, reviewer := range added {
		text := markdown.ReviewRequest(title, webURL, author, reviewer, projectURL)
		err := r.messenger.SendRichMessage(ctx, reviewer, markdown.ReviewRequestTitle, "", markdown.ReviewRequestColor, text)
		if err != nil {
			return err
		}
	}

	logger.FromContext(ctx).Info("notified author and new reviewers", slog.Any("new_reviewers", added))
	return nil
}
