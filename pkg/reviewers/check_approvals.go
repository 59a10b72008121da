package reviewers

import (
	"context"
	"log/slog"

	"github.com/tzrikka/revowners/internal/logger"
	"github.com/tzrikka/revowners/pkg/markdown"
	"github.com/tzrikka/revowners/pkg/owners"
)

// CheckApprovals checks whether the approvers of the merge request of the
// source branch satisfy the quorum rules. If they don't, the author is notified
// (and for missing team approvals, a thread is also started in the merge request),
// and the CI job fails. Draft merge requests are skipped, with a comment, and
// the CI job fails too, so they can't be merged before a real check.
func (r *Runner) CheckApprovals(ctx context.Context) (Result, error) {
	ctx, mr, err := r.mergeRequest(ctx)
	if err != nil {
		return Result{}, err
	}

	if mr.Draft {
		return r.skipDraft(ctx, FlowCheckApprovals, mr, true)
	}

	l := logger.FromContext(ctx)
	approvers, err := r.platform.Approvers(ctx, mr.IID)
	if err != nil {
		return Result{}, err
	}
	paths, err := r.platform.ChangedPaths(ctx, mr.IID)
	if err != nil {
		return Result{}, err
	}
	l.Debug("merge request state", slog.Any("changed_paths", paths), slog.Any("approvers", approvers))

	c, err := r.ownershipConfig(ctx)
	if err != nil {
		return Result{}, err
	}

	p := r.cfg.Policy()
	v := owners.Validate(paths, approvers, c, mr.Author.Username, p)
	res := Result{MergeRequest: mr.IID, Outcome: v.Kind.String(), Fail: v.Kind != owners.Approved}

	switch v.Kind {
	case owners.Approved:
		l.Info("merge request approved")

	case owners.InsufficientTotal:
		l.Warn("insufficient approvals", slog.Int("min", p.MinApprovals))
		text := markdown.InsufficientApprovals(p.MinApprovals)
		if err := r.messenger.SendMessage(ctx, mr.Author.Username, text); err != nil {
			return Result{}, err
		}

	case owners.MissingTeamApprovals:
		l.Warn("missing team approvals", slog.Any("teams", v.Teams))
		text := markdown.MissingApprovals(owners.MembersOf(v.Teams, c.Teams))
		if err := r.platform.CreateThread(ctx, mr.IID, text); err != nil {
			return Result{}, err
		}
		if err := r.messenger.SendMessage(ctx, mr.Author.Username, text); err != nil {
			return Result{}, err
		}
	}

	return r.done(ctx, FlowCheckApprovals, res), nil
}
