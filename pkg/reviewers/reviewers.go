// Package reviewers implements the CI flows which assign reviewers
// to GitLab merge requests, and check their approvals, based on
// the code ownership file in the merge request's source branch.
package reviewers

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/tzrikka/revowners/internal/cache"
	"github.com/tzrikka/revowners/internal/logger"
	"github.com/tzrikka/revowners/pkg/config"
	"github.com/tzrikka/revowners/pkg/gitlab"
	"github.com/tzrikka/revowners/pkg/markdown"
	"github.com/tzrikka/revowners/pkg/metrics"
	"github.com/tzrikka/revowners/pkg/owners"
)

// Platform is the subset of the GitLab API which the flows use.
type Platform interface {
	MergeRequestByBranch(ctx context.Context, branch string) (*gitlab.MergeRequest, error)
	ChangedPaths(ctx context.Context, iid int) ([]string, error)
	Approvers(ctx context.Context, iid int) ([]string, error)
	RawFile(ctx context.Context, branch, path string) ([]byte, error)
	SetReviewers(ctx context.Context, iid int, ids []int) error
	CreateComment(ctx context.Context, iid int, body string) error
	CreateThread(ctx context.Context, iid int, body string) error
	UserIDByUsername(ctx context.Context, username string) (int, error)
}

// Messenger sends direct messages to users.
type Messenger interface {
	SendMessage(ctx context.Context, username, text string) error
	SendRichMessage(ctx context.Context, username, title, link, color, text string) error
}

const (
	FlowSetReviewers   = "set-reviewers"
	FlowCheckApprovals = "check-approvals"

	OutcomeDraft     = "draft"
	OutcomeAssigned  = "assigned"
	OutcomeUnchanged = "unchanged"
)

// Result summarizes a completed flow. Fail means that the
// CI job should fail, even though the flow itself succeeded.
type Result struct {
	MergeRequest int
	Outcome      string
	Fail         bool
}

type Runner struct {
	platform  Platform
	messenger Messenger
	cfg       *config.Config
	rng       *rand.Rand
	userIDs   *cache.Cache[string, int]
}

func NewRunner(p Platform, m Messenger, cfg *config.Config, rng *rand.Rand) *Runner {
	return &Runner{
		platform:  p,
		messenger: m,
		cfg:       cfg,
		rng:       rng,
		userIDs:   cache.New[string, int](),
	}
}

// NewRand returns a PCG-based random source. A zero seed is replaced by a random one.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed)) //gosec:disable G404 -- not a security context
}

// mergeRequest fetches the merge request of the configured source branch,
// and attaches its details to the context's logger.
func (r *Runner) mergeRequest(ctx context.Context) (context.Context, *gitlab.MergeRequest, error) {
	mr, err := r.platform.MergeRequestByBranch(ctx, r.cfg.SourceBranch)
	if err != nil {
		return ctx, nil, err
	}

	l := logger.FromContext(ctx).With(slog.Int("mr_iid", mr.IID), slog.String("author", mr.Author.Username))
	l.Info("found merge request", slog.String("title", mr.Title), slog.Bool("draft", mr.Draft))
	return logger.WithContext(ctx, l), mr, nil
}

// ownershipConfig fetches and parses the ownership file from the source branch.
func (r *Runner) ownershipConfig(ctx context.Context) (owners.Config, error) {
	raw, err := r.platform.RawFile(ctx, r.cfg.SourceBranch, r.cfg.OwnershipFile)
	if err != nil {
		return owners.Config{}, err
	}

	c, err := owners.Parse(raw)
	if err != nil {
		return owners.Config{}, fmt.Errorf("%s: %w", r.cfg.OwnershipFile, err)
	}
	return c, nil
}

// skipDraft posts a comment explaining why a draft merge request was skipped.
func (r *Runner) skipDraft(ctx context.Context, flow string, mr *gitlab.MergeRequest, fail bool) (Result, error) {
	logger.FromContext(ctx).Warn("skipping draft merge request", slog.String("job_name", r.cfg.JobName))
	if err := r.platform.CreateComment(ctx, mr.IID, markdown.DraftSkipped(r.cfg.JobName)); err != nil {
		return Result{}, err
	}
	return r.done(ctx, flow, Result{MergeRequest: mr.IID, Outcome: OutcomeDraft, Fail: fail}), nil
}

func (r *Runner) done(ctx context.Context, flow string, res Result) Result {
	logger.FromContext(ctx).Info("flow completed", slog.String("outcome", res.Outcome), slog.Bool("fail", res.Fail))
	metrics.RecordRun(ctx, r.cfg.MetricsCSVFile, metrics.Run{Flow: flow, MergeRequest: res.MergeRequest, Outcome: res.Outcome})
	return res
}
