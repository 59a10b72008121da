package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"slices"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/revowners/internal/logger"
	"github.com/tzrikka/revowners/internal/otel"
	"github.com/tzrikka/revowners/pkg/config"
	"github.com/tzrikka/revowners/pkg/gitlab"
	"github.com/tzrikka/revowners/pkg/mattermost"
	"github.com/tzrikka/revowners/pkg/metrics"
	"github.com/tzrikka/revowners/pkg/owners"
	"github.com/tzrikka/revowners/pkg/reviewers"
)

func main() {
	bi, _ := debug.ReadBuildInfo()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	cmd := &cli.Command{
		Name:    "revowners",
		Usage:   "Assign and check GitLab merge request reviewers based on code ownership",
		Version: bi.Main.Version,
		Flags:   config.Flags(),
		Before:  initLog,
		Commands: []*cli.Command{
			{
				Name:   reviewers.FlowSetReviewers,
				Usage:  "Assign reviewers to the merge request of the current branch",
				Flags:  slices.Concat(config.PlatformFlags(), config.ReviewerFlags()),
				Action: setReviewers,
			},
			{
				Name:   reviewers.FlowCheckApprovals,
				Usage:  "Check that the merge request of the current branch has sufficient approvals",
				Flags:  config.PlatformFlags(),
				Action: checkApprovals,
			},
			{
				Name:      "owners",
				Usage:     "Print the owners of file paths, based on a local ownership file",
				ArgsUsage: "<path> [path...]",
				Action:    printOwners,
			},
			{
				Name:   "check-config",
				Usage:  "Check the consistency of a local ownership file",
				Action: checkConfig,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// initLog initializes the logger for all commands, and attaches
// a unique run ID to it, to correlate the logs of each CI job.
func initLog(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level, err := logger.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, err
	}

	l := logger.New(os.Stderr, level, cmd.Bool("pretty-log")).With(slog.String("run_id", uuid.NewString()))
	slog.SetDefault(l)
	return logger.WithContext(ctx, l), nil
}

func setReviewers(ctx context.Context, cmd *cli.Command) error {
	return runFlow(ctx, cmd, reviewers.FlowSetReviewers, (*reviewers.Runner).SetReviewers)
}

func checkApprovals(ctx context.Context, cmd *cli.Command) error {
	return runFlow(ctx, cmd, reviewers.FlowCheckApprovals, (*reviewers.Runner).CheckApprovals)
}

type flowFunc func(*reviewers.Runner, context.Context) (reviewers.Result, error)

// runFlow initializes the GitLab and Mattermost clients and the metrics exporter,
// runs a CI flow, and converts its result into the CI job's exit code.
func runFlow(ctx context.Context, cmd *cli.Command, flow string, run flowFunc) error {
	l := logger.FromContext(ctx).With(slog.String("flow", flow))
	ctx = logger.WithContext(ctx, l)

	cfg, err := config.FromCommand(cmd)
	if err != nil {
		return err
	}

	shutdown, err := otel.InitMetrics(ctx, cfg.OTLP)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			l.Warn("failed to flush metrics", slog.Any("error", err))
		}
	}()

	mm, err := mattermost.NewClient(cfg.BotURL(), cfg.HTTPTimeout)
	if err != nil {
		return fmt.Errorf("%w (bot-dev = %v)", err, cfg.BotDev)
	}
	gl, err := gitlab.NewClient(cfg.GitLabURL, cfg.GitLabProjectID, cfg.GitLabToken, cfg.HTTPTimeout)
	if err != nil {
		return err
	}

	res, err := run(reviewers.NewRunner(gl, mm, cfg, reviewers.NewRand(cfg.RandomSeed)), ctx)
	if err != nil {
		msg := "flow failed"
		if errors.Is(err, gitlab.ErrConfigMissing) {
			msg = "failed to fetch ownership file"
		}
		l.Error(msg, slog.Any("error", err), slog.String("ownership_file", cfg.OwnershipFile))
		metrics.RecordRun(ctx, cfg.MetricsCSVFile, metrics.Run{Flow: flow, Outcome: "error"})
	}

	if code := exitCode(res, err); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

// exitCode converts the outcome of a CI flow into the CI job's exit code.
// Errors fail the job, and so do results which are marked as failures
// (e.g. insufficient approvals, or a draft merge request when checking them).
func exitCode(res reviewers.Result, err error) int {
	if err != nil || res.Fail {
		return 1
	}
	return 0
}

func printOwners(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return errors.New("missing file paths")
	}

	c, err := owners.ReadFile(cmd.String("ownership-file"))
	if err != nil {
		return err
	}

	reviewers.PrintOwners(os.Stdout, c, cmd.Args().Slice())
	return nil
}

func checkConfig(_ context.Context, cmd *cli.Command) error {
	c, err := owners.ReadFile(cmd.String("ownership-file"))
	if err != nil {
		return err
	}

	if reviewers.PrintProblems(os.Stdout, c) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
