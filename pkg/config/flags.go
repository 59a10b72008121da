package config

import (
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/revowners/internal/logger"
	"github.com/tzrikka/revowners/pkg/owners"
	"github.com/tzrikka/xdg"
)

const (
	DirName        = "revowners"
	ConfigFileName = "config.toml"

	DefaultOwnershipFile = "codeowners.json"
	DefaultHTTPTimeout   = 30 * time.Second

	DefaultOTLPEndpoint = "https://localhost:4318"
	DefaultOTLPTimeout  = 10000 // 10 seconds.
)

// configFile returns the path to the app's configuration file.
// It also creates an empty file if it doesn't already exist.
func configFile() altsrc.StringSourcer {
	path, _ := xdg.FindConfigFile(DirName, ConfigFileName)
	if path != "" {
		return altsrc.StringSourcer(path)
	}

	path, err := xdg.CreateFile(xdg.ConfigHome, DirName, ConfigFileName)
	if err != nil {
		logger.Fatal("failed to create config file", err)
	}
	return altsrc.StringSourcer(path)
}

// Flags defines CLI flags which are common to all commands. These flags are
// usually set using environment variables or the application's configuration file.
func Flags() []cli.Flag {
	path := configFile()

	return []cli.Flag{
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "minimum log level (DEBUG, INFO, WARN, ERROR)",
			Value: "INFO",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("LOG_LEVEL"),
				toml.TOML("log.level", path),
			),
		},
		&cli.BoolFlag{
			Name:  "pretty-log",
			Usage: "human-readable console logging, instead of JSON",
			Value: true,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("PRETTY_LOG"),
				toml.TOML("log.pretty", path),
			),
		},
		&cli.StringFlag{
			Name:  "ownership-file",
			Usage: "path of the JSON ownership file, relative to the repository root",
			Value: DefaultOwnershipFile,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CODEOWNERS_FILE"),
				toml.TOML("owners.file", path),
			),
			TakesFile: true,
		},
	}
}

// PlatformFlags defines CLI flags for commands which access GitLab
// and Mattermost. In CI jobs, most of them are set by GitLab itself.
func PlatformFlags() []cli.Flag {
	path := configFile()

	return []cli.Flag{
		// GitLab.
		&cli.StringFlag{
			Name:  "gitlab-url",
			Usage: "GitLab server base URL",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CI_SERVER_URL"),
				toml.TOML("gitlab.url", path),
			),
			Required: true,
		},
		&cli.StringFlag{
			Name:  "gitlab-project-id",
			Usage: "GitLab project ID",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CI_PROJECT_ID"),
				toml.TOML("gitlab.project_id", path),
			),
			Required: true,
		},
		&cli.StringFlag{
			Name:  "gitlab-project-url",
			Usage: "GitLab project URL (default: derived from the merge request's URL)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CI_PROJECT_URL"),
				toml.TOML("gitlab.project_url", path),
			),
		},
		&cli.StringFlag{
			Name:  "gitlab-token",
			Usage: "GitLab private access token",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("PRIVATE_TOKEN"),
				toml.TOML("gitlab.token", path),
			),
			Required: true,
		},
		&cli.StringFlag{
			Name:  "source-branch",
			Usage: "source branch of the merge request",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CI_MERGE_REQUEST_SOURCE_BRANCH_NAME"),
			),
			Required: true,
		},
		&cli.StringFlag{
			Name:  "job-name",
			Usage: "name of the CI job, mentioned in draft comments",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CI_JOB_NAME"),
			),
		},
		&cli.DurationFlag{
			Name:  "http-timeout",
			Usage: "timeout of each HTTP request to GitLab or Mattermost",
			Value: DefaultHTTPTimeout,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CODEOWNERS_HTTP_TIMEOUT"),
				toml.TOML("http.timeout", path),
			),
		},
		&cli.StringFlag{
			Name:  "privileged-team",
			Usage: "team whose approvals are sufficient on their own",
			Value: owners.DefaultPrivilegedTeam,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CODEOWNERS_PRIVILEGED_TEAM"),
				toml.TOML("owners.privileged_team", path),
			),
		},

		// Mattermost.
		&cli.StringFlag{
			Name:  "bot-dev",
			Usage: `send messages through the test bot ("true" or "false")`,
			Value: "false",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("RO_CODEOWNERS_BOT_DEV"),
				toml.TOML("mattermost.dev", path),
			),
		},
		&cli.StringFlag{
			Name:  "bot-url-prod",
			Usage: "Mattermost bot endpoint URL",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("PROD_RO_CODEOWNERS_BOT_URL"),
				toml.TOML("mattermost.prod_url", path),
			),
		},
		&cli.StringFlag{
			Name:  "bot-url-test",
			Usage: "Mattermost test bot endpoint URL",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("TEST_RO_CODEOWNERS_BOT_URL"),
				toml.TOML("mattermost.test_url", path),
			),
		},

		// Local run log.
		&cli.StringFlag{
			Name:  "metrics-csv-file",
			Usage: "optional CSV file to append a line to after each run",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CODEOWNERS_METRICS_CSV_FILE"),
				toml.TOML("metrics.csv_file", path),
			),
			TakesFile: true,
		},

		// https://github.com/open-telemetry/opentelemetry-go/blob/main/exporters/otlp/otlpmetric/otlpmetrichttp/doc.go
		&cli.BoolFlag{
			Name:  "otlp-enabled",
			Usage: "Export OTLP metrics",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("OTEL_EXPORTER_OTLP_ENABLED"),
				toml.TOML("otlp.enabled", path),
			),
		},
		&cli.StringFlag{
			Name:  "otlp-endpoint",
			Usage: "OTLP endpoint using HTTP",
			Value: DefaultOTLPEndpoint,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("OTEL_EXPORTER_OTLP_ENDPOINT"),
				toml.TOML("otlp.endpoint", path),
			),
		},
		&cli.Int64Flag{
			Name:  "otlp-timeout-ms",
			Usage: "OTLP batch export timeout in milliseconds",
			Value: DefaultOTLPTimeout,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("OTEL_EXPORTER_OTLP_TIMEOUT_MS"),
				toml.TOML("otlp.timeout_ms", path),
			),
		},
		&cli.StringFlag{
			Name:  "otlp-compression",
			Usage: "OTLP compression method (e.g. gzip)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("OTEL_EXPORTER_OTLP_COMPRESSION"),
				toml.TOML("otlp.compression", path),
			),
		},
	}
}

// ReviewerFlags defines CLI flags which affect only the selection of reviewers.
func ReviewerFlags() []cli.Flag {
	path := configFile()

	return []cli.Flag{
		&cli.StringFlag{
			Name:  "team-exclude",
			Usage: `teams whose members are never drawn at random (JSON array, e.g. ["QA"], Python-style list, or comma-separated)`,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CODEOWNERS_TEAM_EXCLUDE"),
				toml.TOML("owners.team_exclude", path),
			),
			Required: true,
		},
		&cli.IntFlag{
			Name:  "min-reviewers",
			Usage: "minimum number of reviewers per merge request",
			Value: owners.DefaultMinReviewers,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CODEOWNERS_MIN_REVIEWERS"),
				toml.TOML("owners.min_reviewers", path),
			),
		},
		&cli.Uint64Flag{
			Name:  "random-seed",
			Usage: "fixed seed for the random choice of reviewers (default: random)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CODEOWNERS_RANDOM_SEED"),
			),
		},
		&cli.BoolFlag{
			Name:  "resolve-missing-users",
			Usage: "look up GitLab IDs of reviewers who are missing from the ownership file's users list",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CODEOWNERS_RESOLVE_MISSING_USERS"),
				toml.TOML("owners.resolve_missing_users", path),
			),
		},
	}
}
