package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/revowners/internal/otel"
	"github.com/tzrikka/revowners/pkg/owners"
)

// ErrParse is returned when a configuration value has an invalid format.
var ErrParse = errors.New("invalid configuration value")

// Config is the typed run configuration, built once from the CLI command.
type Config struct {
	GitLabURL        string
	GitLabProjectID  string
	GitLabProjectURL string
	GitLabToken      string

	SourceBranch string
	JobName      string

	OwnershipFile       string
	TeamExclude         []string
	MinReviewers        int
	PrivilegedTeam      string
	RandomSeed          uint64
	ResolveMissingUsers bool

	BotDev     bool
	BotURLProd string
	BotURLTest string

	HTTPTimeout    time.Duration
	MetricsCSVFile string
	OTLP           otel.Config
}

// FromCommand converts the parsed flags of a CLI command into a [Config].
// Flags which aren't defined by the command get their zero values.
func FromCommand(cmd *cli.Command) (*Config, error) {
	botDev, err := ParseBool(cmd.String("bot-dev"))
	if err != nil {
		return nil, fmt.Errorf("bot-dev: %w", err)
	}

	teamExclude, err := ParseList(cmd.String("team-exclude"))
	if err != nil {
		return nil, fmt.Errorf("team-exclude: %w", err)
	}

	minReviewers := int(cmd.Int("min-reviewers"))
	if minReviewers < 0 {
		return nil, fmt.Errorf("min-reviewers: %w: %d", ErrParse, minReviewers)
	}

	return &Config{
		GitLabURL:        strings.TrimSuffix(cmd.String("gitlab-url"), "/"),
		GitLabProjectID:  cmd.String("gitlab-project-id"),
		GitLabProjectURL: strings.TrimSuffix(cmd.String("gitlab-project-url"), "/"),
		GitLabToken:      cmd.String("gitlab-token"),

		SourceBranch: cmd.String("source-branch"),
		JobName:      cmd.String("job-name"),

		OwnershipFile:       cmd.String("ownership-file"),
		TeamExclude:         teamExclude,
		MinReviewers:        minReviewers,
		PrivilegedTeam:      cmd.String("privileged-team"),
		RandomSeed:          cmd.Uint64("random-seed"),
		ResolveMissingUsers: cmd.Bool("resolve-missing-users"),

		BotDev:     botDev,
		BotURLProd: cmd.String("bot-url-prod"),
		BotURLTest: cmd.String("bot-url-test"),

		HTTPTimeout:    cmd.Duration("http-timeout"),
		MetricsCSVFile: cmd.String("metrics-csv-file"),
		OTLP: otel.Config{
			Enabled:     cmd.Bool("otlp-enabled"),
			Endpoint:    cmd.String("otlp-endpoint"),
			Timeout:     time.Duration(cmd.Int64("otlp-timeout-ms")) * time.Millisecond,
			Compression: cmd.String("otlp-compression"),
		},
	}, nil
}

// BotURL returns the Mattermost bot endpoint which was selected by the dev flag.
func (c *Config) BotURL() string {
	if c.BotDev {
		return c.BotURLTest
	}
	return c.BotURLProd
}

// Policy returns the approval policy, with the configured privileged team.
func (c *Config) Policy() owners.Policy {
	p := owners.DefaultPolicy()
	p.PrivilegedTeam = c.PrivilegedTeam
	return p
}

// ParseBool accepts only "true" or "false" (case-insensitive).
// An empty string is false, anything else is an error.
func ParseBool(s string) (bool, error) {
	switch {
	case s == "", strings.EqualFold(s, "false"):
		return false, nil
	case strings.EqualFold(s, "true"):
		return true, nil
	default:
		return false, fmt.Errorf("%w: %q is not a boolean", ErrParse, s)
	}
}

// listFormats is a hint for users who set a list flag or environment variable.
const listFormats = `expected a JSON array like ["QA", "Design"], a Python-style list like ['QA', 'Design'], or QA,Design`

// ParseList accepts a JSON array of strings, a Python-style list literal
// (with single or double quotes), or a comma-separated list. Whitespace
// around list elements is trimmed, and empty elements are dropped.
func ParseList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var items []string
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &items); err != nil {
			var ok bool
			if items, ok = quotedItems(s); !ok {
				return nil, fmt.Errorf("%w: malformed list %q (%s): %w", ErrParse, s, listFormats, err)
			}
		}
	} else {
		if strings.ContainsAny(s, `[]"'`) {
			return nil, fmt.Errorf("%w: malformed list %q (%s)", ErrParse, s, listFormats)
		}
		items = strings.Split(s, ",")
	}

	list := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list, nil
}

// quotedItems parses a bracketed list of quoted strings, where each
// item may be quoted with either single or double quotes. Items
// can't contain commas or their own quote character.
func quotedItems(s string) ([]string, bool) {
	inner, ok := strings.CutSuffix(strings.TrimPrefix(s, "["), "]")
	if !ok {
		return nil, false
	}

	items := []string{}
	for part := range strings.SplitSeq(inner, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue // Trailing comma.
		}

		q := part[0]
		if len(part) < 2 || (q != '\'' && q != '"') || part[len(part)-1] != q {
			return nil, false
		}
		item := part[1 : len(part)-1]
		if strings.IndexByte(item, q) >= 0 {
			return nil, false
		}
		items = append(items, item)
	}
	return items, true
}

// LoadDotEnv loads environment variables from the given files (default: ".env"
// in the current directory), for local runs outside of CI. Missing files are
// skipped, and variables which are already set are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %q: %w", path, err)
		}
	}
	return nil
}
