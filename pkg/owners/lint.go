package owners

import (
	"fmt"
	"slices"
)

// Problem is a data-quality issue found by [Lint].
type Problem struct {
	Kind    string
	Subject string
	Details string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s (%s)", p.Kind, p.Subject, p.Details)
}

const (
	ProblemDuplicateTeam     = "duplicate_team"
	ProblemDuplicatePath     = "duplicate_path"
	ProblemUndefinedTeam     = "undefined_team"
	ProblemEmptyTeam         = "empty_team"
	ProblemMissingUser       = "missing_user"
	ProblemUnreachablePath   = "unreachable_path"
	ProblemDuplicateUsername = "duplicate_username"
)

// Lint checks the consistency of an ownership file. None of these problems
// prevent the file from being used, but each of them silently affects the
// outcome of reviewer selection or approval validation.
func Lint(c Config) []Problem {
	var ps []Problem

	teams := map[string]bool{}
	for _, t := range c.Teams {
		if teams[t.Name] {
			ps = append(ps, Problem{ProblemDuplicateTeam, t.Name, "team is defined more than once"})
		}
		teams[t.Name] = true
		if len(t.Members) == 0 {
			ps = append(ps, Problem{ProblemEmptyTeam, t.Name, "team has no members"})
		}
	}

	patterns := map[string]bool{}
	for i, po := range c.Paths {
		if patterns[po.Pattern] {
			ps = append(ps, Problem{ProblemDuplicatePath, po.Pattern, "pattern is listed more than once"})
		}
		patterns[po.Pattern] = true

		for _, t := range po.Teams {
			if !teams[t] {
				ps = append(ps, Problem{ProblemUndefinedTeam, t, "referenced by " + po.Pattern})
			}
		}

		// An earlier pattern which is a prefix of this one always wins.
		for _, prev := range c.Paths[:i] {
			if hasPrefix(segments(po.Pattern), segments(prev.Pattern)) {
				ps = append(ps, Problem{ProblemUnreachablePath, po.Pattern, "shadowed by " + prev.Pattern})
				break
			}
		}
	}

	users, seen := map[string]bool{}, map[string]bool{}
	for _, u := range c.Users {
		if seen[u.Username] {
			ps = append(ps, Problem{ProblemDuplicateUsername, u.Username, "user is defined more than once"})
		}
		seen[u.Username] = true
		if u.GitLabID != 0 {
			users[u.Username] = true
		}
	}

	var members []string
	for _, t := range c.Teams {
		members = append(members, t.Members...)
	}
	slices.Sort(members)
	for _, m := range slices.Compact(members) {
		if !users[m] {
			ps = append(ps, Problem{ProblemMissingUser, m, "team member without a GitLab ID"})
		}
	}

	return ps
}
