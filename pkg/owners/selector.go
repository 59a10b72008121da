package owners

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

const DefaultMinReviewers = 3

// ErrRandomPoolExhausted means there aren't enough candidates
// to fill the reviewers quota, which is a configuration problem.
var ErrRandomPoolExhausted = errors.New("not enough candidates for random reviewers")

type SelectInput struct {
	Author string
	// Existing reviewers, which were assigned before this run.
	Existing []string
	// TeamMembers of the teams which own the changed files (see [MembersOf]).
	TeamMembers map[string][]string
	// MinReviewers is the quota which random reviewers fill up to.
	MinReviewers int
	// ExcludedTeams don't participate in the random pool.
	ExcludedTeams []string
	// AllTeams from the ownership file, the source of the random pool.
	AllTeams []Team
}

type Selection struct {
	// Teams which own the changed files, without the author, and without teams
	// which became empty as a result. Member lists are sorted.
	Teams map[string][]string
	// Reviewers is the final set of reviewers, sorted.
	Reviewers []string
	// Random reviewers which were drawn to fill the quota, sorted.
	Random []string
	// Outside lists the existing reviewers who aren't members of any owning
	// team, followed by the random reviewers.
	Outside []string
}

// Select builds the set of reviewers for a merge request: existing reviewers, plus the
// members of all the teams which own the changed files, plus random reviewers from
// non-excluded teams if the total is still less than the quota. The random draw
// depends only on rng and the input, so a fixed seed yields the same selection.
func Select(in SelectInput, rng *rand.Rand) (Selection, error) {
	s := Selection{Teams: map[string][]string{}}
	for name, members := range Without(in.TeamMembers, in.Author) {
		if len(members) > 0 {
			s.Teams[name] = members
		}
	}

	fromTeams := AllMembers(s.Teams)
	reviewers := slices.Concat(slices.Clone(in.Existing), fromTeams)
	slices.Sort(reviewers)
	reviewers = slices.Compact(reviewers)

	for _, r := range in.Existing {
		if !slices.Contains(fromTeams, r) && !slices.Contains(s.Outside, r) {
			s.Outside = append(s.Outside, r)
		}
	}

	need := in.MinReviewers - len(reviewers)
	if need > 0 {
		pool := randomPool(in, reviewers)
		if len(pool) < need {
			return Selection{}, fmt.Errorf("%w: need %d, found %d", ErrRandomPoolExhausted, need, len(pool))
		}

		for _, i := range rng.Perm(len(pool))[:need] {
			s.Random = append(s.Random, pool[i])
		}
		slices.Sort(s.Random)

		s.Outside = append(s.Outside, s.Random...)
		reviewers = slices.Concat(reviewers, s.Random)
		slices.Sort(reviewers)
	}

	s.Reviewers = reviewers
	return s, nil
}

// randomPool returns the sorted members of all the non-excluded
// teams, except the author and the already-selected reviewers.
func randomPool(in SelectInput, selected []string) []string {
	var pool []string
	for _, t := range in.AllTeams {
		if slices.Contains(in.ExcludedTeams, t.Name) {
			continue
		}
		for _, m := range t.Members {
			if m != in.Author && !slices.Contains(selected, m) {
				pool = append(pool, m)
			}
		}
	}

	slices.Sort(pool)
	return slices.Compact(pool)
}
