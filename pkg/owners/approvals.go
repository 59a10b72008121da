package owners

import (
	"slices"
)

const (
	DefaultPrivilegedTeam   = "Платформа ROnline"
	DefaultPrivilegedQuorum = 2
	DefaultMinApprovals     = 2
)

// Policy defines the quorum rules for merge request approvals.
type Policy struct {
	// PrivilegedTeam is the team whose members can approve any merge
	// request on their own, if there are at least PrivilegedQuorum of them.
	PrivilegedTeam   string
	PrivilegedQuorum int
	// MinApprovals applies when no team owns any of the changed files.
	MinApprovals int
}

func DefaultPolicy() Policy {
	return Policy{
		PrivilegedTeam:   DefaultPrivilegedTeam,
		PrivilegedQuorum: DefaultPrivilegedQuorum,
		MinApprovals:     DefaultMinApprovals,
	}
}

type VerdictKind int

const (
	Approved VerdictKind = iota
	InsufficientTotal
	MissingTeamApprovals
)

func (k VerdictKind) String() string {
	switch k {
	case Approved:
		return "approved"
	case InsufficientTotal:
		return "insufficient_total"
	case MissingTeamApprovals:
		return "missing_team_approvals"
	default:
		return "unknown"
	}
}

// Verdict is the result of [Validate]. Teams is set
// only when the kind is [MissingTeamApprovals].
type Verdict struct {
	Kind  VerdictKind
	Teams []string
}

// Validate checks whether the approvers of a merge request satisfy the quorum
// rules, for the given changed file paths. The author never counts as an
// approver, and is never required to approve their own changes.
func Validate(paths, approvers []string, c Config, author string, p Policy) Verdict {
	approvers = slices.DeleteFunc(slices.Clone(approvers), func(u string) bool {
		return u == author
	})
	slices.Sort(approvers)
	approvers = slices.Compact(approvers)

	if p.PrivilegedTeam != "" && p.PrivilegedQuorum > 0 {
		privileged := MembersOf([]string{p.PrivilegedTeam}, c.Teams)[p.PrivilegedTeam]
		if countApprovers(approvers, privileged) >= p.PrivilegedQuorum {
			return Verdict{Kind: Approved}
		}
	}

	teams, _ := Resolve(paths, c.Paths)
	owners := Without(MembersOf(teams, c.Teams), author)

	if len(AllMembers(owners)) == 0 {
		if len(approvers) >= p.MinApprovals {
			return Verdict{Kind: Approved}
		}
		return Verdict{Kind: InsufficientTotal}
	}

	var missing []string
	for name, members := range owners {
		if len(members) > 0 && countApprovers(approvers, members) == 0 {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		return Verdict{Kind: Approved}
	}

	slices.Sort(missing)
	return Verdict{Kind: MissingTeamApprovals, Teams: missing}
}

func countApprovers(approvers, members []string) int {
	n := 0
	for _, a := range approvers {
		if slices.Contains(members, a) {
			n++
		}
	}
	return n
}
