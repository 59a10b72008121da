package owners

import (
	"reflect"
	"testing"
)

func TestValidate(t *testing.T) {
	cfg := Config{
		Paths: Paths{
			{Pattern: "/src/api", Teams: []string{"TeamA"}},
			{Pattern: "/src/web", Teams: []string{"TeamB"}},
			{Pattern: "/src/solo", Teams: []string{"Solo"}},
			{Pattern: "/src/ghost", Teams: []string{"Ghost"}},
		},
		Teams: []Team{
			{Name: "TeamA", Members: []string{"alice", "bob"}},
			{Name: "TeamB", Members: []string{"carol", "dave"}},
			{Name: "Solo", Members: []string{"carol"}},
			{Name: DefaultPrivilegedTeam, Members: []string{"pat", "pam", "carol"}},
		},
	}

	tests := []struct {
		name      string
		paths     []string
		approvers []string
		author    string
		want      Verdict
	}{
		{
			name:      "team_satisfied",
			paths:     []string{"/src/api/a.py"},
			approvers: []string{"alice"},
			author:    "carol",
			want:      Verdict{Kind: Approved},
		},
		{
			name:      "team_missing",
			paths:     []string{"/src/api/a.py"},
			approvers: []string{},
			author:    "carol",
			want:      Verdict{Kind: MissingTeamApprovals, Teams: []string{"TeamA"}},
		},
		{
			name:      "one_of_two_teams_missing",
			paths:     []string{"src/api/a.py", "src/web/b.js"},
			approvers: []string{"alice", "bob"},
			author:    "eve",
			want:      Verdict{Kind: MissingTeamApprovals, Teams: []string{"TeamB"}},
		},
		{
			name:      "both_teams_missing",
			paths:     []string{"src/api/a.py", "src/web/b.js"},
			approvers: []string{"zed"},
			author:    "eve",
			want:      Verdict{Kind: MissingTeamApprovals, Teams: []string{"TeamA", "TeamB"}},
		},
		{
			name:      "no_owner_two_approvers",
			paths:     []string{"/docs/readme.md"},
			approvers: []string{"alice", "bob"},
			author:    "carol",
			want:      Verdict{Kind: Approved},
		},
		{
			name:      "no_owner_one_approver",
			paths:     []string{"/docs/readme.md"},
			approvers: []string{"alice"},
			author:    "carol",
			want:      Verdict{Kind: InsufficientTotal},
		},
		{
			name:      "no_owner_author_approval_does_not_count",
			paths:     []string{"/docs/readme.md"},
			approvers: []string{"alice", "carol"},
			author:    "carol",
			want:      Verdict{Kind: InsufficientTotal},
		},
		{
			name:      "no_owner_duplicate_approvals_do_not_count",
			paths:     []string{"/docs/readme.md"},
			approvers: []string{"alice", "alice"},
			author:    "carol",
			want:      Verdict{Kind: InsufficientTotal},
		},
		{
			name:      "author_is_in_the_team",
			paths:     []string{"src/web/b.js"},
			approvers: []string{"dave"},
			author:    "carol",
			want:      Verdict{Kind: Approved},
		},
		{
			name:      "author_approval_never_satisfies_own_team",
			paths:     []string{"src/web/b.js"},
			approvers: []string{"carol", "alice"},
			author:    "carol",
			want:      Verdict{Kind: MissingTeamApprovals, Teams: []string{"TeamB"}},
		},
		{
			name:      "author_is_the_only_owner_falls_back_to_floor",
			paths:     []string{"src/solo/x.go"},
			approvers: []string{"alice"},
			author:    "carol",
			want:      Verdict{Kind: InsufficientTotal},
		},
		{
			name:      "undefined_team_falls_back_to_floor",
			paths:     []string{"src/ghost/x.go"},
			approvers: []string{"alice", "bob"},
			author:    "carol",
			want:      Verdict{Kind: Approved},
		},
		{
			name:      "privileged_fast_path",
			paths:     []string{"src/api/a.py", "src/web/b.js"},
			approvers: []string{"pat", "pam"},
			author:    "eve",
			want:      Verdict{Kind: Approved},
		},
		{
			name:      "privileged_single_approval_is_not_enough",
			paths:     []string{"src/api/a.py"},
			approvers: []string{"pat"},
			author:    "eve",
			want:      Verdict{Kind: MissingTeamApprovals, Teams: []string{"TeamA"}},
		},
		{
			name:      "privileged_author_does_not_count",
			paths:     []string{"src/api/a.py"},
			approvers: []string{"pat", "carol"},
			author:    "carol",
			want:      Verdict{Kind: MissingTeamApprovals, Teams: []string{"TeamA"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.paths, tt.approvers, cfg, tt.author, DefaultPolicy())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Validate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidateCustomPolicy(t *testing.T) {
	cfg := Config{Teams: []Team{{Name: "Core", Members: []string{"alice", "bob", "carol"}}}}
	p := Policy{PrivilegedTeam: "Core", PrivilegedQuorum: 3, MinApprovals: 4}

	got := Validate([]string{"a.txt"}, []string{"alice", "bob"}, cfg, "eve", p)
	if got.Kind != InsufficientTotal {
		t.Errorf("Validate() = %v, want %v", got.Kind, InsufficientTotal)
	}

	got = Validate([]string{"a.txt"}, []string{"alice", "bob", "carol"}, cfg, "eve", p)
	if got.Kind != Approved {
		t.Errorf("Validate() = %v, want %v", got.Kind, Approved)
	}
}

func TestVerdictKindString(t *testing.T) {
	tests := []struct {
		kind VerdictKind
		want string
	}{
		{Approved, "approved"},
		{InsufficientTotal, "insufficient_total"},
		{MissingTeamApprovals, "missing_team_approvals"},
		{VerdictKind(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("VerdictKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
