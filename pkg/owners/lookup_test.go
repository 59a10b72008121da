package owners

import (
	"reflect"
	"testing"
)

func TestMembersOf(t *testing.T) {
	defs := []Team{
		{Name: "TeamA", Members: []string{"bob", "alice", "bob"}},
		{Name: "TeamB", Members: []string{"carol"}},
		{Name: "TeamC", Members: nil},
	}

	got := MembersOf([]string{"TeamA", "TeamC", "TeamX"}, defs)
	want := map[string][]string{
		"TeamA": {"alice", "bob"},
		"TeamC": nil,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MembersOf() = %v, want %v", got, want)
	}
}

func TestWithout(t *testing.T) {
	teams := map[string][]string{
		"TeamA": {"alice", "bob"},
		"TeamB": {"carol"},
	}

	got := Without(teams, "carol")
	want := map[string][]string{
		"TeamA": {"alice", "bob"},
		"TeamB": {},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Without() = %v, want %v", got, want)
	}

	if len(teams["TeamB"]) != 1 {
		t.Errorf("Without() modified its input: %v", teams)
	}
}

func TestIDsOf(t *testing.T) {
	users := []User{
		{Username: "alice", GitLabID: 3},
		{Username: "bob", GitLabID: 1},
		{Username: "carol"},
		{Username: "dave", GitLabID: 7},
	}

	gotIDs, gotMissing := IDsOf(users, []string{"alice", "bob", "carol", "eve"})
	if want := []int{1, 3}; !reflect.DeepEqual(gotIDs, want) {
		t.Errorf("IDsOf() ids = %v, want %v", gotIDs, want)
	}
	if want := []string{"carol", "eve"}; !reflect.DeepEqual(gotMissing, want) {
		t.Errorf("IDsOf() missing = %q, want %q", gotMissing, want)
	}
}
