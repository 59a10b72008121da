package markdown

import (
	"reflect"
	"testing"
)

func TestTeamsTable(t *testing.T) {
	tests := []struct {
		name    string
		teams   map[string][]string
		outside []string
		want    string
	}{
		{
			name: "empty",
			want: "| Команда | Участники |\n| ------ | ------ |\n",
		},
		{
			name:  "teams_sorted_by_name",
			teams: map[string][]string{"TeamB": {"carol"}, "TeamA": {"alice", "bob"}},
			want: "| Команда | Участники |\n| ------ | ------ |\n" +
				"| TeamA | @alice @bob |\n" +
				"| TeamB | @carol |\n",
		},
		{
			name:    "outside_row",
			teams:   map[string][]string{"TeamA": {"alice"}},
			outside: []string{"dave", "eve"},
			want: "| Команда | Участники |\n| ------ | ------ |\n" +
				"| TeamA | @alice |\n" +
				"| Ревьюверы вне команд | @dave @eve |\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TeamsTable(tt.teams, tt.outside); got != tt.want {
				t.Errorf("TeamsTable() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRulesFooter(t *testing.T) {
	want := "\n**Правила получения апррувов:**\n- C каждой команды не менее 1 аппрува\n- Всего не менее двух аппрувов"
	if got := RulesFooter(true); got != want {
		t.Errorf("RulesFooter(true) = %q, want %q", got, want)
	}

	want = "\n**Правила получения апррувов:**\n- Всего не менее двух аппрувов"
	if got := RulesFooter(false); got != want {
		t.Errorf("RulesFooter(false) = %q, want %q", got, want)
	}
}

func TestMissingTeamsList(t *testing.T) {
	got := MissingTeamsList(map[string][]string{"Mobile": {"alice", "bob"}, "QA": {"carol"}})
	want := "Mobile  - @alice, @bob\nQA      - @carol\n"
	if got != want {
		t.Errorf("MissingTeamsList() = %q, want %q", got, want)
	}
}

func TestReviewRequest(t *testing.T) {
	got := ReviewRequest("Fix bug", "https://gitlab.example.com/g/p/-/merge_requests/7", "carol", "alice", "https://gitlab.example.com/g/p/")
	want := "Merge Request: [Fix bug](https://gitlab.example.com/g/p/-/merge_requests/7)\n" +
		"Автор: @carol\n\n" +
		"[Посмотреть все МР, которые необходимо ревьювить]" +
		"(https://gitlab.example.com/g/p/-/merge_requests?reviewer_username=alice&scope=all&state=opened)"
	if got != want {
		t.Errorf("ReviewRequest() = %q, want %q", got, want)
	}
}

func TestProjectURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://gitlab.example.com/group/project/-/merge_requests/12", "https://gitlab.example.com/group/project"},
		{"https://gitlab.example.com/group/project", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ProjectURL(tt.url); got != tt.want {
			t.Errorf("ProjectURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestDraftSkipped(t *testing.T) {
	want := "**Ревьюверы не назначены**\n\nДля Draft Merge request ревьюверы не назначаются. " +
		"После удаления метки Draft самостоятельно запустите джобу 'codeowners'."
	if got := DraftSkipped("codeowners"); got != want {
		t.Errorf("DraftSkipped() = %q, want %q", got, want)
	}
}

func TestNewReviewers(t *testing.T) {
	tests := []struct {
		name     string
		final    []string
		existing []string
		want     []string
	}{
		{
			name:  "all_new",
			final: []string{"bob", "alice"},
			want:  []string{"alice", "bob"},
		},
		{
			name:     "none_new",
			final:    []string{"alice"},
			existing: []string{"alice", "bob"},
		},
		{
			name:     "some_new",
			final:    []string{"alice", "bob", "carol"},
			existing: []string{"bob"},
			want:     []string{"alice", "carol"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewReviewers(tt.final, tt.existing); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NewReviewers() = %q, want %q", got, tt.want)
			}
		})
	}
}
