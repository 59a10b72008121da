package markdown

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	tableHeader = "| Команда | Участники |\n| ------ | ------ |\n"
	outsideRow  = "Ревьюверы вне команд"

	rulesHeader  = "\n**Правила получения апррувов:**\n"
	rulePerTeam  = "- C каждой команды не менее 1 аппрува\n"
	ruleMinTotal = "- Всего не менее двух аппрувов"
)

// TeamsTable renders a markdown table of teams and their members, sorted by team
// name, followed by an optional row for reviewers who aren't members of any team.
func TeamsTable(teams map[string][]string, outside []string) string {
	var sb strings.Builder
	sb.WriteString(tableHeader)

	for _, name := range slices.Sorted(maps.Keys(teams)) {
		fmt.Fprintf(&sb, "| %s | %s |\n", name, Mentions(teams[name], " "))
	}

	if len(outside) > 0 {
		fmt.Fprintf(&sb, "| %s | %s |\n", outsideRow, Mentions(outside, " "))
	}

	return sb.String()
}

// RulesFooter renders the quorum rules that apply to a merge request.
// The per-team rule is mentioned only if some teams own the changed files.
func RulesFooter(hasTeams bool) string {
	if hasTeams {
		return rulesHeader + rulePerTeam + ruleMinTotal
	}
	return rulesHeader + ruleMinTotal
}

// MissingTeamsList renders one line per team, with the team's
// members, for teams which haven't approved a merge request yet.
func MissingTeamsList(teams map[string][]string) string {
	var sb strings.Builder
	for _, name := range slices.Sorted(maps.Keys(teams)) {
		fmt.Fprintf(&sb, "%-7s - %s\n", name, Mentions(teams[name], ", "))
	}
	return sb.String()
}

// Mentions converts usernames into "@username" mentions, joined by the given separator.
func Mentions(usernames []string, sep string) string {
	mentions := make([]string, len(usernames))
	for i, u := range usernames {
		mentions[i] = "@" + u
	}
	return strings.Join(mentions, sep)
}
