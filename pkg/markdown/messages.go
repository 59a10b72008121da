package markdown

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

const (
	AuthorSummaryTitle = "Назначены ревьюверы для вашего Merge request"
	AuthorSummaryColor = "#787878"

	ReviewRequestTitle = "Требуется ревью"
	ReviewRequestColor = "#0086d4"
)

// ReviewersComment is posted in a merge request after its reviewers are set.
func ReviewersComment(teams map[string][]string, outside []string) string {
	return "**Список ревьюверов для данного МР**\n\n" + TeamsTable(teams, outside) + RulesFooter(len(teams) > 0)
}

// AuthorSummary is sent to the author of a merge request
// after new reviewers were assigned to it.
func AuthorSummary(title, webURL string, teams map[string][]string, outside []string) string {
	return fmt.Sprintf("[%s](%s)\n\n", title, webURL) + TeamsTable(teams, outside) + RulesFooter(len(teams) > 0)
}

// ReviewRequest is sent to a newly-added reviewer of a merge request.
// It links to the merge request, and to all the project's open merge
// requests which are waiting for the reviewer's attention.
func ReviewRequest(title, webURL, author, reviewer, projectURL string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Merge Request: [%s](%s)\n", title, webURL)
	fmt.Fprintf(&sb, "Автор: @%s\n\n", author)
	fmt.Fprintf(&sb, "[Посмотреть все МР, которые необходимо ревьювить](%s)", ReviewerQueueURL(projectURL, reviewer))
	return sb.String()
}

// ReviewerQueueURL returns the URL of a project's open
// merge requests which are assigned to the given reviewer.
func ReviewerQueueURL(projectURL, reviewer string) string {
	q := url.Values{}
	q.Set("scope", "all")
	q.Set("state", "opened")
	q.Set("reviewer_username", reviewer)
	return strings.TrimSuffix(projectURL, "/") + "/-/merge_requests?" + q.Encode()
}

// ProjectURL derives a GitLab project's URL from one of its merge request URLs.
func ProjectURL(mergeRequestURL string) string {
	if u, _, found := strings.Cut(mergeRequestURL, "/-/merge_requests/"); found {
		return u
	}
	return ""
}

// DraftSkipped is posted in draft merge requests instead of assigning or checking reviewers.
func DraftSkipped(jobName string) string {
	return "**Ревьюверы не назначены**\n\nДля Draft Merge request ревьюверы не назначаются. " +
		fmt.Sprintf("После удаления метки Draft самостоятельно запустите джобу '%s'.", jobName)
}

// InsufficientApprovals is sent to the author of a merge request
// when no team owns its changes, and it has too few approvals.
func InsufficientApprovals(minApprovals int) string {
	return fmt.Sprintf("Не найдено достаточное количество апрувов.\nДля влития нужно получить как минимум %d апрува", minApprovals)
}

// MissingApprovals is posted in a merge request, and sent to its author, when
// some of the teams which own the changed files haven't approved it yet.
func MissingApprovals(teams map[string][]string) string {
	return "Не найден апрув от команд \n " + MissingTeamsList(teams)
}

// NewReviewers returns the sorted reviewers in the final set which weren't reviewers before.
func NewReviewers(final, existing []string) []string {
	var added []string
	for _, r := range final {
		if !slices.Contains(existing, r) && !slices.Contains(added, r) {
			added = append(added, r)
		}
	}
	slices.Sort(added)
	return added
}
