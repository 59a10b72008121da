package reviewers

import (
	"fmt"
	"io"
	"strings"

	"github.com/tzrikka/revowners/pkg/owners"
)

// PrintOwners writes the owning teams of each path, and the pattern which
// matched it, based on a local ownership file. It doesn't access GitLab.
func PrintOwners(w io.Writer, c owners.Config, paths []string) {
	for _, path := range paths {
		teams, pattern := owners.OwnersOf(path, c.Paths)
		if len(teams) == 0 {
			fmt.Fprintf(w, "%s: no owners\n", path)
			continue
		}

		members := owners.MembersOf(teams, c.Teams)
		fmt.Fprintf(w, "%s: %s (%q)\n", path, strings.Join(teams, ", "), pattern)
		for _, team := range teams {
			fmt.Fprintf(w, "  %s: %s\n", team, strings.Join(members[team], " "))
		}
	}
}

// PrintProblems writes the problems which [owners.Lint] finds in a local
// ownership file, and returns how many there are.
func PrintProblems(w io.Writer, c owners.Config) int {
	problems := owners.Lint(c)
	for _, p := range problems {
		fmt.Fprintln(w, p.String())
	}
	if len(problems) == 0 {
		fmt.Fprintln(w, "no problems found")
	}
	return len(problems)
}
