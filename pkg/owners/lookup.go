package owners

import (
	"slices"
)

// MembersOf returns the members of each of the given teams. The member lists are
// sorted and deduplicated. Teams which aren't defined are absent from the result.
func MembersOf(teams []string, defs []Team) map[string][]string {
	m := make(map[string][]string, len(teams))
	for _, def := range defs {
		if !slices.Contains(teams, def.Name) {
			continue
		}
		members := slices.Concat(m[def.Name], def.Members)
		slices.Sort(members)
		m[def.Name] = slices.Compact(members)
	}
	return m
}

// AllMembers returns the sorted and deduplicated union of all the given teams' members.
func AllMembers(teams map[string][]string) []string {
	var all []string
	for _, members := range teams {
		all = append(all, members...)
	}
	slices.Sort(all)
	return slices.Compact(all)
}

// Without returns a copy of the team map without the given user. Teams which
// become empty as a result are kept, so callers can tell them apart from
// teams which weren't found at all.
func Without(teams map[string][]string, username string) map[string][]string {
	m := make(map[string][]string, len(teams))
	for name, members := range teams {
		m[name] = slices.DeleteFunc(slices.Clone(members), func(u string) bool {
			return u == username
		})
	}
	return m
}

// IDsOf returns the sorted GitLab IDs of the given usernames, and the
// usernames which don't have a user definition with a non-zero ID.
func IDsOf(users []User, usernames []string) (ids []int, missing []string) {
	found := map[string]bool{}
	for _, u := range users {
		if u.GitLabID == 0 || !slices.Contains(usernames, u.Username) {
			continue
		}
		ids = append(ids, u.GitLabID)
		found[u.Username] = true
	}

	for _, name := range usernames {
		if !found[name] {
			missing = append(missing, name)
		}
	}

	slices.Sort(ids)
	return slices.Compact(ids), missing
}
