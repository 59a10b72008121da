package owners

import (
	"slices"
	"strings"
)

// Resolve maps changed file paths to the teams that own them. Patterns are literal
// path prefixes, compared segment by segment, and the first matching pattern
// (in the ownership file's order) wins. Paths without any matching pattern
// are returned as unowned, in their original order.
func Resolve(paths []string, ps Paths) (teams, unowned []string) {
	patterns := make([][]string, len(ps))
	for i, po := range ps {
		patterns[i] = segments(po.Pattern)
	}

	for _, p := range paths {
		pathSegments := segments(p)
		found := false
		for i, patternSegments := range patterns {
			if hasPrefix(pathSegments, patternSegments) {
				teams = append(teams, ps[i].Teams...)
				found = true
				break
			}
		}
		if !found {
			unowned = append(unowned, p)
		}
	}

	slices.Sort(teams)
	return slices.Compact(teams), unowned
}

// OwnersOf returns the owning teams of a single path, and the pattern that matched it.
func OwnersOf(path string, ps Paths) (teams []string, pattern string) {
	pathSegments := segments(path)
	for _, po := range ps {
		if hasPrefix(pathSegments, segments(po.Pattern)) {
			return po.Teams, po.Pattern
		}
	}
	return nil, ""
}

// segments splits a slash-delimited path, ignoring leading and trailing slashes.
// The root path ("/" or "") has zero segments, so as a pattern it matches everything.
func segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// hasPrefix reports whether all the pattern's segments are equal to the
// path's segments at the same positions. A pattern which is longer than
// the path never matches it.
func hasPrefix(path, pattern []string) bool {
	if len(pattern) > len(path) {
		return false
	}
	for i, s := range pattern {
		if path[i] != s {
			return false
		}
	}
	return true
}
