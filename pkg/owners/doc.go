// Package owners maps the changed files of a merge request to the teams which
// own them, and decides who should review the merge request and whether its
// approvals are sufficient.
//
// This functionality is based on an ownership file ("codeowners.json") in the
// merge request's source branch, which maps literal path prefixes to teams.
// Unlike CODEOWNERS files, it doesn't support glob patterns.
package owners
