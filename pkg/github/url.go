package github

import (
	"errors"
	"fmt"
	"regexp"
)

// DefaultBranch is assumed when a repository URL does not name one.
const DefaultBranch = "main"

// ErrInvalidRepoURL indicates the URL does not look like a GitHub repository.
var ErrInvalidRepoURL = errors.New("invalid github repository url")

var repoURLPattern = regexp.MustCompile(`github\.com/([^/\s]+)/([^/\s]+?)(?:\.git)?(?:/tree/([^/\s]+))?/?$`)

// RepoRef identifies a repository and branch extracted from a user-supplied URL.
type RepoRef struct {
	Owner  string
	Repo   string
	Branch string
}

// ParseRepoURL extracts owner, repo and optional branch from a GitHub URL of
// the shape github.com/owner/repo[/tree/branch]. The branch segment defaults
// to main when omitted.
func ParseRepoURL(url string) (RepoRef, error) {
	match := repoURLPattern.FindStringSubmatch(url)
	if match == nil {
		return RepoRef{}, fmt.Errorf("%w: %q", ErrInvalidRepoURL, url)
	}

	ref := RepoRef{
		Owner:  match[1],
		Repo:   match[2],
		Branch: match[3],
	}
	if ref.Branch == "" {
		ref.Branch = DefaultBranch
	}

	return ref, nil
}
