package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	gh "github.com/google/go-github/v66/github"
	"github.com/rs/zerolog"
)

// readmeLimit bounds the readme excerpt carried into evaluation prompts.
const readmeLimit = 5000

const defaultTimeout = 30 * time.Second

// ErrRepoNotFound indicates the repository does not exist or is not visible
// with the configured credentials.
var ErrRepoNotFound = errors.New("repository not found or private")

// RepoMetadata describes a repository at the moment a submission is created.
type RepoMetadata struct {
	Language    string
	Stars       int
	Forks       int
	Size        int
	Description string
	Readme      string
	CommitHash  string
}

// Config defines configuration options for the GitHub client.
type Config struct {
	Token   string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client fetches repository metadata from the GitHub REST API.
type Client struct {
	api    *gh.Client
	logger zerolog.Logger
}

// NewClient builds a GitHub client. The token is optional; unauthenticated
// requests work against public repositories at lower rate limits.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	api := gh.NewClient(&http.Client{Timeout: cfg.Timeout})
	if cfg.Token != "" {
		api = api.WithAuthToken(cfg.Token)
	}

	return &Client{
		api:    api,
		logger: cfg.Logger.With().Str("component", "github_client").Logger(),
	}
}

// FetchMetadata retrieves core repository attributes. The readme and latest
// commit lookups degrade independently: their absence never fails the call.
// A 404 on the repository itself returns ErrRepoNotFound.
func (c *Client) FetchMetadata(ctx context.Context, owner, repo, branch string) (RepoMetadata, error) {
	if branch == "" {
		branch = DefaultBranch
	}

	repository, resp, err := c.api.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return RepoMetadata{}, ErrRepoNotFound
		}
		return RepoMetadata{}, fmt.Errorf("fetch repository %s/%s: %w", owner, repo, err)
	}

	metadata := RepoMetadata{
		Language:    repository.GetLanguage(),
		Stars:       repository.GetStargazersCount(),
		Forks:       repository.GetForksCount(),
		Size:        repository.GetSize(),
		Description: repository.GetDescription(),
	}
	if metadata.Language == "" {
		metadata.Language = "Unknown"
	}

	readme, _, err := c.api.Repositories.GetReadme(ctx, owner, repo, &gh.RepositoryContentGetOptions{Ref: branch})
	if err != nil {
		c.logger.Debug().Str("repo", owner+"/"+repo).Msg("readme not available")
	} else if content, decodeErr := readme.GetContent(); decodeErr == nil {
		metadata.Readme = truncate(content, readmeLimit)
	}

	commit, _, err := c.api.Repositories.GetCommit(ctx, owner, repo, branch, nil)
	if err != nil {
		c.logger.Debug().Str("repo", owner+"/"+repo).Str("branch", branch).Msg("commit not available")
	} else {
		metadata.CommitHash = commit.GetSHA()
	}

	return metadata, nil
}

// truncate cuts at a rune boundary so a multi-byte rune straddling the limit
// never leaves invalid UTF-8 in the stored readme.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
