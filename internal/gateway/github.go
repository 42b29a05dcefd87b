// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/github-insights/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

const (
	// DefaultAPIURL is the public GitHub REST endpoint.
	DefaultAPIURL = "https://api.github.com/"
	// DefaultGraphQLURL is the public GitHub GraphQL endpoint.
	DefaultGraphQLURL = "https://api.github.com/graphql"

	pushEventType = "PushEvent"
	repoPageSize  = 100
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	ListRepositories(ctx context.Context, user string) ([]domain.Repository, error)
	FetchViewCount(ctx context.Context, owner, repo string) (int, error)
	FetchContributionCount(ctx context.Context, user string) (int, error)
	ListPushedCommits(ctx context.Context, user string) ([]domain.CommitRef, error)
	FetchLinesChanged(ctx context.Context, owner, repo, sha string) (int, error)
	FetchWindowContributions(ctx context.Context, user string, window domain.Window) (int, error)
}

// Options configures the endpoints and credential of a GitHubGateway.
type Options struct {
	Token      string
	APIURL     string
	GraphQLURL string
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        zerolog.Logger
}

// windowContributionsQuery reads the commit contributions inside a date range.
type windowContributionsQuery struct {
	User struct {
		ContributionsCollection struct {
			TotalCommitContributions int
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	} `graphql:"user(login: $login)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// Every request carries the token as a bearer credential.
func NewGitHubGateway(opts Options, logger zerolog.Logger) (*GitHubGateway, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("github token is empty")
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.GraphQLURL == "" {
		opts.GraphQLURL = DefaultGraphQLURL
	}
	baseURL, err := url.Parse(strings.TrimSuffix(opts.APIURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", opts.APIURL, err)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   http.DefaultTransport,
			Source: ts,
		},
	}
	restClient := github.NewClient(httpClient)
	restClient.BaseURL = baseURL

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: githubv4.NewEnterpriseClient(opts.GraphQLURL, httpClient),
		logger:        logger,
	}, nil
}

// ListRepositories returns the first page of repositories owned by user.
func (g *GitHubGateway) ListRepositories(ctx context.Context, user string) ([]domain.Repository, error) {
	g.logger.Info().Str("user", user).Msg("[1/5] Fetching repository information...")
	opts := &github.RepositoryListByUserOptions{ListOptions: github.ListOptions{PerPage: repoPageSize}}
	repos, _, err := g.restClient.Repositories.ListByUser(ctx, user, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	result := make([]domain.Repository, 0, len(repos))
	for _, r := range repos {
		owner := r.GetOwner().GetLogin()
		if owner == "" {
			owner = user
		}
		result = append(result, domain.Repository{
			Owner:    owner,
			Name:     r.GetName(),
			Stars:    r.GetStargazersCount(),
			Forks:    r.GetForksCount(),
			Language: r.GetLanguage(),
		})
	}
	g.logger.Debug().Int("count", len(result)).Msg("Completed fetching repositories.")
	return result, nil
}

// FetchViewCount sums the per-day view counts the traffic API reports for the last 14 days.
func (g *GitHubGateway) FetchViewCount(ctx context.Context, owner, repo string) (int, error) {
	views, _, err := g.restClient.Repositories.ListTrafficViews(ctx, owner, repo, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch traffic views for %s/%s: %w", owner, repo, err)
	}
	total := 0
	for _, day := range views.Views {
		total += day.GetCount()
	}
	g.logger.Debug().Str("repo", owner+"/"+repo).Int("views", total).Msg("Fetched traffic views.")
	return total, nil
}

// FetchContributionCount returns the total count of the commit search for author:user.
// A response without a total count yields 0.
func (g *GitHubGateway) FetchContributionCount(ctx context.Context, user string) (int, error) {
	g.logger.Info().Str("user", user).Msg("[3/5] Fetching contribution data...")
	query := fmt.Sprintf("author:%s", user)
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}}
	result, _, err := g.restClient.Search.Commits(ctx, query, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to search commits with REST API: %w", err)
	}
	return result.GetTotal(), nil
}

// ListPushedCommits returns every commit carried by the push events in the
// user's recent activity, in event order.
func (g *GitHubGateway) ListPushedCommits(ctx context.Context, user string) ([]domain.CommitRef, error) {
	g.logger.Info().Str("user", user).Msg("[4/5] Analyzing code changes...")
	events, _, err := g.restClient.Activity.ListEventsPerformedByUser(ctx, user, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	var commits []domain.CommitRef
	for _, event := range events {
		if event.GetType() != pushEventType {
			continue
		}
		payload, err := event.ParsePayload()
		if err != nil {
			return nil, fmt.Errorf("failed to parse push event payload: %w", err)
		}
		push, ok := payload.(*github.PushEvent)
		if !ok {
			continue
		}
		repoName := event.GetRepo().GetName()
		for _, c := range push.Commits {
			sha := c.GetSHA()
			if sha == "" {
				sha = c.GetID()
			}
			commits = append(commits, domain.CommitRef{Repo: repoName, SHA: sha})
		}
	}
	g.logger.Debug().Int("commits", len(commits)).Msg("Completed fetching push events.")
	return commits, nil
}

// FetchLinesChanged returns the total line change count of a single commit.
// Commits without stats contribute 0.
func (g *GitHubGateway) FetchLinesChanged(ctx context.Context, owner, repo, sha string) (int, error) {
	commit, _, err := g.restClient.Repositories.GetCommit(ctx, owner, repo, sha, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch commit %s in %s/%s: %w", sha, owner, repo, err)
	}
	return commit.GetStats().GetTotal(), nil
}

// FetchWindowContributions counts commit contributions inside window using the GraphQL API.
func (g *GitHubGateway) FetchWindowContributions(ctx context.Context, user string, window domain.Window) (int, error) {
	g.logger.Info().Str("user", user).Msg("Fetching contributions inside the report window...")
	variables := map[string]interface{}{
		"login": githubv4.String(user),
		"from":  githubv4.DateTime{Time: window.Start},
		"to":    githubv4.DateTime{Time: window.End},
	}
	var q windowContributionsQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return 0, fmt.Errorf("failed to execute GraphQL query for window contributions: %w", err)
	}
	return q.User.ContributionsCollection.TotalCommitContributions, nil
}

// SplitRepo splits an owner/name pair as reported by the events API.
func SplitRepo(fullName string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("malformed repository name %q", fullName)
	}
	return owner, name, nil
}
